package fn_test

import (
	"strings"
	"testing"

	"github.com/smart-table/smart-table-server/pkg/fn"
	"github.com/stretchr/testify/assert"
)

func TestCompose_LeftToRight(t *testing.T) {
	addOne := func(v int) int { return v + 1 }
	double := func(v int) int { return v * 2 }

	assert.Equal(t, 4, fn.Compose(addOne, double)(1))
	assert.Equal(t, 3, fn.Compose(double, addOne)(1))
	assert.Equal(t, 7, fn.Compose[int]()(7), "empty composition is the identity")
}

func TestTap_PassesValueThrough(t *testing.T) {
	var seen []string
	tap := fn.Tap(func(v []string) { seen = v })

	out := tap([]string{"a"})

	assert.Equal(t, []string{"a"}, out)
	assert.Equal(t, []string{"a"}, seen)
}

func TestPredicates(t *testing.T) {
	positive := func(v int) bool { return v > 0 }
	even := func(v int) bool { return v%2 == 0 }

	assert.True(t, fn.Every(positive, even)(4))
	assert.False(t, fn.Every(positive, even)(3))
	assert.True(t, fn.Every[int]()(3))
	assert.True(t, fn.Some(positive, even)(-2))
	assert.False(t, fn.Some(positive, even)(-3))
	assert.True(t, fn.Not(positive)(-1))
}

func TestSwapAndCurry(t *testing.T) {
	sub := func(a, b int) int { return a - b }
	assert.Equal(t, 3, fn.Swap(sub)(2, 5))

	prefix := fn.Curry2(strings.HasPrefix)("smart")
	assert.True(t, prefix("sm"))
	assert.False(t, prefix("table"))
}

func TestMapFilter(t *testing.T) {
	in := []int{1, 2, 3, 4}
	assert.Equal(t, []int{2, 4}, fn.Filter(in, func(v int) bool { return v%2 == 0 }))
	assert.Equal(t, []string{"1", "2"}, fn.Map([]int{1, 2}, func(v int) string { return string(rune('0' + v)) }))
	assert.Equal(t, []int{1, 2, 3, 4}, in)
}
