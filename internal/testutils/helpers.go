// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile creates a file named name with content in a temporary directory
// and returns its absolute path. It fails the test immediately on error.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	return path
}
