package tui

import (
	"github.com/muesli/termenv"
	"github.com/smart-table/smart-table-server/pkg/domain"
)

// StatusLine formats a summary for the terminal in the colors profile supports.
func StatusLine(p termenv.Profile, s domain.Summary, working bool) string {
	if working {
		return p.String("⟳ working").Foreground(p.Color("#fbbf24")).String()
	}
	mark := p.String("●").Foreground(p.Color("#34d399"))
	if s.FilteredCount == 0 {
		mark = p.String("○").Foreground(p.Color("#fb7185"))
	}
	return mark.String() + " " + p.String(PageLine(s)).Foreground(p.Color("#818cf8")).String()
}
