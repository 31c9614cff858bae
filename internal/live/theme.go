package live

import (
	"github.com/charmbracelet/lipgloss"

	"statreporter/internal/report"
)

// Theme defines the colors of the live view. All colors use lipgloss ANSI
// 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	LabelForeground  lipgloss.Color
	BorderColor      lipgloss.Color

	// Severity colors, keyed by the report CSS classes.
	Error    lipgloss.Color
	Critical lipgloss.Color
	Warning  lipgloss.Color
	OK       lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("243"),
	HeaderForeground: lipgloss.Color("39"),
	LabelForeground:  lipgloss.Color("250"),
	BorderColor:      lipgloss.Color("238"),
	Error:            lipgloss.Color("196"),
	Critical:         lipgloss.Color("160"),
	Warning:          lipgloss.Color("214"),
	OK:               lipgloss.Color("34"),
}

// ClassColor returns the color for a report CSS class. Unknown or empty
// classes return NormalText.
func (theme Theme) ClassColor(class string) lipgloss.Color {
	switch class {
	case report.ClassError:
		return theme.Error
	case report.ClassCritical:
		return theme.Critical
	case report.ClassWarning:
		return theme.Warning
	case report.ClassOK:
		return theme.OK
	case report.ClassMuted:
		return theme.FaintText
	default:
		return theme.NormalText
	}
}
