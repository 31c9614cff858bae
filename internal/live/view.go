// Package live renders snapshots as a refreshing terminal view.
package live

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"statreporter/internal/report"
	"statreporter/internal/snapshot"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

const (
	labelWidth = 22
	barWidth   = 30
)

// View draws each snapshot over the previous one.
type View struct {
	out   io.Writer
	theme Theme

	header lipgloss.Style
	label  lipgloss.Style
	faint  lipgloss.Style
}

// NewView creates a view writing to out.
func NewView(out io.Writer, theme Theme) *View {
	return &View{
		out:    out,
		theme:  theme,
		header: lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground),
		label:  lipgloss.NewStyle().Bold(true).Width(labelWidth).Foreground(theme.LabelForeground),
		faint:  lipgloss.NewStyle().Foreground(theme.FaintText),
	}
}

// Show clears the terminal and draws snap.
func (v *View) Show(snap *snapshot.Snapshot) error {
	if _, err := io.WriteString(v.out, clearScreen+v.Render(report.Build(snap))); err != nil {
		return fmt.Errorf("failed to draw live view: %w", err)
	}
	return nil
}

// Render lays page out as styled text.
func (v *View) Render(page report.Page) string {
	var b strings.Builder

	b.WriteString(v.header.Render("System status: "+page.Hostname) + "  " + v.faint.Render(page.Generated) + "\n\n")

	v.section(&b, "General")
	v.fields(&b, page.General)

	v.section(&b, "Memory")
	if page.MemoryError != "" {
		b.WriteString(v.styled(report.ClassError, page.MemoryError) + "\n")
	}
	for _, g := range page.Memory {
		b.WriteString(v.label.Render(g.Label) + v.bar(g) + " " + v.styled(g.Class, g.Text) + "\n")
	}

	v.section(&b, "Temperatures")
	v.fields(&b, page.Temperatures)

	v.section(&b, "Power")
	v.fields(&b, page.Power)

	v.section(&b, "Network")
	v.fields(&b, page.Network)
	v.fields(&b, page.Interfaces)

	v.section(&b, "Web services")
	v.fields(&b, page.WebPorts)

	v.section(&b, "Storage")
	v.table(&b, page.Storage)

	v.section(&b, "Disk usage")
	v.table(&b, page.Disks)

	v.section(&b, "Top processes by memory")
	v.table(&b, page.Processes)

	return b.String()
}

func (v *View) section(b *strings.Builder, title string) {
	b.WriteString("\n" + v.header.Render(title) + "\n")
}

func (v *View) fields(b *strings.Builder, fields []report.Field) {
	for _, f := range fields {
		b.WriteString(v.label.Render(f.Label) + v.styled(f.Class, f.Value) + "\n")
	}
}

func (v *View) table(b *strings.Builder, t report.Table) {
	if t.Empty != "" {
		b.WriteString(v.styled(report.ClassError, t.Empty) + "\n")
		return
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell.Text))
			}
		}
	}

	header := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = v.label.Width(widths[i]).Render(h)
	}
	b.WriteString(strings.Join(header, " | ") + "\n")

	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := lipgloss.NewStyle().Foreground(v.theme.ClassColor(cell.Class))
			if i < len(widths) && i < len(row)-1 {
				style = style.Width(widths[i])
			}
			cells[i] = style.Render(cell.Text)
		}
		b.WriteString(strings.Join(cells, " | ") + "\n")
	}
}

// bar draws a usage gauge such as "[######----]".
func (v *View) bar(g report.Gauge) string {
	filled := int(g.Percent / 100 * barWidth)
	filled = min(max(filled, 0), barWidth)
	fill := lipgloss.NewStyle().Foreground(v.theme.ClassColor(g.Class)).Render(strings.Repeat("#", filled))
	return "[" + fill + v.faint.Render(strings.Repeat("-", barWidth-filled)) + "]"
}

func (v *View) styled(class, text string) string {
	return lipgloss.NewStyle().Foreground(v.theme.ClassColor(class)).Render(text)
}
