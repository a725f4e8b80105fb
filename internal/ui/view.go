package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/camview/internal/format/table"
	"github.com/atomicstack/camview/internal/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const footerHint = "↑/↓ move  enter select  tab compose  ctrl+d dismiss  ctrl+x clear  ctrl+c quit"

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text already carries ANSI escapes
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 24)
	lines = append(lines, styledLine{text: m.statusText(), raw: true})
	lines = append(lines, m.pickerLines()...)
	lines = append(lines, styledLine{})
	lines = append(lines, m.panelLines()...)
	for _, n := range m.notices.All() {
		lines = append(lines, styledLine{text: " " + n.Text + " ", style: styles.Notice})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: footerHint, style: styles.Footer})
	}
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	var statusLine styledLine
	if m.errMsg != "" {
		statusLine = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	bottom := applyWidth([]styledLine{statusLine, {text: m.inputLine(), raw: true}}, m.width)
	return renderLines(append(lines, bottom...))
}

func (m *Model) statusText() string {
	endpoint := m.endpoint
	if endpoint == "" {
		endpoint = "hub"
	}
	render := func(style *lipgloss.Style, text string) string {
		if style == nil {
			return text
		}
		return style.Render(text)
	}
	header := render(styles.Header, "camview · "+endpoint)
	if m.conn.Status() == session.StatusConnected {
		return header + "  " + render(styles.StatusConnected, "● connected")
	}
	if !m.everConnected {
		return header + "  " + m.spinner.View() + " " + render(styles.StatusDisconnected, "connecting…")
	}
	status := "○ disconnected, retrying"
	if err := m.conn.LastError(); err != nil {
		status += ": " + err.Error()
	}
	return header + "  " + render(styles.StatusDisconnected, status)
}

func (m *Model) pickerLines() []styledLine {
	p := m.picker
	if len(p.Items) == 0 {
		msg := "(no sources)"
		if p.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", p.Filter)
		}
		return []styledLine{{text: msg, style: styles.Info}}
	}
	rows := make([][]string, len(p.Items))
	chosen := ""
	if src, ok := m.selection.Resolve(m.sources); ok {
		chosen = src.ID
	}
	for i, item := range p.Items {
		mark := " "
		if item.ID == chosen {
			mark = "✓"
		}
		rows[i] = []string{mark, item.Label, item.ID, item.Detail}
	}
	formatted := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignRight})

	start, end := 0, len(formatted)
	if maxItems := m.maxVisibleItems(); maxItems > 0 && end > maxItems {
		start = p.ViewportOffset
		if start+maxItems > end {
			start = end - maxItems
		}
		end = start + maxItems
	}
	disabled := m.conn.Status() != session.StatusConnected
	lines := make([]styledLine, 0, end-start)
	for idx := start; idx < end; idx++ {
		lines = append(lines, m.buildItemLine(formatted[idx], idx == p.Cursor, disabled))
	}
	return lines
}

// buildItemLine pads the row so the highlighted background spans the full
// width.
func (m *Model) buildItemLine(text string, highlighted, disabled bool) styledLine {
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	switch {
	case disabled:
		lineStyle = styles.Disabled
	case highlighted && m.focus == FocusPicker:
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := "▌ " + text
	if m.width > 0 {
		if pad := m.width - ansi.StringWidth(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

func (m *Model) panelLines() []styledLine {
	title, body := m.selectionSummary()
	content := styles.PanelTitle.Render(title)
	for _, line := range body {
		content += "\n" + styles.PanelBody.Render(line)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PanelBorder.GetForeground()).
		Padding(0, 1)
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	rendered := strings.Split(box.Render(content), "\n")
	lines := make([]styledLine, len(rendered))
	for i, row := range rendered {
		lines[i] = styledLine{text: row, raw: true}
	}
	return lines
}

func (m *Model) inputLine() string {
	if m.focus == FocusCompose {
		return m.compose.View()
	}
	return m.filterPrompt()
}

// maxVisibleItems reports how many picker rows fit; -1 means unlimited.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // status/error line + input line
	used++    // header
	used++    // blank above the panel
	used += len(m.panelLines())
	used += m.notices.Len()
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		result[i] = line
		result[i].text = truncateText(line.text, width)
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText shortens text to width terminal cells. It is ANSI aware, so
// pre-rendered lines keep their escape sequences intact.
func truncateText(text string, width int) string {
	if width <= 0 || ansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return ansi.Truncate(text, 1, "")
	}
	return ansi.Truncate(text, width, "…")
}
