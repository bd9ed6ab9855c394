package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the view tabs, counters, session and notice.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("tote", styles.Logo)}

	cartCount := len(m.catalog.Cart())
	wishCount := len(m.catalog.Wishlist())
	for _, v := range viewCycle {
		label := v.String()
		switch v {
		case ViewCart:
			label = fmt.Sprintf("%s %d", label, cartCount)
		case ViewWishlist:
			label = fmt.Sprintf("%s %d", label, wishCount)
		}
		active := v == m.view || (m.view == ViewDetail && v == m.backView)
		if active {
			parts = append(parts, bg.Render("["+label+"]", styles.AccentText.Bold(true)))
		} else {
			parts = append(parts, bg.Render(label, styles.MutedText))
		}
	}

	if user, ok := m.session.User(); ok {
		parts = append(parts, bg.Render("● "+truncate(displayName(user), 24), styles.SuccessText))
	} else if !compact {
		parts = append(parts, bg.Render("○ guest", styles.FaintText))
	}

	if m.loading() {
		parts = append(parts, bg.Render("Loading...", styles.WarningText.Bold(true)))
	}
	if m.busy != "" {
		parts = append(parts, bg.Render(m.busy+"...", styles.WarningText.Bold(true)))
	}

	if m.notice.text != "" {
		limit := 80
		if compact {
			limit = 40
		}
		style := styles.InfoText
		switch m.notice.level {
		case noticeWarn:
			style = styles.WarningText
		case noticeError:
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(truncate(m.notice.text, limit), style))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) loading() bool {
	return m.products.State().Loading || m.sections.State().Loading || m.types.State().Loading
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.view {
	case ViewProducts:
		if m.searching {
			commands = []cmd{{"enter", "Apply"}, {"esc", "Clear"}}
			break
		}
		commands = []cmd{
			{"/", "Search"},
			{"s", m.sortKey.Label()},
			{"f", "Filters"},
			{"c", "Clear"},
			{"w", "Wishlist"},
			{"enter", "Open"},
			{"?", "More"},
		}
	case ViewDetail:
		commands = []cmd{
			{"←/l", "Size"},
			{"+/-", "Qty"},
			{"a", "Add to cart"},
			{"w", "Wishlist"},
			{"r", "Reload"},
			{"esc", "Back"},
		}
	case ViewCart:
		commands = []cmd{
			{"+/-", "Qty"},
			{"x", "Remove"},
			{"m", "To wishlist"},
			{"o", "Place order"},
			{"enter", "Open"},
		}
	case ViewWishlist:
		commands = []cmd{
			{"←/l", "Size"},
			{"a", "Add to cart"},
			{"x", "Remove"},
			{"enter", "Open"},
		}
	case ViewProfile:
		commands = []cmd{
			{"L", "Log in"},
			{"enter", "Deliver here"},
			{"x", "Delete"},
			{"O", "Log out"},
		}
	default:
		commands = []cmd{
			{"1-5", "Views"},
			{"enter", "Shop section"},
			{"r", "Reload"},
			{"T", "Theme"},
			{"?", "Help"},
			{"e", "Quit"},
		}
	}

	parts := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		parts = append(parts, bg.Render("<"+c.key+">", styles.AccentText)+bg.Space()+bg.Render(c.desc, styles.MutedText))
	}
	if m.origin != "" && m.width >= LayoutSplitWidth {
		parts = append(parts, bg.Render(m.origin, styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	rows := make([]string, 0, max(height-2, 0))
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}

// renderRows renders plain row texts as a scrolling list with the selected
// row highlighted. Rows beyond height scroll so that selected stays visible.
func (m Model) renderRows(rows []string, selected, width, height int, bgColor string) string {
	if len(rows) == 0 || height <= 0 {
		return ""
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	end := min(len(rows), start+height)

	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Text)).Background(lipgloss.Color(bgColor))
	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(true)

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := padRight(truncate(rows[i], width), width)
		if i == selected {
			out = append(out, selStyle.Render(line))
		} else {
			out = append(out, textStyle.Render(line))
		}
	}
	return strings.Join(out, "\n")
}

// contentHeight is the height left for the view below the header bars.
func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

// renderEmpty centers a muted message in the content area.
func (m Model) renderEmpty(text string) string {
	msg := m.theme.Styles().MutedText.Render(text)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, msg)
}
