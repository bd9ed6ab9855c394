package ui

import (
	"strings"
)

// renderHome lists sections with their types, then all type names.
func (m Model) renderHome() string {
	groups := m.catalog.SectionTypeMap()
	if len(groups) == 0 {
		if m.sections.State().Loading || m.types.State().Loading {
			return m.renderEmpty("Loading sections...")
		}
		return m.renderEmpty("No sections yet · press r to reload")
	}

	height := m.contentHeight()
	listWidth := m.width
	if m.width >= LayoutSplitWidth {
		listWidth = m.width * 55 / 100
	}

	rows := make([]string, 0, len(groups))
	for _, g := range groups {
		names := make([]string, 0, len(g.Types))
		for _, t := range g.Types {
			names = append(names, t.Name)
		}
		row := padRight(g.Name, 20)
		if len(names) > 0 {
			row += " " + strings.Join(names, " · ")
		} else {
			row += " (no types)"
		}
		rows = append(rows, row)
	}
	list := m.renderRows(rows, clampIndex(m.homeRow, len(rows)), listWidth-4, height-2, m.theme.FocusBg)
	listPane := m.renderTitledBox("Shop by section", list, listWidth, height, true)
	if listWidth == m.width {
		return listPane
	}

	types := m.catalog.TypeNames()
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	var b strings.Builder
	for _, t := range types {
		b.WriteString(styles.Text.Render(t.Name))
		if t.Image != "" {
			b.WriteString(styles.FaintText.Render("  " + truncate(t.Image, m.width-listWidth-len(t.Name)-8)))
		}
		b.WriteString("\n")
	}
	typePane := m.renderTitledBox("All types", b.String(), m.width-listWidth, height, false)
	return joinHorizontal(listPane, typePane)
}
