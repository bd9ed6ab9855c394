package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/totehq/tote/internal/catalog"
)

// visibleProducts is the product list after search, facets and sort.
func (m Model) visibleProducts() []catalog.Product {
	return m.catalog.View(m.search.Value(), m.facets, m.sortKey)
}

// productRowText formats one list row. Markers: ♥ wishlisted, ● in cart.
func (m Model) productRowText(p catalog.Product) string {
	marks := ternary(m.catalog.InWishlist(p.ID), "♥", " ") + ternary(m.catalog.InCart(p.ID), "●", " ")
	var badges []string
	if p.FreeDelivery() {
		badges = append(badges, "free delivery")
	}
	if p.LowStock() {
		badges = append(badges, "low stock")
	}
	row := fmt.Sprintf("%s %s %8s %5s", marks, padRight(truncate(p.Title, 28), 28), formatPrice(p.Price), formatRating(p.Rating))
	if len(badges) > 0 {
		row += "  " + strings.Join(badges, ", ")
	}
	return row
}

func (m Model) renderProducts() string {
	items := m.visibleProducts()
	total := len(m.catalog.Products())
	height := m.contentHeight()

	listWidth := m.width
	if m.width >= LayoutSplitWidth {
		listWidth = m.width * 60 / 100
	}

	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	var head strings.Builder
	if m.searching {
		head.WriteString(m.search.View())
	} else if term := strings.TrimSpace(m.search.Value()); term != "" {
		head.WriteString(styles.AccentText.Render("/ " + term))
	} else {
		head.WriteString(styles.FaintText.Render("/ to search"))
	}
	head.WriteString("\n")
	head.WriteString(styles.MutedText.Render("Sort: " + m.sortKey.Label() + " · " + describeFacets(m.facets)))

	body := ""
	if len(items) == 0 {
		msg := "No products match"
		if m.products.State().Loading {
			msg = "Loading products..."
		}
		body = styles.MutedText.Render(msg)
	} else {
		rows := make([]string, 0, len(items))
		for _, p := range items {
			rows = append(rows, m.productRowText(p))
		}
		body = m.renderRows(rows, clampIndex(m.productRow, len(rows)), listWidth-2, height-5, m.theme.FocusBg)
	}

	title := fmt.Sprintf("Products (%d/%d)", len(items), total)
	listPane := m.renderTitledBox(title, head.String()+"\n\n"+body, listWidth, height, true)
	if listWidth == m.width {
		return listPane
	}

	preview := ""
	if len(items) > 0 {
		p := items[clampIndex(m.productRow, len(items))]
		preview = m.renderProductSummary(p, m.width-listWidth-4, m.theme.SurfaceAlt)
	}
	return joinHorizontal(listPane, m.renderTitledBox("Preview", preview, m.width-listWidth, height, false))
}

// renderProductSummary renders the fields shared by the preview pane and
// the product page.
func (m Model) renderProductSummary(p catalog.Product, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var lines []string
	lines = append(lines, styles.Text.Bold(true).Render(truncate(p.Title, width)))
	lines = append(lines, bg.Render(formatPrice(p.Price), styles.AccentText.Bold(true))+bg.Spaces(2)+
		bg.Render(formatRating(p.Rating), styles.WarningText))

	var badges []string
	if p.FreeDelivery() {
		badges = append(badges, styles.Badge("free").Render("FREE DELIVERY"))
	}
	if p.LowStock() {
		badges = append(badges, styles.Badge("low").Render(fmt.Sprintf("ONLY %d LEFT", p.Stock)))
	}
	if m.catalog.InWishlist(p.ID) {
		badges = append(badges, styles.Badge("wish").Render("WISHLIST"))
	}
	if m.catalog.InCart(p.ID) {
		badges = append(badges, styles.Badge("cart").Render("IN CART"))
	}
	if len(badges) > 0 {
		lines = append(lines, bg.Join(badges, " "))
	}
	lines = append(lines, "")

	field := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, bg.Render(padRight(label, 10), styles.MutedText)+bg.Render(truncate(value, width-10), styles.Text))
	}
	field("Category", p.Category)
	field("Section", p.SectionName)
	field("Type", p.TypeName)
	field("Stock", fmt.Sprintf("%d", p.Stock))
	if !p.CreatedAt.IsZero() {
		field("Added", p.CreatedAt.Format("2006-01-02"))
	}
	field("Image", p.Image())
	return strings.Join(lines, "\n")
}

func describeFacets(f catalog.Facets) string {
	if f.Empty() {
		return "no filters"
	}
	var parts []string
	for _, c := range f.PriceCeilings {
		parts = append(parts, priceLabel(c))
	}
	parts = append(parts, f.Categories...)
	for _, r := range f.Ratings {
		parts = append(parts, fmt.Sprintf("%.0f★ & up", r))
	}
	parts = append(parts, f.Sections...)
	parts = append(parts, f.Types...)
	return strings.Join(parts, ", ")
}

func priceLabel(ceiling float64) string {
	if ceiling >= catalog.PriceAll {
		return "All prices"
	}
	return "Under " + formatPrice(ceiling)
}

// facetKind identifies the Facets field an option toggles.
type facetKind int

const (
	facetPrice facetKind = iota
	facetCategory
	facetRating
	facetSection
	facetType
)

type facetOption struct {
	kind  facetKind
	label string
	value string
	num   float64
}

// facetOptions lists every toggleable facet value.
func facetOptions(cat *catalog.Catalog) []facetOption {
	var out []facetOption
	for _, c := range catalog.PriceCheckpoints {
		out = append(out, facetOption{kind: facetPrice, label: priceLabel(c), num: c})
	}
	for _, c := range catalog.CategoryChoices {
		out = append(out, facetOption{kind: facetCategory, label: c, value: c})
	}
	for _, r := range catalog.RatingChoices {
		out = append(out, facetOption{kind: facetRating, label: fmt.Sprintf("%.0f★ & up", r), num: r})
	}
	for _, s := range cat.Sections() {
		out = append(out, facetOption{kind: facetSection, label: "Section: " + s.Name, value: s.Name})
	}
	for _, t := range cat.TypeNames() {
		out = append(out, facetOption{kind: facetType, label: "Type: " + t.Name, value: t.Name})
	}
	return out
}

func (o facetOption) active(f catalog.Facets) bool {
	switch o.kind {
	case facetPrice:
		return slices.Contains(f.PriceCeilings, o.num)
	case facetCategory:
		return slices.Contains(f.Categories, o.value)
	case facetRating:
		return slices.Contains(f.Ratings, o.num)
	case facetSection:
		return slices.Contains(f.Sections, o.value)
	default:
		return slices.Contains(f.Types, o.value)
	}
}

func (o facetOption) toggle(f catalog.Facets) catalog.Facets {
	switch o.kind {
	case facetPrice:
		f.PriceCeilings = toggleValue(f.PriceCeilings, o.num)
	case facetCategory:
		f.Categories = toggleValue(f.Categories, o.value)
	case facetRating:
		f.Ratings = toggleValue(f.Ratings, o.num)
	case facetSection:
		f.Sections = toggleValue(f.Sections, o.value)
	default:
		f.Types = toggleValue(f.Types, o.value)
	}
	return f
}

func toggleValue[T comparable](list []T, v T) []T {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), v)
}

// facetsMsg carries the facets chosen in the filter modal.
type facetsMsg struct{ facets catalog.Facets }

// facetsModal edits a copy of the facets; enter or esc applies them.
type facetsModal struct {
	facets  catalog.Facets
	options []facetOption
	row     int
}

func newFacetsModal(f catalog.Facets, options []facetOption) *facetsModal {
	return &facetsModal{facets: f, options: options}
}

func (fm *facetsModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return fm, nil, false
	}
	switch {
	case key.Matches(km, keys.Back), key.Matches(km, keys.Confirm), key.Matches(km, keys.Facets):
		f := fm.facets
		return fm, func() tea.Msg { return facetsMsg{facets: f} }, true
	case key.Matches(km, keys.Down):
		if fm.row < len(fm.options)-1 {
			fm.row++
		}
	case key.Matches(km, keys.Up):
		if fm.row > 0 {
			fm.row--
		}
	case key.Matches(km, keys.ToggleFacet):
		if len(fm.options) > 0 {
			fm.facets = fm.options[fm.row].toggle(fm.facets)
		}
	case key.Matches(km, keys.ClearFacets):
		fm.facets = catalog.Facets{}
	}
	return fm, nil, false
}

func (fm *facetsModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Filters"))
	b.WriteString("\n\n")

	visible := max(height-10, 5)
	start := 0
	if fm.row >= visible {
		start = fm.row - visible + 1
	}
	for i := start; i < len(fm.options) && i < start+visible; i++ {
		o := fm.options[i]
		box := ternary(o.active(fm.facets), "[x] ", "[ ] ")
		line := box + o.label
		if i == fm.row {
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.SelectionText)).
				Background(lipgloss.Color(theme.SelectionBg)).
				Render(padRight(line, 36)))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("space toggle · c clear · enter apply"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(44).
		Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

func joinHorizontal(left, right string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
