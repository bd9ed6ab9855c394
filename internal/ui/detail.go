package ui

import (
	"fmt"
	"strings"

	"github.com/totehq/tote/internal/catalog"
)

// detailProduct returns the product shown on the product page: the
// backend's fresh copy once it has arrived, else the catalog entry.
func (m Model) detailProduct() (catalog.Product, bool) {
	if m.detailID == "" {
		return catalog.Product{}, false
	}
	st := m.detail.State()
	if st.Err == nil && st.Data.ID == m.detailID && m.detail.Key() == keyProducts+"/"+m.detailID {
		return catalog.Normalize(st.Data), true
	}
	return m.catalog.Product(m.detailID)
}

// syncDetailViewport sizes the product page viewport and refreshes its
// content.
func (m *Model) syncDetailViewport() {
	if !m.ready {
		return
	}
	m.detailViewport.Width = max(m.width-4, 10)
	m.detailViewport.Height = max(m.contentHeight()-2, 1)
	m.detailViewport.SetContent(m.detailContent(m.detailViewport.Width))
}

func (m Model) detailContent(width int) string {
	p, ok := m.detailProduct()
	if !ok {
		if m.detail.State().Loading {
			return "Loading product..."
		}
		return "Product not found"
	}
	bgColor := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var b strings.Builder
	b.WriteString(m.renderProductSummary(p, width, bgColor))
	b.WriteString("\n\n")

	b.WriteString(bg.Render(padRight("Size", 10), styles.MutedText))
	for i, size := range catalog.Sizes {
		if i == m.detailSize {
			b.WriteString(styles.Badge("selected").Render(size))
		} else {
			b.WriteString(bg.Render(" "+size+" ", styles.Text))
		}
		b.WriteString(bg.Space())
	}
	if m.detailSize < 0 {
		b.WriteString(bg.Render("choose a size", styles.FaintText))
	}
	b.WriteString("\n")

	qty := m.catalog.Quantity(p.ID)
	b.WriteString(bg.Render(padRight("Quantity", 10), styles.MutedText))
	b.WriteString(bg.Render(fmt.Sprintf("- %d +", qty), styles.Text.Bold(true)))
	b.WriteString(bg.Spaces(2))
	b.WriteString(bg.Render(formatPrice(p.Price*float64(qty)), styles.AccentText))
	b.WriteString("\n")

	if lines := m.cartLinesFor(p.ID); len(lines) > 0 {
		b.WriteString("\n")
		b.WriteString(bg.Render("In your cart", styles.MutedText))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(bg.Render(fmt.Sprintf("  %s × %d", line.Size, line.Quantity), styles.Text))
			b.WriteString("\n")
		}
	}

	if p.FreeDelivery() {
		b.WriteString("\n")
		b.WriteString(bg.Render("Free delivery on this item", styles.SuccessText))
	}
	return b.String()
}

func (m Model) cartLinesFor(id string) []catalog.CartItem {
	var out []catalog.CartItem
	for _, line := range m.catalog.Cart() {
		if line.ProductID == id {
			out = append(out, line)
		}
	}
	return out
}

func (m Model) renderDetail() string {
	title := "Product"
	if p, ok := m.detailProduct(); ok {
		title = p.Title
	}
	if m.detail.State().Loading {
		title += " (refreshing)"
	}
	return m.renderTitledBox(title, m.detailViewport.View(), m.width, m.contentHeight(), true)
}
