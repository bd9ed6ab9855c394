package ui

import (
	"fmt"
	"strings"

	"github.com/totehq/tote/internal/catalog"
)

func (m Model) renderCart() string {
	cart := m.catalog.Cart()
	if len(cart) == 0 {
		return m.renderEmpty("Your cart is empty")
	}
	height := m.contentHeight()

	listWidth := m.width
	if m.width >= LayoutSplitWidth {
		listWidth = m.width * 62 / 100
	}

	rows := make([]string, 0, len(cart))
	for _, line := range cart {
		rows = append(rows, fmt.Sprintf("%s %-4s × %-3d %9s",
			padRight(truncate(line.Title, 28), 28), line.Size, line.Quantity, formatPrice(line.LineTotal())))
	}
	list := m.renderRows(rows, clampIndex(m.cartRow, len(rows)), listWidth-2, height-2, m.theme.FocusBg)
	title := fmt.Sprintf("Cart (%d)", len(cart))
	listPane := m.renderTitledBox(title, list, listWidth, height, true)

	summary := m.renderCartSummary(catalog.Summarize(cart))
	if listWidth == m.width {
		// Narrow terminals stack the summary under the list.
		listPane = m.renderTitledBox(title, list, m.width, max(height-9, 3), true)
		return listPane + "\n" + m.renderTitledBox("Price details", summary, m.width, 9, false)
	}
	return joinHorizontal(listPane, m.renderTitledBox("Price details", summary, m.width-listWidth, height, false))
}

func (m Model) renderCartSummary(s catalog.Summary) string {
	bgColor := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	row := func(label, value string) string {
		return bg.Render(padRight(label, 14), styles.MutedText) + bg.Render(value, styles.Text)
	}
	lines := []string{
		row(fmt.Sprintf("Price (%d)", s.Items), formatPrice(s.Subtotal)),
		row("Discount", formatPrice(s.Discount)),
		row("Delivery", ternary(s.Delivery == 0, "Free", formatPrice(s.Delivery))),
		bg.Render(strings.Repeat("─", 24), styles.FaintText),
		bg.Render(padRight("Total", 14), styles.Text.Bold(true)) + bg.Render(formatPrice(s.Total), styles.AccentText.Bold(true)),
		"",
		row("Payment", "Cash on delivery"),
		row("Deliver to", m.deliveryLabel()),
	}
	return strings.Join(lines, "\n")
}

// deliveryLabel names the selected address, or says what is missing.
func (m Model) deliveryLabel() string {
	user, ok := m.session.User()
	if !ok {
		return "log in first"
	}
	if m.selectedAddr == "" {
		return "choose an address"
	}
	for _, a := range user.Addresses {
		if a.ID == m.selectedAddr {
			return truncate(a.Area+", "+a.City, 30)
		}
	}
	return m.selectedAddr
}

func (m Model) renderWishlist() string {
	items := m.catalog.WishlistProducts()
	if len(items) == 0 {
		return m.renderEmpty("Your wishlist is empty")
	}
	height := m.contentHeight()

	rows := make([]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, fmt.Sprintf("%s %9s %5s", padRight(truncate(p.Title, 32), 32), formatPrice(p.Price), formatRating(p.Rating)))
	}

	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	sizes := bg.Render("Size ", styles.MutedText)
	for i, size := range catalog.Sizes {
		if i == m.wishSize {
			sizes += styles.Badge("selected").Render(size)
		} else {
			sizes += bg.Render(" "+size+" ", styles.Text)
		}
		sizes += bg.Space()
	}

	list := m.renderRows(rows, clampIndex(m.wishRow, len(rows)), m.width-2, height-4, m.theme.FocusBg)
	return m.renderTitledBox(fmt.Sprintf("Wishlist (%d)", len(items)), sizes+"\n\n"+list, m.width, height, true)
}
