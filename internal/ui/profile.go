package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderProfile() string {
	user, ok := m.session.User()
	if !ok {
		return m.renderEmpty("Not logged in · press L to log in with your email")
	}
	height := m.contentHeight()
	bgColor := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	field := func(label, value string) string {
		return bg.Render(padRight(label, 8), styles.MutedText) + bg.Render(value, styles.Text)
	}
	info := strings.Join([]string{
		styles.Text.Bold(true).Render(displayName(user)),
		"",
		field("Email", user.Email),
		field("Phone", user.Phone),
		field("Gender", user.Gender),
		field("User", user.ID),
	}, "\n")
	infoWidth := min(40, m.width/3)
	infoPane := m.renderTitledBox("Account", info, infoWidth, height, false)

	listWidth := m.width - infoWidth
	var body string
	if len(user.Addresses) == 0 {
		body = m.theme.Styles().WithBackground(m.theme.FocusBg).MutedText.
			Render("No addresses · add one with `tote address add`")
	} else {
		rows := make([]string, 0, len(user.Addresses))
		for _, a := range user.Addresses {
			mark := ternary(a.ID == m.selectedAddr, "✓", " ")
			rows = append(rows, fmt.Sprintf("%s %-5s %s, %s, %s %s", mark, a.AddressType, a.Area, a.City, a.State, string(a.Pincode)))
		}
		body = m.renderRows(rows, clampIndex(m.addrRow, len(rows)), listWidth-2, height-2, m.theme.FocusBg)
	}
	addrPane := m.renderTitledBox(fmt.Sprintf("Addresses (%d)", len(user.Addresses)), body, listWidth, height, true)
	return lipgloss.JoinHorizontal(lipgloss.Top, infoPane, addrPane)
}

// renderFetchError replaces the whole screen while the product list cannot
// be loaded.
func (m Model) renderFetchError() string {
	styles := m.theme.Styles()
	err := m.products.State().Err
	content := styles.DangerText.Render("Could not load products") + "\n\n" +
		styles.Text.Render(truncate(err.Error(), 70)) + "\n\n" +
		styles.MutedText.Render("r retry · e quit")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Danger)).
		Padding(1, 2).
		Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
