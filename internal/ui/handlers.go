package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/totehq/tote/internal/catalog"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	if m.productsFailed() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refetch):
			return m, m.refetchAll()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.switchView(m.cycleView(1))
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView(m.cycleView(-1))
		return m, nil
	case key.Matches(msg, m.keys.ViewHome):
		m.switchView(ViewHome)
		return m, nil
	case key.Matches(msg, m.keys.ViewProducts):
		m.switchView(ViewProducts)
		return m, nil
	case key.Matches(msg, m.keys.ViewCart):
		m.switchView(ViewCart)
		return m, nil
	case key.Matches(msg, m.keys.ViewWishlist):
		m.switchView(ViewWishlist)
		return m, nil
	case key.Matches(msg, m.keys.ViewProfile):
		m.switchView(ViewProfile)
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.view == ViewDetail {
			m.switchView(m.backView)
		} else {
			m.switchView(ViewHome)
		}
		return m, nil
	}

	switch m.view {
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewProducts:
		return m.handleProductsKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewCart:
		return m.handleCartKey(msg)
	case ViewWishlist:
		return m.handleWishlistKey(msg)
	case ViewProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

func (m *Model) switchView(v View) {
	m.view = v
	m.notice = notice{}
}

// cycleView returns the view step places away in the tab order. The
// product page cycles as if it were its origin list.
func (m Model) cycleView(step int) View {
	current := m.view
	if current == ViewDetail {
		current = m.backView
	}
	i := slices.Index(viewCycle, current)
	if i < 0 {
		i = 0
	}
	n := len(viewCycle)
	return viewCycle[((i+step)%n+n)%n]
}

func (m Model) refetchAll() tea.Cmd {
	return tea.Batch(m.fetchProductsCmd(), m.fetchSectionsCmd(), m.fetchTypesCmd())
}

// moveRow applies the shared list navigation keys to row.
func (m Model) moveRow(msg tea.KeyMsg, row *int, count int) bool {
	switch {
	case key.Matches(msg, m.keys.Down):
		if *row < count-1 {
			*row++
		}
	case key.Matches(msg, m.keys.Up):
		if *row > 0 {
			*row--
		}
	case key.Matches(msg, m.keys.Top):
		*row = 0
	case key.Matches(msg, m.keys.Bottom):
		*row = max(0, count-1)
	default:
		return false
	}
	return true
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	groups := m.catalog.SectionTypeMap()
	if m.moveRow(msg, &m.homeRow, len(groups)) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if len(groups) == 0 {
			return m, nil
		}
		group := groups[clampIndex(m.homeRow, len(groups))]
		m.facets = catalog.Facets{Sections: []string{group.Name}}
		m.productRow = 0
		m.switchView(ViewProducts)
	case key.Matches(msg, m.keys.Refetch):
		return m, m.refetchAll()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.productRow = 0
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.productRow = 0
	return m, cmd
}

func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.visibleProducts()
	if m.moveRow(msg, &m.productRow, len(items)) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.CycleSort):
		m.sortKey = m.sortKey.Next()
		m.productRow = 0
		m.savePrefs()
	case key.Matches(msg, m.keys.Facets):
		m.modal = newFacetsModal(m.facets, facetOptions(m.catalog))
	case key.Matches(msg, m.keys.ClearFacets):
		m.facets = catalog.Facets{}
		m.productRow = 0
	case key.Matches(msg, m.keys.Refetch):
		return m, m.refetchAll()
	case len(items) == 0:
	case key.Matches(msg, m.keys.Confirm):
		return m, m.openDetail(items[clampIndex(m.productRow, len(items))].ID, ViewProducts)
	case key.Matches(msg, m.keys.ToggleWish):
		m.report(m.catalog.ToggleWishList(m.ctx, items[clampIndex(m.productRow, len(items))].ID))
	}
	return m, nil
}

// openDetail shows the product page for id and refreshes it from the
// backend. Esc returns to from.
func (m *Model) openDetail(id string, from View) tea.Cmd {
	if m.detailID != id {
		m.detailSize = -1
	}
	m.detailID = id
	m.backView = from
	m.switchView(ViewDetail)
	m.detailViewport.GotoTop()
	m.syncDetailViewport()
	return m.fetchDetailCmd(id, false)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p, ok := m.detailProduct()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextSize):
		m.detailSize = (m.detailSize + 1) % len(catalog.Sizes)
	case key.Matches(msg, m.keys.PrevSize):
		if m.detailSize <= 0 {
			m.detailSize = len(catalog.Sizes) - 1
		} else {
			m.detailSize--
		}
	case key.Matches(msg, m.keys.Increment):
		m.report(m.catalog.ChangeQuantity(m.ctx, p.ID, 1))
	case key.Matches(msg, m.keys.Decrement):
		m.report(m.catalog.ChangeQuantity(m.ctx, p.ID, -1))
	case key.Matches(msg, m.keys.ToggleWish):
		m.report(m.catalog.ToggleWishList(m.ctx, p.ID))
	case key.Matches(msg, m.keys.AddToCart):
		if m.detailSize < 0 {
			m.warn("Please select a size")
			return m, nil
		}
		size := catalog.Sizes[m.detailSize]
		if err := m.catalog.AddToCart(m.ctx, p, size, m.catalog.Quantity(p.ID)); err != nil {
			m.report(err)
		} else {
			m.info("Added " + p.Title + " (" + size + ") to cart")
		}
	case key.Matches(msg, m.keys.Refetch):
		return m, m.fetchDetailCmd(p.ID, true)
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.ScrollDown(1)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.ScrollUp(1)
		return m, nil
	case msg.String() == "ctrl+d":
		m.detailViewport.HalfPageDown()
		return m, nil
	case msg.String() == "ctrl+u":
		m.detailViewport.HalfPageUp()
		return m, nil
	default:
		return m, nil
	}
	m.syncDetailViewport()
	return m, nil
}

func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cart := m.catalog.Cart()
	if m.moveRow(msg, &m.cartRow, len(cart)) {
		return m, nil
	}
	if key.Matches(msg, m.keys.PlaceOrder) {
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Placing order"
		m.notice = notice{}
		return m, m.placeOrderCmd()
	}
	if len(cart) == 0 {
		return m, nil
	}
	line := cart[clampIndex(m.cartRow, len(cart))]
	switch {
	case key.Matches(msg, m.keys.Increment):
		m.report(m.catalog.ChangeCartQuantity(m.ctx, line.ProductID, line.Size, 1))
	case key.Matches(msg, m.keys.Decrement):
		m.report(m.catalog.ChangeCartQuantity(m.ctx, line.ProductID, line.Size, -1))
	case key.Matches(msg, m.keys.Remove):
		m.report(m.catalog.RemoveCartItem(m.ctx, line.ProductID, line.Size))
		m.cartRow = clampIndex(m.cartRow, len(cart)-1)
	case key.Matches(msg, m.keys.MoveToWish):
		m.report(m.catalog.MoveToWishList(m.ctx, line.ProductID, line.Size))
		m.cartRow = clampIndex(m.cartRow, len(cart)-1)
	case key.Matches(msg, m.keys.Confirm):
		return m, m.openDetail(line.ProductID, ViewCart)
	}
	return m, nil
}

func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.catalog.WishlistProducts()
	if m.moveRow(msg, &m.wishRow, len(items)) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextSize):
		m.wishSize = (m.wishSize + 1) % len(catalog.Sizes)
		return m, nil
	case key.Matches(msg, m.keys.PrevSize):
		if m.wishSize <= 0 {
			m.wishSize = len(catalog.Sizes) - 1
		} else {
			m.wishSize--
		}
		return m, nil
	}
	if len(items) == 0 {
		return m, nil
	}
	p := items[clampIndex(m.wishRow, len(items))]
	switch {
	case key.Matches(msg, m.keys.Remove), key.Matches(msg, m.keys.ToggleWish):
		m.report(m.catalog.ToggleWishList(m.ctx, p.ID))
		m.wishRow = clampIndex(m.wishRow, len(items)-1)
	case key.Matches(msg, m.keys.AddToCart):
		if m.wishSize < 0 {
			m.warn("Please select a size")
			return m, nil
		}
		size := catalog.Sizes[m.wishSize]
		if err := m.catalog.AddToCart(m.ctx, p, size, 1); err != nil {
			m.report(err)
		} else {
			m.info("Added " + p.Title + " (" + size + ") to cart")
		}
	case key.Matches(msg, m.keys.Confirm):
		return m, m.openDetail(p.ID, ViewWishlist)
	}
	return m, nil
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	user, loggedIn := m.session.User()

	switch {
	case key.Matches(msg, m.keys.Login):
		m.modal = newPromptModal("Log in", "email address", func(email string) tea.Cmd {
			return func() tea.Msg { return loginRequest{email: email} }
		})
		return m, textinput.Blink
	case !loggedIn:
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		if err := m.accounts.Logout(m.ctx); err != nil {
			m.fail(err)
			return m, nil
		}
		m.selectedAddr = ""
		m.addrRow = 0
		m.info("Logged out")
		return m, nil
	}

	addrs := user.Addresses
	if m.moveRow(msg, &m.addrRow, len(addrs)) || len(addrs) == 0 {
		return m, nil
	}
	addr := addrs[clampIndex(m.addrRow, len(addrs))]
	switch {
	case key.Matches(msg, m.keys.SelectAddr):
		if err := m.accounts.SelectAddress(m.ctx, addr.ID); err != nil {
			m.fail(err)
			return m, nil
		}
		m.selectedAddr = addr.ID
		m.info("Orders will be delivered to " + addr.Area)
	case key.Matches(msg, m.keys.DeleteAddr):
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Deleting address"
		m.addrRow = clampIndex(m.addrRow, len(addrs)-1)
		return m, m.deleteAddressCmd(addr.ID)
	}
	return m, nil
}
