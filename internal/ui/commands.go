package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/fetch"
)

// Resource keys. They name the endpoint each resource tracks.
const (
	keyProducts = "/api/products"
	keySections = "/sections"
	keyTypes    = "/types"
)

// Messages

type productsMsg struct{ res fetch.Result[[]api.Product] }

type sectionsMsg struct{ res fetch.Result[[]api.Section] }

type typesMsg struct{ res fetch.Result[[]api.Type] }

type detailMsg struct{ res fetch.Result[api.Product] }

// loginRequest is emitted by the login prompt.
type loginRequest struct{ email string }

type loginMsg struct {
	user api.User
	err  error
}

type orderMsg struct {
	resp api.OrderResponse
	err  error
}

type addressDeletedMsg struct{ err error }

// Commands

func (m Model) fetchProductsCmd() tea.Cmd {
	backend := m.backend
	run := m.products.Start(keyProducts, func(ctx context.Context) ([]api.Product, error) {
		ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
		return backend.FetchProducts(ctx)
	})
	if run == nil {
		return nil
	}
	return func() tea.Msg { return productsMsg{res: run()} }
}

func (m Model) fetchSectionsCmd() tea.Cmd {
	backend := m.backend
	run := m.sections.Start(keySections, func(ctx context.Context) ([]api.Section, error) {
		ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
		return backend.FetchSections(ctx)
	})
	if run == nil {
		return nil
	}
	return func() tea.Msg { return sectionsMsg{res: run()} }
}

func (m Model) fetchTypesCmd() tea.Cmd {
	backend := m.backend
	run := m.types.Start(keyTypes, func(ctx context.Context) ([]api.Type, error) {
		ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
		return backend.FetchTypes(ctx)
	})
	if run == nil {
		return nil
	}
	return func() tea.Msg { return typesMsg{res: run()} }
}

// fetchDetailCmd loads one product. Unless force is set, a product that is
// already the latest call is not fetched again.
func (m Model) fetchDetailCmd(id string, force bool) tea.Cmd {
	backend := m.backend
	fn := func(ctx context.Context) (api.Product, error) {
		ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
		return backend.FetchProduct(ctx, id)
	}
	key := keyProducts + "/" + id
	var run func() fetch.Result[api.Product]
	if force {
		run = m.detail.Start(key, fn)
	} else {
		run = m.detail.StartIfChanged(key, fn)
	}
	if run == nil {
		return nil
	}
	return func() tea.Msg { return detailMsg{res: run()} }
}

func (m Model) loginCmd(email string) tea.Cmd {
	ctx, accounts := m.ctx, m.accounts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		user, err := accounts.Login(ctx, email)
		return loginMsg{user: user, err: err}
	}
}

func (m Model) placeOrderCmd() tea.Cmd {
	ctx, orders := m.ctx, m.orders
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		resp, err := orders.Place(ctx)
		return orderMsg{resp: resp, err: err}
	}
}

func (m Model) deleteAddressCmd(id string) tea.Cmd {
	ctx, accounts := m.ctx, m.accounts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return addressDeletedMsg{err: accounts.DeleteAddress(ctx, id)}
	}
}
