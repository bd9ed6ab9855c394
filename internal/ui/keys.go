package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Back       key.Binding

	// View switching
	ViewHome     key.Binding
	ViewProducts key.Binding
	ViewCart     key.Binding
	ViewWishlist key.Binding
	ViewProfile  key.Binding

	// Navigation
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Confirm key.Binding

	// Products
	Search       key.Binding
	CycleSort    key.Binding
	Facets       key.Binding
	ClearFacets  key.Binding
	ToggleFacet  key.Binding
	ToggleWish   key.Binding
	Refetch      key.Binding
	NextSize     key.Binding
	PrevSize     key.Binding
	Increment    key.Binding
	Decrement    key.Binding
	AddToCart    key.Binding
	Remove       key.Binding
	MoveToWish   key.Binding
	PlaceOrder   key.Binding
	Login        key.Binding
	Logout       key.Binding
	SelectAddr   key.Binding
	DeleteAddr   key.Binding
	ScrollDetail key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		ViewHome: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Home"),
		),
		ViewProducts: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Products"),
		),
		ViewCart: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Cart"),
		),
		ViewWishlist: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Wishlist"),
		),
		ViewProfile: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Profile"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		Facets: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filters"),
		),
		ClearFacets: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Clear filters"),
		),
		ToggleFacet: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle filter"),
		),
		ToggleWish: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle wishlist"),
		),
		Refetch: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		NextSize: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("l/right", "Next size"),
		),
		PrevSize: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "Previous size"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Quantity up"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Quantity down"),
		),
		AddToCart: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add to cart"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove"),
		),
		MoveToWish: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Move to wishlist"),
		),
		PlaceOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Place order (COD)"),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log in"),
		),
		Logout: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Log out"),
		),
		SelectAddr: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "Deliver here"),
		),
		DeleteAddr: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Delete address"),
		),
		ScrollDetail: key.NewBinding(
			key.WithKeys("ctrl+d", "ctrl+u"),
			key.WithHelp("ctrl+d/u", "Scroll details"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewHome, k.ViewProducts, k.ViewCart, k.ViewWishlist, k.ViewProfile, k.Tab, k.Back},
		{k.Up, k.Down, k.Top, k.Bottom, k.Confirm},
		{k.Search, k.CycleSort, k.Facets, k.ClearFacets, k.ToggleWish, k.Refetch},
		{k.PrevSize, k.NextSize, k.Increment, k.Decrement, k.AddToCart, k.ScrollDetail},
		{k.Remove, k.MoveToWish, k.PlaceOrder},
		{k.Login, k.SelectAddr, k.DeleteAddr, k.Logout},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
