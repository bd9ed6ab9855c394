package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/totehq/tote/internal/account"
	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/catalog"
	"github.com/totehq/tote/internal/checkout"
	"github.com/totehq/tote/internal/fakeapi"
	"github.com/totehq/tote/internal/kv"
	"github.com/totehq/tote/internal/prefs"
	"github.com/totehq/tote/internal/session"
)

type harness struct {
	fake  *fakeapi.Server
	store kv.Store
	cat   *catalog.Catalog
	sess  *session.Session
}

func newHarness(t *testing.T, prefsPath string) (*harness, Model) {
	t.Helper()
	ctx := context.Background()

	fake := fakeapi.New(nil)
	fake.Seed()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := kv.NewMemory()
	cat := catalog.New(ctx, store, nil)
	sess := session.Load(ctx, store, nil)

	m := New(Options{
		Context:   ctx,
		Backend:   client,
		Catalog:   cat,
		Session:   sess,
		Accounts:  account.New(client, sess, nil),
		Orders:    checkout.New(client, cat, store, nil),
		PrefsPath: prefsPath,
		Origin:    srv.URL,
	})
	t.Cleanup(m.Close)
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return &harness{fake: fake, store: store, cat: cat, sess: sess}, m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// drain runs cmd and feeds the messages it produces back into the model
// until no commands remain. Messages the model does not own (cursor blink,
// quit) are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case productsMsg, sectionsMsg, typesMsg, detailMsg, loginRequest, loginMsg, orderMsg, addressDeletedMsg, facetsMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends one key and returns the model and the command it produced.
func press(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyMsg(s))
	return next.(Model), cmd
}

// pressAll sends keys whose commands are all local to the model.
func pressAll(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = press(t, m, k)
		m = drain(t, m, cmd)
	}
	return m
}

func started(t *testing.T) (*harness, Model) {
	t.Helper()
	h, m := newHarness(t, "")
	m = drain(t, m, m.Init())
	return h, m
}

func TestInit_LoadsProductsSectionsAndTypes(t *testing.T) {
	h, m := started(t)

	if got := len(h.cat.Products()); got != 8 {
		t.Fatalf("products = %d, want 8", got)
	}
	if got := len(h.cat.SectionTypeMap()); got != 3 {
		t.Fatalf("sections = %d, want 3", got)
	}
	if m.loading() {
		t.Fatalf("loading() = true after all fetches applied")
	}
	if view := m.View(); !strings.Contains(view, "Kurtas") {
		t.Fatalf("home view does not list types:\n%s", view)
	}
}

func TestFetchError_FullScreenThenRetry(t *testing.T) {
	h, m := newHarness(t, "")
	h.fake.FailNext(http.MethodGet, "/api/products", http.StatusInternalServerError, 1)

	m = drain(t, m, m.Init())
	if !m.productsFailed() {
		t.Fatalf("productsFailed() = false after 500")
	}
	if view := m.View(); !strings.Contains(view, "Could not load products") {
		t.Fatalf("error view not shown:\n%s", view)
	}

	// Other keys are inert on the error screen.
	m = pressAll(t, m, "3")
	if m.view != ViewHome {
		t.Fatalf("view = %v, want Home while failed", m.view)
	}

	m = pressAll(t, m, "r")
	if m.productsFailed() {
		t.Fatalf("productsFailed() = true after retry")
	}
	if got := len(h.cat.Products()); got != 8 {
		t.Fatalf("products = %d, want 8 after retry", got)
	}
}

func TestSectionFailure_DoesNotBlockProducts(t *testing.T) {
	h, m := newHarness(t, "")
	h.fake.FailNext(http.MethodGet, "/sections", http.StatusBadGateway, 1)

	m = drain(t, m, m.Init())
	if m.productsFailed() {
		t.Fatalf("section failure blocked products")
	}
	if got := len(h.cat.Products()); got != 8 {
		t.Fatalf("products = %d, want 8", got)
	}
	if m.notice.level != noticeWarn || !strings.Contains(m.notice.text, "Sections unavailable") {
		t.Fatalf("notice = %+v, want sections warning", m.notice)
	}
}

func TestHome_EnterShopsSection(t *testing.T) {
	_, m := started(t)

	m = pressAll(t, m, "enter")
	if m.view != ViewProducts {
		t.Fatalf("view = %v, want Products", m.view)
	}
	items := m.visibleProducts()
	if len(items) != 3 {
		t.Fatalf("visible = %d, want 3 men's products", len(items))
	}
	for _, p := range items {
		if p.SectionName != "Men's Fashion" {
			t.Fatalf("product %q in section %q", p.Title, p.SectionName)
		}
	}

	m = pressAll(t, m, "c")
	if got := len(m.visibleProducts()); got != 8 {
		t.Fatalf("visible after clear = %d, want 8", got)
	}
}

func TestProducts_SearchAndSort(t *testing.T) {
	_, m := started(t)
	m = pressAll(t, m, "2", "/", "shirt", "enter")

	if m.searching {
		t.Fatalf("searching = true after enter")
	}
	items := m.visibleProducts()
	if len(items) != 2 {
		t.Fatalf("visible = %d, want 2 shirts", len(items))
	}

	m = pressAll(t, m, "s")
	if m.sortKey != catalog.SortLowHigh {
		t.Fatalf("sortKey = %q, want %q", m.sortKey, catalog.SortLowHigh)
	}
	items = m.visibleProducts()
	if items[0].Price > items[1].Price {
		t.Fatalf("not sorted low to high: %v then %v", items[0].Price, items[1].Price)
	}

	m = pressAll(t, m, "/", "esc")
	if got := len(m.visibleProducts()); got != 8 {
		t.Fatalf("visible after esc = %d, want 8", got)
	}
}

func TestProducts_FacetModalToggles(t *testing.T) {
	_, m := started(t)
	m = pressAll(t, m, "2", "f")
	if m.modal == nil {
		t.Fatalf("facet modal not open")
	}

	// The first option is the lowest price checkpoint.
	m = pressAll(t, m, " ", "enter")
	if m.modal != nil {
		t.Fatalf("facet modal still open")
	}
	if len(m.facets.PriceCeilings) != 1 || m.facets.PriceCeilings[0] != 250 {
		t.Fatalf("PriceCeilings = %v, want [250]", m.facets.PriceCeilings)
	}
	for _, p := range m.visibleProducts() {
		if p.Price > 250 {
			t.Fatalf("product %q at %v passed the 250 filter", p.Title, p.Price)
		}
	}
}

func TestDetail_AddToCartNeedsSize(t *testing.T) {
	h, m := started(t)
	m = pressAll(t, m, "2", "enter")
	if m.view != ViewDetail || m.detailID != "prd-01" {
		t.Fatalf("view = %v detail = %q, want product page for prd-01", m.view, m.detailID)
	}

	m = pressAll(t, m, "a")
	if len(h.cat.Cart()) != 0 {
		t.Fatalf("added to cart without a size")
	}
	if m.notice.text != "Please select a size" {
		t.Fatalf("notice = %q", m.notice.text)
	}

	m = pressAll(t, m, "l", "+", "a")
	cart := h.cat.Cart()
	if len(cart) != 1 {
		t.Fatalf("cart = %d lines, want 1", len(cart))
	}
	if cart[0].Size != "S" || cart[0].Quantity != 2 {
		t.Fatalf("line = %+v, want size S quantity 2", cart[0])
	}

	m = pressAll(t, m, "w")
	if !h.cat.InWishlist("prd-01") {
		t.Fatalf("w did not wishlist the product")
	}

	m = pressAll(t, m, "esc")
	if m.view != ViewProducts {
		t.Fatalf("esc returned to %v, want Products", m.view)
	}
}

func TestDetail_StaleResultIsDropped(t *testing.T) {
	_, m := started(t)
	m = pressAll(t, m, "2")

	// Open the first product but hold its fetch.
	m, first := press(t, m, "enter")
	m = pressAll(t, m, "esc", "j")
	m, second := press(t, m, "enter")
	if m.detailID != "prd-02" {
		t.Fatalf("detailID = %q, want prd-02", m.detailID)
	}

	m = drain(t, m, first)
	if m.notice.text != "" {
		t.Fatalf("superseded result surfaced: %q", m.notice.text)
	}
	m = drain(t, m, second)
	p, ok := m.detailProduct()
	if !ok || p.ID != "prd-02" {
		t.Fatalf("detailProduct = %+v, %v; want prd-02", p, ok)
	}
	if m.detail.State().Data.ID != "prd-02" {
		t.Fatalf("resource data = %q, want prd-02", m.detail.State().Data.ID)
	}
}

func TestDetail_MissingProductWarns(t *testing.T) {
	h, m := started(t)
	h.fake.FailNext(http.MethodGet, "/api/products/prd-01", http.StatusNotFound, 1)

	m = pressAll(t, m, "2", "enter")
	if m.notice.level != noticeWarn || m.notice.text != "This product is no longer available" {
		t.Fatalf("notice = %+v, want missing product warning", m.notice)
	}
	// The cached entry still renders.
	if p, ok := m.detailProduct(); !ok || p.ID != "prd-01" {
		t.Fatalf("detailProduct = %+v, %v; want cached prd-01", p, ok)
	}
}

func TestResourceKeysMatchEndpoints(t *testing.T) {
	_, m := started(t)
	if got := m.sections.Key(); got != "/sections" {
		t.Fatalf("sections key = %q, want /sections", got)
	}
	if got := m.types.Key(); got != "/types" {
		t.Fatalf("types key = %q, want /types", got)
	}
	if got := m.products.Key(); got != "/api/products" {
		t.Fatalf("products key = %q, want /api/products", got)
	}
}

func TestCart_QuantityRemoveAndMove(t *testing.T) {
	h, m := started(t)
	ctx := context.Background()
	shirt, _ := h.cat.Product("prd-01")
	kurta, _ := h.cat.Product("prd-04")
	if err := h.cat.AddToCart(ctx, shirt, "M", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := h.cat.AddToCart(ctx, kurta, "S", 3); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	m = pressAll(t, m, "3", "+", "+")
	if got := h.cat.Cart()[0].Quantity; got != 3 {
		t.Fatalf("quantity = %d, want 3", got)
	}
	m = pressAll(t, m, "-", "-", "-", "-")
	if got := h.cat.Cart()[0].Quantity; got != 1 {
		t.Fatalf("quantity = %d, want floor 1", got)
	}

	m = pressAll(t, m, "j", "m")
	if len(h.cat.Cart()) != 1 || !h.cat.InWishlist("prd-04") {
		t.Fatalf("move to wishlist: cart = %+v wish = %v", h.cat.Cart(), h.cat.Wishlist())
	}

	m = pressAll(t, m, "x")
	if len(h.cat.Cart()) != 0 {
		t.Fatalf("cart = %+v, want empty", h.cat.Cart())
	}
	if view := m.View(); !strings.Contains(view, "empty") {
		t.Fatalf("empty cart view not shown:\n%s", view)
	}
}

func TestCheckout_LoginSelectAddressAndPlace(t *testing.T) {
	h, m := started(t)
	shirt, _ := h.cat.Product("prd-01")
	if err := h.cat.AddToCart(context.Background(), shirt, "M", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	m = pressAll(t, m, "3", "o")
	if m.notice.level != noticeError || m.notice.text != checkout.ErrNoUser.Error() {
		t.Fatalf("notice = %+v, want ErrNoUser", m.notice)
	}

	m = pressAll(t, m, "5", "L", "asha@example.com", "enter")
	if _, ok := h.sess.User(); !ok {
		t.Fatalf("login did not save the user (notice %q)", m.notice.text)
	}

	m = pressAll(t, m, "3", "o")
	if m.notice.text != checkout.ErrNoAddress.Error() {
		t.Fatalf("notice = %q, want ErrNoAddress", m.notice.text)
	}

	m = pressAll(t, m, "5", "enter")
	if m.selectedAddr != "adr-demo" {
		t.Fatalf("selectedAddr = %q, want adr-demo", m.selectedAddr)
	}

	m = pressAll(t, m, "3", "o")
	if m.notice.level != noticeInfo || !strings.HasPrefix(m.notice.text, "Order placed") {
		t.Fatalf("notice = %+v, want order placed", m.notice)
	}
	if len(h.fake.Orders()) != 1 {
		t.Fatalf("orders = %d, want 1", len(h.fake.Orders()))
	}
	if len(h.cat.Cart()) != 0 {
		t.Fatalf("cart not cleared after order")
	}
}

func TestProfile_LoginFailureShowsServerMessage(t *testing.T) {
	h, m := started(t)
	m = pressAll(t, m, "5", "L", "nobody@example.com", "enter")

	if _, ok := h.sess.User(); ok {
		t.Fatalf("unknown email logged in")
	}
	if m.notice.level != noticeError || m.notice.text != "User not found" {
		t.Fatalf("notice = %+v, want User not found", m.notice)
	}
	if m.busy != "" {
		t.Fatalf("busy = %q after login finished", m.busy)
	}
}

func TestProfile_DeleteAddressAndLogout(t *testing.T) {
	h, m := started(t)
	m = pressAll(t, m, "5", "L", "asha@example.com", "enter", "enter")
	if m.selectedAddr != "adr-demo" {
		t.Fatalf("selectedAddr = %q", m.selectedAddr)
	}

	m = pressAll(t, m, "x")
	user, _ := h.sess.User()
	if len(user.Addresses) != 0 {
		t.Fatalf("addresses = %+v, want none", user.Addresses)
	}
	if m.selectedAddr != "" {
		t.Fatalf("selectedAddr = %q after deleting it", m.selectedAddr)
	}

	m = pressAll(t, m, "O")
	if _, ok := h.sess.User(); ok {
		t.Fatalf("user still present after logout")
	}
	if id, _ := kv.GetString(context.Background(), h.store, kv.KeyUserID); id != "" {
		t.Fatalf("userId = %q after logout", id)
	}
}

func TestWishlist_AddToCartWithChosenSize(t *testing.T) {
	h, m := started(t)
	if err := h.cat.ToggleWishList(context.Background(), "prd-03"); err != nil {
		t.Fatalf("ToggleWishList: %v", err)
	}

	m = pressAll(t, m, "4", "a")
	if len(h.cat.Cart()) != 0 {
		t.Fatalf("added without size")
	}
	m = pressAll(t, m, "left", "a")
	cart := h.cat.Cart()
	if len(cart) != 1 || cart[0].Size != "XXL" {
		t.Fatalf("cart = %+v, want one XXL line", cart)
	}

	m = pressAll(t, m, "x")
	if h.cat.InWishlist("prd-03") {
		t.Fatalf("x did not remove from wishlist")
	}
}

func TestNavigation_TabCyclesAndHelpCloses(t *testing.T) {
	_, m := started(t)

	want := []View{ViewProducts, ViewCart, ViewWishlist, ViewProfile, ViewHome}
	for _, v := range want {
		m = pressAll(t, m, "tab")
		if m.view != v {
			t.Fatalf("view = %v, want %v", m.view, v)
		}
	}

	m = pressAll(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = pressAll(t, m, "3")
	if m.showHelp || m.view != ViewHome {
		t.Fatalf("closing help: showHelp = %v view = %v", m.showHelp, m.view)
	}
}

func TestThemeCycle_SavesPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	_, m := newHarness(t, path)
	m = drain(t, m, m.Init())

	m = pressAll(t, m, "T", "2", "s")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	p := prefs.Load(path)
	if p.Theme != "Kanagawa" || p.DefaultSort != string(catalog.SortLowHigh) {
		t.Fatalf("prefs = %+v, want Kanagawa/low-high", p)
	}
}

func TestClose_DropsLateResults(t *testing.T) {
	h, m := newHarness(t, "")
	cmd := m.Init()
	m.Close()

	m = drain(t, m, cmd)
	if len(h.cat.Products()) != 0 {
		t.Fatalf("results applied after Close")
	}
	if m.loading() {
		t.Fatalf("loading() = true after Close")
	}
}
