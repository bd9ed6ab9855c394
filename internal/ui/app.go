package ui

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/catalog"
	"github.com/totehq/tote/internal/fetch"
	"github.com/totehq/tote/internal/prefs"
	"github.com/totehq/tote/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewHome View = iota
	ViewProducts
	ViewDetail
	ViewCart
	ViewWishlist
	ViewProfile
)

// viewCycle is the tab order. The product page is reached from a list.
var viewCycle = []View{ViewHome, ViewProducts, ViewCart, ViewWishlist, ViewProfile}

func (v View) String() string {
	switch v {
	case ViewProducts:
		return "Products"
	case ViewDetail:
		return "Product"
	case ViewCart:
		return "Cart"
	case ViewWishlist:
		return "Wishlist"
	case ViewProfile:
		return "Profile"
	default:
		return "Home"
	}
}

// Backend is the read side of the REST API the views fetch from.
type Backend interface {
	FetchProducts(ctx context.Context) ([]api.Product, error)
	FetchProduct(ctx context.Context, id string) (api.Product, error)
	FetchSections(ctx context.Context) ([]api.Section, error)
	FetchTypes(ctx context.Context) ([]api.Type, error)
}

// Accounts is the account surface of the profile view.
type Accounts interface {
	Login(ctx context.Context, email string) (api.User, error)
	DeleteAddress(ctx context.Context, addressID string) error
	SelectAddress(ctx context.Context, addressID string) error
	Logout(ctx context.Context) error
}

// Orders places the cart as an order.
type Orders interface {
	Place(ctx context.Context) (api.OrderResponse, error)
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Backend     Backend
	Catalog     *catalog.Catalog
	Session     *session.Session
	Accounts    Accounts
	Orders      Orders
	Logger      *zap.Logger
	ThemeName   string
	DefaultSort string
	// PrefsPath receives theme and sort changes. Empty disables saving.
	PrefsPath string
	// Origin is the API base URL shown in the header.
	Origin string
}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeWarn
	noticeError
)

type notice struct {
	text  string
	level noticeLevel
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	backend   Backend
	catalog   *catalog.Catalog
	session   *session.Session
	accounts  Accounts
	orders    Orders
	logger    *zap.Logger
	prefsPath string
	origin    string

	// UI state
	keys     keyMap
	theme    Theme
	view     View
	backView View
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal
	notice   notice
	busy     string

	// Remote data
	products *fetch.Resource[[]api.Product]
	sections *fetch.Resource[[]api.Section]
	types    *fetch.Resource[[]api.Type]
	detail   *fetch.Resource[api.Product]

	// Home state
	homeRow int

	// Products state
	search     textinput.Model
	searching  bool
	facets     catalog.Facets
	sortKey    catalog.SortKey
	productRow int

	// Product page state
	detailID       string
	detailSize     int // index into catalog.Sizes, -1 when none chosen
	detailViewport viewport.Model

	// Cart, wishlist and profile state
	cartRow      int
	wishRow      int
	wishSize     int
	addrRow      int
	selectedAddr string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	search := textinput.New()
	search.Placeholder = "Search products"
	search.Prompt = "/ "
	search.CharLimit = 80

	m := Model{
		ctx:        ctx,
		backend:    opts.Backend,
		catalog:    opts.Catalog,
		session:    opts.Session,
		accounts:   opts.Accounts,
		orders:     opts.Orders,
		logger:     logger,
		prefsPath:  opts.PrefsPath,
		origin:     opts.Origin,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(themeName),
		view:       ViewHome,
		products:   fetch.New[[]api.Product](ctx, nil),
		sections:   fetch.New[[]api.Section](ctx, nil),
		types:      fetch.New[[]api.Type](ctx, nil),
		detail:     fetch.New(ctx, api.Product{}),
		search:     search,
		sortKey:    catalog.ParseSortKey(opts.DefaultSort),
		detailSize: -1,
		wishSize:   -1,
	}
	m.refreshSelectedAddress()
	return m
}

// Init implements tea.Model. Products, sections and types load
// independently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchProductsCmd(), m.fetchSectionsCmd(), m.fetchTypesCmd())
}

// Close cancels in-flight fetches. Results arriving afterwards are dropped.
func (m Model) Close() {
	m.products.Close()
	m.sections.Close()
	m.types.Close()
	m.detail.Close()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.syncDetailViewport()
		return m, nil

	case productsMsg:
		m.applyProducts(msg)
		return m, nil

	case sectionsMsg:
		if m.sections.Apply(msg.res) {
			st := m.sections.State()
			if st.Err != nil {
				m.logger.Warn("fetch sections failed", zap.Error(st.Err))
				m.warn("Sections unavailable: " + st.Err.Error())
			} else {
				m.catalog.SetSections(st.Data)
			}
		}
		return m, nil

	case typesMsg:
		if m.types.Apply(msg.res) {
			st := m.types.State()
			if st.Err != nil {
				m.logger.Warn("fetch types failed", zap.Error(st.Err))
				m.warn("Types unavailable: " + st.Err.Error())
			} else {
				m.catalog.SetTypes(st.Data)
			}
		}
		return m, nil

	case detailMsg:
		if m.detail.Apply(msg.res) {
			if err := m.detail.State().Err; err != nil {
				m.logger.Warn("fetch product failed", zap.String("key", msg.res.Key), zap.Error(err))
				if api.IsStatus(err, http.StatusNotFound) {
					m.warn("This product is no longer available")
				} else {
					m.warn("Showing cached product: " + err.Error())
				}
			}
			m.syncDetailViewport()
		}
		return m, nil

	case facetsMsg:
		m.facets = msg.facets
		m.productRow = 0
		return m, nil

	case loginRequest:
		m.busy = "Logging in"
		m.notice = notice{}
		return m, m.loginCmd(msg.email)

	case loginMsg:
		m.busy = ""
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.addrRow = 0
		m.refreshSelectedAddress()
		m.info("Logged in as " + displayName(msg.user))
		return m, nil

	case orderMsg:
		m.busy = ""
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.cartRow = 0
		text := "Order placed"
		if id := msg.resp.Order.ID; id != "" {
			text += " · " + id
		}
		m.info(text)
		return m, nil

	case addressDeletedMsg:
		m.busy = ""
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.refreshSelectedAddress()
		m.info("Address deleted")
		return m, nil
	}

	// Cursor blink and other input housekeeping.
	if m.modal != nil {
		modal, cmd, _ := m.modal.Update(msg, m.keys)
		m.modal = modal
		return m, cmd
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.productsFailed() {
		return m.renderFetchError()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewProducts:
		return m.renderProducts()
	case ViewDetail:
		return m.renderDetail()
	case ViewCart:
		return m.renderCart()
	case ViewWishlist:
		return m.renderWishlist()
	case ViewProfile:
		return m.renderProfile()
	default:
		return m.renderHome()
	}
}

func (m *Model) applyProducts(msg productsMsg) {
	if !m.products.Apply(msg.res) {
		return
	}
	st := m.products.State()
	if st.Err != nil {
		m.logger.Warn("fetch products failed", zap.Error(st.Err))
		return
	}
	if err := m.catalog.SetProducts(m.ctx, st.Data); err != nil {
		m.warn("Could not save product state: " + err.Error())
	}
	m.productRow = clampIndex(m.productRow, len(m.visibleProducts()))
	m.syncDetailViewport()
}

// productsFailed reports whether the last product fetch failed.
func (m Model) productsFailed() bool {
	st := m.products.State()
	return st.Err != nil && !st.Loading
}

func (m *Model) info(text string) { m.notice = notice{text: text, level: noticeInfo} }
func (m *Model) warn(text string) { m.notice = notice{text: text, level: noticeWarn} }

// fail shows err, preferring the backend's own message.
func (m *Model) fail(err error) {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		m.notice = notice{text: se.Message, level: noticeError}
		return
	}
	m.notice = notice{text: err.Error(), level: noticeError}
}

// report surfaces a persistence error from a container mutation. The
// in-memory state has already changed.
func (m *Model) report(err error) {
	if err != nil {
		m.warn("Not saved: " + err.Error())
	}
}

func (m *Model) refreshSelectedAddress() {
	if m.session == nil {
		return
	}
	id, err := m.session.SelectedAddressID(m.ctx)
	if err != nil {
		m.logger.Warn("read selected address failed", zap.Error(err))
	}
	m.selectedAddr = id
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, DefaultSort: string(m.sortKey)}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func displayName(u api.User) string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Email
}

// Run starts the Bubble Tea program and blocks until it exits or ctx ends.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	teaOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		teaOpts = append(teaOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, teaOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
