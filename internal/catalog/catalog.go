package catalog

import (
	"context"
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/kv"
)

// Catalog owns the product list, the section/type taxonomy and the user's
// cart and wishlist. Reads return copies.
type Catalog struct {
	mu     sync.RWMutex
	store  kv.Store
	logger *zap.Logger

	products   []Product
	sections   []api.Section
	types      []api.Type
	sectionMap []SectionGroup

	cart       []CartItem
	wishlist   []string
	quantities map[string]int
}

// New builds a Catalog and loads the cart, wishlist and overlay from store.
// Load failures are logged and leave the affected collection empty.
func New(ctx context.Context, store kv.Store, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		store:      store,
		logger:     logger,
		quantities: make(map[string]int),
	}

	if _, err := kv.GetJSON(ctx, store, kv.KeyCartItems, &c.cart); err != nil {
		logger.Warn("load cart", zap.Error(err))
		c.cart = nil
	}
	c.cart = sanitizeCart(c.cart)

	if _, err := kv.GetJSON(ctx, store, kv.KeyWishlist, &c.wishlist); err != nil {
		logger.Warn("load wishlist", zap.Error(err))
		c.wishlist = nil
	}
	c.wishlist = dedupe(c.wishlist)

	var overlay []Overlay
	if _, err := kv.GetJSON(ctx, store, kv.KeyProductOverlay, &overlay); err != nil {
		logger.Warn("load product overlay", zap.Error(err))
	}
	for _, o := range overlay {
		if o.ID != "" && o.Quantity > 1 {
			c.quantities[o.ID] = o.Quantity
		}
	}
	return c
}

// SetProducts replaces the product list with the normalized server list.
func (c *Catalog) SetProducts(ctx context.Context, in []api.Product) error {
	products := make([]Product, 0, len(in))
	for _, p := range in {
		products = append(products, Normalize(p))
	}
	c.mu.Lock()
	c.products = products
	overlay := c.overlayLocked()
	c.mu.Unlock()
	return c.persist(ctx, kv.KeyProductOverlay, overlay)
}

// SetSections replaces the section list and rebuilds the section->type map.
func (c *Catalog) SetSections(sections []api.Section) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections = slices.Clone(sections)
	c.sectionMap = BuildSectionTypeMap(c.sections, c.types)
}

// SetTypes replaces the type list and rebuilds the section->type map.
func (c *Catalog) SetTypes(types []api.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = slices.Clone(types)
	c.sectionMap = BuildSectionTypeMap(c.sections, c.types)
}

// Products returns a copy of the product list.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

// Product looks a product up by id.
func (c *Catalog) Product(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.productIndexLocked(id)
	if i < 0 {
		return Product{}, false
	}
	return c.products[i], true
}

// Sections returns a copy of the section list.
func (c *Catalog) Sections() []api.Section {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.sections)
}

// Types returns a copy of the type list.
func (c *Catalog) Types() []api.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.types)
}

// SectionTypeMap returns the sections with their types.
func (c *Catalog) SectionTypeMap() []SectionGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]SectionGroup, len(c.sectionMap))
	for i, g := range c.sectionMap {
		g.Types = slices.Clone(g.Types)
		out[i] = g
	}
	return out
}

// TypeNames returns every type across sections, deduplicated by name.
func (c *Catalog) TypeNames() []TypeEntry {
	return FlattenTypes(c.SectionTypeMap())
}

// View searches (title and category), filters and sorts the product list.
func (c *Catalog) View(term string, f Facets, key SortKey) []Product {
	items := Search(c.Products(), term, true)
	return SortProducts(Filter(items, f), key, f)
}

// Cart returns a copy of the cart lines.
func (c *Catalog) Cart() []CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.cart)
}

// Wishlist returns the wishlisted ids in insertion order.
func (c *Catalog) Wishlist() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.wishlist)
}

// WishlistProducts returns the known products on the wishlist.
func (c *Catalog) WishlistProducts() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.wishlist))
	for _, id := range c.wishlist {
		if i := c.productIndexLocked(id); i >= 0 {
			out = append(out, c.products[i])
		}
	}
	return out
}

// InWishlist reports wishlist membership.
func (c *Catalog) InWishlist(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.wishlist, id)
}

// InCart reports whether any line holds the product.
func (c *Catalog) InCart(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inCartLocked(id)
}

// Quantity returns the display quantity for a product (at least 1).
func (c *Catalog) Quantity(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if q := c.quantities[id]; q > 1 {
		return q
	}
	return 1
}

// ToggleWishList flips membership. Ids that are neither known products nor
// already wishlisted are ignored.
func (c *Catalog) ToggleWishList(ctx context.Context, id string) error {
	c.mu.Lock()
	if i := slices.Index(c.wishlist, id); i >= 0 {
		c.wishlist = slices.Delete(c.wishlist, i, i+1)
	} else if c.productIndexLocked(id) >= 0 {
		c.wishlist = append(c.wishlist, id)
	} else {
		c.mu.Unlock()
		return nil
	}
	wishlist := slices.Clone(c.wishlist)
	overlay := c.overlayLocked()
	c.mu.Unlock()

	return c.persistAll(ctx, map[string]any{
		kv.KeyWishlist:       wishlist,
		kv.KeyProductOverlay: overlay,
	})
}

// AddToCart adds qty of product in size. An empty size is a no-op; qty
// below 1 counts as 1. An existing (id, size) line is incremented.
func (c *Catalog) AddToCart(ctx context.Context, p Product, size string, qty int) error {
	if size == "" || p.ID == "" {
		return nil
	}
	if qty < 1 {
		qty = 1
	}
	c.mu.Lock()
	if i := c.cartIndexLocked(p.ID, size); i >= 0 {
		c.cart[i].Quantity = saturatingAdd(c.cart[i].Quantity, qty)
	} else {
		c.cart = append(c.cart, CartItem{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image(),
			Size:      size,
			Quantity:  qty,
		})
	}
	return c.commitCartLocked(ctx)
}

// ChangeCartQuantity adjusts a line by delta, never below 1.
func (c *Catalog) ChangeCartQuantity(ctx context.Context, id, size string, delta int) error {
	c.mu.Lock()
	i := c.cartIndexLocked(id, size)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.cart[i].Quantity = max(1, saturatingAdd(c.cart[i].Quantity, delta))
	return c.commitCartLocked(ctx)
}

// RemoveCartItem deletes a line.
func (c *Catalog) RemoveCartItem(ctx context.Context, id, size string) error {
	c.mu.Lock()
	i := c.cartIndexLocked(id, size)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.cart = slices.Delete(c.cart, i, i+1)
	return c.commitCartLocked(ctx)
}

// ClearCart empties the cart.
func (c *Catalog) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	c.cart = []CartItem{}
	return c.commitCartLocked(ctx)
}

// RemoveCartLines takes the given lines out of the cart. A live line whose
// quantity grew past the given one keeps the difference; lines added since
// are untouched.
func (c *Catalog) RemoveCartLines(ctx context.Context, lines []CartItem) error {
	c.mu.Lock()
	for _, line := range lines {
		i := c.cartIndexLocked(line.ProductID, line.Size)
		if i < 0 {
			continue
		}
		if rest := c.cart[i].Quantity - line.Quantity; rest > 0 {
			c.cart[i].Quantity = rest
		} else {
			c.cart = slices.Delete(c.cart, i, i+1)
		}
	}
	return c.commitCartLocked(ctx)
}

// MoveToWishList removes the line and makes sure the product is wishlisted.
func (c *Catalog) MoveToWishList(ctx context.Context, id, size string) error {
	c.mu.Lock()
	i := c.cartIndexLocked(id, size)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.cart = slices.Delete(c.cart, i, i+1)
	if !slices.Contains(c.wishlist, id) {
		c.wishlist = append(c.wishlist, id)
	}
	cart := slices.Clone(c.cart)
	wishlist := slices.Clone(c.wishlist)
	overlay := c.overlayLocked()
	c.mu.Unlock()

	return c.persistAll(ctx, map[string]any{
		kv.KeyCartItems:      cart,
		kv.KeyWishlist:       wishlist,
		kv.KeyProductOverlay: overlay,
	})
}

// ChangeQuantity adjusts the display quantity of a product, never below 1.
func (c *Catalog) ChangeQuantity(ctx context.Context, id string, delta int) error {
	c.mu.Lock()
	if c.productIndexLocked(id) < 0 {
		c.mu.Unlock()
		return nil
	}
	q := max(1, saturatingAdd(max(1, c.quantities[id]), delta))
	if q == 1 {
		delete(c.quantities, id)
	} else {
		c.quantities[id] = q
	}
	overlay := c.overlayLocked()
	c.mu.Unlock()
	return c.persist(ctx, kv.KeyProductOverlay, overlay)
}

// commitCartLocked persists the cart and overlay and releases the lock.
func (c *Catalog) commitCartLocked(ctx context.Context) error {
	cart := slices.Clone(c.cart)
	overlay := c.overlayLocked()
	c.mu.Unlock()
	return c.persistAll(ctx, map[string]any{
		kv.KeyCartItems:      cart,
		kv.KeyProductOverlay: overlay,
	})
}

func (c *Catalog) overlayLocked() []Overlay {
	out := make([]Overlay, 0, len(c.products))
	for _, p := range c.products {
		q := c.quantities[p.ID]
		if q < 1 {
			q = 1
		}
		out = append(out, Overlay{
			ID:       p.ID,
			WishList: slices.Contains(c.wishlist, p.ID),
			Cart:     c.inCartLocked(p.ID),
			Quantity: q,
		})
	}
	return out
}

func (c *Catalog) persistAll(ctx context.Context, values map[string]any) error {
	var first error
	for _, key := range []string{kv.KeyCartItems, kv.KeyWishlist, kv.KeyProductOverlay} {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := c.persist(ctx, key, v); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Catalog) persist(ctx context.Context, key string, v any) error {
	if err := kv.SetJSON(ctx, c.store, key, v); err != nil {
		c.logger.Warn("persist catalog state", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (c *Catalog) productIndexLocked(id string) int {
	return slices.IndexFunc(c.products, func(p Product) bool { return p.ID == id })
}

func (c *Catalog) cartIndexLocked(id, size string) int {
	return slices.IndexFunc(c.cart, func(it CartItem) bool {
		return it.ProductID == id && it.Size == size
	})
}

func (c *Catalog) inCartLocked(id string) bool {
	return slices.ContainsFunc(c.cart, func(it CartItem) bool { return it.ProductID == id })
}

func sanitizeCart(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Size == "" {
			continue
		}
		it.Quantity = max(1, it.Quantity)
		if i := slices.IndexFunc(out, func(o CartItem) bool {
			return o.ProductID == it.ProductID && o.Size == it.Size
		}); i >= 0 {
			out[i].Quantity = saturatingAdd(out[i].Quantity, it.Quantity)
			continue
		}
		out = append(out, it)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// saturatingAdd adds b to a, pinning at the int bounds instead of wrapping.
func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}
