package catalog

import (
	"time"

	"github.com/totehq/tote/internal/api"
)

// PlaceholderImage stands in for products and sections served without images.
const PlaceholderImage = "https://placehold.co/400"

// Sizes offered on the product page.
var Sizes = []string{"S", "M", "XL", "XXL"}

const (
	freeDeliveryAbove = 250
	lowStockBelow     = 5
)

// Product is a normalized catalog entry. It carries no user state; wishlist
// and cart membership are looked up on the Catalog.
type Product struct {
	ID          string
	Title       string
	Price       float64
	Category    string
	Rating      float64
	Stock       int
	Images      []string
	SectionID   string
	SectionName string
	TypeID      string
	TypeName    string
	CreatedAt   time.Time
}

// Image returns the first image.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return p.Images[0]
}

// FreeDelivery reports whether the product ships free.
func (p Product) FreeDelivery() bool {
	return p.Price > freeDeliveryAbove
}

// LowStock reports whether only a few units remain.
func (p Product) LowStock() bool {
	return p.Stock < lowStockBelow
}

// Normalize converts a wire product into a catalog Product.
func Normalize(in api.Product) Product {
	p := Product{
		ID:        in.ID,
		Title:     in.Title,
		Price:     in.Price,
		Category:  in.Category,
		Rating:    in.Rating,
		Stock:     in.Stock,
		Images:    nonEmptyImages(in.Images),
		CreatedAt: in.ParsedCreatedAt(),
	}
	if in.Section != nil {
		p.SectionID = in.Section.ID
	}
	if in.Type != nil {
		p.TypeID = in.Type.ID
	}
	p.SectionName = in.SectionName()
	p.TypeName = in.TypeName()
	return p
}

func nonEmptyImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 {
		return []string{PlaceholderImage}
	}
	return out
}

// CartItem is one cart line. (ProductID, Size) is unique within a cart.
// Title, Price and Image are captured when the line is created.
type CartItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is price times quantity.
func (c CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}

// Overlay is the persisted per-product user state.
type Overlay struct {
	ID       string `json:"id"`
	WishList bool   `json:"wishList"`
	Cart     bool   `json:"cart"`
	Quantity int    `json:"quantity"`
}

// Summary is the cart price breakdown.
type Summary struct {
	Items    int
	Subtotal float64
	Discount float64
	Delivery float64
	Total    float64
}

// Summarize totals cart lines. Discount and delivery are always zero.
func Summarize(items []CartItem) Summary {
	var s Summary
	for _, it := range items {
		s.Items += it.Quantity
		s.Subtotal += it.LineTotal()
	}
	s.Total = s.Subtotal - s.Discount + s.Delivery
	return s
}
