package fakeapi

import (
	"fmt"
	"time"

	"github.com/totehq/tote/internal/api"
)

// Seed fills the server with a small demo catalog and one user with an
// address, and returns that user.
func (s *Server) Seed() api.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sections = []api.Section{
		{ID: "sec-men", Name: "Men's Fashion", Images: []string{"https://placehold.co/600x400?text=Men"}},
		{ID: "sec-women", Name: "Women's Fashion", Images: []string{"https://placehold.co/600x400?text=Women"}},
		{ID: "sec-kids", Name: "Kids"},
	}
	s.types = []api.Type{
		{ID: "typ-shirts", Name: "Shirts", Section: api.Ref{ID: "sec-men"}, Images: []string{"https://placehold.co/300?text=Shirts"}},
		{ID: "typ-sneakers", Name: "Sneakers", Section: api.Ref{ID: "sec-men"}, Images: []string{"https://placehold.co/300?text=Sneakers"}},
		{ID: "typ-kurtas", Name: "Kurtas", Section: api.Ref{ID: "sec-women"}},
		{ID: "typ-sneakers-w", Name: "Sneakers", Section: api.Ref{ID: "sec-women"}},
		{ID: "typ-toys", Name: "Toys", Section: api.Ref{ID: "sec-kids"}},
	}

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := []struct {
		title    string
		price    float64
		category string
		rating   float64
		stock    int
		section  string
		typ      string
		images   []string
	}{
		{"Oxford Cotton Shirt", 899, "Men's Fashion", 4.3, 12, "sec-men", "typ-shirts", []string{"https://placehold.co/400?text=Oxford"}},
		{"Linen Summer Shirt", 1299, "Men's Fashion", 4.6, 3, "sec-men", "typ-shirts", nil},
		{"Court Sneakers", 2499, "Footwear", 4.1, 20, "sec-men", "typ-sneakers", nil},
		{"Block Print Kurta", 749, "Women's Fashion", 4.8, 8, "sec-women", "typ-kurtas", []string{"https://placehold.co/400?text=Kurta"}},
		{"Canvas Slip-ons", 199, "Footwear", 3.4, 40, "sec-women", "typ-sneakers-w", nil},
		{"Bamboo Sunglasses", 449, "Accessories", 3.9, 2, "", "", nil},
		{"Wooden Train Set", 349, "Kids", 4.9, 15, "sec-kids", "typ-toys", nil},
		{"Leather Belt", 240, "Accessories", 2.8, 30, "", "", nil},
	}
	s.products = s.products[:0]
	for i, row := range rows {
		p := api.Product{
			ID:        fmt.Sprintf("prd-%02d", i+1),
			Title:     row.title,
			Price:     row.price,
			Category:  row.category,
			Rating:    row.rating,
			Stock:     row.stock,
			Images:    row.images,
			SellerID:  "seller-1",
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
		}
		if row.section != "" {
			p.Section = &api.Ref{ID: row.section}
		}
		if row.typ != "" {
			p.Type = &api.Ref{ID: row.typ}
		}
		s.products = append(s.products, p)
	}

	demo := &api.User{
		ID:      "usr-demo",
		Name:    "Asha",
		Surname: "Borah",
		Gender:  "female",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Addresses: []api.Address{{
			ID:          "adr-demo",
			Area:        "Zoo Road",
			City:        "Guwahati",
			State:       "Assam",
			Pincode:     "781024",
			AddressType: "Home",
		}},
	}
	s.users = []*api.User{demo}
	s.orders = nil

	out := *demo
	out.Addresses = append([]api.Address(nil), demo.Addresses...)
	return out
}
