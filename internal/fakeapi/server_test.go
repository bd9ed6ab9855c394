package fakeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/totehq/tote/internal/api"
)

func newClient(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	srv := New(nil)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	c, err := api.NewClient(ts.URL, 2*time.Second, nil)
	require.NoError(t, err)
	return srv, c
}

func TestSeededCatalogPopulatesReferences(t *testing.T) {
	srv, c := newClient(t)
	srv.Seed()
	ctx := context.Background()

	products, err := c.FetchProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 8)
	require.Equal(t, "Men's Fashion", products[0].SectionName())
	require.Equal(t, "Shirts", products[0].TypeName())

	sections, err := c.FetchSections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	types, err := c.FetchTypes(ctx)
	require.NoError(t, err)
	require.Equal(t, "sec-men", types[0].Section.ID)

	one, err := c.FetchProduct(ctx, "prd-04")
	require.NoError(t, err)
	require.Equal(t, "Block Print Kurta", one.Title)

	_, err = c.FetchProduct(ctx, "missing")
	require.True(t, api.IsStatus(err, http.StatusNotFound))
}

func TestAdminRoutes(t *testing.T) {
	_, c := newClient(t)
	ctx := context.Background()

	sec, err := c.CreateSection(ctx, "Footwear", []string{"f.jpg"})
	require.NoError(t, err)
	require.NotEmpty(t, sec.ID)

	typ, err := c.CreateType(ctx, "Boots", sec.ID, nil)
	require.NoError(t, err)
	require.Equal(t, sec.ID, typ.Section.ID)

	_, err = c.CreateType(ctx, "Orphans", "nope", nil)
	require.True(t, api.IsStatus(err, http.StatusBadRequest))

	require.NoError(t, c.SetSectionImage(ctx, sec.ID, "new.jpg"))
	require.NoError(t, c.SetTypeImage(ctx, typ.ID, "boot.jpg"))
	require.Error(t, c.SetTypeImage(ctx, "nope", "x.jpg"))

	p, err := c.CreateProduct(ctx, api.ProductInput{Title: "Chelsea Boot", Price: 3000, Stock: 4, Section: sec.ID, Type: typ.ID})
	require.NoError(t, err)
	require.Equal(t, "Boots", p.TypeName())
	require.False(t, p.ParsedCreatedAt().IsZero())

	updated, err := c.UpdateProduct(ctx, p.ID, api.ProductInput{Title: "Chelsea Boot II", Price: 2800})
	require.NoError(t, err)
	require.Equal(t, "Chelsea Boot II", updated.Title)
	require.Equal(t, p.CreatedAt, updated.CreatedAt)

	_, err = c.CreateProduct(ctx, api.ProductInput{Price: 10})
	require.True(t, api.IsStatus(err, http.StatusBadRequest))

	sections, err := c.FetchSections(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"new.jpg"}, sections[0].Images)
}

func TestUserAndAddressRoutes(t *testing.T) {
	srv, c := newClient(t)
	ctx := context.Background()

	u, err := c.CreateUser(ctx, api.Profile{Name: "Lal", Surname: "Ching", Gender: "male", Email: "lal@example.com", Phone: "1"})
	require.NoError(t, err)

	_, err = c.CreateUser(ctx, api.Profile{Name: "Dup", Email: "LAL@example.com"})
	require.True(t, api.IsStatus(err, http.StatusConflict))

	logged, err := c.Login(ctx, "lal@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, logged.ID)

	_, err = c.Login(ctx, "ghost@example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "User not found")

	addr, err := c.CreateAddress(ctx, u.ID, api.Address{Area: "Dawrpui", City: "Aizawl", State: "Mizoram", Pincode: "796001", AddressType: "Home"})
	require.NoError(t, err)
	require.NotEmpty(t, addr.ID)

	addr.City = "Lunglei"
	edited, err := c.UpdateAddress(ctx, u.ID, addr)
	require.NoError(t, err)
	require.Equal(t, "Lunglei", edited.City)

	require.NoError(t, c.DeleteAddress(ctx, u.ID, addr.ID))
	require.Empty(t, srv.Users()[0].Addresses)
}

func TestOrdersAreNotDeduplicated(t *testing.T) {
	srv, c := newClient(t)
	user := srv.Seed()
	ctx := context.Background()

	req := api.OrderRequest{
		User:    user.ID,
		Items:   []api.OrderItem{{ProductID: "prd-01", Title: "Oxford Cotton Shirt", Price: 899, Quantity: 1}},
		Address: user.Addresses[0].ID,
		Payment: api.Payment{Method: "cod", Status: "pending"},
	}
	first, err := c.PlaceOrder(ctx, req)
	require.NoError(t, err)
	second, err := c.PlaceOrder(ctx, req)
	require.NoError(t, err)
	require.NotEqual(t, first.Order.ID, second.Order.ID)
	require.Len(t, srv.Orders(), 2)

	req.Address = "someone-else"
	_, err = c.PlaceOrder(ctx, req)
	require.True(t, api.IsStatus(err, http.StatusBadRequest))
}

func TestFailNext(t *testing.T) {
	srv, c := newClient(t)
	srv.Seed()
	srv.FailNext(http.MethodGet, "/api/products", http.StatusServiceUnavailable, 1)

	_, err := c.FetchProducts(context.Background())
	require.True(t, api.IsStatus(err, http.StatusServiceUnavailable))

	products, err := c.FetchProducts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)
}
