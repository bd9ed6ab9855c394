package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/catalog"
	"github.com/totehq/tote/internal/fakeapi"
	"github.com/totehq/tote/internal/kv"
)

type recordingPlacer struct {
	calls int
}

func (r *recordingPlacer) PlaceOrder(context.Context, api.OrderRequest) (api.OrderResponse, error) {
	r.calls++
	return api.OrderResponse{}, nil
}

func TestPlace_PreconditionsRejectBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	shirt := catalog.Product{ID: "x", Title: "Shirt", Price: 500}

	tests := []struct {
		name    string
		setup   func(store kv.Store, cat *catalog.Catalog)
		wantErr error
	}{
		{
			name:    "no user id",
			setup:   func(kv.Store, *catalog.Catalog) {},
			wantErr: ErrNoUser,
		},
		{
			name: "no address id",
			setup: func(store kv.Store, cat *catalog.Catalog) {
				_ = kv.SetJSON(ctx, store, kv.KeyUserID, "u1")
				_ = cat.AddToCart(ctx, shirt, "M", 1)
			},
			wantErr: ErrNoAddress,
		},
		{
			name: "empty cart",
			setup: func(store kv.Store, cat *catalog.Catalog) {
				_ = kv.SetJSON(ctx, store, kv.KeyUserID, "u1")
				_ = kv.SetJSON(ctx, store, kv.KeyAddressID, "a1")
			},
			wantErr: ErrEmptyCart,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kv.NewMemory()
			cat := catalog.New(ctx, store, nil)
			tt.setup(store, cat)
			placer := &recordingPlacer{}

			_, err := New(placer, cat, store, nil).Place(ctx)
			require.ErrorIs(t, err, tt.wantErr)
			require.Zero(t, placer.calls)
		})
	}
}

func TestPlace_CartEmptyAndNoUserLeavesCartEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	cat := catalog.New(ctx, store, nil)
	placer := &recordingPlacer{}

	_, err := New(placer, cat, store, nil).Place(ctx)
	require.ErrorIs(t, err, ErrNoUser)
	require.Empty(t, cat.Cart())
	require.Zero(t, placer.calls)
}

type checkoutFixture struct {
	srv   *fakeapi.Server
	store kv.Store
	cat   *catalog.Catalog
	svc   *Service
}

func newCheckoutFixture(t *testing.T) checkoutFixture {
	t.Helper()
	ctx := context.Background()
	srv := fakeapi.New(nil)
	user := srv.Seed()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	client, err := api.NewClient(ts.URL, 2*time.Second, nil)
	require.NoError(t, err)

	store := kv.NewMemory()
	require.NoError(t, kv.SetJSON(ctx, store, kv.KeyUserID, user.ID))
	require.NoError(t, kv.SetJSON(ctx, store, kv.KeyAddressID, user.Addresses[0].ID))

	cat := catalog.New(ctx, store, nil)
	products, err := client.FetchProducts(ctx)
	require.NoError(t, err)
	require.NoError(t, cat.SetProducts(ctx, products))
	p, ok := cat.Product("prd-01")
	require.True(t, ok)
	require.NoError(t, cat.AddToCart(ctx, p, "L", 2))

	return checkoutFixture{srv: srv, store: store, cat: cat, svc: New(client, cat, store, nil)}
}

func TestPlace_SuccessClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	resp, err := f.svc.Place(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Order.ID)
	require.Empty(t, f.cat.Cart())

	orders := f.srv.Orders()
	require.Len(t, orders, 1)
	require.Equal(t, CODPayment, orders[0].Payment)
	require.Equal(t, 2, orders[0].Items[0].Quantity)
	require.Equal(t, "L", orders[0].Items[0].Size)
}

// addingPlacer adds another line to the cart while the order is in flight.
type addingPlacer struct {
	cat  *catalog.Catalog
	late catalog.Product
	sent api.OrderRequest
}

func (a *addingPlacer) PlaceOrder(ctx context.Context, order api.OrderRequest) (api.OrderResponse, error) {
	a.sent = order
	if err := a.cat.AddToCart(ctx, a.late, "S", 1); err != nil {
		return api.OrderResponse{}, err
	}
	return api.OrderResponse{Message: "ok", Order: api.Order{ID: "ord-1"}}, nil
}

func TestPlace_KeepsLinesAddedDuringOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	late, ok := f.cat.Product("prd-02")
	require.True(t, ok)
	placer := &addingPlacer{cat: f.cat, late: late}

	_, err := New(placer, f.cat, f.store, nil).Place(context.Background())
	require.NoError(t, err)
	require.Len(t, placer.sent.Items, 1)

	cart := f.cat.Cart()
	require.Len(t, cart, 1)
	require.Equal(t, "prd-02", cart[0].ProductID)
	require.Equal(t, "S", cart[0].Size)
}

func TestPlace_FailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.srv.FailNext(http.MethodPost, "/api/orders", http.StatusInternalServerError, 1)

	_, err := f.svc.Place(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to place order (500)")
	require.Len(t, f.cat.Cart(), 1)
	require.Empty(t, f.srv.Orders())
}

// Known limitation: nothing deduplicates a resubmitted order.
func TestPlace_ResubmissionCreatesSecondOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	snapshot := BuildOrder("usr-demo", "adr-demo", f.cat.Cart())

	_, err := f.svc.Place(ctx)
	require.NoError(t, err)

	// A client that timed out and retries the same payload.
	client, ok := f.svc.backend.(*api.Client)
	require.True(t, ok)
	_, err = client.PlaceOrder(ctx, snapshot)
	require.NoError(t, err)

	require.Len(t, f.srv.Orders(), 2)
}
