// Package checkout places cash-on-delivery orders for the current cart.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/catalog"
	"github.com/totehq/tote/internal/kv"
)

var (
	ErrNoUser    = errors.New("please log in before placing an order")
	ErrNoAddress = errors.New("please select a delivery address")
	ErrEmptyCart = errors.New("your cart is empty")
)

// Payment sent with every order.
var CODPayment = api.Payment{Method: "cod", Status: "pending"}

// OrderPlacer submits orders.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order api.OrderRequest) (api.OrderResponse, error)
}

// Service places orders from the catalog's cart.
type Service struct {
	backend OrderPlacer
	catalog *catalog.Catalog
	store   kv.Store
	logger  *zap.Logger
}

// New returns a Service. The user and address ids are read from store, not
// from the session's user record.
func New(backend OrderPlacer, cat *catalog.Catalog, store kv.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, catalog: cat, store: store, logger: logger}
}

// BuildOrder snapshots the cart lines into an order request.
func BuildOrder(userID, addressID string, cart []catalog.CartItem) api.OrderRequest {
	items := make([]api.OrderItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, api.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
		})
	}
	return api.OrderRequest{User: userID, Items: items, Address: addressID, Payment: CODPayment}
}

// Place validates the preconditions, submits one order and removes the
// ordered lines from the cart on success. On failure the cart is left as it
// was. No idempotency key is sent, so retrying after a timeout may create a
// second order.
func (s *Service) Place(ctx context.Context) (api.OrderResponse, error) {
	userID, err := kv.GetString(ctx, s.store, kv.KeyUserID)
	if err != nil {
		return api.OrderResponse{}, fmt.Errorf("read user id: %w", err)
	}
	if userID == "" {
		return api.OrderResponse{}, ErrNoUser
	}
	addressID, err := kv.GetString(ctx, s.store, kv.KeyAddressID)
	if err != nil {
		return api.OrderResponse{}, fmt.Errorf("read address id: %w", err)
	}
	if addressID == "" {
		return api.OrderResponse{}, ErrNoAddress
	}
	cart := s.catalog.Cart()
	if len(cart) == 0 {
		return api.OrderResponse{}, ErrEmptyCart
	}

	order := BuildOrder(userID, addressID, cart)
	resp, err := s.backend.PlaceOrder(ctx, order)
	if err != nil {
		s.logger.Warn("place order failed", zap.String("user_id", userID), zap.Error(err))
		var se *api.StatusError
		if errors.As(err, &se) {
			return api.OrderResponse{}, fmt.Errorf("failed to place order (%d): %w", se.Code, err)
		}
		return api.OrderResponse{}, fmt.Errorf("failed to place order: %w", err)
	}
	// Only the ordered lines leave the cart; lines added while the order was
	// in flight stay.
	if err := s.catalog.RemoveCartLines(ctx, cart); err != nil {
		s.logger.Warn("remove ordered lines", zap.Error(err))
	}
	s.logger.Info("order placed",
		zap.String("order_id", resp.Order.ID),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", catalog.Summarize(cart).Total))
	return resp, nil
}
