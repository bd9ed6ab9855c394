// Package kv is the persistence port for client-side state: a flat
// namespace of JSON blobs (cart, wishlist, overlay, user, pointers).
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys used by the containers.
const (
	KeyCartItems      = "cartItems"
	KeyWishlist       = "wishlist"
	KeyProductOverlay = "productOverlay"
	KeyUser           = "user"
	KeyUserID         = "userId"
	KeyAddressID      = "addressId"
)

// Store persists opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, keys ...string) error
}

// GetJSON decodes the value stored at key into dest. It reports false when
// the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// GetString reads a plain string pointer such as userId. Values written by
// SetJSON (quoted) and raw values are both accepted.
func GetString(ctx context.Context, s Store, key string) (string, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return "", err
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}
	return string(raw), nil
}
