package kv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "nested", "state.toml")),
		"redis":  NewRedisFromClient(client, ""),
	}
}

func TestStores_RoundTripAndRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, KeyUser); err != nil || ok {
				t.Fatalf("Get on empty store = ok %v err %v, want absent", ok, err)
			}

			type line struct {
				ProductID string `json:"productId"`
				Quantity  int    `json:"quantity"`
			}
			want := []line{{ProductID: "p1", Quantity: 2}}
			if err := SetJSON(ctx, s, KeyCartItems, want); err != nil {
				t.Fatalf("SetJSON returned error: %v", err)
			}
			if err := SetJSON(ctx, s, KeyUserID, "u1"); err != nil {
				t.Fatalf("SetJSON returned error: %v", err)
			}

			var got []line
			ok, err := GetJSON(ctx, s, KeyCartItems, &got)
			if err != nil || !ok {
				t.Fatalf("GetJSON = ok %v err %v", ok, err)
			}
			if len(got) != 1 || got[0] != want[0] {
				t.Fatalf("GetJSON = %#v, want %#v", got, want)
			}

			id, err := GetString(ctx, s, KeyUserID)
			if err != nil || id != "u1" {
				t.Fatalf("GetString = %q, %v; want u1", id, err)
			}

			if err := s.Remove(ctx, KeyUserID, KeyAddressID); err != nil {
				t.Fatalf("Remove returned error: %v", err)
			}
			if _, ok, _ := s.Get(ctx, KeyUserID); ok {
				t.Fatalf("userId still present after Remove")
			}
			if _, ok, _ := s.Get(ctx, KeyCartItems); !ok {
				t.Fatalf("cartItems removed unexpectedly")
			}
		})
	}
}

func TestGetString_AcceptsRawValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, KeyAddressID, []byte("a42"))
	got, err := GetString(ctx, m, KeyAddressID)
	if err != nil || got != "a42" {
		t.Fatalf("GetString = %q, %v; want a42", got, err)
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.toml")

	if err := NewFile(path).Set(ctx, KeyWishlist, []byte(`["a","b"]`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	raw, ok, err := NewFile(path).Get(ctx, KeyWishlist)
	if err != nil || !ok || string(raw) != `["a","b"]` {
		t.Fatalf("Get = %q ok %v err %v", raw, ok, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if !strings.Contains(string(data), "[entries]") {
		t.Fatalf("state file missing entries table:\n%s", data)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".state-*"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestFile_CorruptDocumentIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	if err := os.WriteFile(path, []byte("[entries\nbroken"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	if _, _, err := NewFile(path).Get(context.Background(), KeyUser); err == nil {
		t.Fatalf("Get on corrupt file returned nil error")
	}
}

func TestRedis_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), mr.Addr(), "shop:")
	if err != nil {
		t.Fatalf("NewRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	if err := r.Set(context.Background(), KeyUser, []byte(`{}`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if !mr.Exists("shop:user") {
		t.Fatalf("key shop:user not found in redis; keys = %v", mr.Keys())
	}
}

func TestNewRedis_UnreachableAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedis(context.Background(), addr, ""); err == nil {
		t.Fatalf("NewRedis returned nil error for closed server")
	}
}
