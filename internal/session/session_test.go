package session

import (
	"context"
	"testing"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/kv"
)

func TestLoad_TrustsCachedUserWithoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	// Any cached blob becomes the session; there is no signature to check.
	_ = kv.SetJSON(ctx, store, kv.KeyUser, api.User{ID: "forged", Name: "Mallory"})

	s := Load(ctx, store, nil)
	u, ok := s.User()
	if !ok || u.ID != "forged" {
		t.Fatalf("User = %+v ok %v, want cached forged user", u, ok)
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	s := Load(context.Background(), kv.NewMemory(), nil)
	if _, ok := s.User(); ok {
		t.Fatalf("User present on empty store")
	}
}

func TestSaveUser_MirrorsToStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := Load(ctx, store, nil)
	if err := s.SaveUser(ctx, api.User{ID: "u1", Name: "Asha"}); err != nil {
		t.Fatalf("SaveUser returned error: %v", err)
	}
	var cached api.User
	if ok, _ := kv.GetJSON(ctx, store, kv.KeyUser, &cached); !ok || cached.ID != "u1" {
		t.Fatalf("cached user = %+v", cached)
	}
}

func TestUpdateAddress_UpsertsByID(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, kv.NewMemory(), nil)
	_ = s.SaveUser(ctx, api.User{ID: "u1", Addresses: []api.Address{
		{ID: "a1", City: "Guwahati"},
		{ID: "a2", City: "Shillong"},
	}})

	_ = s.UpdateAddress(ctx, api.Address{ID: "a1", City: "Tezpur"})
	_ = s.UpdateAddress(ctx, api.Address{ID: "a3", City: "Imphal"})

	u, _ := s.User()
	got := make([]string, len(u.Addresses))
	for i, a := range u.Addresses {
		got[i] = a.ID + ":" + a.City
	}
	want := []string{"a1:Tezpur", "a2:Shillong", "a3:Imphal"}
	if len(got) != len(want) {
		t.Fatalf("addresses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("addresses = %v, want %v", got, want)
		}
	}
}

func TestUpsertAddress_DoesNotMutateInput(t *testing.T) {
	in := []api.Address{{ID: "a1", City: "Aizawl"}}
	out := UpsertAddress(in, api.Address{ID: "a1", City: "Kohima"})
	if in[0].City != "Aizawl" {
		t.Fatalf("input mutated: %+v", in)
	}
	if out[0].City != "Kohima" {
		t.Fatalf("output = %+v", out)
	}
}

func TestRemoveAddress(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, kv.NewMemory(), nil)
	_ = s.SaveUser(ctx, api.User{ID: "u1", Addresses: []api.Address{{ID: "a1"}, {ID: "a2"}}})
	_ = s.RemoveAddress(ctx, "a1")
	u, _ := s.User()
	if len(u.Addresses) != 1 || u.Addresses[0].ID != "a2" {
		t.Fatalf("addresses = %+v, want [a2]", u.Addresses)
	}
}

func TestLogout_ClearsUserAndPointers(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := Load(ctx, store, nil)
	_ = s.SaveUser(ctx, api.User{ID: "u1"})
	_ = s.SetActiveUserID(ctx, "u1")
	_ = s.SelectAddress(ctx, "a1")
	_ = kv.SetJSON(ctx, store, kv.KeyCartItems, []string{"keep"})

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := s.User(); ok {
		t.Fatalf("user still present after Logout")
	}
	for _, key := range []string{kv.KeyUser, kv.KeyUserID, kv.KeyAddressID} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("%s still stored after Logout", key)
		}
	}
	if _, ok, _ := store.Get(ctx, kv.KeyCartItems); !ok {
		t.Fatalf("Logout removed cartItems")
	}
}

func TestPointers_IndependentOfUserBlob(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, kv.NewMemory(), nil)
	_ = s.SetActiveUserID(ctx, "u9")
	_ = s.SelectAddress(ctx, "a9")

	if id, _ := s.ActiveUserID(ctx); id != "u9" {
		t.Fatalf("ActiveUserID = %q, want u9", id)
	}
	if id, _ := s.SelectedAddressID(ctx); id != "a9" {
		t.Fatalf("SelectedAddressID = %q, want a9", id)
	}
	if _, ok := s.User(); ok {
		t.Fatalf("pointers created a user record")
	}
	_ = s.SelectAddress(ctx, "")
	if id, _ := s.SelectedAddressID(ctx); id != "" {
		t.Fatalf("SelectedAddressID after clear = %q", id)
	}
}
