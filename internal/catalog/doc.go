// Package catalog is the client-side source of truth for the product
// catalog and the user's selections.
//
// Products, sections and types come from the backend and are replaced
// wholesale on every fetch; the three lists arrive independently and the
// section->type map is rebuilt whenever sections or types change. The cart
// (lines keyed by product id and size) and the wishlist (a set of ids) are
// collections of their own, persisted through kv after every mutation. A
// per-product overlay (wishlist flag, cart flag, display quantity) is also
// persisted so the display quantity survives restarts.
//
// Search, Filter and SortProducts are pure functions; View composes them
// over the current product list.
package catalog
