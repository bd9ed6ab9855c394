// Package ui provides the Bubble Tea storefront for tote.
//
// # Views
//
//   - Home: sections with their types (the derived section->type map);
//     enter shops the selected section.
//   - Products: the catalog list with search (/), facet filters (f), sort
//     cycling (s) and a preview pane on wide terminals. Rows flag free
//     delivery (price above ₹250) and low stock (under 5 left).
//   - Product page: size selection, display quantity, add to cart and
//     wishlist toggle. Adding without a size is refused with a warning.
//   - Cart: quantity +/-, remove, move to wishlist, price details and COD
//     order placement.
//   - Wishlist: remove, or add to cart in the chosen size.
//   - Profile: login by email, address list, the delivery address pointer,
//     address deletion and logout.
//
// A failed product fetch replaces the screen with an error view; r retries.
//
// # Data Flow
//
// Products, sections and types are three independent fetch.Resource values
// started from Init. Each resource call runs inside a tea.Cmd and comes back
// as a message; the resource drops results from superseded calls, so only
// the latest response reaches the catalog. The product page refreshes its
// product from GET /api/products/:id through a fourth resource.
//
// Cart and wishlist mutations call the catalog synchronously from Update,
// since they only touch local state. Login, address deletion and order
// placement go to the backend and report back through messages.
//
// Theme and sort changes are written to the prefs file when a path is set.
package ui
