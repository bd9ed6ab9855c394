// Package api provides an HTTP client for the storefront REST backend.
//
// # Overview
//
// The backend owns all persistence, authentication and order processing.
// This package only speaks its JSON dialect: it builds requests, decodes
// responses into typed structs and turns non-2xx statuses into errors.
//
// # Architecture
//
//   - client.go: Client, StatusError and one method per endpoint
//   - types.go: wire structures (Product, Section, Type, User, Address, Order)
//
// # Endpoints
//
//	GET    /api/products                        {data: Product[]}
//	GET    /api/products/:id                    {data: Product}
//	POST   /api/create-products                 {products: [...]} or product
//	POST   /api/products/:id                    {data: Product}
//	GET    /sections                            {sections: Section[]}
//	POST   /sections                            section
//	POST   /sections/:id/image                  -
//	GET    /types                               {types: Type[]}
//	POST   /types                               type
//	POST   /types/:id/image                     -
//	POST   /api/auth/login                      {success, user} or {error}
//	POST   /api/users                           {user}
//	POST   /api/users/:userId/addresses         {address}
//	PUT    /api/users/:userId/addresses/:id     {address}
//	DELETE /api/users/:userId/addresses/:id     -
//	POST   /api/orders                          order confirmation
//
// # Wire Quirks
//
// The backend is loose about shapes. Identifiers arrive as "_id" (sometimes
// "id"); section and type references arrive either as a bare id or as a
// populated object; stock and pincode may be numbers or strings. The
// UnmarshalJSON methods in types.go absorb these differences so callers see
// one canonical shape.
//
// # Error Handling
//
//   - Transport errors: "execute request: ..."
//   - Non-2xx statuses: *StatusError, with the backend's {error} text when present
//   - Malformed bodies: "decode response: ..."
//
// A login answered with {success: false} is an error carrying the backend's
// message, or "Login failed" when none is given.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package api
