// Package fakeapi is an in-memory implementation of the storefront backend.
// It serves the same routes and payload shapes as the real service and is
// used by tests and by `tote demo`.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
)

// Server is an http.Handler holding the backend state.
type Server struct {
	mu       sync.Mutex
	logger   *zap.Logger
	router   chi.Router
	products []api.Product
	sections []api.Section
	types    []api.Type
	users    []*api.User
	orders   []api.Order
	failures map[string]int
}

// New returns an empty Server.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger, failures: make(map[string]int)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.injectFailures)

	r.Get("/api/products", s.listProducts)
	r.Get("/api/products/{id}", s.getProduct)
	r.Post("/api/products/{id}", s.updateProduct)
	r.Put("/api/products/{id}", s.updateProduct)
	r.Post("/api/create-products", s.createProduct)

	r.Get("/sections", s.listSections)
	r.Post("/sections", s.createSection)
	r.Post("/sections/{id}/image", s.setSectionImage)
	r.Get("/types", s.listTypes)
	r.Post("/types", s.createType)
	r.Post("/types/{id}/image", s.setTypeImage)

	r.Post("/api/auth/login", s.login)
	r.Post("/api/users", s.createUser)
	r.Route("/api/users/{userID}/addresses", func(r chi.Router) {
		r.Post("/", s.createAddress)
		r.Post("/{id}", s.updateAddress)
		r.Put("/{id}", s.updateAddress)
		r.Delete("/{id}", s.deleteAddress)
	})
	r.Post("/api/orders", s.placeOrder)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// FailNext makes the next n requests to method+path answer with code.
func (s *Server) FailNext(method, path string, code, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = n
	s.failures[method+" "+path+"#code"] = code
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		n := s.failures[key]
		code := s.failures[key+"#code"]
		if n > 0 {
			s.failures[key] = n - 1
		}
		s.mu.Unlock()
		if n > 0 {
			respondError(w, code, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Orders returns the orders received so far.
func (s *Server) Orders() []api.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.orders)
}

// Users returns copies of the registered users.
func (s *Server) Users() []api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.User, len(s.users))
	for i, u := range s.users {
		out[i] = *u
		out[i].Addresses = slices.Clone(u.Addresses)
	}
	return out
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]api.Product, len(s.products))
	for i, p := range s.products {
		out[i] = s.populateLocked(p)
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.ProductListResponse{Data: out})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndexLocked(id)
	if i < 0 {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, api.ProductResponse{Data: s.populateLocked(s.products[i])})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in api.ProductInput
	if !decode(w, r, &in) {
		return
	}
	if msg := validateProduct(in); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	s.mu.Lock()
	p := productFromInput(uuid.NewString(), in)
	p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.products = append(s.products, p)
	out := s.populateLocked(p)
	s.mu.Unlock()
	s.logger.Debug("product created", zap.String("id", p.ID))
	respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "Product created",
		"products": []api.Product{out},
	})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in api.ProductInput
	if !decode(w, r, &in) {
		return
	}
	if msg := validateProduct(in); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndexLocked(id)
	if i < 0 {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	p := productFromInput(id, in)
	p.CreatedAt = s.products[i].CreatedAt
	s.products[i] = p
	respondJSON(w, http.StatusOK, api.ProductResponse{Data: s.populateLocked(p)})
}

func (s *Server) listSections(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := slices.Clone(s.sections)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.SectionListResponse{Sections: out})
}

func (s *Server) createSection(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name   string   `json:"name"`
		Images []string `json:"images"`
	}
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		respondError(w, http.StatusBadRequest, "Section name is required")
		return
	}
	sec := api.Section{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Images: in.Images}
	s.mu.Lock()
	s.sections = append(s.sections, sec)
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, sec)
}

func (s *Server) setSectionImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Image string `json:"image"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.sections, func(sec api.Section) bool { return sec.ID == id })
	if i < 0 {
		respondError(w, http.StatusNotFound, "Section not found")
		return
	}
	s.sections[i].Images = []string{in.Image}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Image updated"})
}

func (s *Server) listTypes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := slices.Clone(s.types)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.TypeListResponse{Types: out})
}

func (s *Server) createType(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string   `json:"name"`
		Section string   `json:"section"`
		Images  []string `json:"images"`
	}
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" || in.Section == "" {
		respondError(w, http.StatusBadRequest, "Type name and section are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.ContainsFunc(s.sections, func(sec api.Section) bool { return sec.ID == in.Section }) {
		respondError(w, http.StatusBadRequest, "Unknown section")
		return
	}
	t := api.Type{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Section: api.Ref{ID: in.Section}, Images: in.Images}
	s.types = append(s.types, t)
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) setTypeImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Image string `json:"image"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.types, func(t api.Type) bool { return t.ID == id })
	if i < 0 {
		respondError(w, http.StatusNotFound, "Type not found")
		return
	}
	s.types[i].Images = []string{in.Image}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Image updated"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	u := s.userByEmailLocked(in.Email)
	var out api.User
	if u != nil {
		out = *u
		out.Addresses = slices.Clone(u.Addresses)
	}
	s.mu.Unlock()
	if u == nil {
		respondJSON(w, http.StatusNotFound, api.LoginResponse{Success: false, Error: "User not found"})
		return
	}
	respondJSON(w, http.StatusOK, api.LoginResponse{Success: true, User: &out})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in api.Profile
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" || in.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByEmailLocked(in.Email) != nil {
		respondError(w, http.StatusConflict, "Email already registered")
		return
	}
	u := &api.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Surname:   in.Surname,
		Gender:    in.Gender,
		Email:     in.Email,
		Phone:     in.Phone,
		Addresses: []api.Address{},
	}
	s.users = append(s.users, u)
	respondJSON(w, http.StatusCreated, api.UserResponse{User: *u})
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	var in api.Address
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userLocked(chi.URLParam(r, "userID"))
	if u == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	in.ID = uuid.NewString()
	u.Addresses = append(u.Addresses, in)
	respondJSON(w, http.StatusCreated, api.AddressResponse{Address: in})
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	var in api.Address
	if !decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userLocked(chi.URLParam(r, "userID"))
	if u == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	i := slices.IndexFunc(u.Addresses, func(a api.Address) bool { return a.ID == id })
	if i < 0 {
		respondError(w, http.StatusNotFound, "Address not found")
		return
	}
	in.ID = id
	u.Addresses[i] = in
	respondJSON(w, http.StatusOK, api.AddressResponse{Address: in})
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userLocked(chi.URLParam(r, "userID"))
	if u == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	i := slices.IndexFunc(u.Addresses, func(a api.Address) bool { return a.ID == id })
	if i < 0 {
		respondError(w, http.StatusNotFound, "Address not found")
		return
	}
	u.Addresses = slices.Delete(u.Addresses, i, i+1)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Address deleted"})
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in api.OrderRequest
	if !decode(w, r, &in) {
		return
	}
	if len(in.Items) == 0 {
		respondError(w, http.StatusBadRequest, "Order has no items")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userLocked(in.User)
	if u == nil {
		respondError(w, http.StatusBadRequest, "Unknown user")
		return
	}
	if !slices.ContainsFunc(u.Addresses, func(a api.Address) bool { return a.ID == in.Address }) {
		respondError(w, http.StatusBadRequest, "Unknown address")
		return
	}
	order := api.Order{
		ID:      uuid.NewString(),
		User:    in.User,
		Items:   in.Items,
		Address: in.Address,
		Payment: in.Payment,
	}
	s.orders = append(s.orders, order)
	s.logger.Info("order placed", zap.String("order_id", order.ID), zap.Int("items", len(order.Items)))
	respondJSON(w, http.StatusCreated, api.OrderResponse{Message: "Order placed successfully", Order: order})
}

func (s *Server) populateLocked(p api.Product) api.Product {
	if p.Section != nil {
		if i := slices.IndexFunc(s.sections, func(sec api.Section) bool { return sec.ID == p.Section.ID }); i >= 0 {
			sec := s.sections[i]
			p.Section = &api.Ref{ID: sec.ID, Name: sec.Name, Images: sec.Images}
		}
	}
	if p.Type != nil {
		if i := slices.IndexFunc(s.types, func(t api.Type) bool { return t.ID == p.Type.ID }); i >= 0 {
			t := s.types[i]
			p.Type = &api.Ref{ID: t.ID, Name: t.Name, Images: t.Images}
		}
	}
	return p
}

func (s *Server) productIndexLocked(id string) int {
	return slices.IndexFunc(s.products, func(p api.Product) bool { return p.ID == id })
}

func (s *Server) userLocked(id string) *api.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) userByEmailLocked(email string) *api.User {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return u
		}
	}
	return nil
}

func validateProduct(in api.ProductInput) string {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return "Title is required"
	case in.Price < 0:
		return "Price must not be negative"
	case in.Rating < 0 || in.Rating > 5:
		return "Rating must be between 0 and 5"
	case in.Stock < 0:
		return "Stock must not be negative"
	}
	return ""
}

func productFromInput(id string, in api.ProductInput) api.Product {
	p := api.Product{
		ID:       id,
		Title:    strings.TrimSpace(in.Title),
		Price:    in.Price,
		Category: in.Category,
		Rating:   in.Rating,
		Stock:    in.Stock,
		Images:   in.Images,
		SellerID: in.SellerID,
	}
	if in.Section != "" {
		p.Section = &api.Ref{ID: in.Section}
	}
	if in.Type != "" {
		p.Type = &api.Ref{ID: in.Type}
	}
	return p
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
