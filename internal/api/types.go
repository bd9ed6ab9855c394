package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const backendTimestampLayout = "2006-01-02 15:04:05"

// Ref is a reference to a section or type. The backend sends it either as a
// bare id string or as a populated object.
type Ref struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name,omitempty"`
	Images []string `json:"images,omitempty"`
}

// UnmarshalJSON accepts "id", {"_id": ...} and null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var obj struct {
		ID     string   `json:"_id"`
		AltID  string   `json:"id"`
		Name   string   `json:"name"`
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	*r = Ref{ID: firstNonEmpty(obj.ID, obj.AltID), Name: obj.Name, Images: obj.Images}
	return nil
}

// MarshalJSON writes a bare id when the reference is not populated.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" && len(r.Images) == 0 {
		return json.Marshal(r.ID)
	}
	type populated Ref
	return json.Marshal(populated(r))
}

// Product mirrors a catalog entry as served by /api/products.
type Product struct {
	ID        string   `json:"_id"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Category  string   `json:"category"`
	Rating    float64  `json:"rating"`
	Stock     int      `json:"stock"`
	Images    []string `json:"images"`
	Section   *Ref     `json:"section,omitempty"`
	Type      *Ref     `json:"types,omitempty"`
	SellerID  string   `json:"sellerId,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identifier.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		AltID string          `json:"id"`
		Stock json.RawMessage `json:"stock"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product(raw.plain)
	p.ID = firstNonEmpty(p.ID, raw.AltID)
	stock, err := parseLooseInt(raw.Stock)
	if err != nil {
		return fmt.Errorf("product %s stock: %w", p.ID, err)
	}
	p.Stock = stock
	return nil
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (p Product) ParsedCreatedAt() time.Time {
	return parseTime(p.CreatedAt)
}

// SectionName returns the populated section name, or "".
func (p Product) SectionName() string {
	if p.Section == nil {
		return ""
	}
	return p.Section.Name
}

// TypeName returns the populated type name, or "".
func (p Product) TypeName() string {
	if p.Type == nil {
		return ""
	}
	return p.Type.Name
}

// ProductListResponse mirrors GET /api/products.
type ProductListResponse struct {
	Data []Product `json:"data"`
}

// ProductResponse mirrors GET /api/products/:id.
type ProductResponse struct {
	Data Product `json:"data"`
}

// ProductInput is the body of create and update product requests. Section
// and Type carry ids.
type ProductInput struct {
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
	Rating   float64  `json:"rating"`
	SellerID string   `json:"sellerId"`
	Stock    int      `json:"stock"`
	Section  string   `json:"section"`
	Type     string   `json:"types"`
	Images   []string `json:"images"`
}

// Section is a top-level catalog grouping.
type Section struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

// SectionListResponse mirrors GET /sections.
type SectionListResponse struct {
	Sections []Section `json:"sections"`
}

// Type is a sub-grouping within a section.
type Type struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Section Ref      `json:"section"`
	Images  []string `json:"images"`
}

// TypeListResponse mirrors GET /types.
type TypeListResponse struct {
	Types []Type `json:"types"`
}

// Address belongs to exactly one user.
type Address struct {
	ID             string     `json:"_id,omitempty"`
	Area           string     `json:"area"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Pincode        FlexString `json:"pincode"`
	Landmark       string     `json:"landmark,omitempty"`
	AlternatePhone string     `json:"alternatePhone,omitempty"`
	AddressType    string     `json:"addressType"`
}

// AddressResponse mirrors the address endpoints.
type AddressResponse struct {
	Address Address `json:"address"`
}

// User is a profile record with its addresses.
type User struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Gender    string    `json:"gender"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses,omitempty"`
}

// FullName joins name and surname.
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// Profile is the body of POST /api/users.
type Profile struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Gender  string `json:"gender"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// UserResponse mirrors POST /api/users.
type UserResponse struct {
	User User `json:"user"`
}

// LoginResponse mirrors POST /api/auth/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OrderItem is one cart line snapshot inside an order.
type OrderItem struct {
	ProductID string  `json:"_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
}

// Payment describes how an order is paid.
type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	User    string      `json:"user"`
	Items   []OrderItem `json:"item"`
	Address string      `json:"address"`
	Payment Payment     `json:"payment"`
}

// Order is the confirmation returned by the backend.
type Order struct {
	ID      string      `json:"_id"`
	User    string      `json:"user"`
	Items   []OrderItem `json:"item"`
	Address string      `json:"address"`
	Payment Payment     `json:"payment"`
}

// OrderResponse mirrors POST /api/orders.
type OrderResponse struct {
	Message string `json:"message,omitempty"`
	Order   Order  `json:"order"`
}

// FlexString decodes from either a JSON string or a JSON number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func parseLooseInt(raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, nil
	}
	var s FlexString
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
