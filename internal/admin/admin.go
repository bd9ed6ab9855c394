// Package admin manages products, sections and types on the backend.
package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrTypeSection  = errors.New("type does not belong to section")
)

// Backend is the part of the REST API the console needs.
type Backend interface {
	FetchProducts(ctx context.Context) ([]api.Product, error)
	CreateProduct(ctx context.Context, in api.ProductInput) (api.Product, error)
	UpdateProduct(ctx context.Context, id string, in api.ProductInput) (api.Product, error)
	FetchSections(ctx context.Context) ([]api.Section, error)
	CreateSection(ctx context.Context, name string, images []string) (api.Section, error)
	SetSectionImage(ctx context.Context, id, image string) error
	FetchTypes(ctx context.Context) ([]api.Type, error)
	CreateType(ctx context.Context, name, sectionID string, images []string) (api.Type, error)
	SetTypeImage(ctx context.Context, id, image string) error
}

var _ Backend = (*api.Client)(nil)

// Console issues admin calls.
type Console struct {
	backend Backend
	logger  *zap.Logger
}

// New returns a Console.
func New(backend Backend, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{backend: backend, logger: logger}
}

// Row is one line of the product listing.
type Row struct {
	ID       string
	Title    string
	Category string
	Price    float64
	Stock    int
	Section  string
	Type     string
}

// ListProducts returns the dashboard rows. Section and type names fall back
// to the taxonomy lists when the backend sends bare ids.
func (c *Console) ListProducts(ctx context.Context) ([]Row, error) {
	products, err := c.backend.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	sectionNames := map[string]string{}
	typeNames := map[string]string{}
	if sections, err := c.backend.FetchSections(ctx); err == nil {
		for _, s := range sections {
			sectionNames[s.ID] = s.Name
		}
	} else {
		c.logger.Warn("fetch sections for listing", zap.Error(err))
	}
	if types, err := c.backend.FetchTypes(ctx); err == nil {
		for _, t := range types {
			typeNames[t.ID] = t.Name
		}
	} else {
		c.logger.Warn("fetch types for listing", zap.Error(err))
	}

	rows := make([]Row, 0, len(products))
	for _, p := range products {
		row := Row{ID: p.ID, Title: p.Title, Category: p.Category, Price: p.Price, Stock: p.Stock}
		if p.Section != nil {
			row.Section = firstNonEmpty(p.SectionName(), sectionNames[p.Section.ID])
		}
		if p.Type != nil {
			row.Type = firstNonEmpty(p.TypeName(), typeNames[p.Type.ID])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CreateProduct validates and creates a product.
func (c *Console) CreateProduct(ctx context.Context, in api.ProductInput) (api.Product, error) {
	in = normalizeProduct(in)
	if err := ValidateProduct(in); err != nil {
		return api.Product{}, err
	}
	if err := c.checkTypeSection(ctx, in); err != nil {
		return api.Product{}, err
	}
	p, err := c.backend.CreateProduct(ctx, in)
	if err != nil {
		return api.Product{}, fmt.Errorf("create product: %w", err)
	}
	c.logger.Info("product created", zap.String("id", p.ID), zap.String("title", p.Title))
	return p, nil
}

// UpdateProduct validates and updates a product.
func (c *Console) UpdateProduct(ctx context.Context, id string, in api.ProductInput) (api.Product, error) {
	if strings.TrimSpace(id) == "" {
		return api.Product{}, fmt.Errorf("%w: id", ErrMissingField)
	}
	in = normalizeProduct(in)
	if err := ValidateProduct(in); err != nil {
		return api.Product{}, err
	}
	if err := c.checkTypeSection(ctx, in); err != nil {
		return api.Product{}, err
	}
	p, err := c.backend.UpdateProduct(ctx, id, in)
	if err != nil {
		return api.Product{}, fmt.Errorf("update product: %w", err)
	}
	c.logger.Info("product updated", zap.String("id", id))
	return p, nil
}

// CreateSection creates a section.
func (c *Console) CreateSection(ctx context.Context, name string, images []string) (api.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return api.Section{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	s, err := c.backend.CreateSection(ctx, name, images)
	if err != nil {
		return api.Section{}, fmt.Errorf("create section: %w", err)
	}
	return s, nil
}

// SetSectionImage replaces a section's image.
func (c *Console) SetSectionImage(ctx context.Context, id, image string) error {
	if err := requireAll("id", id, "image", image); err != nil {
		return err
	}
	if err := c.backend.SetSectionImage(ctx, id, strings.TrimSpace(image)); err != nil {
		return fmt.Errorf("set section image: %w", err)
	}
	return nil
}

// CreateType creates a type under a section.
func (c *Console) CreateType(ctx context.Context, name, sectionID string, images []string) (api.Type, error) {
	if err := requireAll("name", name, "section", sectionID); err != nil {
		return api.Type{}, err
	}
	t, err := c.backend.CreateType(ctx, strings.TrimSpace(name), sectionID, images)
	if err != nil {
		return api.Type{}, fmt.Errorf("create type: %w", err)
	}
	return t, nil
}

// SetTypeImage replaces a type's image.
func (c *Console) SetTypeImage(ctx context.Context, id, image string) error {
	if err := requireAll("id", id, "image", image); err != nil {
		return err
	}
	if err := c.backend.SetTypeImage(ctx, id, strings.TrimSpace(image)); err != nil {
		return fmt.Errorf("set type image: %w", err)
	}
	return nil
}

// Sections lists sections.
func (c *Console) Sections(ctx context.Context) ([]api.Section, error) {
	return c.backend.FetchSections(ctx)
}

// Types lists types.
func (c *Console) Types(ctx context.Context) ([]api.Type, error) {
	return c.backend.FetchTypes(ctx)
}

// SectionTypes lists the types under sectionID.
func (c *Console) SectionTypes(ctx context.Context, sectionID string) ([]api.Type, error) {
	if err := requireAll("section", sectionID); err != nil {
		return nil, err
	}
	types, err := c.backend.FetchTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch types: %w", err)
	}
	return TypesForSection(types, strings.TrimSpace(sectionID)), nil
}

// checkTypeSection rejects a type chosen outside the product's section.
func (c *Console) checkTypeSection(ctx context.Context, in api.ProductInput) error {
	if in.Section == "" || in.Type == "" {
		return nil
	}
	types, err := c.SectionTypes(ctx, in.Section)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(types, func(t api.Type) bool { return t.ID == in.Type }) {
		return fmt.Errorf("%w: %s is not under %s", ErrTypeSection, in.Type, in.Section)
	}
	return nil
}

// TypesForSection keeps the types whose section reference is sectionID.
func TypesForSection(types []api.Type, sectionID string) []api.Type {
	var out []api.Type
	for _, t := range types {
		if t.Section.ID == sectionID {
			out = append(out, t)
		}
	}
	return out
}

// ParseImages splits a comma-separated list of image URLs.
func ParseImages(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ValidateProduct checks the required product fields.
func ValidateProduct(in api.ProductInput) error {
	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title", ErrMissingField)
	case in.Category == "":
		return fmt.Errorf("%w: category", ErrMissingField)
	case in.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrMissingField)
	case in.Rating < 0 || in.Rating > 5:
		return fmt.Errorf("rating must be between 0 and 5")
	case in.Stock < 0:
		return fmt.Errorf("stock must not be negative")
	}
	return nil
}

func normalizeProduct(in api.ProductInput) api.ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.SellerID = strings.TrimSpace(in.SellerID)
	in.Section = strings.TrimSpace(in.Section)
	in.Type = strings.TrimSpace(in.Type)
	return in
}

func requireAll(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, pairs[i])
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
