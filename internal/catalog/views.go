package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/totehq/tote/internal/api"
)

// PriceAll is the "All" price checkpoint.
const PriceAll = 200000

// Facet choices offered by the product list.
var (
	PriceCheckpoints = []float64{250, 500, 1000, 2000, PriceAll}
	CategoryChoices  = []string{"Men's Fashion", "Women's Fashion", "Accessories", "Footwear", "Kids"}
	RatingChoices    = []float64{4, 3, 2, 1}
)

// Facets are the checked filter values. An empty facet does not constrain.
type Facets struct {
	PriceCeilings []float64
	Categories    []string
	Ratings       []float64
	Sections      []string
	Types         []string
}

// Empty reports whether no facet is set.
func (f Facets) Empty() bool {
	return len(f.PriceCeilings) == 0 && len(f.Categories) == 0 &&
		len(f.Ratings) == 0 && len(f.Sections) == 0 && len(f.Types) == 0
}

func (f Facets) priceCeiling() (float64, bool) {
	ceiling, set := 0.0, false
	for _, c := range f.PriceCeilings {
		if !set || c > ceiling {
			ceiling, set = c, true
		}
	}
	return ceiling, set
}

// Match reports whether p satisfies every set facet.
func (f Facets) Match(p Product) bool {
	if ceiling, ok := f.priceCeiling(); ok && p.Price > ceiling {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Ratings) > 0 && !slices.ContainsFunc(f.Ratings, func(r float64) bool { return p.Rating >= r }) {
		return false
	}
	if len(f.Sections) > 0 && !slices.Contains(f.Sections, p.SectionName) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, p.TypeName) {
		return false
	}
	return true
}

func (f Facets) relevance(p Product) int {
	score := 0
	if p.SectionName != "" && slices.Contains(f.Sections, p.SectionName) {
		score++
	}
	if p.TypeName != "" && slices.Contains(f.Types, p.TypeName) {
		score++
	}
	return score
}

// Filter keeps the items matching f. It always returns a new slice.
func Filter(items []Product, f Facets) []Product {
	out := make([]Product, 0, len(items))
	for _, p := range items {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps items whose title (and, when withCategory is set, category)
// contains term, case-insensitively. A blank term keeps everything.
func Search(items []Product, term string, withCategory bool) []Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return slices.Clone(items)
	}
	out := make([]Product, 0, len(items))
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			(withCategory && strings.Contains(strings.ToLower(p.Category), needle)) {
			out = append(out, p)
		}
	}
	return out
}

// SortKey selects a product ordering.
type SortKey string

const (
	SortRelevance SortKey = ""
	SortLowHigh   SortKey = "low-high"
	SortHighLow   SortKey = "high-low"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "new"
	SortBest      SortKey = "best"
)

// SortKeys lists the keys in cycling order.
var SortKeys = []SortKey{SortRelevance, SortLowHigh, SortHighLow, SortRating, SortNewest, SortBest}

// Label is the human name of the key.
func (k SortKey) Label() string {
	switch k {
	case SortLowHigh:
		return "Price: Low to High"
	case SortHighLow:
		return "Price: High to Low"
	case SortRating:
		return "Rating"
	case SortNewest:
		return "Newest"
	case SortBest:
		return "Best Seller"
	default:
		return "Relevance"
	}
}

// Next returns the key after k in SortKeys.
func (k SortKey) Next() SortKey {
	i := slices.Index(SortKeys, k)
	return SortKeys[(i+1)%len(SortKeys)]
}

// ParseSortKey maps a stored value back to a key; unknown values are
// relevance.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.TrimSpace(s))
	if slices.Contains(SortKeys, k) {
		return k
	}
	return SortRelevance
}

// SortProducts returns a stably sorted copy of items. Relevance ranks by the
// number of active section and type facets each item matches.
func SortProducts(items []Product, key SortKey, f Facets) []Product {
	out := slices.Clone(items)
	var less func(a, b Product) int
	switch key {
	case SortLowHigh:
		less = func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortHighLow:
		less = func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortRating:
		less = func(a, b Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortNewest:
		less = func(a, b Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortBest:
		less = func(a, b Product) int {
			return cmp.Or(cmp.Compare(b.Rating, a.Rating), cmp.Compare(b.Price, a.Price))
		}
	default:
		less = func(a, b Product) int { return cmp.Compare(f.relevance(b), f.relevance(a)) }
	}
	slices.SortStableFunc(out, less)
	return out
}

// TypeEntry is a type as shown under its section.
type TypeEntry struct {
	Name  string
	Image string
}

// SectionGroup is a section with its representative image and its types.
type SectionGroup struct {
	ID    string
	Name  string
	Image string
	Types []TypeEntry
}

// BuildSectionTypeMap joins types to sections on the type's section
// reference. Types are deduplicated by name within a section; types whose
// section is unknown are dropped.
func BuildSectionTypeMap(sections []api.Section, types []api.Type) []SectionGroup {
	out := make([]SectionGroup, 0, len(sections))
	index := make(map[string]int, len(sections))
	for _, s := range sections {
		index[s.ID] = len(out)
		out = append(out, SectionGroup{
			ID:    s.ID,
			Name:  s.Name,
			Image: firstImage(s.Images),
			Types: []TypeEntry{},
		})
	}
	for _, t := range types {
		i, ok := index[t.Section.ID]
		if !ok {
			continue
		}
		g := &out[i]
		if slices.ContainsFunc(g.Types, func(e TypeEntry) bool { return e.Name == t.Name }) {
			continue
		}
		g.Types = append(g.Types, TypeEntry{Name: t.Name, Image: firstImage(t.Images)})
	}
	return out
}

// FlattenTypes lists the types of all groups, first occurrence of each name
// winning.
func FlattenTypes(groups []SectionGroup) []TypeEntry {
	var out []TypeEntry
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, t := range g.Types {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			out = append(out, t)
		}
	}
	return out
}

func firstImage(images []string) string {
	for _, img := range images {
		if img != "" {
			return img
		}
	}
	return PlaceholderImage
}
