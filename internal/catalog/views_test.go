package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/kv"
)

func ids(items []Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortProducts_Scenario(t *testing.T) {
	items := []Product{{ID: "a", Price: 100, Rating: 4}, {ID: "b", Price: 50, Rating: 5}}
	tests := []struct {
		key  SortKey
		want []string
	}{
		{key: SortLowHigh, want: []string{"b", "a"}},
		{key: SortHighLow, want: []string{"a", "b"}},
		{key: SortBest, want: []string{"b", "a"}},
		{key: SortRating, want: []string{"b", "a"}},
		{key: SortRelevance, want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.key.Label(), func(t *testing.T) {
			if got := ids(SortProducts(items, tt.key, Facets{})); !equalIDs(got, tt.want) {
				t.Fatalf("SortProducts(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSortProducts_BestBreaksTiesByPrice(t *testing.T) {
	items := []Product{{ID: "cheap", Price: 10, Rating: 4}, {ID: "dear", Price: 90, Rating: 4}}
	if got := ids(SortProducts(items, SortBest, Facets{})); !equalIDs(got, []string{"dear", "cheap"}) {
		t.Fatalf("best = %v, want [dear cheap]", got)
	}
}

func TestSortProducts_NewestFirst(t *testing.T) {
	now := time.Now()
	items := []Product{
		{ID: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "new", CreatedAt: now},
	}
	if got := ids(SortProducts(items, SortNewest, Facets{})); !equalIDs(got, []string{"new", "old"}) {
		t.Fatalf("new = %v, want [new old]", got)
	}
}

func TestSortProducts_RelevanceCountsMatchedFacets(t *testing.T) {
	items := []Product{
		{ID: "none"},
		{ID: "section", SectionName: "Men"},
		{ID: "both", SectionName: "Men", TypeName: "Shoes"},
	}
	f := Facets{Sections: []string{"Men"}, Types: []string{"Shoes"}}
	if got := ids(SortProducts(items, SortRelevance, f)); !equalIDs(got, []string{"both", "section", "none"}) {
		t.Fatalf("relevance = %v", got)
	}
}

func TestFilter_Facets(t *testing.T) {
	items := []Product{
		{ID: "a", Price: 200, Rating: 4.5, Category: "Footwear", SectionName: "Men", TypeName: "Shoes"},
		{ID: "b", Price: 800, Rating: 2.5, Category: "Kids", SectionName: "Kids", TypeName: "Toys"},
		{ID: "c", Price: 1500, Rating: 3, Category: "Footwear", SectionName: "Women", TypeName: "Shoes"},
	}
	tests := []struct {
		name string
		f    Facets
		want []string
	}{
		{name: "none", f: Facets{}, want: []string{"a", "b", "c"}},
		{name: "max of ceilings", f: Facets{PriceCeilings: []float64{250, 1000}}, want: []string{"a", "b"}},
		{name: "category", f: Facets{Categories: []string{"Footwear"}}, want: []string{"a", "c"}},
		{name: "any rating threshold", f: Facets{Ratings: []float64{4, 3}}, want: []string{"a", "c"}},
		{name: "section", f: Facets{Sections: []string{"Women"}}, want: []string{"c"}},
		{name: "type and price", f: Facets{Types: []string{"Shoes"}, PriceCeilings: []float64{500}}, want: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Filter(items, tt.f)); !equalIDs(got, tt.want) {
				t.Fatalf("Filter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_TitleAndCategory(t *testing.T) {
	items := []Product{
		{ID: "a", Title: "Running SHOE", Category: "Footwear"},
		{ID: "b", Title: "Scarf", Category: "Accessories"},
	}
	if got := ids(Search(items, "shoe", false)); !equalIDs(got, []string{"a"}) {
		t.Fatalf("title search = %v", got)
	}
	if got := ids(Search(items, "access", false)); len(got) != 0 {
		t.Fatalf("title-only search matched category: %v", got)
	}
	if got := ids(Search(items, "access", true)); !equalIDs(got, []string{"b"}) {
		t.Fatalf("category search = %v", got)
	}
	if got := ids(Search(items, "  ", true)); len(got) != 2 {
		t.Fatalf("blank search = %v, want all", got)
	}
}

func TestBuildSectionTypeMap_ShoesScenario(t *testing.T) {
	sections := []api.Section{{ID: "s1", Name: "Shoes", Images: []string{"shoes.jpg"}}, {ID: "s2", Name: "Bags"}}
	types := []api.Type{
		{ID: "t1", Name: "Sneaker", Section: api.Ref{ID: "s1"}, Images: []string{"s1"}},
		{ID: "t2", Name: "Boot", Section: api.Ref{ID: "s1", Name: "Shoes"}, Images: []string{"s2"}},
		{ID: "t3", Name: "Sneaker", Section: api.Ref{ID: "s1"}, Images: []string{"dup"}},
		{ID: "t4", Name: "Orphan", Section: api.Ref{ID: "gone"}},
	}
	groups := BuildSectionTypeMap(sections, types)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	shoes := groups[0]
	if shoes.Name != "Shoes" || shoes.Image != "shoes.jpg" {
		t.Fatalf("group = %+v", shoes)
	}
	want := []TypeEntry{{Name: "Sneaker", Image: "s1"}, {Name: "Boot", Image: "s2"}}
	if len(shoes.Types) != len(want) || shoes.Types[0] != want[0] || shoes.Types[1] != want[1] {
		t.Fatalf("types = %+v, want %+v", shoes.Types, want)
	}
	if groups[1].Image != PlaceholderImage || len(groups[1].Types) != 0 {
		t.Fatalf("empty section group = %+v", groups[1])
	}
}

func TestCatalog_SectionMapConvergesAsListsArrive(t *testing.T) {
	c := New(context.Background(), kv.NewMemory(), nil)
	c.SetTypes([]api.Type{{Name: "Boot", Section: api.Ref{ID: "s1"}}})
	if got := c.SectionTypeMap(); len(got) != 0 {
		t.Fatalf("map before sections = %+v, want empty", got)
	}
	c.SetSections([]api.Section{{ID: "s1", Name: "Shoes"}, {ID: "s2", Name: "Men"}})
	c.SetTypes([]api.Type{
		{Name: "Boot", Section: api.Ref{ID: "s1"}},
		{Name: "Boot", Section: api.Ref{ID: "s2"}},
	})
	names := c.TypeNames()
	if len(names) != 1 || names[0].Name != "Boot" {
		t.Fatalf("TypeNames = %+v, want one Boot", names)
	}
}

func TestSortKey_CycleAndParse(t *testing.T) {
	k := SortRelevance
	for range SortKeys {
		k = k.Next()
	}
	if k != SortRelevance {
		t.Fatalf("full cycle ended at %q", k)
	}
	if got := ParseSortKey("best"); got != SortBest {
		t.Fatalf("ParseSortKey(best) = %q", got)
	}
	if got := ParseSortKey("bogus"); got != SortRelevance {
		t.Fatalf("ParseSortKey(bogus) = %q", got)
	}
}
