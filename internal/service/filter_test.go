package service

import (
	"testing"

	"concierge/internal/model"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func testProduct(title, price, color string) model.Product {
	p := model.Product{ID: title, Title: title}
	if price != "" {
		p.Price = strPtr(price)
	}
	if color != "" {
		p.Color = strPtr(color)
	}
	return p
}

func TestFilterEngine_EmptySpecKeepsEverything(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		testProduct("Red Sofa", "$120.00", "red"),
		testProduct("Blue Sofa", "$90.00", "blue"),
	}

	got := engine.Apply(products, &model.FilterSpec{})
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2", len(got))
	}
	if got[0].Title != "Red Sofa" || got[1].Title != "Blue Sofa" {
		t.Error("order not preserved")
	}
}

func TestFilterEngine_PriceAndColor(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		testProduct("Red Sofa", "$120.00", "red"),
		testProduct("Blue Sofa", "$90.00", "blue"),
	}

	tests := []struct {
		name string
		spec *model.FilterSpec
		want []string
	}{
		{
			name: "price cap keeps cheaper product",
			spec: &model.FilterSpec{PriceMax: f64Ptr(100)},
			want: []string{"Blue Sofa"},
		},
		{
			name: "color narrows to match",
			spec: &model.FilterSpec{Color: strPtr("red")},
			want: []string{"Red Sofa"},
		},
		{
			name: "price and color can empty the set",
			spec: &model.FilterSpec{PriceMax: f64Ptr(100), Color: strPtr("red")},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Apply(products, tt.spec)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d products, want %d", len(got), len(tt.want))
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("product[%d] = %s, want %s", i, got[i].Title, title)
				}
			}
		})
	}
}

func TestFilterEngine_MissingPricePasses(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		testProduct("No Price Sofa", "", ""),
		testProduct("NA Price Sofa", "N/A", ""),
	}

	got := engine.Apply(products, &model.FilterSpec{PriceMax: f64Ptr(50)})
	if len(got) != 2 {
		t.Fatalf("unpriced products must pass a price filter, got %d of 2", len(got))
	}
}

func TestFilterEngine_ColorMatchesTitleOrMetadata(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		testProduct("Navy Blue Loveseat", "$200.00", ""),
		{ID: "meta", Title: "Classic Loveseat", Color: strPtr("Navy Blue")},
		testProduct("Green Loveseat", "$200.00", "green"),
	}

	got := engine.Apply(products, &model.FilterSpec{Color: strPtr("navy")})
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2", len(got))
	}
}

func TestFilterEngine_SizeUsesTitleOnly(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		testProduct("Oversized Sectional", "", ""),
		testProduct("Compact Apartment Sofa", "", ""),
		testProduct("King Bed Frame", "", ""),
	}

	tests := []struct {
		size string
		want []string
	}{
		{"large", []string{"Oversized Sectional", "King Bed Frame"}},
		{"small", []string{"Compact Apartment Sofa"}},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			got := engine.Apply(products, &model.FilterSpec{Size: strPtr(tt.size)})
			if len(got) != len(tt.want) {
				t.Fatalf("got %d products, want %d", len(got), len(tt.want))
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("product[%d] = %s, want %s", i, got[i].Title, title)
				}
			}
		})
	}
}

func TestFilterEngine_BrandMatchesMetadataOnly(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		{ID: "1", Title: "FANYE Style Sofa"},
		{ID: "2", Title: "Plain Sofa", Brand: strPtr("FANYE")},
	}

	got := engine.Apply(products, &model.FilterSpec{Brand: strPtr("fanye")})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("brand must match metadata only, got %v", got)
	}
}

func TestFilterEngine_Idempotent(t *testing.T) {
	engine := NewFilterEngine()
	products := []model.Product{
		testProduct("Red Sofa", "$120.00", "red"),
		testProduct("Blue Sofa", "$90.00", "blue"),
		testProduct("Green Sofa", "$60.00", "green"),
	}
	spec := &model.FilterSpec{PriceMax: f64Ptr(100)}

	once := engine.Apply(products, spec)
	twice := engine.Apply(once, spec)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the result: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("product[%d] differs between passes", i)
		}
	}
}
