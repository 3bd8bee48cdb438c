package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetph/phone-catalog/internal/catalog"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

func validRaw() *catalog.RawProduct {
	return &catalog.RawProduct{
		ID:        "101",
		Title:     "Galaxy A55 5G",
		Type:      "simple",
		Price:     "18290",
		Permalink: "https://example.com/galaxy-a55",
		Terms: []catalog.Term{
			{Slug: "mobile-phones", Name: "Mobile Phones"},
			{Slug: "samsung", Name: "Samsung"},
		},
	}
}

func TestMapper_Map_SpecExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs []catalog.Attribute
		check func(t *testing.T, rec *domain.PhoneRecord)
	}{
		{
			name: "combined memory attribute",
			attrs: []catalog.Attribute{
				{Name: "pa_internal-memory", Value: "256GB 12GB RAM"},
			},
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, "12GB", rec.RAM)
				assert.Equal(t, "256GB", rec.Storage)
			},
		},
		{
			name: "identical storage and ram numbers stay distinct",
			attrs: []catalog.Attribute{
				{Name: "pa_internal-memory", Value: "8GB 8GB RAM"},
			},
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, "8GB", rec.RAM)
				assert.Equal(t, "8GB", rec.Storage)
			},
		},
		{
			name: "camera display battery",
			attrs: []catalog.Attribute{
				{Name: "pa_main-camera", Value: "108 MP wide sensor"},
				{Name: "pa_display-size", Value: "6.7 inches AMOLED"},
				{Name: "pa_battery-type", Value: "5000 mAh Li-Po"},
			},
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, "108 MP", rec.Camera)
				assert.Equal(t, "6.7 inches", rec.Display)
				assert.Equal(t, "5000 mAh", rec.Battery)
			},
		},
		{
			name: "chipset passes through raw",
			attrs: []catalog.Attribute{
				{Name: "pa_chipset", Value: "Snapdragon 8 Gen 3"},
			},
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, "Snapdragon 8 Gen 3", rec.Processor)
			},
		},
		{
			name: "battery falls back to raw value on pattern miss",
			attrs: []catalog.Attribute{
				{Name: "pa_battery-type", Value: "Li-Ion, fast charging"},
			},
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, "Li-Ion, fast charging", rec.Battery)
			},
		},
		{
			name:  "missing attributes keep the sentinel",
			attrs: nil,
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, domain.NotAvailable, rec.RAM)
				assert.Equal(t, domain.NotAvailable, rec.Storage)
				assert.Equal(t, domain.NotAvailable, rec.Camera)
				assert.Equal(t, domain.NotAvailable, rec.Display)
				assert.Equal(t, domain.NotAvailable, rec.Processor)
				assert.Equal(t, domain.NotAvailable, rec.Battery)
			},
		},
		{
			name: "unparseable attribute degrades to sentinel not empty",
			attrs: []catalog.Attribute{
				{Name: "pa_main-camera", Value: "quad camera system"},
			},
			check: func(t *testing.T, rec *domain.PhoneRecord) {
				assert.Equal(t, domain.NotAvailable, rec.Camera)
			},
		},
	}

	m := catalog.NewMapper(catalog.MapperConfig{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validRaw()
			raw.Attributes = tt.attrs
			rec := m.Map(raw)
			require.NotNil(t, rec)
			tt.check(t, rec)
		})
	}
}

func TestMapper_Map_BrandResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		terms []catalog.Term
		want  string
	}{
		{
			name: "root slug skipped, first remaining term wins",
			terms: []catalog.Term{
				{Slug: "mobile-phones", Name: "Mobile Phones"},
				{Slug: "samsung", Name: "Samsung"},
				{Slug: "samsung-galaxy-s", Name: "Galaxy S"},
			},
			want: "Samsung",
		},
		{
			name: "first match wins even when a later term is more specific",
			terms: []catalog.Term{
				{Slug: "5g-phones", Name: "5G Phones"},
				{Slug: "xiaomi", Name: "Xiaomi"},
			},
			want: "5G Phones",
		},
		{
			name:  "no terms falls back to sentinel",
			terms: nil,
			want:  domain.BrandUncategorized,
		},
		{
			name: "only the root term falls back to sentinel",
			terms: []catalog.Term{
				{Slug: "mobile-phones", Name: "Mobile Phones"},
			},
			want: domain.BrandUncategorized,
		},
	}

	m := catalog.NewMapper(catalog.MapperConfig{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validRaw()
			raw.Terms = tt.terms
			rec := m.Map(raw)
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.Brand)
		})
	}
}

func TestMapper_Map_DealURLFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		external string
		meta     string
		want     string
	}{
		{name: "affiliate url preferred", external: "https://aff.example/1", meta: "https://meta.example/1", want: "https://aff.example/1"},
		{name: "raw meta when accessor empty", external: "", meta: "https://meta.example/1", want: "https://meta.example/1"},
		{name: "permalink as last resort", external: "", meta: "", want: "https://example.com/galaxy-a55"},
	}

	m := catalog.NewMapper(catalog.MapperConfig{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validRaw()
			raw.ExternalURL = tt.external
			raw.ProductURLMeta = tt.meta
			rec := m.Map(raw)
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.DealURL)
		})
	}
}

func TestMapper_Map_Skips(t *testing.T) {
	t.Parallel()

	m := catalog.NewMapper(catalog.MapperConfig{})

	t.Run("nil product", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, m.Map(nil))
	})

	t.Run("missing price", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.Price = ""
		assert.Nil(t, m.Map(raw))
	})

	t.Run("unparseable price", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.Price = "call for price"
		assert.Nil(t, m.Map(raw))
	})

	t.Run("excluded title word", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.Title = "Galaxy Watch 6"
		assert.Nil(t, m.Map(raw))
	})
}

func TestMapper_Map_Prices(t *testing.T) {
	t.Parallel()

	m := catalog.NewMapper(catalog.MapperConfig{})

	t.Run("thousands separators and currency sign", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.Price = "₱18,290.00"
		raw.RegularPrice = "21,990"
		rec := m.Map(raw)
		require.NotNil(t, rec)
		assert.InDelta(t, 18290, rec.Price, 0.001)
		assert.InDelta(t, 21990, rec.RegularPrice, 0.001)
		assert.True(t, rec.HasDiscount())
	})

	t.Run("unparseable regular price coerces to zero", func(t *testing.T) {
		t.Parallel()
		raw := validRaw()
		raw.RegularPrice = "n/a"
		rec := m.Map(raw)
		require.NotNil(t, rec)
		assert.Zero(t, rec.RegularPrice)
		assert.False(t, rec.HasDiscount())
	})
}

func TestMapper_Map_PopularTag(t *testing.T) {
	t.Parallel()

	m := catalog.NewMapper(catalog.MapperConfig{})

	raw := validRaw()
	raw.Tags = []string{"new-release", "editor-pick"}
	rec := m.Map(raw)
	require.NotNil(t, rec)
	assert.True(t, rec.IsPopular)

	raw2 := validRaw()
	raw2.Tags = []string{"new-release"}
	rec2 := m.Map(raw2)
	require.NotNil(t, rec2)
	assert.False(t, rec2.IsPopular)
}
