package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(slug string, image string, place, base, kind string, extra []string, tags ...string) *Recipe {
	return &Recipe{
		Title:         slug,
		Slug:          slug,
		Description:   "beskrivning av " + slug,
		Tags:          tags,
		ImageURL:      image,
		CategoryPlace: place,
		CategoryBase:  base,
		CategoryType:  kind,
		Categories:    extra,
	}
}

func TestDeriveCategories(t *testing.T) {
	got := DeriveCategories(" Vardag ", "", "Soppa", []string{"Soppa", "  ", "Snabbt", "Vardag"})
	assert.Equal(t, []string{"Vardag", "Soppa", "Snabbt"}, got)
	assert.Empty(t, DeriveCategories("", "", "", nil))
	assert.NotNil(t, DeriveCategories("", "", "", nil))
}

func TestDeriveTitleSegments(t *testing.T) {
	assert.Equal(t, []TitleSegment{{Text: "Soppa", Size: SizeBig}}, DeriveTitleSegments(" ", "Soppa", ""))
	assert.Equal(t, []TitleSegment{
		{Text: "Mormors", Size: SizeSmall},
		{Text: "Soppa", Size: SizeBig},
		{Text: "med bröd", Size: SizeSmall},
	}, DeriveTitleSegments("Mormors", "Soppa", "med bröd"))
	assert.Equal(t, "Mormors Soppa med bröd", SegmentsText(DeriveTitleSegments("Mormors", "Soppa", "med bröd")))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Öl":               "ol",
		"Kött & Fisk":      "kott-fisk",
		"  Crème brûlée  ": "creme-brulee",
		"Snabb middag!":    "snabb-middag",
		"---":              "",
		"2 portioner":      "2-portioner",
	}
	for in, want := range cases {
		got := Slugify(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, Slugify(got), "idempotent for %q", in)
		if got != "" {
			assert.True(t, ValidSlug(got), got)
		}
	}
}

func TestBuildCategories(t *testing.T) {
	recipes := []*Recipe{
		sample("a", "", "Öl", "", "", nil),
		sample("b", "/img/b.jpg", "Anka", "", "Öl", nil),
		sample("c", "/img/c.jpg", "", "Anka", "", []string{"Zucchini"}),
		sample("d", "", "", "", "", []string{"Äpple"}),
	}

	got := BuildCategories(recipes, "/fallback.jpg")
	require.Len(t, got, 4)
	assert.Equal(t, []Category{
		{Name: "Anka", Slug: "anka", Image: "/img/b.jpg", Count: 2},
		{Name: "Zucchini", Slug: "zucchini", Image: "/img/c.jpg", Count: 1},
		{Name: "Äpple", Slug: "apple", Image: "/fallback.jpg", Count: 1},
		{Name: "Öl", Slug: "ol", Image: "/img/b.jpg", Count: 2},
	}, got)

	assert.Empty(t, recipes[0].Categories, "input must not be modified")
}

func TestBuildCategoriesEmpty(t *testing.T) {
	got := BuildCategories(nil, "/fallback.jpg")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildCategoriesCoversEveryRecipeCategory(t *testing.T) {
	recipes := []*Recipe{
		sample("a", "", "Vardag", "Kyckling", "Gryta", nil),
		sample("b", "", "Fest", "Kyckling", "", []string{"Grill"}),
		sample("c", "", "", "", "", nil),
	}
	cats := BuildCategories(recipes, "")

	union := map[string]bool{}
	for _, r := range recipes {
		for _, name := range CategoriesOf(r) {
			union[Slugify(name)] = true
		}
	}
	got := map[string]bool{}
	for _, c := range cats {
		got[c.Slug] = true
		n := 0
		for _, r := range recipes {
			if InCategory(r, c.Slug) {
				n++
			}
		}
		assert.Equal(t, n, c.Count, c.Slug)
	}
	assert.Equal(t, union, got)
}

func TestBuildCategoriesCountsRecipeOnce(t *testing.T) {
	recipes := []*Recipe{
		sample("ol", "", "Öl", "", "", []string{"Ol"}),
		sample("fisk", "", "", "Fisk", "", []string{"fisk", "FISK"}),
		sample("lax", "", "", "Fisk", "", nil),
	}
	cats := BuildCategories(recipes, "")

	assert.Equal(t, []Category{
		{Name: "Fisk", Slug: "fisk", Count: 2},
		{Name: "Öl", Slug: "ol", Count: 1},
	}, cats)
	for _, c := range cats {
		n := len(Filter(recipes, Query{Category: c.Slug}))
		assert.Equal(t, n, c.Count, c.Slug)
	}
}

func TestCollectTags(t *testing.T) {
	recipes := []*Recipe{
		sample("a", "", "", "", "", nil, "soppa", "vardag", "soppa"),
		sample("b", "", "", "", "", nil, "ärtor", "vardag"),
		sample("c", "", "", "", "", nil, "öl", "bröd"),
	}
	assert.Equal(t, []TagCount{
		{Tag: "bröd", Count: 1},
		{Tag: "soppa", Count: 1},
		{Tag: "vardag", Count: 2},
		{Tag: "ärtor", Count: 1},
		{Tag: "öl", Count: 1},
	}, CollectTags(recipes))
}
