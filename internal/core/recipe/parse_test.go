package recipe

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "title": "Tomatsoppa",
  "titlePrefix": "Mormors",
  "slug": "tomatsoppa",
  "description": "En enkel soppa.",
  "tags": ["soppa", "vegetariskt"],
  "prepTimeMinutes": 10,
  "cookTimeMinutes": 25,
  "servings": 4,
  "imageUrl": "/images/recipes/tomatsoppa.jpg",
  "categoryPlace": "Vardag",
  "categoryBase": " Tomat ",
  "categoryType": "Soppa",
  "categories": ["Soppa", "Snabbt"],
  "ingredients": [
    { "label": "Tomatsås", "amount": "2 dl" },
    { "label": "Basilika", "notes": "färsk" }
  ],
  "steps": [
    { "body": "Värm soppan." }
  ],
  "source": "https://example.com/tomatsoppa",
  "createdAt": "2024-01-05T12:00:00.000Z"
}`

func TestParseRecipeValid(t *testing.T) {
	res := ParseRecipe(validDoc)
	require.True(t, res.OK(), res.Errors)
	r := res.Recipe

	assert.Equal(t, "Tomatsoppa", r.Title)
	assert.Equal(t, []string{"Vardag", "Tomat", "Soppa", "Snabbt"}, r.Categories)
	assert.Equal(t, []TitleSegment{
		{Text: "Mormors", Size: SizeSmall},
		{Text: "Tomatsoppa", Size: SizeBig},
	}, r.TitleSegments)
	assert.Equal(t, KindIngredient, r.Ingredients[0].Kind)
	assert.Equal(t, "färsk", r.Ingredients[1].Notes)
	assert.Equal(t, 35, r.TotalMinutes())
	assert.Equal(t, "4 portioner • 35 min totalt", Summarize(r))
}

func TestParseRecipeInvalidJSON(t *testing.T) {
	for _, input := range []string{"", "{", `{"title": }`, `{} {}`} {
		res := ParseRecipe(input)
		assert.Nil(t, res.Recipe, input)
		require.Len(t, res.Errors, 1, input)
		assert.True(t, strings.HasPrefix(res.Errors[0], "Invalid JSON: "), res.Errors[0])
	}
}

func TestParseRecipeZeroSteps(t *testing.T) {
	res := ParseRecipe(`{"title":"X","slug":"x","description":"d","prepTimeMinutes":0,"cookTimeMinutes":0,"servings":1,"ingredients":[{"label":"salt"}],"steps":[]}`)
	require.False(t, res.OK())
	assert.Contains(t, res.Errors, "steps: At least one step")
}

func TestParseRecipeReportsEveryProblem(t *testing.T) {
	res := ParseRecipe(`{
  "title": "",
  "slug": "Inte Kebab",
  "description": 5,
  "tags": ["ok", 3],
  "prepTimeMinutes": -1,
  "cookTimeMinutes": 1.5,
  "servings": 0,
  "imageUrl": "bild.jpg",
  "categoryPlace": 12,
  "ingredients": [],
  "ingredientGroups": [{ "title": "Sås", "items": [] }],
  "steps": [{ "title": "Ett" }, "två"],
  "source": "inte en url",
  "createdAt": "igår"
}`)
	require.False(t, res.OK())

	want := []string{
		"title: Title is required",
		"slug: Use kebab-case for slug",
		"description: Expected string, received number",
		"tags.1: Expected string, received number",
		"prepTimeMinutes: Number must be greater than or equal to 0",
		"cookTimeMinutes: Expected integer, received float",
		"servings: Number must be greater than 0",
		"imageUrl: Invalid url",
		"ingredients: At least one ingredient",
		"ingredientGroups.0.items: Group must include ingredients",
		"steps.0.body: Required",
		"steps.1: Expected object, received string",
		"source: Invalid url",
		"createdAt: Invalid datetime",
	}
	for _, w := range want {
		assert.Contains(t, res.Errors, w)
	}
	for _, e := range res.Errors {
		assert.False(t, strings.HasPrefix(e, "categoryPlace"), "facets are lenient: %s", e)
	}
}

func TestParseRecipeBlankTitle(t *testing.T) {
	res := ParseRecipe(strings.Replace(validDoc, `"title": "Tomatsoppa"`, `"title": "   "`, 1))
	assert.Nil(t, res.Recipe)
	assert.Equal(t, []string{"title: Title is required"}, res.Errors)

	doc := strings.Replace(validDoc, `"title": "Tomatsoppa"`, `"title": "\t"`, 1)
	doc = strings.Replace(doc, `"titlePrefix": "Mormors",`, ``, 1)
	res = ParseRecipe(doc)
	assert.Equal(t, []string{"title: Title is required"}, res.Errors, "derived segments are not reported twice")
}

func TestToJSONRejectsBlankTitle(t *testing.T) {
	res := ParseRecipe(validDoc)
	require.True(t, res.OK(), res.Errors)
	r := res.Recipe.Clone()
	r.Title = "  "
	r.TitlePrefix = ""
	r.TitleSegments = nil

	_, err := ToJSON(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title: Title is required")
}

func TestParseRecipeNumberOutOfRange(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1e400", "prepTimeMinutes: Number too large"},
		{"-1e400", "prepTimeMinutes: Number too large"},
		{"9223372036854775808", "prepTimeMinutes: Number too large"},
		{"2.5", "prepTimeMinutes: Expected integer, received float"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			res := ParseRecipe(strings.Replace(validDoc, `"prepTimeMinutes": 10`, `"prepTimeMinutes": `+tt.value, 1))
			assert.Equal(t, []string{tt.want}, res.Errors)
		})
	}

	res := ParseRecipe(strings.Replace(validDoc, `"prepTimeMinutes": 10`, `"prepTimeMinutes": 10.0`, 1))
	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, 10, res.Recipe.PrepTimeMinutes)
}

func TestParseRecipeRootMustBeObject(t *testing.T) {
	res := ParseRecipe(`[1, 2]`)
	assert.Equal(t, []string{"(root): Expected object, received array"}, res.Errors)
}

func TestParseRecipeHeadingIngredient(t *testing.T) {
	doc := strings.Replace(validDoc, `{ "label": "Tomatsås", "amount": "2 dl" }`, `{ "kind": "heading" }, { "label": "Tomatsås", "amount": "2 dl" }`, 1)
	res := ParseRecipe(doc)
	require.True(t, res.OK(), res.Errors)
	assert.True(t, res.Recipe.Ingredients[0].IsHeading())

	doc = strings.Replace(validDoc, `"label": "Tomatsås", `, ``, 1)
	res = ParseRecipe(doc)
	assert.Contains(t, res.Errors, "ingredients.0.label: Ingredient label required")
}

func TestParseRecipeGroupsAreAuthoritative(t *testing.T) {
	doc := strings.Replace(validDoc, `"steps": [`, `"ingredientGroups": [
    { "title": "Soppa", "items": [{ "label": "Tomat" }] },
    { "items": [{ "label": "Grädde", "amount": "1 dl" }] }
  ],
  "steps": [`, 1)
	res := ParseRecipe(doc)
	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, []Ingredient{
		{Label: "Tomat", Kind: KindIngredient},
		{Label: "Grädde", Amount: "1 dl", Kind: KindIngredient},
	}, res.Recipe.Ingredients)
}

func TestParseRecipeGroupsWithoutIngredients(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(validDoc), &raw))
	delete(raw, "ingredients")
	raw["ingredientGroups"] = []any{map[string]any{"items": []any{map[string]any{"label": "Tomat"}}}}

	r, errs := Normalize(raw)
	require.Empty(t, errs)
	assert.Equal(t, "Tomat", r.Ingredients[0].Label)
}

func TestToJSONRoundTrip(t *testing.T) {
	res := ParseRecipe(validDoc)
	require.True(t, res.OK(), res.Errors)

	out, err := ToJSON(res.Recipe)
	require.NoError(t, err)
	again := ParseRecipe(out)
	require.True(t, again.OK(), again.Errors)
	if diff := cmp.Diff(res.Recipe, again.Recipe); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	out2, err := ToJSON(again.Recipe)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestToJSONFormat(t *testing.T) {
	res := ParseRecipe(validDoc)
	require.True(t, res.OK(), res.Errors)
	out, err := ToJSON(res.Recipe)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "{\n  \"title\": \"Tomatsoppa\",\n  \"titlePrefix\": \"Mormors\","), out)
	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.Less(t, strings.Index(out, `"categoryType"`), strings.Index(out, `"categories"`))
	assert.Contains(t, out, `"kind": "ingredient"`)
	assert.NotContains(t, out, `"ingredientGroups"`)
	assert.NotContains(t, out, `&`)
}

func TestToJSONRejectsInvalid(t *testing.T) {
	_, err := ToJSON(&Recipe{Title: "X", Slug: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps: At least one step")
}

func TestEmptyRecipeIsValid(t *testing.T) {
	r := EmptyRecipe(time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-05T12:00:00.000Z", r.CreatedAt)

	out, err := ToJSON(r)
	require.NoError(t, err)
	assert.True(t, ParseRecipe(out).OK())
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("  Pannkakor med sylt \n")
	assert.NotContains(t, p, PromptPlaceholder)
	assert.True(t, strings.HasSuffix(p, "Text att konvertera:\nPannkakor med sylt"))
}
