package importer

import (
	"testing"

	"recept/internal/core/recipe"

	"github.com/stretchr/testify/assert"
)

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		raw  string
		want recipe.Ingredient
	}{
		{"2 dl tomatsås", recipe.Ingredient{Label: "tomatsås", Amount: "2 dl"}},
		{"  200g   smör ", recipe.Ingredient{Label: "smör", Amount: "200g"}},
		{"3 ägg", recipe.Ingredient{Label: "ägg", Amount: "3"}},
		{"1 ½ dl mjölk", recipe.Ingredient{Label: "mjölk", Amount: "1 ½ dl"}},
		{"1-2 msk olja", recipe.Ingredient{Label: "olja", Amount: "1-2 msk"}},
		{"2 lime", recipe.Ingredient{Label: "lime", Amount: "2"}},
		{"Tomatsås - 2 dl", recipe.Ingredient{Label: "Tomatsås", Amount: "2 dl"}},
		{"Grädde: en skvätt", recipe.Ingredient{Label: "Grädde", Amount: "en skvätt"}},
		{"Ägg × 2", recipe.Ingredient{Label: "Ägg", Amount: "2"}},
		{"Ägg x 2", recipe.Ingredient{Label: "Ägg", Amount: "2"}},
		{"Mixad tomat", recipe.Ingredient{Label: "Mixad tomat"}},
		{"Chili-flakes", recipe.Ingredient{Label: "Chili-flakes"}},
		{"Salt och peppar", recipe.Ingredient{Label: "Salt och peppar"}},
		{"Vitlök (finhackad) - 2 klyftor", recipe.Ingredient{Label: "Vitlök", Amount: "2 klyftor", Notes: "finhackad"}},
		{"Persilja (till servering)", recipe.Ingredient{Label: "Persilja", Notes: "till servering"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			tt.want.Kind = recipe.KindIngredient
			assert.Equal(t, tt.want, ParseIngredientLine(tt.raw))
		})
	}
}

func TestParseIngredientLineEmpty(t *testing.T) {
	got := ParseIngredientLine(" \n\t ")
	assert.Empty(t, got.Label)
}

func TestLooksLikeAmount(t *testing.T) {
	for _, s := range []string{"2 dl", "½ tsk", "en burk", "ett paket", "halv citron"} {
		assert.True(t, looksLikeAmount(s), s)
	}
	for _, s := range []string{"", "flakes", "enkel", "salt"} {
		assert.False(t, looksLikeAmount(s), s)
	}
}
