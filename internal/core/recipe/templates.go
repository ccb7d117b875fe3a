package recipe

import (
	"strings"
	"time"
)

// PromptPlaceholder 在提示詞中被替換為使用者貼上的食譜文字
const PromptPlaceholder = "{{RECIPE_TEXT}}"

// DefaultImage 匯入與範本使用的預設圖片
const DefaultImage = "/images/recipes/new-recipe.jpg"

// ConversionPrompt 將自由文字食譜轉成 JSON 的 LLM 提示詞
const ConversionPrompt = `Du är en formatkonverterare. Du får ett recept i fritext och svarar med exakt JSON för receptsamlingen.

1. Läs texten och plocka ut titel, beskrivning, tider, portioner, ingredienser, eventuella grupper och steg.
2. Svara med giltig JSON och ingenting annat, enligt den här strukturen:
{
  "title": "",
  "slug": "",
  "description": "",
  "imageUrl": "/images/recipes/new-recipe.jpg",
  "tags": [],
  "prepTimeMinutes": 0,
  "cookTimeMinutes": 0,
  "servings": 0,
  "categoryPlace": "",
  "categoryBase": "",
  "categoryType": "",
  "ingredients": [
    { "label": "", "amount": "", "notes": "" }
  ],
  "ingredientGroups": [
    {
      "title": "",
      "items": [{ "label": "", "amount": "", "notes": "" }]
    }
  ],
  "steps": [
    { "title": "", "body": "" }
  ],
  "source": "",
  "createdAt": "",
  "updatedAt": ""
}

Regler:
- "slug" är titeln i kebab-case (små bokstäver, siffror och bindestreck).
- "tags" är 3–5 korta etiketter på samma språk som texten.
- Tider anges i hela minuter. Använd 0 när texten saknar uppgift.
- "imageUrl" behåller standardvärdet om ingen bild anges.
- Använd bara raka ASCII-citattecken (") runt strängar och nycklar.
- "ingredients" är alltid en lista med { label, amount?, notes? }. Utelämna fält utan värde i stället för tomma strängar.
- Ta bara med "ingredientGroups" när texten har tydliga avsnitt.
- "steps" ska komma i rätt ordning. "title" är valfri, "body" måste fyllas i.
- "source" är en URL om en sådan finns, annars utelämnas fältet.
- "createdAt" och "updatedAt" är ISO 8601 i UTC, till exempel 2024-01-05T12:00:00.000Z.
- Inga kommentarer och ingen Markdown, bara ren JSON.

Text att konvertera:
` + PromptPlaceholder

// BuildPrompt 將食譜文字填入提示詞
func BuildPrompt(text string) string {
	return strings.Replace(ConversionPrompt, PromptPlaceholder, strings.TrimSpace(text), 1)
}

// EmptyRecipe 新食譜的起始範本，已通過正規化
func EmptyRecipe(now time.Time) *Recipe {
	r := &Recipe{
		Title:           "Nytt recept",
		Slug:            "nytt-recept",
		Description:     "Beskriv rätten med en eller två meningar.",
		Tags:            []string{"snabbt", "vardag"},
		PrepTimeMinutes: 10,
		CookTimeMinutes: 15,
		Servings:        2,
		ImageURL:        DefaultImage,
		Ingredients: []Ingredient{
			{Label: "Olivolja", Amount: "2 msk"},
			{Label: "Vitlöksklyftor", Amount: "3", Notes: "tunt skivade"},
		},
		Steps: []Step{
			{Body: "Förbered alla ingredienser och sätt på en kastrull med saltat vatten."},
			{Body: "Koka pastan al dente. Värm olja och vitlök i en panna tills det doftar."},
			{Body: "Vänd ner pastan, smaka av med salt och peppar och toppa med örter."},
		},
		Source:    "https://example.com",
		CreatedAt: FormatTimestamp(now),
	}
	normalized, errs := Renormalize(r)
	if len(errs) > 0 {
		panic("recipe: invalid starter template: " + strings.Join(errs, "; "))
	}
	return normalized
}
