package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recept/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soupDoc = `{
  "title": "Tomatsoppa",
  "slug": "tomatsoppa",
  "description": "En enkel soppa.",
  "tags": ["soppa"],
  "prepTimeMinutes": 10,
  "cookTimeMinutes": 25,
  "servings": 4,
  "categoryPlace": "Vardag",
  "ingredients": [{ "label": "Tomatsås", "amount": "2 dl" }],
  "steps": [{ "body": "Värm soppan." }]
}`

const porridgePage = `<html><head><meta property="og:title" content="Gröt"></head><body>
<div class="fusion-column-wrapper"><ul class="fusion-checklist">
<li><div class="fusion-li-item-content">2 dl havregryn</div></li></ul></div>
<div class="post-content"><p>Koka upp.</p></div></body></html>`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "tomatsoppa.json", soupDoc)

	out, err := runCLI(t, "", "validate", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok  tomatsoppa")
	assert.Contains(t, out, "All 1 recipes are valid")

	writeDoc(t, dir, "trasig.json", `{"title":`)
	writeDoc(t, dir, "anka.json", soupDoc)

	out, err = runCLI(t, "", "validate", "--dir", dir, "--quiet")
	require.Error(t, err)
	assert.Equal(t, "2 of 3 recipes are invalid", err.Error())
	assert.Contains(t, out, "trasig: Invalid JSON: ")
	assert.Contains(t, out, `anka: slug "tomatsoppa" does not match the document name`)
	assert.NotContains(t, out, "ok  tomatsoppa")
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(t.TempDir(), "grot.html")
	require.NoError(t, os.WriteFile(page, []byte(porridgePage), 0o644))

	out, err := runCLI(t, "", "import", page, "--category", "Frukost", "--source", "https://recept.example.se/grot")
	require.NoError(t, err)
	res := recipe.ParseRecipe(out)
	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, "grot", res.Recipe.Slug)
	assert.Equal(t, []string{"Frukost"}, res.Recipe.Categories)
	assert.Equal(t, "https://recept.example.se/grot", res.Recipe.Source)

	out, err = runCLI(t, "", "import", page, "--save", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "Saved grot (filesystem)\n", out)
	_, err = os.Stat(filepath.Join(dir, "grot.json"))
	require.NoError(t, err)

	_, err = runCLI(t, "", "validate", "--dir", dir)
	assert.NoError(t, err)
}

func TestCategoriesCommand(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "tomatsoppa.json", soupDoc)

	out, err := runCLI(t, "", "categories", "--dir", dir, "--json")
	require.NoError(t, err)
	var cats []recipe.Category
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "vardag", cats[0].Slug)

	out, err = runCLI(t, "", "categories", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Vardag")

	out, err = runCLI(t, "", "tags", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "soppa")
}

func TestPromptAndTemplateCommands(t *testing.T) {
	out, err := runCLI(t, "Pannkakor med sylt\n", "prompt", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Pannkakor med sylt\n"))
	assert.NotContains(t, out, recipe.PromptPlaceholder)

	out, err = runCLI(t, "", "prompt")
	require.NoError(t, err)
	assert.Contains(t, out, recipe.PromptPlaceholder)

	out, err = runCLI(t, "", "template")
	require.NoError(t, err)
	assert.True(t, recipe.ParseRecipe(out).OK())
}
