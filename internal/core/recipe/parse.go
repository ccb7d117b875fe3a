package recipe

import (
	"errors"
	"fmt"
	"io"

	"recept/internal/pkg/common"
)

// ParseRecipe 解析並驗證 JSON 文字。結果只會帶食譜或錯誤其中之一。
func ParseRecipe(text string) Result {
	var raw any
	if err := common.ParseJSON(text, &raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = errors.New("unexpected end of JSON input")
		}
		return Result{Errors: []string{"Invalid JSON: " + err.Error()}}
	}

	r, errs := Normalize(raw)
	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Recipe: r}
}

// ToJSON 重新正規化後以兩格縮排輸出，鍵的順序固定
func ToJSON(r *Recipe) (string, error) {
	normalized, errs := Renormalize(r)
	if len(errs) > 0 {
		return "", common.NewValidationError(errs...)
	}
	out, err := common.ToIndentedJSON(normalized)
	if err != nil {
		return "", fmt.Errorf("encode recipe %q: %w", r.Slug, err)
	}
	return out, nil
}

// Summarize 簡短摘要，例如 "4 portioner • 35 min totalt"
func Summarize(r *Recipe) string {
	return fmt.Sprintf("%d portioner • %d min totalt", r.Servings, r.TotalMinutes())
}
