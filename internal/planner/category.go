package planner

import (
	"strings"
	"unicode"

	"routine-planner/internal/model"
)

// NormalizeCategory maps any label onto the closed category set. The whole
// token is title-cased ("HEALTH" -> "Health"); anything unknown becomes Personal.
func NormalizeCategory(raw string) model.Category {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return model.CategoryPersonal
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	if c := model.Category(runes); c.Valid() {
		return c
	}
	return model.CategoryPersonal
}
