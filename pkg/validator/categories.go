package validator

import (
	"strings"

	"github.com/panbanda/pysentry/pkg/models"
)

// categoryRule assigns a category to messages containing keyword.
type categoryRule struct {
	keyword  string
	category models.Category
}

// categoryRules is matched in order; the first matching keyword wins.
var categoryRules = []categoryRule{
	{"SyntaxError", models.CategorySyntax},
	{"IndentationError", models.CategorySyntax},
	{"Security violation", models.CategorySecurity},
	{"Infinite loop risk", models.CategoryLogic},
	{"Bare except", models.CategoryReliability},
	{"Structural regression", models.CategoryStability},
	{"AST integrity", models.CategoryStability},
	{"Undefined variable", models.CategorySemantic},
	{"Unused variable", models.CategoryMaintainability},
}

// Categorize returns the category of a validator message. Messages that
// match no keyword fall into models.CategoryOther.
func Categorize(msg string) models.Category {
	for _, rule := range categoryRules {
		if strings.Contains(msg, rule.keyword) {
			return rule.category
		}
	}
	return models.CategoryOther
}
