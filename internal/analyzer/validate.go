// internal/analyzer/validate.go
package analyzer

import (
	"fmt"
	"strings"
)

var recognizedStarts = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "WITH"}

// SyntaxValidation is the outcome of a lightweight syntax check.
type SyntaxValidation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateSyntax runs character-level sanity checks. Only an empty query or
// unbalanced parentheses make a statement invalid; the rest are warnings.
func ValidateSyntax(query string) SyntaxValidation {
	v := SyntaxValidation{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	if strings.TrimSpace(query) == "" {
		v.IsValid = false
		v.Errors = append(v.Errors, "Query is empty")
		return v
	}

	upper := strings.ToUpper(strings.TrimSpace(query))
	recognized := false
	for _, start := range recognizedStarts {
		if strings.HasPrefix(upper, start) {
			recognized = true
			break
		}
	}
	if !recognized {
		v.Warnings = append(v.Warnings, "Query doesn't start with a recognized SQL keyword")
	}

	if diff := strings.Count(query, "(") - strings.Count(query, ")"); diff != 0 {
		v.IsValid = false
		v.Errors = append(v.Errors, fmt.Sprintf("Unbalanced parentheses (difference: %d)", diff))
	}

	if strings.Count(query, "'")%2 != 0 {
		v.Warnings = append(v.Warnings, "Potentially unbalanced single quotes")
	}
	if strings.Count(query, "\"")%2 != 0 {
		v.Warnings = append(v.Warnings, "Potentially unbalanced double quotes")
	}

	return v
}
