package agent

import (
	"strings"
	"unicode"
)

// Complexity buckets a task by how much work it likely needs.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

var (
	complexMarkers = []string{"comprehensive", "in-depth", "in depth", "detailed analysis", "thorough", "end-to-end", "compare and contrast"}
	simpleWords    = map[string]bool{"list": true, "briefly": true, "brief": true, "summarize": true, "define": true}
)

// Roles whose tasks are always treated as complex.
var complexRoles = map[string]bool{"researcher": true}

// AnalyzeComplexity classifies task with a keyword heuristic. role may be empty.
func AnalyzeComplexity(task, role string) Complexity {
	if complexRoles[strings.ToLower(strings.TrimSpace(role))] {
		return ComplexityComplex
	}

	lower := strings.ToLower(task)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	for _, m := range complexMarkers {
		if strings.Contains(lower, m) {
			return ComplexityComplex
		}
	}
	if len(words) > 40 {
		return ComplexityComplex
	}
	for _, w := range words {
		if simpleWords[w] {
			return ComplexitySimple
		}
	}
	if len(words) <= 3 {
		return ComplexitySimple
	}
	return ComplexityMedium
}

const referenceTokens = 512

// EstimateTokenNeeds returns a token budget for a task of complexity c.
func EstimateTokenNeeds(c Complexity, withReferences bool) int {
	var n int
	switch c {
	case ComplexitySimple:
		n = 256
	case ComplexityComplex:
		n = 4096
	default:
		n = 1024
	}
	if withReferences {
		n += referenceTokens
	}
	return n
}
