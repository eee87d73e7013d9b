package validator

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Scorer rates how close an attempt is to its target, in [0, 1]. Scores
// only pick a friendlier failure message; they never grant a pass.
type Scorer interface {
	Score(target, attempt string) float64
	Name() string
}

// Positional counts characters equal at the same index, divided by the
// longer length. It returns 0 if either string is empty.
type Positional struct{}

func (Positional) Name() string { return "positional" }

func (Positional) Score(target, attempt string) float64 {
	a, b := []rune(target), []rune(attempt)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := min(len(a), len(b))
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(max(len(a), len(b)))
}

// Levenshtein is one minus the edit distance over the longer length.
type Levenshtein struct{}

func (Levenshtein) Name() string { return "levenshtein" }

func (Levenshtein) Score(target, attempt string) float64 {
	if target == "" || attempt == "" {
		return 0
	}
	return levenshtein.Similarity(target, attempt, nil)
}

// ScorerByName returns the scorer registered under name, defaulting to
// Positional for an empty or unknown name.
func ScorerByName(name string) Scorer {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "levenshtein":
		return Levenshtein{}
	default:
		return Positional{}
	}
}

// NormalizeCode trims every line and drops blank ones.
func NormalizeCode(code string) string {
	lines := strings.Split(strings.TrimSpace(code), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
