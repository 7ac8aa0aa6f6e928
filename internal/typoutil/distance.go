// Package typoutil measures how far a query term is from a word of an entity
// field, for the typo-tolerant matching strategy.
package typoutil

import (
	"math"
	"unicode/utf8"
)

// EditBudget returns how many edits a term of the given length may be off by
// under a fuzziness between 0 (exact only) and 1 (maximally permissive).
func EditBudget(fuzzyness float64, term string) int {
	if fuzzyness <= 0 {
		return 0
	}
	if fuzzyness > 1 {
		fuzzyness = 1
	}
	return int(math.Floor(fuzzyness * float64(utf8.RuneCountInString(term))))
}

// DistanceWithLimit computes the Damerau-Levenshtein distance between a and b
// (insertions, deletions, substitutions and adjacent transpositions), working on
// runes. It stops early and returns maxDistance+1 as soon as the distance is
// known to exceed maxDistance.
func DistanceWithLimit(a, b string, maxDistance int) int {
	runesA := []rune(a)
	runesB := []rune(b)
	lenA, lenB := len(runesA), len(runesB)

	lengthDiff := lenA - lenB
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff > maxDistance {
		return maxDistance + 1
	}
	if lenA == 0 || lenB == 0 {
		return lengthDiff
	}

	// Three rows: i-2 is needed for transpositions
	twoBack := make([]int, lenB+1)
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		rowMin := i

		for j := 1; j <= lenB; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && runesA[i-1] == runesB[j-2] && runesA[i-2] == runesB[j-1] {
				curr[j] = min(curr[j], twoBack[j-2]+1)
			}

			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}

		if rowMin > maxDistance {
			return maxDistance + 1
		}
		twoBack, prev, curr = prev, curr, twoBack
	}

	return prev[lenB]
}

// Distance computes the unbounded Damerau-Levenshtein distance between a and b.
func Distance(a, b string) int {
	limit := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	return DistanceWithLimit(a, b, limit)
}

// ClosestWord returns the first word within maxDistance edits of term, with its
// distance. ok is false when no word is close enough or maxDistance is negative.
func ClosestWord(term string, words []string, maxDistance int) (word string, distance int, ok bool) {
	if term == "" || maxDistance < 0 {
		return "", 0, false
	}

	best := maxDistance + 1
	for _, w := range words {
		d := DistanceWithLimit(term, w, maxDistance)
		if d < best {
			best = d
			word = w
			if d == 0 {
				break
			}
		}
	}
	if best > maxDistance {
		return "", 0, false
	}
	return word, best, true
}
