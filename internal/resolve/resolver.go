// Package resolve matches free-text phrases from a voice caller against
// catalog entities (services, staff, locations). Voice transcription is
// imprecise, so the resolver reports an explicit confidence tier instead of
// silently picking a winner: two nearly-equal candidates come back as
// ambiguous and the caller is expected to ask a clarifying question.
package resolve

import (
	"fmt"
	"sort"
	"strings"
)

// Confidence describes how certain a name match is.
type Confidence string

const (
	// ConfidenceExact means the query equals a candidate's searchable string
	// (case/whitespace-insensitively).
	ConfidenceExact Confidence = "exact"
	// ConfidenceFuzzy means exactly one candidate stood out above the rest.
	ConfidenceFuzzy Confidence = "fuzzy"
	// ConfidenceAmbiguous means two or more candidates scored too close to
	// pick one; Alternatives holds them. This is a deliberate refusal state,
	// not a downgraded fuzzy match.
	ConfidenceAmbiguous Confidence = "ambiguous"
	// ConfidenceNone means nothing cleared the acceptance threshold.
	ConfidenceNone Confidence = "none"
)

// Options tunes the resolver. The defaults are empirically chosen; they are
// parameters rather than constants so deployments can adjust them.
type Options struct {
	// Threshold is the minimum score a candidate must reach to be considered.
	Threshold float64
	// AmbiguityWindow is how close (in points) a runner-up must be to the top
	// score to force an ambiguous result.
	AmbiguityWindow float64
}

// DefaultOptions returns the standard 50-point threshold and 10-point window.
func DefaultOptions() Options {
	return Options{Threshold: 50, AmbiguityWindow: 10}
}

// Match is the tagged result of a resolution. Invariants: exact and fuzzy
// carry Entity and no Alternatives; ambiguous carries nil Entity and two or
// more Alternatives; none carries neither.
type Match[T any] struct {
	Confidence   Confidence
	Entity       *T
	Alternatives []T
}

// NameExtractor maps an entity to its searchable strings. It must return at
// least one non-empty string per entity; returning none is a programming
// defect, not a runtime condition.
type NameExtractor[T any] func(T) []string

type scored[T any] struct {
	entity T
	score  float64
	exact  bool
	order  int
}

// Resolve scores every candidate's searchable strings against query, keeping
// each candidate's best, then applies the decision rule: string-exact wins
// outright, a lone standout is fuzzy, near-ties are ambiguous.
func Resolve[T any](query string, candidates []T, names NameExtractor[T], opts Options) Match[T] {
	q := normalize(query)
	if q == "" || len(candidates) == 0 {
		return Match[T]{Confidence: ConfidenceNone}
	}
	if opts.Threshold <= 0 {
		opts = DefaultOptions()
	}

	survivors := make([]scored[T], 0, len(candidates))
	for i, cand := range candidates {
		strs := names(cand)
		if len(strs) == 0 {
			panic(fmt.Sprintf("resolve: name extractor returned no strings for candidate %d", i))
		}
		best, exact := 0.0, false
		for _, s := range strs {
			score, isExact := scoreStrings(q, normalize(s))
			if score > best {
				best = score
			}
			if isExact {
				exact = true
			}
		}
		if best >= opts.Threshold {
			survivors = append(survivors, scored[T]{entity: cand, score: best, exact: exact, order: i})
		}
	}

	if len(survivors) == 0 {
		return Match[T]{Confidence: ConfidenceNone}
	}

	// Score order, input order for ties, so results are deterministic.
	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].score != survivors[j].score {
			return survivors[i].score > survivors[j].score
		}
		return survivors[i].order < survivors[j].order
	})

	top := survivors[0]
	if top.exact {
		return Match[T]{Confidence: ConfidenceExact, Entity: &top.entity}
	}

	within := survivors[:1]
	for _, s := range survivors[1:] {
		if top.score-s.score <= opts.AmbiguityWindow {
			within = append(within, s)
		}
	}
	if len(within) > 1 {
		alts := make([]T, 0, len(within))
		for _, s := range within {
			alts = append(alts, s.entity)
		}
		return Match[T]{Confidence: ConfidenceAmbiguous, Alternatives: alts}
	}
	return Match[T]{Confidence: ConfidenceFuzzy, Entity: &top.entity}
}

// scoreStrings scores one normalized query against one normalized candidate
// string. Returns the score and whether the match was exact equality.
func scoreStrings(q, target string) (float64, bool) {
	if target == "" {
		return 0, false
	}
	if q == target {
		return 100, true
	}

	// Containment: reward queries that cover more of the container.
	if strings.Contains(target, q) {
		return 65 + 25*float64(len(q))/float64(len(target)), false
	}
	if strings.Contains(q, target) {
		return 65 + 25*float64(len(target))/float64(len(q)), false
	}

	// Word-level overlap: at least half the larger word set must have a
	// containment match in the other set.
	if score, ok := wordOverlapScore(q, target); ok {
		return score, false
	}

	// Last resort: normalized edit distance.
	sim := similarity(q, target)
	if sim >= 0.6 {
		return sim * 60, false
	}
	return 0, false
}

func wordOverlapScore(a, b string) (float64, bool) {
	aw, bw := strings.Fields(a), strings.Fields(b)
	larger, smaller := aw, bw
	if len(bw) > len(aw) {
		larger, smaller = bw, aw
	}
	if len(larger) == 0 {
		return 0, false
	}
	matched := 0
	for _, lw := range larger {
		for _, sw := range smaller {
			if strings.Contains(lw, sw) || strings.Contains(sw, lw) {
				matched++
				break
			}
		}
	}
	ratio := float64(matched) / float64(len(larger))
	if ratio < 0.5 {
		return 0, false
	}
	return 60 + 20*ratio, true
}

// similarity is 1 - editDistance/maxLen over runes.
func similarity(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	maxLen := len(ar)
	if len(br) > maxLen {
		maxLen = len(br)
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(editDistance(ar, br))/float64(maxLen)
}

// editDistance computes Levenshtein distance with a two-row table.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// normalize lowercases, trims, and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
