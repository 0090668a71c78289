// Package fuzzy scores a query against a candidate string as a
// case-insensitive subsequence, rewarding runs and word starts and
// penalizing gaps.
package fuzzy

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
)

// CharScore is added for every matched query rune.
const CharScore = 1

const unset = math.MinInt

// Config holds the tunable bonuses and penalty of the scorer.
type Config struct {
	ConsecutiveBonus int `json:"consecutive_bonus" mapstructure:"consecutive_bonus"`
	WordStartBonus   int `json:"word_start_bonus" mapstructure:"word_start_bonus"`
	DistancePenalty  int `json:"distance_penalty" mapstructure:"distance_penalty"`
}

// DefaultConfig strongly favors uninterrupted runs over scattered hits.
func DefaultConfig() Config {
	return Config{
		ConsecutiveBonus: 128,
		WordStartBonus:   0,
		DistancePenalty:  1,
	}
}

// Pattern is a case-folded query, reusable across many targets.
type Pattern struct {
	folded string
	runes  []rune
}

// Target is a case-folded candidate with its word starts precomputed.
type Target struct {
	folded string
	runes  []rune
	starts []bool
}

func fold(s string) string {
	// A Caser keeps state, so one is created per call.
	return cases.Fold().String(strings.ToValidUTF8(s, string(utf8.RuneError)))
}

// Compile folds query for scoring.
func Compile(query string) Pattern {
	f := fold(query)
	return Pattern{folded: f, runes: []rune(f)}
}

// NewTarget folds candidate and marks the runes that begin a word.
func NewTarget(candidate string) Target {
	f := fold(candidate)
	runes := []rune(f)
	starts := make([]bool, len(runes))
	for j := range runes {
		starts[j] = j == 0 || !isAlnum(runes[j-1])
	}
	return Target{folded: f, runes: runes, starts: starts}
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Empty reports whether the pattern has nothing to place.
func (p Pattern) Empty() bool { return len(p.runes) == 0 }

// Score returns the best alignment score of query within candidate, or
// false when query is not a subsequence of candidate.
func Score(query, candidate string, cfg Config) (int, bool) {
	return Compile(query).Score(NewTarget(candidate), cfg)
}

// Score returns the maximum score over all alignments of p in t.
func (p Pattern) Score(t Target, cfg Config) (int, bool) {
	if p.Empty() {
		return 0, true
	}
	if !fuzzysearch.Match(p.folded, t.folded) {
		return 0, false
	}
	best := p.align(t, cfg)
	if best == unset {
		return 0, false
	}
	return best, true
}

// align runs the dynamic program over (query rune, candidate rune) pairs.
// Row i holds, per candidate position j, the best score with query rune i
// placed at j, or unset. Only two rows are kept.
func (p Pattern) align(t Target, cfg Config) int {
	q, c := p.runes, t.runes
	m := len(c)
	prev := make([]int, m)
	cur := make([]int, m)

	for j := 0; j < m; j++ {
		prev[j] = unset
		if c[j] == q[0] {
			prev[j] = CharScore + t.wordBonus(j, cfg)
		}
	}

	for i := 1; i < len(q); i++ {
		// gapBest is max(prev[k] + penalty*k) over k <= j-2, so that
		// gapBest - penalty*(j-1) charges penalty per skipped rune.
		gapBest := unset
		for j := 0; j < m; j++ {
			cur[j] = unset
			if j >= 2 && prev[j-2] != unset {
				if v := prev[j-2] + cfg.DistancePenalty*(j-2); v > gapBest {
					gapBest = v
				}
			}
			if c[j] != q[i] {
				continue
			}
			best := unset
			if j >= 1 && prev[j-1] != unset {
				best = prev[j-1] + cfg.ConsecutiveBonus
			}
			if gapBest != unset {
				if v := gapBest - cfg.DistancePenalty*(j-1); v > best {
					best = v
				}
			}
			if best == unset {
				continue
			}
			cur[j] = best + CharScore + t.wordBonus(j, cfg)
		}
		prev, cur = cur, prev
	}

	best := unset
	for _, v := range prev {
		if v > best {
			best = v
		}
	}
	return best
}

func (t Target) wordBonus(j int, cfg Config) int {
	if t.starts[j] {
		return cfg.WordStartBonus
	}
	return 0
}
