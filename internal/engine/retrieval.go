package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chat-reply-engine/internal/fuzzy"
	"chat-reply-engine/internal/index"
	"chat-reply-engine/internal/metrics"
	"chat-reply-engine/internal/types"
)

// ErrNoCorpusEntries is returned when a query reaches an engine that has
// nothing to answer with.
var ErrNoCorpusEntries = errors.New("no corpus entries")

type Config struct {
	Scoring fuzzy.Config

	// Workers > 1 splits per-entry scoring across goroutines. The selected
	// entry is the same as with a single worker.
	Workers int
}

func DefaultConfig() Config {
	return Config{Scoring: fuzzy.DefaultConfig(), Workers: 1}
}

// Picker chooses an index in [0, n).
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

type lockedPicker struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (p *lockedPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.IntN(n)
}

type Option func(*Engine)

// WithPicker replaces the source used to choose among responses.
func WithPicker(p Picker) Option {
	return func(e *Engine) { e.picker = p }
}

// WithSeed makes response choice reproducible for a given seed.
func WithSeed(seed uint64) Option {
	return WithPicker(&lockedPicker{r: rand.New(rand.NewPCG(seed, seed))})
}

type Engine struct {
	corpus  *index.Corpus
	targets []fuzzy.Target
	config  Config
	picker  Picker
}

// NewEngine prepares an engine over corpus. The corpus must not be empty.
func NewEngine(corpus *index.Corpus, config Config, opts ...Option) (*Engine, error) {
	if err := corpus.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	targets := make([]fuzzy.Target, corpus.Len())
	for i := range targets {
		targets[i] = fuzzy.NewTarget(corpus.Entry(i).Request)
	}

	e := &Engine{
		corpus:  corpus,
		targets: targets,
		config:  config,
		picker:  globalPicker{},
	}
	for _, opt := range opts {
		opt(e)
	}
	metrics.SetCorpusEntries(corpus.Len())
	return e, nil
}

// Match is the outcome of one query.
type Match struct {
	Position int         `json:"position"`
	Entry    types.Entry `json:"entry"`
	Score    int         `json:"score"`
	Matched  bool        `json:"matched"`
	Response string      `json:"response"`
}

// Respond returns one reply recorded for the request that best matches query.
func (e *Engine) Respond(query string) (string, error) {
	m, err := e.Retrieve(query)
	if err != nil {
		return "", err
	}
	return m.Response, nil
}

// Retrieve scores query against every entry and picks a response of the
// best one. Entries that do not match score 0. On ties the last entry wins.
func (e *Engine) Retrieve(query string) (*Match, error) {
	if e == nil || len(e.targets) == 0 {
		return nil, ErrNoCorpusEntries
	}
	start := time.Now()

	p := fuzzy.Compile(query)
	var c candidate
	if e.config.Workers > 1 && len(e.targets) > e.config.Workers {
		c = e.bestParallel(p, e.config.Workers)
	} else {
		c = e.bestIn(p, 0, len(e.targets))
	}

	entry := e.corpus.Entry(c.pos)
	m := &Match{
		Position: c.pos,
		Entry:    entry,
		Score:    c.score,
		Matched:  c.matched,
		Response: entry.Responses[e.picker.IntN(len(entry.Responses))],
	}

	metrics.ObserveQuery(time.Since(start), m.Score, m.Matched)
	log.Debug().
		Str("component", "engine").
		Int("position", m.Position).
		Int("score", m.Score).
		Bool("matched", m.Matched).
		Msg("query answered")
	return m, nil
}

type candidate struct {
	pos     int
	score   int
	matched bool
}

// bestIn folds over targets[lo:hi], replacing on >= so the last maximum wins.
func (e *Engine) bestIn(p fuzzy.Pattern, lo, hi int) candidate {
	best := candidate{pos: -1}
	for i := lo; i < hi; i++ {
		score, ok := p.Score(e.targets[i], e.config.Scoring)
		if !ok {
			score = 0
		}
		if best.pos < 0 || score >= best.score {
			best = candidate{pos: i, score: score, matched: ok}
		}
	}
	return best
}

// bestParallel scores contiguous chunks concurrently and reduces the chunk
// winners in chunk order with the same >= rule.
func (e *Engine) bestParallel(p fuzzy.Pattern, workers int) candidate {
	n := len(e.targets)
	size := (n + workers - 1) / workers
	results := make([]candidate, 0, workers)
	for lo := 0; lo < n; lo += size {
		results = append(results, candidate{pos: -1})
	}

	var wg sync.WaitGroup
	for k := range results {
		lo := k * size
		hi := min(lo+size, n)
		wg.Add(1)
		go func(k, lo, hi int) {
			defer wg.Done()
			results[k] = e.bestIn(p, lo, hi)
		}(k, lo, hi)
	}
	wg.Wait()

	best := candidate{pos: -1}
	for _, r := range results {
		if r.pos < 0 {
			continue
		}
		if best.pos < 0 || r.score >= best.score {
			best = r
		}
	}
	return best
}

// Len is the number of entries the engine answers from.
func (e *Engine) Len() int { return len(e.targets) }

// ResponseCount is the number of distinct replies the engine can return.
func (e *Engine) ResponseCount() int { return e.corpus.ResponseCount() }
