// Package generator builds typing prompts from word pools.
package generator

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Bounds applied to prompt requests.
const (
	MinWords      = 5
	MaxWords      = 1000
	MaxNumberRate = 0.5
	maxNumber     = 10000
)

// fallbackSentences are used when no word pool is available.
var fallbackSentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Typing fast is useful, but typing accurately is even better.",
	"Small consistent improvements compound over time.",
	"Good software is built through iteration and careful testing.",
	"Practice a little every day and the speed will follow.",
}

// Options controls prompt generation.
type Options struct {
	Words      int
	NumberRate float64
	CapsPct    float64
	PunctPct   float64
	PunctSet   []rune
}

// Clamp limits the options to the supported ranges.
func (o Options) Clamp() Options {
	o.Words = min(max(o.Words, MinWords), MaxWords)
	o.NumberRate = min(max(o.NumberRate, 0), MaxNumberRate)
	o.CapsPct = min(max(o.CapsPct, 0), 1)
	o.PunctPct = min(max(o.PunctPct, 0), 1)
	return o
}

// Generator produces randomized typing text. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks count words uniformly from pool. With probability
// numberRate a word is replaced by a random number below 10000.
func (g *Generator) Generate(pool []string, opts Options) []string {
	if len(pool) == 0 || opts.Words <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]string, 0, opts.Words)
	for i := 0; i < opts.Words; i++ {
		if opts.NumberRate > 0 && g.rnd.Float64() < opts.NumberRate {
			result = append(result, strconv.Itoa(g.rnd.Intn(maxNumber)))
			continue
		}
		word := pool[g.rnd.Intn(len(pool))]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

// Prompt generates a single-spaced prompt. An empty pool falls back to a
// fixed set of sentences.
func (g *Generator) Prompt(pool []string, opts Options) string {
	if len(pool) == 0 {
		return strings.Join(fallbackSentences, " ")
	}
	return strings.Join(g.Generate(pool, opts), " ")
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
