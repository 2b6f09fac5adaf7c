// Package codegen builds human-readable short codes of the form
// "adjective-noun".
package codegen

import (
	"fmt"
	"math/rand/v2"
)

const (
	separator = "-"

	// после стольких промахов переходим к перебору свободных пар
	maxRandomAttempts = 64

	disambiguatorRange = 10000
)

var (
	Adjectives = []string{
		"happy", "quick", "lazy", "bright", "calm", "bold", "cool", "fast",
		"gentle", "quiet", "sharp", "smooth", "strong", "swift", "warm", "wise",
		"ancient", "clever", "eager", "fierce", "golden", "grand", "jolly", "keen",
	}

	Nouns = []string{
		"cat", "dog", "bird", "fish", "lion", "tiger", "eagle", "wolf",
		"bear", "fox", "deer", "horse", "snake", "dragon", "phoenix", "whale",
		"mountain", "river", "forest", "ocean", "storm", "flame", "shadow", "star",
	}
)

type Generator struct {
	adjectives []string
	nouns      []string
	rnd        *rand.Rand
}

type Option func(*Generator)

// WithRand fixes the random source, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = r
	}
}

// WithWords replaces the default word lists.
func WithWords(adjectives, nouns []string) Option {
	return func(g *Generator) {
		g.adjectives = adjectives
		g.nouns = nouns
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		adjectives: Adjectives,
		nouns:      Nouns,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Capacity is the number of distinct codes without a numeric suffix.
func (g *Generator) Capacity() int {
	return len(g.adjectives) * len(g.nouns)
}

// Generate returns a code that is not in existing. Not safe for concurrent
// use when built WithRand; callers serialize allocation anyway.
func (g *Generator) Generate(existing map[string]struct{}) string {
	for range maxRandomAttempts {
		code := g.pair(g.intn(len(g.adjectives)), g.intn(len(g.nouns)))
		if _, taken := existing[code]; !taken {
			return code
		}
	}

	if free := g.freePairs(existing); len(free) > 0 {
		return free[g.intn(len(free))]
	}

	// все пары заняты: расширяем пространство числовым суффиксом
	for {
		code := fmt.Sprintf("%s%s%d",
			g.pair(g.intn(len(g.adjectives)), g.intn(len(g.nouns))),
			separator,
			g.intn(disambiguatorRange),
		)
		if _, taken := existing[code]; !taken {
			return code
		}
	}
}

func (g *Generator) freePairs(existing map[string]struct{}) []string {
	var free []string
	for a := range g.adjectives {
		for n := range g.nouns {
			code := g.pair(a, n)
			if _, taken := existing[code]; !taken {
				free = append(free, code)
			}
		}
	}
	return free
}

func (g *Generator) pair(a, n int) string {
	return g.adjectives[a] + separator + g.nouns[n]
}

func (g *Generator) intn(n int) int {
	if g.rnd != nil {
		return g.rnd.IntN(n)
	}
	return rand.IntN(n)
}
