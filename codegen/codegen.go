// Package codegen produces random short codes for links.
// Generators are safe for concurrent use as long as their Source is.
package codegen

import "math/rand/v2"

const (
	// Alphabet is the set of characters generated codes are drawn from.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Length is the number of characters in a generated code.
	Length = 8
)

// Generator produces candidate short codes.
type Generator interface {
	Generate() string
}

// Source supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// runtimeSource draws from the runtime's per-thread ChaCha8 state.
type runtimeSource struct{}

func (runtimeSource) IntN(n int) int { return rand.IntN(n) }

type base62Generator struct {
	src    Source
	length int
}

// Option configures a generator returned by NewBase62.
type Option func(*base62Generator)

// WithSource replaces the default random source. A nil source is ignored.
func WithSource(src Source) Option {
	return func(g *base62Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// WithLength overrides the code length. Non-positive values are ignored.
func WithLength(n int) Option {
	return func(g *base62Generator) {
		if n > 0 {
			g.length = n
		}
	}
}

// NewBase62 returns a Generator emitting Length characters from Alphabet.
func NewBase62(opts ...Option) Generator {
	g := &base62Generator{
		src:    runtimeSource{},
		length: Length,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate picks every character independently; it never fails.
func (g *base62Generator) Generate() string {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = Alphabet[g.src.IntN(len(Alphabet))]
	}
	return string(b)
}
