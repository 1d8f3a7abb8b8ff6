package codegen

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
)

// scriptedSource returns the queued values in order, wrapping around.
type scriptedSource struct {
	values []int
	calls  int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.values[s.calls%len(s.values)] % n
	s.calls++
	return v
}

func TestNewBase62(t *testing.T) {
	gen := NewBase62()
	if gen == nil {
		t.Fatal("NewBase62() returned nil")
	}
}

func TestBase62Generator_Generate(t *testing.T) {
	t.Run("generates code of default length", func(t *testing.T) {
		gen := NewBase62()

		for range 100 {
			code := gen.Generate()
			if len(code) != Length {
				t.Fatalf("Generate() returned length %d, want %d", len(code), Length)
			}
		}
	})

	t.Run("generates only alphanumeric characters", func(t *testing.T) {
		gen := NewBase62()

		for range 200 {
			code := gen.Generate()
			for i, char := range code {
				if !strings.ContainsRune(Alphabet, char) {
					t.Errorf("Generate() produced invalid character %c at position %d", char, i)
				}
			}
		}
	})

	t.Run("generates unique codes", func(t *testing.T) {
		gen := NewBase62()
		seen := make(map[string]bool)

		for range 1000 {
			code := gen.Generate()
			if seen[code] {
				t.Errorf("Generate() produced duplicate code: %q", code)
			}
			seen[code] = true
		}
	})

	t.Run("respects WithLength", func(t *testing.T) {
		gen := NewBase62(WithLength(12))
		if got := len(gen.Generate()); got != 12 {
			t.Errorf("Generate() length = %d, want 12", got)
		}
	})

	t.Run("ignores non-positive length", func(t *testing.T) {
		gen := NewBase62(WithLength(0))
		if got := len(gen.Generate()); got != Length {
			t.Errorf("Generate() length = %d, want %d", got, Length)
		}
	})

	t.Run("ignores nil source", func(t *testing.T) {
		gen := NewBase62(WithSource(nil))
		if got := len(gen.Generate()); got != Length {
			t.Errorf("Generate() length = %d, want %d", got, Length)
		}
	})
}

func TestBase62Generator_InjectedSource(t *testing.T) {
	t.Run("maps source values onto the alphabet", func(t *testing.T) {
		src := &scriptedSource{values: []int{0, 1, 10, 35, 36, 61, 61, 0}}
		gen := NewBase62(WithSource(src))

		got := gen.Generate()
		if got != "01AZazz0" {
			t.Errorf("Generate() = %q, want %q", got, "01AZazz0")
		}
		if src.calls != Length {
			t.Errorf("source called %d times, want %d", src.calls, Length)
		}
	})

	t.Run("seeded source is deterministic", func(t *testing.T) {
		a := NewBase62(WithSource(rand.New(rand.NewPCG(1, 2))))
		b := NewBase62(WithSource(rand.New(rand.NewPCG(1, 2))))

		for range 10 {
			if x, y := a.Generate(), b.Generate(); x != y {
				t.Fatalf("same seed produced %q and %q", x, y)
			}
		}
	})

	t.Run("requests values over the whole alphabet", func(t *testing.T) {
		var bound int
		gen := NewBase62(WithSource(sourceFunc(func(n int) int {
			bound = n
			return 0
		})))
		gen.Generate()

		if bound != len(Alphabet) {
			t.Errorf("IntN called with %d, want %d", bound, len(Alphabet))
		}
	})
}

type sourceFunc func(n int) int

func (f sourceFunc) IntN(n int) int { return f(n) }

func TestBase62Generator_Distribution(t *testing.T) {
	gen := NewBase62(WithSource(rand.New(rand.NewPCG(42, 7))))
	counts := make(map[rune]int)

	const samples = 10000
	for range samples {
		for _, c := range gen.Generate() {
			counts[c]++
		}
	}

	if len(counts) != len(Alphabet) {
		t.Fatalf("saw %d distinct characters, want %d", len(counts), len(Alphabet))
	}

	expected := samples * Length / len(Alphabet)
	for char, n := range counts {
		if n < expected/2 || n > expected*2 {
			t.Errorf("character %c appeared %d times, expected about %d", char, n, expected)
		}
	}
}

func TestBase62Generator_Concurrent(t *testing.T) {
	gen := NewBase62()

	var wg sync.WaitGroup
	results := make(chan string, 1000)

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				results <- gen.Generate()
			}
		}()
	}

	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for code := range results {
		if len(code) != Length {
			t.Errorf("concurrent Generate() returned length %d", len(code))
		}
		if seen[code] {
			t.Errorf("concurrent Generate() produced duplicate: %q", code)
		}
		seen[code] = true
	}
}

func BenchmarkBase62Generator_Generate(b *testing.B) {
	gen := NewBase62()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = gen.Generate()
	}
}
