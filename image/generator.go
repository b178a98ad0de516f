package image

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/sarchlab/rvbench/stream"
)

// A Generator turns target descriptors into images.
//
// By default the random source is seeded from the wall clock, so images drawn
// from random formulas differ from run to run. WithSeed switches to
// reproducible mode, where every channel gets its own source derived from the
// seed and the channel name.
type Generator struct {
	formulas     *Registry
	reproducible bool
	seed         int64
	shared       *rand.Rand
}

// NewGenerator creates a non-reproducible generator with the built-in
// formulas.
func NewGenerator() *Generator {
	return &Generator{
		formulas: NewRegistry(),
		shared:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSeed turns on reproducible mode.
func (g *Generator) WithSeed(seed int64) *Generator {
	g.reproducible = true
	g.seed = seed

	return g
}

// WithRegistry replaces the formula registry.
func (g *Generator) WithRegistry(r *Registry) *Generator {
	g.formulas = r
	return g
}

// Reproducible tells whether the generator runs in reproducible mode.
func (g *Generator) Reproducible() bool {
	return g.reproducible
}

func (g *Generator) sourceFor(name string) *rand.Rand {
	if !g.reproducible {
		return g.shared
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(name))

	return rand.New(rand.NewSource(g.seed ^ int64(h.Sum64())))
}

// Generate builds the image of a target descriptor. The descriptor's own
// Formula is used; callers resolve project defaults beforehand.
func (g *Generator) Generate(d stream.Descriptor) (img Image, err error) {
	if err = d.Validate(stream.Target); err != nil {
		return Image{}, err
	}

	spec := stream.FormulaSpec{Name: DefaultFormula}
	if d.Formula != nil {
		spec = *d.Formula
	}

	index := -1
	defer func() {
		if r := recover(); r != nil {
			img = Image{}
			err = &FormulaError{
				Channel: d.Name,
				Formula: spec.String(),
				Index:   index,
				Err:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	formula, err := g.formulas.Lookup(spec)
	if err != nil {
		return Image{}, &FormulaError{
			Channel: d.Name, Formula: spec.String(), Index: -1, Err: err}
	}

	next := formula(d.Width, g.sourceFor(d.Name))
	limit := mask(d.Width)
	words := make([]uint64, d.Length)

	for index = 0; index < d.Length; index++ {
		word, wordErr := next(index)
		if wordErr != nil {
			return Image{}, &FormulaError{
				Channel: d.Name, Formula: spec.String(), Index: index, Err: wordErr}
		}

		if word > limit {
			return Image{}, &FormulaError{
				Channel: d.Name,
				Formula: spec.String(),
				Index:   index,
				Err: fmt.Errorf("word %#x does not fit in %d bits",
					word, d.Width),
			}
		}

		words[index] = word
	}

	return Image{Width: d.Width, Words: words}, nil
}
