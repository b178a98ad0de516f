package image

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/rvbench/stream"
)

// DefaultFormula is used when neither the channel nor the project names one.
const DefaultFormula = "random"

// A WordFunc returns the word at an index of an image.
type WordFunc func(index int) (uint64, error)

// A Formula builds the WordFunc of a channel from its width. Formulas that
// need randomness must draw only from rng.
type Formula func(width int, rng *rand.Rand) WordFunc

// A FormulaFactory instantiates a formula from the arguments of a
// stream.FormulaSpec.
type FormulaFactory func(args []uint64) (Formula, error)

// Registry maps formula names to factories.
type Registry struct {
	factories map[string]FormulaFactory
}

// NewRegistry returns a registry holding the built-in formulas.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]FormulaFactory)}

	r.Register("random", arity(0, 0, randomFormula))
	r.Register("identity", arity(0, 0, identityFormula))
	r.Register("constant", arity(1, 1, constantFormula))
	r.Register("counter", arity(0, 2, counterFormula))
	r.Register("alternate", arity(2, 2, alternateFormula))

	return r
}

// Register adds or replaces a formula.
func (r *Registry) Register(name string, factory FormulaFactory) {
	r.factories[name] = factory
}

// Names lists the registered formulas in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// Lookup instantiates the formula a spec names.
func (r *Registry) Lookup(spec stream.FormulaSpec) (Formula, error) {
	factory, found := r.factories[spec.Name]
	if !found {
		return nil, errors.Errorf("unknown formula %q, known: %v",
			spec.Name, r.Names())
	}

	return factory(spec.Args)
}

func arity(
	min, max int,
	build func(args []uint64) Formula,
) FormulaFactory {
	return func(args []uint64) (Formula, error) {
		if len(args) < min || len(args) > max {
			return nil, fmt.Errorf("takes %d to %d arguments, got %d",
				min, max, len(args))
		}

		return build(args), nil
	}
}

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return 1<<uint(width) - 1
}

func randomFormula(_ []uint64) Formula {
	return func(width int, rng *rand.Rand) WordFunc {
		m := mask(width)
		return func(int) (uint64, error) {
			return rng.Uint64() & m, nil
		}
	}
}

func identityFormula(_ []uint64) Formula {
	return func(int, *rand.Rand) WordFunc {
		return func(i int) (uint64, error) {
			return uint64(i), nil
		}
	}
}

func constantFormula(args []uint64) Formula {
	v := args[0]
	return func(int, *rand.Rand) WordFunc {
		return func(int) (uint64, error) {
			return v, nil
		}
	}
}

// counterFormula counts from start by step, modulo 2^width.
func counterFormula(args []uint64) Formula {
	start, step := uint64(0), uint64(1)
	if len(args) > 0 {
		start = args[0]
	}
	if len(args) > 1 {
		step = args[1]
	}

	return func(width int, _ *rand.Rand) WordFunc {
		m := mask(width)
		return func(i int) (uint64, error) {
			return (start + uint64(i)*step) & m, nil
		}
	}
}

func alternateFormula(args []uint64) Formula {
	even, odd := args[0], args[1]
	return func(int, *rand.Rand) WordFunc {
		return func(i int) (uint64, error) {
			if i%2 == 0 {
				return even, nil
			}
			return odd, nil
		}
	}
}
