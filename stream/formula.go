package stream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A FormulaSpec names a word generation formula and its arguments. In project
// files it is either a string such as "counter(0, 2)" or an object with name
// and args.
type FormulaSpec struct {
	Name string   `json:"name" yaml:"name"`
	Args []uint64 `json:"args,omitempty" yaml:"args,omitempty"`
}

// ParseFormulaSpec parses "name" or "name(arg, arg, ...)". Arguments accept
// any base strconv.ParseUint understands with base 0 (0x.., 0b.., decimal).
func ParseFormulaSpec(s string) (FormulaSpec, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if !identifier.MatchString(s) {
			return FormulaSpec{}, errors.Errorf("bad formula name %q", s)
		}

		return FormulaSpec{Name: s}, nil
	}

	if !strings.HasSuffix(s, ")") {
		return FormulaSpec{}, errors.Errorf("formula %q misses a closing parenthesis", s)
	}

	spec := FormulaSpec{Name: strings.TrimSpace(s[:open])}
	if !identifier.MatchString(spec.Name) {
		return FormulaSpec{}, errors.Errorf("bad formula name %q", spec.Name)
	}

	body := strings.TrimSpace(s[open+1 : len(s)-1])
	if body == "" {
		return spec, nil
	}

	for _, arg := range strings.Split(body, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(arg), 0, 64)
		if err != nil {
			return FormulaSpec{}, errors.Wrapf(err, "formula %q", s)
		}
		spec.Args = append(spec.Args, v)
	}

	return spec, nil
}

func (f FormulaSpec) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}

	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = strconv.FormatUint(a, 10)
	}

	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

type formulaFields FormulaSpec

// UnmarshalJSON accepts both the string and the object form.
func (f *FormulaSpec) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		spec, err := ParseFormulaSpec(s)
		if err != nil {
			return err
		}
		*f = spec

		return nil
	}

	var fields formulaFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return errors.Wrap(err, "formula must be a string or {name, args}")
	}
	*f = FormulaSpec(fields)

	return nil
}

// UnmarshalYAML accepts both the string and the mapping form.
func (f *FormulaSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		spec, err := ParseFormulaSpec(value.Value)
		if err != nil {
			return err
		}
		*f = spec

		return nil
	}

	var fields formulaFields
	if err := value.Decode(&fields); err != nil {
		return errors.Wrap(err, "formula must be a string or {name, args}")
	}
	*f = FormulaSpec(fields)

	return nil
}
