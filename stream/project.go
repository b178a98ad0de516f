package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A Project is the full description of a DUT and its channels.
type Project struct {
	Top        string       `json:"top" yaml:"top"`
	TopFile    string       `json:"topFile,omitempty" yaml:"topFile,omitempty"`
	Clock      string       `json:"clk,omitempty" yaml:"clk,omitempty"`
	Reset      string       `json:"reset,omitempty" yaml:"reset,omitempty"`
	Formula    *FormulaSpec `json:"formula,omitempty" yaml:"formula,omitempty"`
	Targets    []Descriptor `json:"targets" yaml:"targets"`
	Initiators []Descriptor `json:"initiators" yaml:"initiators"`
}

// TopFileName returns the HDL file holding the top module.
func (p *Project) TopFileName() string {
	if p.TopFile != "" {
		return p.TopFile
	}

	return p.Top + ".v"
}

// FormulaFor returns the formula a target uses: its own, the project default,
// or nil when the default random formula applies.
func (p *Project) FormulaFor(d Descriptor) *FormulaSpec {
	if d.Formula != nil {
		return d.Formula
	}

	return p.Formula
}

// Validate checks every descriptor and the cross-channel constraints. It
// returns the first problem found.
func (p *Project) Validate() error {
	if !identifier.MatchString(p.Top) {
		return &DescriptorError{
			Field:  "top",
			Reason: fmt.Sprintf("%q is not a legal module name", p.Top),
		}
	}

	for _, port := range []struct{ field, value string }{
		{"clk", p.Clock}, {"reset", p.Reset},
	} {
		if port.value != "" && !identifier.MatchString(port.value) {
			return &DescriptorError{
				Field:  port.field,
				Reason: fmt.Sprintf("%q is not a legal port name", port.value),
			}
		}
	}

	if len(p.Targets) == 0 && len(p.Initiators) == 0 {
		return &DescriptorError{
			Field:  "targets",
			Reason: "project has neither targets nor initiators",
		}
	}

	ports := portSet{}
	if p.Clock != "" {
		ports[p.Clock] = "the clock"
	}
	if p.Reset != "" {
		if prev, dup := ports[p.Reset]; dup {
			return &DescriptorError{
				Field:  "reset",
				Reason: fmt.Sprintf("port %q is already %s", p.Reset, prev),
			}
		}
		ports[p.Reset] = "the reset"
	}

	check := func(dir Direction, list []Descriptor) error {
		for _, d := range list {
			if err := d.Validate(dir); err != nil {
				return err
			}

			if err := ports.claim(dir, d); err != nil {
				return err
			}
		}

		return nil
	}

	if err := check(Target, p.Targets); err != nil {
		return err
	}

	return check(Initiator, p.Initiators)
}

// portSet maps every DUT port bound so far to a description of its user. A
// port can be bound to one harness signal only.
type portSet map[string]string

func (s portSet) claim(dir Direction, d Descriptor) error {
	for _, port := range []struct{ field, name string }{
		{"data", d.Name}, {"valid", d.Valid}, {"ready", d.Ready},
	} {
		if prev, dup := s[port.name]; dup {
			return &DescriptorError{
				Direction: dir,
				Channel:   d.Name,
				Field:     port.field,
				Reason:    fmt.Sprintf("port %q is already %s", port.name, prev),
			}
		}

		s[port.name] = fmt.Sprintf("the %s of %s %q", port.field, dir, d.Name)
	}

	return nil
}

// Load reads a project from a JSON (.json) or YAML (.yaml, .yml) file and
// validates it.
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read project %s", path)
	}

	p, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load project %s", path)
	}

	return p, nil
}

// Parse decodes a project of the given format (".json", ".yaml" or ".yml")
// and validates it.
func Parse(raw []byte, format string) (*Project, error) {
	p := &Project{}

	switch strings.ToLower(format) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(p); err != nil {
			return nil, errors.Wrap(err, "bad JSON project")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(p); err != nil {
			return nil, errors.Wrap(err, "bad YAML project")
		}
	default:
		return nil, errors.Errorf("unsupported project format %q", format)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}
