package image

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/sarchlab/rvbench/stream"
)

// WriteImages generates and writes the image of every target of a project
// into dir.
//
// Descriptor errors abort before any file is written. A formula error skips
// its target only; the remaining images are still written and all formula
// errors are returned together. I/O errors stop immediately.
func WriteImages(dir string, p *stream.Project, g *Generator) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	var formulaErrs []error
	for _, t := range p.Targets {
		d := t
		d.Formula = p.FormulaFor(t)

		img, err := g.Generate(d)
		if err != nil {
			formulaErrs = append(formulaErrs, err)
			continue
		}

		if err := WriteFile(filepath.Join(dir, d.FileName()), img); err != nil {
			return err
		}
	}

	return stderrors.Join(formulaErrs...)
}

// WriteFile writes an image atomically: a reader sees either the previous
// file or the complete new one.
func WriteFile(path string, img Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmp.Name())
		return &IOError{Op: op, Path: path, Err: err}
	}

	if err := img.Encode(tmp); err != nil {
		return fail("write", err)
	}

	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	return nil
}

// ReadFile loads an image or capture file.
func ReadFile(path string, width int) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, err := Decode(f, width)
	if err != nil {
		return Image{}, &IOError{Op: "read", Path: path, Err: err}
	}

	return img, nil
}
