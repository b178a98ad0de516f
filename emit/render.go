package emit

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/pkg/errors"

	"github.com/sarchlab/rvbench/image"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// FileNames lists the generated files in the order they are written.
var FileNames = []string{
	"Makefile",
	"tb.cpp",
	"tb_helper.hpp",
	"top_tb.sv",
	"waves.tcl",
}

var templates = template.Must(
	template.New("").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl"))

func itoa(i int) string {
	return strconv.Itoa(i)
}

// Render produces the content of every harness file.
func Render(ctx *TemplateContext) (map[string][]byte, error) {
	files := make(map[string][]byte, len(FileNames))

	for _, name := range FileNames {
		var buf bytes.Buffer
		err := templates.ExecuteTemplate(&buf, name+".tmpl", ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering %s", name)
		}

		files[name] = buf.Bytes()
	}

	return files, nil
}

// WriteAll writes rendered files into dir, creating it if needed.
func WriteAll(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &image.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	for _, name := range FileNames {
		content, found := files[name]
		if !found {
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0644); err != nil {
			return &image.IOError{Op: "write", Path: path, Err: err}
		}
	}

	return nil
}
