package cmd

import (
	"log"
	"path/filepath"

	"github.com/sarchlab/rvbench/stream"
)

// loadProject reads the project named by the first argument and picks the
// output directory: the second argument or the project's directory.
func loadProject(args []string) (*stream.Project, string) {
	p, err := stream.Load(args[0])
	if err != nil {
		log.Fatalf("Error loading project: %v", err)
	}

	output := filepath.Dir(args[0])
	if len(args) > 1 {
		output = args[1]
	}

	return p, output
}
