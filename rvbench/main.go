// Command rvbench generates and runs ready/valid verification harnesses.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/rvbench/rvbench/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
