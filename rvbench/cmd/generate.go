package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rvbench/emit"
	"github.com/sarchlab/rvbench/harness"
)

var (
	generateResetCycles int
	generateMargin      int
)

var generateCmd = &cobra.Command{
	Use:     "generate <project> [output]",
	Aliases: []string{"gen"},
	Short:   "Generate the Verilator harness sources",
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
		p, output := loadProject(args)

		ctx, err := emit.NewContext(p)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		ctx, err = ctx.WithResetCycles(generateResetCycles).
			WithSettleMargin(generateMargin)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		files, err := emit.Render(ctx)
		if err != nil {
			log.Fatalf("Error rendering harness: %v", err)
		}

		if err := emit.WriteAll(output, files); err != nil {
			log.Fatalf("Error writing harness: %v", err)
		}

		fmt.Printf("Harness for %s written to %s\n", p.Top, output)
	},
}

func init() {
	generateCmd.Flags().IntVar(&generateResetCycles, "reset-cycles",
		harness.DefaultResetCycles, "clock cycles reset is held")
	generateCmd.Flags().IntVar(&generateMargin, "margin",
		harness.DefaultSettleMargin, "cycles run past the length of each target")

	rootCmd.AddCommand(generateCmd)
}
