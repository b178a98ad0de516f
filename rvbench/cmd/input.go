package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rvbench/image"
)

var inputSeed int64

var inputCmd = &cobra.Command{
	Use:     "input <project> [output]",
	Aliases: []string{"mif"},
	Short:   "Generate the input image of every target",
	Long: `Generate the input image of every target. Without --seed the ` +
		`random formula draws differ from run to run.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
		p, output := loadProject(args)

		gen := image.NewGenerator()
		if cmd.Flags().Changed("seed") {
			gen.WithSeed(inputSeed)
		}

		if err := image.WriteImages(output, p, gen); err != nil {
			log.Fatalf("Error generating images: %v", err)
		}

		fmt.Printf("%d images written to %s\n", len(p.Targets), output)
	},
}

func init() {
	inputCmd.Flags().Int64Var(&inputSeed, "seed", 0,
		"make images reproducible from this seed")

	rootCmd.AddCommand(inputCmd)
}
