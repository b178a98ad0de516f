// Package cmd provides the command-line interface of rvbench.
package cmd

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables that provide flag defaults.
const (
	envSeed           = "RVBENCH_SEED"
	envSelectFunction = "RVBENCH_SELECT_FUNCTION"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rvbench",
	Short: "rvbench builds verification harnesses for ready/valid designs.",
	Long: `rvbench builds verification harnesses for designs with ready/valid ` +
		`stream ports. It writes Verilator harness sources, generates the ` +
		`input images that feed the target ports, and can run the harness ` +
		`against a behavioral device model.`,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"file with environment variables; ignored if missing")
}

// loadEnvFile loads variables that are not already set.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

// envDefault sets a flag from an environment variable unless the user gave
// the flag explicitly.
func envDefault(cmd *cobra.Command, flag, env string) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}

	value, found := os.LookupEnv(env)
	if !found {
		return nil
	}

	if err := cmd.Flags().Set(flag, value); err != nil {
		return errors.Wrapf(err, "%s", env)
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
