package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/rvbench/datarecording"
	"github.com/sarchlab/rvbench/harness"
	"github.com/sarchlab/rvbench/image"
	"github.com/sarchlab/rvbench/stream"
	"github.com/sarchlab/rvbench/tracing"
)

type simulateOptions struct {
	seedValue       uint32
	selectFunction  int
	resetCycles     int
	margin          int
	device          string
	queueDepth      int
	vcd             string
	record          string
	verbose         bool
	reportResources bool
	profile         bool
	dumpState       string
	generate        bool
	imageSeed       int64
}

var simOpts simulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate <project> [output]",
	Short: "Run the harness against a behavioral device model",
	Long: `Run the harness against a behavioral device model. Target images ` +
		`are read from the output directory (or generated first with ` +
		`--generate) and every initiator's accepted words are written there ` +
		`as <name>.mif.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		if err := envDefault(cmd, "seed-value", envSeed); err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := envDefault(cmd, "select-function", envSelectFunction); err != nil {
			log.Fatalf("Error: %v", err)
		}

		p, output := loadProject(args)
		if err := simulate(cmd, p, output, simOpts); err != nil {
			atexit.Fatalf("Error: %v", err)
		}
	},
}

func init() {
	f := simulateCmd.Flags()
	f.Uint32Var(&simOpts.seedValue, "seed-value", 0,
		"initial value of the stall counter (env "+envSeed+")")
	f.IntVar(&simOpts.selectFunction, "select-function", 0,
		"stall injection: 0 none, 1 valid, 2 ready, 3 both (env "+
			envSelectFunction+")")
	f.IntVar(&simOpts.resetCycles, "reset-cycles", harness.DefaultResetCycles,
		"clock cycles reset is held")
	f.IntVar(&simOpts.margin, "margin", harness.DefaultSettleMargin,
		"cycles run past the length of each target")
	f.StringVar(&simOpts.device, "device", "passthrough",
		"device model: passthrough or queue")
	f.IntVar(&simOpts.queueDepth, "queue-depth", 4,
		"FIFO depth of the queue device")
	f.StringVar(&simOpts.vcd, "vcd", "",
		"write a waveform to this path (.vcd is appended)")
	f.StringVar(&simOpts.record, "record", "",
		"record transfers and cycles into this SQLite database "+
			"(.sqlite3 is appended)")
	f.BoolVar(&simOpts.verbose, "verbose", false, "log every accepted word")
	f.BoolVar(&simOpts.reportResources, "report-resources", false,
		"print the CPU and memory used by the run")
	f.BoolVar(&simOpts.profile, "profile", false,
		"print the functions that took the most CPU time")
	f.StringVar(&simOpts.dumpState, "dump-state", "",
		"write the final harness state as JSON to this file")
	f.BoolVar(&simOpts.generate, "generate", false,
		"generate the target images before running")
	f.Int64Var(&simOpts.imageSeed, "seed", 0,
		"make generated images reproducible from this seed")

	rootCmd.AddCommand(simulateCmd)
}

func simulate(
	cmd *cobra.Command,
	p *stream.Project,
	output string,
	opts simulateOptions,
) error {
	if opts.generate {
		gen := image.NewGenerator()
		if cmd.Flags().Changed("seed") {
			gen.WithSeed(opts.imageSeed)
		}

		if err := image.WriteImages(output, p, gen); err != nil {
			return err
		}
	}

	images, err := loadImages(p, output)
	if err != nil {
		return err
	}

	injectValid, injectReady, err := harness.SelectFunction(opts.selectFunction)
	if err != nil {
		return err
	}

	device, err := newDevice(opts.device, p, opts.queueDepth)
	if err != nil {
		return err
	}

	h, err := harness.MakeBuilder().
		WithDevice(device).
		WithSeed(opts.seedValue).
		WithStallInjection(injectValid, injectReady).
		WithResetCycles(opts.resetCycles).
		WithSettleMargin(opts.margin).
		WithImages(images).
		Build("Harness", p)
	if err != nil {
		return err
	}

	closers, err := attachHooks(h, p, opts)
	if err != nil {
		return err
	}

	usage := startUsage(opts.profile)

	start := time.Now()
	runErr := h.Run()
	elapsed := time.Since(start)

	report, usageErr := usage.stop()

	for _, c := range closers {
		if err := c(); err != nil {
			return err
		}
	}

	if runErr != nil {
		return errors.Wrap(runErr, "running harness")
	}

	if err := h.WriteCaptures(output); err != nil {
		return err
	}

	printSummary(h, elapsed)

	if opts.dumpState != "" {
		if err := dumpState(h, opts.dumpState); err != nil {
			return err
		}
	}

	if opts.reportResources || opts.profile {
		if usageErr != nil {
			return usageErr
		}
		report.print(os.Stdout, opts.reportResources)
	}

	return nil
}

func loadImages(p *stream.Project, dir string) (map[string]image.Image, error) {
	images := make(map[string]image.Image, len(p.Targets))

	for _, d := range p.Targets {
		img, err := image.ReadFile(filepath.Join(dir, d.FileName()), d.Width)
		if err != nil {
			return nil, err
		}

		images[d.Name] = img
	}

	return images, nil
}

func newDevice(
	name string,
	p *stream.Project,
	depth int,
) (harness.Device, error) {
	widths := make([]int, len(p.Initiators))
	for i, d := range p.Initiators {
		widths[i] = d.Width
	}

	switch name {
	case "passthrough":
		return harness.NewPassthrough(len(p.Targets), widths), nil
	case "queue":
		if depth <= 0 {
			return nil, errors.Errorf("queue depth %d must be positive", depth)
		}
		return harness.NewQueue(len(p.Targets), widths, depth), nil
	default:
		return nil, errors.Errorf("unknown device %q", name)
	}
}

func attachHooks(
	h *harness.Harness,
	p *stream.Project,
	opts simulateOptions,
) ([]func() error, error) {
	var closers []func() error

	if opts.verbose {
		h.AcceptHook(harness.NewLogHook(log.New(os.Stderr, "", 0)))
	}

	if opts.vcd != "" {
		tracer := tracing.NewVCDTracer(opts.vcd, p)
		if err := tracer.Init(); err != nil {
			return nil, err
		}

		h.AcceptHook(tracer)
		closers = append(closers, tracer.Close)
	}

	if opts.record != "" {
		recorder, err := datarecording.New(opts.record)
		if err != nil {
			return nil, err
		}

		h.AcceptHook(datarecording.NewTransferRecorder(recorder, true))
		closers = append(closers, recorder.Close)
	}

	return closers, nil
}

func printSummary(h *harness.Harness, elapsed time.Duration) {
	fmt.Printf("Simulated %d cycles (%d in reset) in %v\n",
		h.Budget(), h.ResetCycles(), elapsed)

	for _, c := range h.Channels() {
		fmt.Printf("  target    %-20s %d/%d words fetched\n",
			c.Name(), c.State().Cursor, c.Length())
	}

	for _, s := range h.Sinks() {
		fmt.Printf("  initiator %-20s %d words captured\n", s.Name(), s.Len())
	}
}
