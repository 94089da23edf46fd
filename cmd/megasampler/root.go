package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/L-Jun-Jie/megasampler/internal/config"
	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/driver"
	"github.com/L-Jun-Jie/megasampler/internal/oracle/refsolver"
)

var flags struct {
	sampleCap    int64
	timeBudget   int64
	blocking     bool
	intervalSize bool
	exhaustEpoch bool
	debug        bool
	smtbit       bool
	smtbv        bool
	sat          bool
}

var rootCmd = &cobra.Command{
	Use:   "megasampler <input.smt2>",
	Short: "Sample satisfying assignments of a QF_LIA/QF_ALIA formula",
	Long: `megasampler reads an SMT-LIB2 formula over QF_LIA or QF_ALIA, runs the
generalize-and-sample loop to find many diverse satisfying assignments, and
writes one sample per line to <input>.samples.`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	def := config.Default()
	rootCmd.Flags().Int64VarP(&flags.sampleCap, "samples", "n", def.SampleCap, "global unique-sample cap")
	rootCmd.Flags().Int64VarP(&flags.timeBudget, "time", "t", int64(def.TimeBudget/time.Second), "wall-clock budget in seconds")
	rootCmd.Flags().BoolVar(&flags.blocking, "blocking", false, "add per-epoch blocking constraints")
	rootCmd.Flags().BoolVar(&flags.intervalSize, "interval-size", false, "track and report interval-box statistics")
	rootCmd.Flags().BoolVar(&flags.exhaustEpoch, "exhaust-epoch", false, "disable the sampling loop's round cap")
	rootCmd.Flags().BoolVar(&flags.debug, "debug", false, "emit trace to stderr")
	rootCmd.Flags().BoolVar(&flags.smtbit, "smtbit", false, "bitvector-sampler strategy (external, not part of core)")
	rootCmd.Flags().BoolVar(&flags.smtbv, "smtbv", false, "bitvector-sampler strategy (external, not part of core)")
	rootCmd.Flags().BoolVar(&flags.sat, "sat", false, "bitvector-sampler strategy (external, not part of core)")
}

func runSample(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg := config.Default()
	cfg.InputPath = inputPath
	cfg.SampleCap = flags.sampleCap
	cfg.TimeBudget = time.Duration(flags.timeBudget) * time.Second
	cfg.Blocking = flags.blocking
	cfg.IntervalSize = flags.intervalSize
	cfg.ExhaustEpoch = flags.exhaustEpoch
	cfg.Debug = flags.debug
	cfg.SMTBit = flags.smtbit
	cfg.SMTBV = flags.smtbv
	cfg.SAT = flags.sat

	log := zerolog.Nop()
	if cfg.Debug {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	samplesPath := inputPath + ".samples"
	out, err := os.Create(samplesPath)
	if err != nil {
		return fmt.Errorf("creating samples file: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	d := &driver.Driver{
		Oracle: &refsolver.Solver{},
		Config: cfg,
		Log:    log,
		EmitSample: func(line string) {
			fmt.Fprintln(w, line)
		},
	}

	rep, err := d.Run(context.Background())
	if err != nil {
		if me, ok := err.(*megaerrors.Error); ok {
			return fmt.Errorf("%s", me.Error())
		}
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing samples file: %w", err)
	}

	if data, err := rep.MarshalIndent(); err == nil {
		if err := os.WriteFile(inputPath+".report.json", data, 0o644); err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
	}

	color.Green("✓ %d epochs, %d unique samples → %s", rep.Epochs, rep.UniqueValidSamples, samplesPath)
	return nil
}
