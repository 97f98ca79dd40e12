package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"psv/internal/generate"
	"psv/internal/logging"
	"psv/internal/sim"
)

var (
	genLength       int
	genShape        string
	genNumbers      string
	genPreset       string
	genPresetsFile  string
	genRange        string
	genDisorder     int
	genMetric       string
	genMinSwaps     int
	genShuffleFirst bool
	genTimeout      time.Duration
	genSeed         uint64
	genNormalize    bool
	genStats        bool
)

// progressEvery is how often (in search iterations) verbose mode logs.
const progressEvery = 100000

// generateCmd prints an input sequence
var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Print an input sequence of a given shape or disorder",
	Long: `Prints a space separated sequence of distinct integers, ready to pass to a
push_swap program.

Shapes: ordered, reverse, random, ranged, arbitrary, preset.
With --disorder the sequence is found by a randomized search that stops once
the metric hits the target; an unreachable target runs until --timeout or
Ctrl-C, in which case nothing is printed.

Example:
  ./push_swap $(psv generate --length 100 --disorder 20 --shuffle-first)`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genLength, "length", "l", 10, "Number of values")
	f.StringVar(&genShape, "shape", "random", "Initial ordering when --disorder is not set")
	f.StringVar(&genNumbers, "numbers", "", "Numbers for the arbitrary shape")
	f.StringVar(&genPreset, "preset", "", "Preset name (implies --shape preset)")
	f.StringVar(&genPresetsFile, "presets-file", "", "Extra YAML preset battery")
	f.StringVar(&genRange, "range", "", "Draw values from MIN:MAX")
	f.IntVar(&genDisorder, "disorder", 0, "Target disorder")
	f.StringVar(&genMetric, "metric", "adjacent", "Disorder metric: adjacent or pairwise")
	f.IntVar(&genMinSwaps, "min-swaps", 0, "Random swaps applied before the search")
	f.BoolVar(&genShuffleFirst, "shuffle-first", false, "Start the search from a shuffled sequence")
	f.DurationVar(&genTimeout, "timeout", 0, "Give up the search after this long (0 = until Ctrl-C)")
	f.Uint64Var(&genSeed, "seed", 0, "Seed for a reproducible sequence (0 = random)")
	f.BoolVar(&genNormalize, "normalize", false, "Replace values by their ranks 0..n-1")
	f.BoolVar(&genStats, "stats", false, "Print disorder measures to stderr")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if genTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, genTimeout)
		defer cancel()
	}

	gen := generate.NewGenerator()
	if genSeed != 0 {
		gen = generate.NewSeededGenerator(genSeed)
	}

	var (
		seq sim.Sequence
		err error
	)
	if cmd.Flags().Changed("disorder") {
		seq, err = searchDisorder(ctx, gen)
		if errors.Is(err, generate.ErrCancelled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
		}
	} else {
		seq, err = buildShape(gen)
	}
	if err != nil {
		return err
	}

	if genNormalize {
		seq = sim.Normalize(seq)
	}
	fmt.Fprintln(cmd.OutOrStdout(), seq.String())
	if genStats {
		printDisorderStats(cmd, seq)
	}
	return nil
}

func searchDisorder(ctx context.Context, gen *generate.Generator) (sim.Sequence, error) {
	metric, err := generate.ParseMetric(genMetric)
	if err != nil {
		return nil, err
	}
	rng, err := parseRange(genRange, loadedConfig())
	if err != nil {
		return nil, err
	}
	d := generate.DisorderSpec{
		Target:       genDisorder,
		Metric:       metric,
		MinSwaps:     genMinSwaps,
		ShuffleFirst: genShuffleFirst,
	}
	if !d.Reachable(genLength) {
		logger.Warn("disorder target unreachable, search only ends on timeout or Ctrl-C",
			zap.Int("target", d.Target), zap.Int("max", metric.Max(genLength)))
	}
	gen.Progress = func(iteration, current int) {
		if iteration > 0 && iteration%progressEvery == 0 {
			logging.GenerateDebug("iteration %d: %s=%d target=%d", iteration, metric, current, d.Target)
		}
	}

	start := time.Now()
	seq, err := gen.Generate(ctx, genLength, rng, d)
	logger.Debug("disorder search finished", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	return seq, err
}

func buildShape(gen *generate.Generator) (sim.Sequence, error) {
	shape, err := generate.ParseShape(genShape)
	if err != nil {
		return nil, err
	}
	if genPreset != "" {
		shape = generate.ShapePreset
	}
	if genNumbers != "" && shape == generate.ShapeRandom {
		shape = generate.ShapeArbitrary
	}

	req := generate.Request{Shape: shape, Length: genLength, Numbers: genNumbers, Preset: genPreset}
	switch shape {
	case generate.ShapeRanged:
		if req.Range, err = parseRange(genRange, loadedConfig()); err != nil {
			return nil, err
		}
		if !req.Range.Custom {
			return nil, fmt.Errorf("the ranged shape needs --range MIN:MAX")
		}
	case generate.ShapePreset:
		if req.Presets, err = loadPresets(genPresetsFile); err != nil {
			return nil, err
		}
	}
	return gen.Build(req)
}

// loadPresets returns the built-in presets plus those in path.
func loadPresets(path string) ([]generate.Preset, error) {
	presets := generate.DefaultPresets()
	if path == "" {
		return presets, nil
	}
	extra, err := generate.LoadPresets(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets from %s: %w", path, err)
	}
	return append(presets, extra...), nil
}

func printDisorderStats(cmd *cobra.Command, seq sim.Sequence) {
	fmt.Fprintf(cmd.ErrOrStderr(), "length=%d adjacent=%d pairwise=%d disorder=%.2f%%\n",
		len(seq),
		generate.CountAdjacentInversions(seq),
		generate.CountPairwiseInversions(seq),
		generate.DisorderRatio(seq)*100)
}
