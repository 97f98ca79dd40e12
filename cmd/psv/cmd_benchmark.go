package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"psv/cmd/psv/ui"
	"psv/internal/bench"
	"psv/internal/config"
	"psv/internal/generate"
	"psv/internal/runner"
	"psv/internal/source"
	"psv/internal/store"
)

var (
	benchTrials       int
	benchLength       int
	benchExec         string
	benchStrategy     string
	benchWorkers      int
	benchTimeout      time.Duration
	benchDisorder     int
	benchMetric       string
	benchMinSwaps     int
	benchShuffleFirst bool
	benchRange        string
	benchSeed         uint64
	benchLog          string
	benchHistory      string
	benchJSON         bool
	benchNoTUI        bool
)

// benchmarkCmd runs a push_swap program against many random inputs
var benchmarkCmd = &cobra.Command{
	Use:     "benchmark",
	Aliases: []string{"bench", "b"},
	Short:   "Run a push_swap program on many random inputs and report instruction counts",
	Long: `Runs the program once per trial with a freshly generated input, replays its
output on the stack machine and reports min / average / max instruction counts
over the trials that sorted correctly.

Values not given as flags are asked for interactively. Failed trials are
appended to the failure log (error.log by default).

Example:
  psv bench --trials 500 --length 100 --exec ./push_swap --strategy adaptive`,
	Args: cobra.NoArgs,
	RunE: runBenchmark,
}

func init() {
	f := benchmarkCmd.Flags()
	f.IntVarP(&benchTrials, "trials", "n", 0, "Number of trials (asked when omitted)")
	f.IntVarP(&benchLength, "length", "l", 0, "Numbers per input (asked when omitted)")
	f.StringVarP(&benchExec, "exec", "e", "", "push_swap executable (or set PSV_EXECUTABLE)")
	f.StringVarP(&benchStrategy, "strategy", "s", "", "Strategy flag passed first: simple, medium, complex, adaptive")
	f.IntVarP(&benchWorkers, "workers", "j", 0, "Parallel trials (default: number of CPUs, or PSV_WORKERS)")
	f.DurationVar(&benchTimeout, "timeout", 0, "Per-run timeout of the program (default 10s, or PSV_TIMEOUT)")
	f.IntVar(&benchDisorder, "disorder", 0, "Generate inputs with exactly this disorder instead of uniform shuffles")
	f.StringVar(&benchMetric, "metric", "adjacent", "Disorder metric: adjacent or pairwise")
	f.IntVar(&benchMinSwaps, "min-swaps", 0, "Random swaps applied before the disorder search")
	f.BoolVar(&benchShuffleFirst, "shuffle-first", false, "Start the disorder search from a shuffled input")
	f.StringVar(&benchRange, "range", "", "Draw values from MIN:MAX instead of 0..length-1")
	f.Uint64Var(&benchSeed, "seed", 0, "Seed for reproducible inputs (0 = random)")
	f.StringVar(&benchLog, "log", "", "Failure log path (default error.log, \"-\" disables)")
	f.StringVar(&benchHistory, "history", "", "Record the run in this SQLite database (or set PSV_HISTORY_DB)")
	f.BoolVar(&benchJSON, "json", false, "Print the summary as JSON")
	f.BoolVar(&benchNoTUI, "no-tui", false, "Plain progress output even on a terminal")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	c := loadedConfig()
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	if err := resolveBenchmarkInputs(c, p); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts, err := benchmarkOptions(cmd, c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	useTUI := !benchNoTUI && !benchJSON && isTerminal(out)

	var (
		summary *bench.Summary
		h       *bench.Harness
		runErr  error
	)
	if useTUI {
		summary, h, runErr = runWithProgressView(ctx, cancel, opts, out)
	} else {
		summary, h, runErr = runWithPlainProgress(ctx, opts, out, !benchJSON)
	}
	if summary == nil {
		return runErr
	}

	if path := c.History.DatabasePath; path != "" {
		if err := saveHistory(path, summary, h.Results()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record history: %v\n", err)
		}
	}

	if benchJSON {
		if err := writeJSON(out, summary); err != nil {
			return err
		}
	} else {
		printSummary(out, summary, opts.FailureLog)
	}

	if runErr != nil {
		return fmt.Errorf("benchmark interrupted after %d of %d trials: %w", summary.Completed, summary.Trials, runErr)
	}
	return nil
}

// strategyChoices are the answers to the strategy prompt.
var strategyChoices = []string{"none", "simple", "medium", "complex", "adaptive"}

// resolveBenchmarkInputs merges flags into c and asks for anything missing.
func resolveBenchmarkInputs(c *config.Config, p *prompter) error {
	var (
		err         error
		interactive bool
	)
	if benchLength <= 0 {
		interactive = true
		if benchLength, err = p.askInt("Enter amount of sorting numbers to use", 1); err != nil {
			return err
		}
	}
	if benchTrials <= 0 {
		interactive = true
		if benchTrials, err = p.askInt("Enter amount of tests to execute", 1); err != nil {
			return err
		}
	}
	if benchExec != "" {
		c.Execution.Executable = benchExec
	}
	if c.Execution.Executable == "" {
		interactive = true
		if c.Execution.Executable, err = p.ask("Path to push_swap executable", "./push_swap"); err != nil {
			return err
		}
	}
	if benchStrategy != "" {
		c.Execution.Strategy = strings.TrimLeft(benchStrategy, "-")
	} else if interactive && c.Execution.Strategy == "" {
		// only asked once the user is already answering prompts
		choice, err := p.askChoice("Sorting strategy", strategyChoices, "none")
		if err != nil {
			return err
		}
		if choice != "none" {
			c.Execution.Strategy = choice
		}
	}
	if benchWorkers > 0 {
		c.Bench.Workers = benchWorkers
	}
	if benchTimeout > 0 {
		c.Bench.TrialTimeout = benchTimeout.String()
	}
	switch benchLog {
	case "":
	case "-":
		c.Bench.FailureLog = ""
	default:
		c.Bench.FailureLog = benchLog
	}
	if benchHistory != "" {
		c.History.DatabasePath = benchHistory
	}
	return nil
}

// benchmarkOptions builds harness options from flags and config.
func benchmarkOptions(cmd *cobra.Command, c *config.Config) (bench.Options, error) {
	strategy, err := source.ParseStrategy(c.Execution.Strategy)
	if err != nil {
		return bench.Options{}, err
	}
	exe, err := source.NewExecutable(c.Execution.Executable, strategy, c.GetTrialTimeout())
	if err != nil {
		return bench.Options{}, err
	}
	exe.MaxOutputBytes = c.Execution.MaxOutputBytes
	exe.Runner = runner.NewDirectRunnerWithConfig(runner.Config{
		DefaultTimeout: c.GetTrialTimeout(),
		MaxOutputBytes: c.Execution.MaxOutputBytes,
	})

	rng, err := parseRange(benchRange, c)
	if err != nil {
		return bench.Options{}, err
	}

	opts := bench.Options{
		Trials:        benchTrials,
		Length:        benchLength,
		Workers:       c.Bench.Workers,
		Range:         rng,
		SearchTimeout: c.GetSearchTimeout(),
		Seed:          benchSeed,
		Source:        exe,
		Executable:    exe.Path,
		Strategy:      strategy.String(),
		MaxLength:     c.Bench.MaxLength,
		FailureLog:    c.Bench.FailureLog,
	}
	if cmd.Flags().Changed("disorder") {
		metric, err := generate.ParseMetric(benchMetric)
		if err != nil {
			return bench.Options{}, err
		}
		d := generate.DisorderSpec{
			Target:       benchDisorder,
			Metric:       metric,
			MinSwaps:     benchMinSwaps,
			ShuffleFirst: benchShuffleFirst,
		}
		if !d.Reachable(benchLength) {
			return bench.Options{}, fmt.Errorf("disorder %d is outside [0, %d] for the %s metric at length %d",
				d.Target, metric.Max(benchLength), metric, benchLength)
		}
		opts.Disorder = &d
	}
	return opts, nil
}

// parseRange reads MIN:MAX and clamps it to the configured bounds. An empty
// string selects the normalized range.
func parseRange(s string, c *config.Config) (generate.RangeSpec, error) {
	if strings.TrimSpace(s) == "" {
		return generate.NormalizedRange(), nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return generate.RangeSpec{}, fmt.Errorf("range %q: want MIN:MAX", s)
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return generate.RangeSpec{}, fmt.Errorf("range %q: %w", s, err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return generate.RangeSpec{}, fmt.Errorf("range %q: %w", s, err)
	}
	if min > max {
		min, max = max, min
	}
	min = clamp(min, c.Generation.RangeMin, c.Generation.RangeMax)
	max = clamp(max, c.Generation.RangeMin, c.Generation.RangeMax)
	return generate.CustomRange(min, max), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func runWithPlainProgress(ctx context.Context, opts bench.Options, out io.Writer, show bool) (*bench.Summary, *bench.Harness, error) {
	if show {
		fmt.Fprintln(out, "Tests running.")
		pp := ui.NewPlainProgress(out, opts.Trials)
		opts.OnProgress = func(remaining, total int) { pp.Update(remaining) }
		defer pp.Finish()
	}
	h, err := bench.New(opts)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("benchmark started", zap.String("run_id", h.RunID()), zap.Int("trials", opts.Trials))
	summary, err := h.Run(ctx)
	return summary, h, err
}

func runWithProgressView(ctx context.Context, cancel func(), opts bench.Options, out io.Writer) (*bench.Summary, *bench.Harness, error) {
	title := fmt.Sprintf("Benchmarking %s: %d trials of %d numbers", opts.Executable, opts.Trials, opts.Length)
	prog := tea.NewProgram(ui.NewProgressModel(title, opts.Trials, cancel), tea.WithOutput(out))

	opts.OnProgress = func(remaining, total int) {
		prog.Send(ui.ProgressMsg{Remaining: remaining, Total: total})
	}
	opts.OnFailure = func(r bench.TrialResult) {
		prog.Send(ui.FailureMsg{Trial: r.Trial, Reason: string(r.Failure.Reason)})
	}
	h, err := bench.New(opts)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("benchmark started", zap.String("run_id", h.RunID()), zap.Int("trials", opts.Trials))

	type outcome struct {
		summary *bench.Summary
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := h.Run(ctx)
		done <- outcome{s, err}
		prog.Send(ui.DoneMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		res := <-done
		return res.summary, h, errors.Join(res.err, fmt.Errorf("progress view: %w", err))
	}
	res := <-done
	return res.summary, h, res.err
}

func printSummary(w io.Writer, s *bench.Summary, failureLog string) {
	styles := ui.DefaultStyles()

	if s.Failures > 0 {
		msg := fmt.Sprintf("%d trial(s) failed!", s.Failures)
		if failureLog != "" {
			msg += " Check " + failureLog + " to see which inputs failed."
		}
		fmt.Fprintln(w, styles.Error.Render(msg))
	} else if s.Completed > 0 {
		fmt.Fprintln(w, styles.Success.Render("Testing done with no errors!"))
	}

	table := ui.NewSimpleTable("Run "+s.RunID, []string{"Trials", "OK", "Failed", "Min", "Average", "Max", "Time"})
	table.AddRow(
		fmt.Sprintf("%d/%d", s.Completed, s.Trials),
		strconv.Itoa(s.Successes),
		strconv.Itoa(s.Failures),
		s.MinString(),
		s.AverageString(),
		s.MaxString(),
		s.Duration.Round(time.Millisecond).String(),
	)
	fmt.Fprint(w, table.View(styles))

	if len(s.FailuresByReason) > 0 {
		reasons := ui.NewSimpleTable("Failures", []string{"Reason", "Count"})
		for _, r := range bench.FailureReasons {
			if n := s.FailuresByReason[r]; n > 0 {
				reasons.AddRow(string(r), strconv.Itoa(n))
			}
		}
		fmt.Fprint(w, reasons.View(styles))
	}
	fmt.Fprintf(w, "Min: %s, Average: %s, Max: %s\n", s.MinString(), s.AverageString(), s.MaxString())
}

func saveHistory(path string, s *bench.Summary, results []bench.TrialResult) error {
	hs, err := store.Open(path)
	if err != nil {
		return err
	}
	defer hs.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.SaveRun(ctx, s, results)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
