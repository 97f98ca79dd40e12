package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"psv/internal/generate"
	"psv/internal/sim"
	"psv/internal/source"
)

var (
	replayNumbers      string
	replayPreset       string
	replayInstructions string
	replayFile         string
	replayExec         string
	replayStrategy     string
	replayStep         int
	replayTrace        bool
	replayNormalize    bool
)

// replayCmd steps through an instruction list on the stack machine
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay instructions on an input and show the stacks",
	Long: `Loads an input sequence and an instruction list, then plays the instructions
on the two-stack machine. Instructions come from --instructions, --file or by
running --exec on the input.

By default the whole list is played and the final state shown; --step k stops
after k instructions and --trace prints the state after every instruction.

Example:
  psv replay --numbers "2 1 3" --instructions "sa"
  psv replay --preset five-reverse --exec ./push_swap --trace`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.StringVar(&replayNumbers, "numbers", "", "Input sequence, top of stack A first")
	f.StringVar(&replayPreset, "preset", "", "Use a built-in preset as input")
	f.StringVar(&replayInstructions, "instructions", "", "Instructions as text")
	f.StringVar(&replayFile, "file", "", "Read instructions from a file")
	f.StringVar(&replayExec, "exec", "", "Run a push_swap executable on the input")
	f.StringVar(&replayStrategy, "strategy", "", "Strategy flag for --exec")
	f.IntVar(&replayStep, "step", -1, "Stop after this many instructions")
	f.BoolVar(&replayTrace, "trace", false, "Print the stacks after every instruction")
	f.BoolVar(&replayNormalize, "normalize", false, "Replace values by their ranks 0..n-1 before replaying")
}

func runReplay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	seq, err := replayInput()
	if err != nil {
		return err
	}
	if replayNormalize {
		seq = sim.Normalize(seq)
	}

	src, err := replaySource()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	instructions, err := src.Instructions(ctx, seq.Clone())
	if err != nil {
		return fmt.Errorf("failed to obtain instructions: %w", err)
	}

	pb := sim.NewPlayback()
	pb.Load(seq, instructions)
	fmt.Fprintf(out, "Input: %s\n", seq)
	fmt.Fprintf(out, "Instructions: %d\n", pb.TotalInstructions())

	if replayStep >= 0 {
		if err := pb.SkipTo(replayStep); err != nil {
			printState(out, pb)
			return err
		}
		printState(out, pb)
		return nil
	}

	if replayTrace {
		for !pb.Done() {
			next := pb.Instructions()[pb.CurrentIndex()]
			if err := pb.StepForward(); err != nil {
				printState(out, pb)
				return err
			}
			st := pb.CurrentState()
			fmt.Fprintf(out, "%6d %-4s A: %v B: %v\n", pb.CurrentIndex(), next, st.A, st.B)
		}
	} else if _, err := pb.RunToEnd(); err != nil {
		printState(out, pb)
		return err
	}
	printState(out, pb)
	return nil
}

func printState(w io.Writer, pb *sim.Playback) {
	st := pb.CurrentState()
	fmt.Fprintf(w, "Step: %d/%d\n", pb.CurrentIndex(), pb.TotalInstructions())
	fmt.Fprintf(w, "A: %v\n", st.A)
	fmt.Fprintf(w, "B: %v\n", st.B)
	fmt.Fprintf(w, "Sorted: %t\n", pb.IsSorted())
}

func replayInput() (sim.Sequence, error) {
	switch {
	case replayNumbers != "" && replayPreset != "":
		return nil, fmt.Errorf("--numbers and --preset are mutually exclusive")
	case replayNumbers != "":
		return sim.ParseSequence(replayNumbers)
	case replayPreset != "":
		p, err := generate.FindPreset(generate.DefaultPresets(), replayPreset)
		if err != nil {
			return nil, err
		}
		return p.Sequence()
	default:
		return nil, fmt.Errorf("an input is required: --numbers or --preset")
	}
}

func replaySource() (source.Source, error) {
	set := 0
	for _, v := range []string{replayInstructions, replayFile, replayExec} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("use only one of --instructions, --file, --exec")
	}

	switch {
	case replayFile != "":
		return source.File(replayFile), nil
	case replayExec != "":
		strategy, err := source.ParseStrategy(replayStrategy)
		if err != nil {
			return nil, err
		}
		return source.NewExecutable(replayExec, strategy, loadedConfig().GetTrialTimeout())
	default:
		// an empty list is valid: it checks whether the input is already sorted
		return source.Text(replayInstructions), nil
	}
}
