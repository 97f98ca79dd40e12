package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"psv/cmd/psv/ui"
	"psv/internal/generate"
	"psv/internal/store"
)

var (
	presetsFile  string
	historyDB    string
	historyLimit int
	historyRun   string
	historyJSON  bool
)

// presetsCmd lists the named input sequences
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the named input presets",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

// historyCmd shows recorded benchmark runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show benchmark runs recorded with --history",
	Long: `Lists the most recent runs stored in the history database, newest first.
With --run, lists the failed trials of one run instead.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	presetsCmd.Flags().StringVar(&presetsFile, "file", "", "Also list presets from this YAML file")

	historyCmd.Flags().StringVar(&historyDB, "db", "", "History database (default: PSV_HISTORY_DB)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the failed trials of this run id")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print JSON")
}

func runPresets(cmd *cobra.Command, args []string) error {
	presets, err := loadPresets(presetsFile)
	if err != nil {
		return err
	}
	table := ui.NewSimpleTable("Presets", []string{"Name", "Length", "Disorder", "Description"})
	for _, p := range presets {
		table.AddRow(
			p.Name,
			strconv.Itoa(len(p.Numbers)),
			fmt.Sprintf("%.0f%%", generate.DisorderRatio(p.Numbers)*100),
			p.Description,
		)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := historyDB
	if path == "" {
		path = loadedConfig().History.DatabasePath
	}
	if path == "" {
		return fmt.Errorf("no history database: pass --db or set PSV_HISTORY_DB")
	}

	hs, err := store.Open(path)
	if err != nil {
		return err
	}
	defer hs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out := cmd.OutOrStdout()
	styles := ui.DefaultStyles()

	if historyRun != "" {
		failures, err := hs.Failures(ctx, historyRun)
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(out, failures)
		}
		if len(failures) == 0 {
			fmt.Fprintf(out, "No failed trials recorded for run %s\n", historyRun)
			return nil
		}
		table := ui.NewSimpleTable("Failed trials of "+historyRun, []string{"Trial", "Reason", "Numbers", "Message"})
		for _, f := range failures {
			table.AddRow(strconv.Itoa(f.Trial), string(f.Reason), fmt.Sprint(f.Numbers), f.Message)
		}
		fmt.Fprint(out, table.View(styles))
		return nil
	}

	runs, err := hs.RecentRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet")
		return nil
	}
	table := ui.NewSimpleTable("Recent runs", []string{"Run", "Started", "Executable", "Length", "Trials", "Failed", "Min", "Average", "Max"})
	for _, r := range runs {
		trials := strconv.Itoa(r.Completed)
		if r.Cancelled {
			trials += "/" + strconv.Itoa(r.Trials) + " (cancelled)"
		}
		table.AddRow(
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Executable,
			strconv.Itoa(r.Length),
			trials,
			strconv.Itoa(r.Failures),
			r.MinString(),
			r.AverageString(),
			r.MaxString(),
		)
	}
	fmt.Fprint(out, table.View(styles))
	return nil
}
