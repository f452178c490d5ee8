package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const defaultMaxSteps = 1 << 20

var runCmd = &cobra.Command{
	Use:   "run <day>",
	Short: "Solve one day and check its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := puzzle.Parse(args[0])
		if err != nil {
			return err
		}
		if id == puzzle.None {
			return fmt.Errorf("day must be between 1 and %d", puzzle.Count)
		}
		maxSteps, _ := cmd.Flags().GetInt("max-steps")

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := openEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer e.Close()

		return runDay(ctx, e, id, maxSteps, cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().Int("max-steps", defaultMaxSteps, "Give up if the solver has not finished after this many steps")
}

// runDay selects id, steps the solver to completion and prints every
// checked answer of the activation.
func runDay(ctx context.Context, e *engine, id puzzle.ID, maxSteps int, w io.Writer) error {
	if err := e.rt.SelectPuzzle(ctx, id); err != nil {
		return err
	}
	session := e.rt.State().SessionID

	if !slices.Contains(e.rt.Solvers(), id) {
		fmt.Fprintf(w, "%s: no solver registered\n", id)
		return nil
	}

	steps, err := e.rt.Settle(ctx, maxSteps)
	if err != nil {
		return err
	}

	for _, ev := range e.bus.Snapshot() {
		if ev.Name != events.AnswerChecked || ev.Fields["session_id"] != session {
			continue
		}
		fmt.Fprintf(w, "%s part%v: %v (%v)\n", id, ev.Fields["part"], ev.Fields["value"], ev.Fields["outcome"])
	}
	fmt.Fprintf(w, "%s finished in %d steps, %d stars total\n", id, steps, e.store.Record().Stars())
	return nil
}
