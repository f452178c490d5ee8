package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/AdventEngine/internal/progress"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const calendarColumns = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the calendar with earned stars",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		e, err := openEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer e.Close()

		seed, err := e.store.Seed(ctx)
		if err != nil {
			return err
		}
		renderCalendar(cmd.OutOrStdout(), e.store.Record(), seed)
		return nil
	},
}

// calendarOrder returns the 25 days in the layout fixed by seed. The same
// seed always gives the same layout.
func calendarOrder(seed uint64) []puzzle.ID {
	r := rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
	ids := puzzle.All()
	r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

func renderCalendar(w io.Writer, rec progress.Record, seed uint64) {
	for i, id := range calendarOrder(seed) {
		stars := 0
		for _, p := range puzzle.Parts {
			if rec.Done(id, p) {
				stars++
			}
		}
		fmt.Fprintf(w, "%2d %-2s", int(id), strings.Repeat("*", stars))
		if (i+1)%calendarColumns == 0 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintf(w, "%d/%d stars\n", rec.Stars(), 2*puzzle.Count)
}
