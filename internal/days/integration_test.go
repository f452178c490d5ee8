package days

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/input"
	"github.com/AaronLay10/AdventEngine/internal/ledger"
	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/progress"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
	"github.com/AaronLay10/AdventEngine/internal/storage/badger"
)

const bankExample = `987654321111111
811111111111119
234234234234278
818181911112111
`

// End to end: select the day, let the capsule run, verify against the
// ledger and persist the result.
func TestGreedySlotMaximizerEndToEnd(t *testing.T) {
	ctx := context.Background()

	kv, err := badger.OpenInMemory()
	require.NoError(t, err)
	defer kv.Close()

	bus := events.NewBus()
	store, err := progress.Open(ctx, kv, progress.WithNotifier(orchestrator.ProgressNotifier(bus, nil)))
	require.NoError(t, err)

	reg, err := Registry()
	require.NoError(t, err)

	l := ledger.New(ledger.Expectations{
		{ID: 3, Part: puzzle.Part1}: 357,
		{ID: 3, Part: puzzle.Part2}: 3121910778620,
	}, store)

	rt := orchestrator.NewRuntime(input.MapProvider{3: bankExample}, reg, l, bus)
	require.NoError(t, rt.SelectPuzzle(ctx, 3))
	_, err = rt.Settle(ctx, 10)
	require.NoError(t, err)

	var outcomes []string
	for _, e := range bus.Snapshot() {
		if e.Name == events.AnswerChecked {
			outcomes = append(outcomes, e.Fields["outcome"].(string))
		}
	}
	// Part 2's expectation is one above the computed value.
	assert.Equal(t, []string{"correct", "too_low"}, outcomes)

	assert.True(t, store.Done(3, puzzle.Part1))
	assert.False(t, store.Done(3, puzzle.Part2))

	// The record survives reopening the store on the same backend.
	reopened, err := progress.Open(ctx, kv)
	require.NoError(t, err)
	assert.True(t, reopened.Done(3, puzzle.Part1))
}
