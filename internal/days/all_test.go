package days

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

func TestRegistry(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)
	assert.Equal(t, []puzzle.ID{1, 2, 3, 4, 5, 6, 7}, reg.Days())
}
