package day05

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const example = `3-5
10-14
16-20
12-18

1
5
8
11
17
32
`

func TestParse(t *testing.T) {
	inv, err := Parse(example)
	require.NoError(t, err)
	assert.Len(t, inv.Fresh, 4)
	assert.Equal(t, []uint64{1, 5, 8, 11, 17, 32}, inv.IDs)

	_, err = Parse("3_5\n")
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	merged := Merge([]Range{{10, 14}, {3, 5}, {16, 20}, {12, 18}, {6, 6}})
	assert.Equal(t, []Range{{3, 6}, {10, 20}}, merged)
	assert.Nil(t, Merge(nil))
}

func TestFresh(t *testing.T) {
	merged := Merge([]Range{{3, 5}, {10, 20}})
	assert.True(t, Fresh(merged, 3))
	assert.True(t, Fresh(merged, 20))
	assert.False(t, Fresh(merged, 8))
	assert.False(t, Fresh(merged, 21))
	assert.False(t, Fresh(merged, 1))
}

func TestExample(t *testing.T) {
	inv, err := Parse(example)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), inv.CountFresh())
	assert.Equal(t, uint64(14), inv.FreshIDs())
}
