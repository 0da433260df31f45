package alignment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ref 90-100 M, 3I at 100, 100-105 M, 105-107 D, 107-127 M
func gappedRecord() *Record {
	return &Record{
		ReadID:    "r1",
		RefName:   "chr1",
		RefStart:  90,
		ReadStart: 5,
		LeadClip:  5,
		Blocks: []Block{
			{Match, 10},
			{Insertion, 3},
			{Match, 5},
			{Deletion, 2},
			{Match, 20},
		},
	}
}

func TestSpans(t *testing.T) {
	r := gappedRecord()
	require.NoError(t, r.Validate())
	assert.Equal(t, 37, r.RefSpan())
	assert.Equal(t, 38, r.ReadSpan())
	assert.Equal(t, 127, r.RefEnd())
	assert.Equal(t, 43, r.ReadEnd())
	assert.Equal(t, "5S10M3I5M2D20M", r.CIGAR())
	assert.True(t, r.Clipped())
}

func TestRefToRead(t *testing.T) {
	r := gappedRecord()

	cases := []struct {
		pos  int
		side Side
		want int
	}{
		{90, LeftSide, 5},
		{95, LeftSide, 10},
		{95, RightSide, 10},
		{100, LeftSide, 15},
		{100, RightSide, 18},
		{102, LeftSide, 20},
		{105, LeftSide, 23},
		{105, RightSide, 23},
		{106, LeftSide, 23},
		{106, RightSide, 23},
		{107, LeftSide, 23},
		{127, RightSide, 43},
		{127, LeftSide, 43},
	}
	for _, c := range cases {
		got, ok := RefToRead(r, c.pos, c.side)
		require.True(t, ok, "pos %d", c.pos)
		assert.Equal(t, c.want, got, "pos %d side %d", c.pos, c.side)
	}

	_, ok := RefToRead(r, 89, LeftSide)
	assert.False(t, ok)
	_, ok = RefToRead(r, 128, RightSide)
	assert.False(t, ok)
}

func TestRefToReadIdempotent(t *testing.T) {
	r := gappedRecord()
	for pos := r.RefStart; pos <= r.RefEnd(); pos++ {
		for _, side := range []Side{LeftSide, RightSide} {
			a, okA := RefToRead(r, pos, side)
			b, okB := RefToRead(r, pos, side)
			assert.Equal(t, okA, okB)
			assert.Equal(t, a, b)
		}
	}
}

func TestRefToReadMonotonic(t *testing.T) {
	r := gappedRecord()
	prev := -1
	for pos := r.RefStart; pos <= r.RefEnd(); pos++ {
		left, ok := RefToRead(r, pos, LeftSide)
		require.True(t, ok)
		right, _ := RefToRead(r, pos, RightSide)
		assert.GreaterOrEqual(t, left, prev)
		assert.GreaterOrEqual(t, right, left)
		prev = right
	}
}

func TestReadToRef(t *testing.T) {
	r := gappedRecord()

	cases := map[int]int{
		5:  90,
		14: 99,
		15: 100,
		17: 100,
		18: 100,
		20: 102,
		23: 107,
		43: 127,
	}
	for readPos, want := range cases {
		got, ok := ReadToRef(r, readPos)
		require.True(t, ok, "read pos %d", readPos)
		assert.Equal(t, want, got, "read pos %d", readPos)
	}

	_, ok := ReadToRef(r, 4)
	assert.False(t, ok)
	_, ok = ReadToRef(r, 44)
	assert.False(t, ok)
}

func TestRoundTripOnMatches(t *testing.T) {
	r := gappedRecord()
	for pos := 90; pos < 100; pos++ {
		readPos, ok := RefToRead(r, pos, LeftSide)
		require.True(t, ok)
		back, ok := ReadToRef(r, readPos)
		require.True(t, ok)
		assert.Equal(t, pos, back)
	}
}

func TestValidate(t *testing.T) {
	bad := []*Record{
		{ReadID: "a", RefName: "chr1"},
		{ReadID: "b", RefName: "", Blocks: []Block{{Match, 5}}},
		{ReadID: "c", RefName: "chr1", Blocks: []Block{{Match, 0}}},
		{ReadID: "d", RefName: "chr1", Blocks: []Block{{Insertion, 2}, {Match, 5}}},
		{ReadID: "e", RefName: "chr1", Blocks: []Block{{Match, 5}, {Deletion, 2}}},
		{ReadID: "f", RefName: "chr1", RefStart: -1, Blocks: []Block{{Match, 5}}},
	}
	for _, r := range bad {
		err := r.Validate()
		assert.True(t, errors.Is(err, ErrInvalidRecord), r.ReadID)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Block{{Match, 3}, {Match, 4}, {Insertion, 0}, {Deletion, 1}, {Deletion, 2}, {Match, 1}})
	assert.Equal(t, []Block{{Match, 7}, {Deletion, 3}, {Match, 1}}, got)
}

func TestCoversAndOverlaps(t *testing.T) {
	r := gappedRecord()
	assert.True(t, Covers(r, 90, 127))
	assert.False(t, Covers(r, 89, 100))
	assert.True(t, Overlaps(r, "chr1", 120, 200))
	assert.False(t, Overlaps(r, "chr1", 127, 200))
	assert.False(t, Overlaps(r, "chr2", 100, 110))
}
