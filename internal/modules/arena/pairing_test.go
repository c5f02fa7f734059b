package arena

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inOrder(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func reversed(n int) []int {
	out := inOrder(n)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func TestPickPairSkipsSameAuthor(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	c := []Candidate{
		{PostID: uuid.New(), AuthorID: alice},
		{PostID: uuid.New(), AuthorID: alice},
		{PostID: uuid.New(), AuthorID: bob},
	}

	a, b, ok := PickPair(c, nil, inOrder)
	require.True(t, ok)
	assert.Equal(t, c[0], a)
	assert.Equal(t, c[2], b)

	a, b, ok = PickPair(c, nil, reversed)
	require.True(t, ok)
	assert.Equal(t, c[2], a)
	assert.Equal(t, c[1], b)
}

func TestPickPairAvoidsRecentPosts(t *testing.T) {
	c := []Candidate{
		{PostID: uuid.New(), AuthorID: uuid.New()},
		{PostID: uuid.New(), AuthorID: uuid.New()},
		{PostID: uuid.New(), AuthorID: uuid.New()},
	}
	recent := map[uuid.UUID]bool{c[0].PostID: true}

	a, b, ok := PickPair(c, recent, inOrder)
	require.True(t, ok)
	assert.Equal(t, c[1], a)
	assert.Equal(t, c[2], b)
}

func TestPickPairFallsBackToRecent(t *testing.T) {
	c := []Candidate{
		{PostID: uuid.New(), AuthorID: uuid.New()},
		{PostID: uuid.New(), AuthorID: uuid.New()},
	}
	recent := map[uuid.UUID]bool{c[0].PostID: true}

	a, b, ok := PickPair(c, recent, inOrder)
	require.True(t, ok)
	assert.Equal(t, c[0], a)
	assert.Equal(t, c[1], b)
}

func TestPickPairNeedsTwoAuthors(t *testing.T) {
	solo := uuid.New()
	_, _, ok := PickPair([]Candidate{{PostID: uuid.New(), AuthorID: solo}, {PostID: uuid.New(), AuthorID: solo}}, nil, inOrder)
	assert.False(t, ok)

	_, _, ok = PickPair([]Candidate{{PostID: uuid.New(), AuthorID: solo}}, nil, inOrder)
	assert.False(t, ok)

	_, _, ok = PickPair(nil, nil, inOrder)
	assert.False(t, ok)
}

func TestPercentages(t *testing.T) {
	a, b := Percentages(0, 0)
	assert.Equal(t, [2]int{0, 0}, [2]int{a, b})

	a, b = Percentages(1, 2)
	assert.Equal(t, [2]int{33, 67}, [2]int{a, b})

	a, b = Percentages(5, 0)
	assert.Equal(t, [2]int{100, 0}, [2]int{a, b})
}

func TestDayKeyUsesUTC(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	assert.Equal(t, "2026-01-02", DayKey(time.Date(2026, 1, 1, 22, 30, 0, 0, sp)))
}
