package arena

import (
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// DayKey is the UTC calendar day a battle belongs to.
func DayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Candidate is a post eligible for a battle.
type Candidate struct {
	PostID   uuid.UUID
	AuthorID uuid.UUID
}

// PickPair draws two posts by different authors, skipping posts in recent.
// When the fresh pool cannot produce a pair, recent posts are allowed back.
// perm supplies the random order (rand.Perm in production).
func PickPair(candidates []Candidate, recent map[uuid.UUID]bool, perm func(int) []int) (Candidate, Candidate, bool) {
	fresh := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !recent[c.PostID] {
			fresh = append(fresh, c)
		}
	}
	if a, b, ok := pickDistinctAuthors(fresh, perm); ok {
		return a, b, true
	}
	return pickDistinctAuthors(candidates, perm)
}

func pickDistinctAuthors(pool []Candidate, perm func(int) []int) (Candidate, Candidate, bool) {
	if len(pool) < 2 {
		return Candidate{}, Candidate{}, false
	}
	order := perm(len(pool))
	first := pool[order[0]]
	for _, i := range order[1:] {
		if pool[i].AuthorID != first.AuthorID {
			return first, pool[i], true
		}
	}
	return Candidate{}, Candidate{}, false
}

// Percentages splits 100 between the two sides, rounding A down.
func Percentages(votesA, votesB int) (int, int) {
	total := votesA + votesB
	if total <= 0 {
		return 0, 0
	}
	a := votesA * 100 / total
	return a, 100 - a
}
