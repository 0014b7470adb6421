// internal/app/matching/engine.go
package matching

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
)

// Group is one formed group, members in join order.
type Group struct {
	Members []models.Participant
}

// MemberIDs returns the members' ids in join order.
func (g Group) MemberIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Engine forms groups from a participant snapshot. It is pure and safe for
// concurrent use; all state lives in the per-run locals.
type Engine struct {
	eval *Evaluator
}

// NewEngine builds an engine over the given evaluator.
func NewEngine(eval *Evaluator) *Engine {
	return &Engine{eval: eval}
}

// FormGroups partitions participants into groups of [minPlayers, maxPlayers]
// maximizing average pairwise compatibility. Participants that cannot be
// placed into a valid group are returned unmatched, in join order, so the
// caller can retry after further enrollments.
//
// Fewer than minPlayers participants yields zero groups and everyone
// unmatched; an undersized group is never formed.
func (e *Engine) FormGroups(participants []models.Participant, prefs models.Preferences, minPlayers, maxPlayers int) ([]Group, []models.Participant) {
	if len(participants) == 0 {
		return nil, nil
	}

	ordered := make([]models.Participant, len(participants))
	copy(ordered, participants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].JoinOrder < ordered[j].JoinOrder
	})

	if len(ordered) < minPlayers {
		return nil, ordered
	}

	// Scores are computed once per run, not cached across runs.
	n := len(ordered)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := e.eval.Score(ordered[i], ordered[j], prefs)
			scores[i][j] = s
			scores[j][i] = s
		}
	}

	clusters := assign(scores, n, maxPlayers)
	clusters = merge(clusters, scores, minPlayers, maxPlayers)

	var groups []Group
	var unmatched []models.Participant
	for _, c := range clusters {
		if len(c.members) < minPlayers {
			for _, idx := range c.members {
				unmatched = append(unmatched, ordered[idx])
			}
			continue
		}
		g := Group{Members: make([]models.Participant, len(c.members))}
		for i, idx := range c.members {
			g.Members[i] = ordered[idx]
		}
		groups = append(groups, g)
	}

	sort.SliceStable(unmatched, func(i, j int) bool {
		return unmatched[i].JoinOrder < unmatched[j].JoinOrder
	})
	return groups, unmatched
}

// cluster holds indices into the join-ordered participant slice. Members stay
// sorted ascending, so members[0] is always the earliest joiner.
type cluster struct {
	members []int
}

// assign is the greedy pass: visit participants in join order and place each
// into the open group with the highest average compatibility, opening a new
// group when every open group is full or hard-blocked. Ties prefer the group
// with the earliest-joining member, which is always the earliest-created
// group, so a strict epsilon improvement is required to displace the
// incumbent.
func assign(scores [][]float64, n, maxPlayers int) []*cluster {
	clusters := []*cluster{{members: []int{0}}}

	for i := 1; i < n; i++ {
		best := -1
		bestScore := 0.0
		for gi, c := range clusters {
			if len(c.members) >= maxPlayers {
				continue
			}
			avg, ok := averageScore(scores, i, c.members)
			if !ok {
				continue
			}
			if best == -1 || avg > bestScore+Epsilon {
				best, bestScore = gi, avg
			}
		}
		if best == -1 {
			clusters = append(clusters, &cluster{members: []int{i}})
			continue
		}
		clusters[best].members = append(clusters[best].members, i)
	}
	return clusters
}

// averageScore is the mean pair score of candidate against every member, or
// not-ok when any pair is hard-blocked.
func averageScore(scores [][]float64, candidate int, members []int) (float64, bool) {
	sum := 0.0
	for _, m := range members {
		s := scores[candidate][m]
		if Blocked(s) {
			return 0, false
		}
		sum += s
	}
	return sum / float64(len(members)), true
}

// merge folds undersized groups together: repeatedly take the smallest group
// below minPlayers and fold it into the next-smallest compatible group that
// stays within maxPlayers, until no merge is possible. Groups that cannot be
// merged are left for the caller to emit as unmatched.
func merge(clusters []*cluster, scores [][]float64, minPlayers, maxPlayers int) []*cluster {
	stuck := make(map[*cluster]bool)

	for {
		src := pickSmallest(clusters, func(c *cluster) bool {
			return len(c.members) < minPlayers && !stuck[c]
		})
		if src == nil {
			return clusters
		}

		dst := pickSmallest(clusters, func(c *cluster) bool {
			if c == src || len(src.members)+len(c.members) > maxPlayers {
				return false
			}
			return compatible(scores, src.members, c.members)
		})
		if dst == nil {
			stuck[src] = true
			continue
		}

		dst.members = append(dst.members, src.members...)
		sort.Ints(dst.members)
		next := clusters[:0]
		for _, c := range clusters {
			if c != src {
				next = append(next, c)
			}
		}
		clusters = next
		// Sizes changed; earlier stuck decisions may no longer hold.
		stuck = make(map[*cluster]bool)
	}
}

// pickSmallest returns the eligible cluster with the fewest members,
// preferring the earliest-joining seed on equal size.
func pickSmallest(clusters []*cluster, eligible func(*cluster) bool) *cluster {
	var best *cluster
	for _, c := range clusters {
		if !eligible(c) {
			continue
		}
		if best == nil ||
			len(c.members) < len(best.members) ||
			(len(c.members) == len(best.members) && c.members[0] < best.members[0]) {
			best = c
		}
	}
	return best
}

// compatible reports whether no cross pair between the two member sets is
// hard-blocked.
func compatible(scores [][]float64, a, b []int) bool {
	for _, i := range a {
		for _, j := range b {
			if Blocked(scores[i][j]) {
				return false
			}
		}
	}
	return true
}
