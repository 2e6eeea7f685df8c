package autovoter

import (
	"sort"
	"time"

	"github.com/ankeapp/anke-backend/internal/models"
)

// ScoredPost pairs a candidate post with its computed priority.
// Priority only drives sort order within a run; it is never persisted.
type ScoredPost struct {
	models.Post
	Priority float64
}

// SelectPosts filters candidates by category window, scores them by
// recency and truncates to the per-run batch. The input is expected in
// created_at-descending order; ties on priority retain that order.
func SelectPosts(posts []models.Post, s Settings, now time.Time) []ScoredPost {
	scored := make([]ScoredPost, 0, len(posts))
	for _, p := range posts {
		policy := PolicyFor(p.CategoryID)
		hours := now.Sub(p.CreatedAt).Hours()
		if int(hours/24) > policy.TargetDays {
			continue
		}
		scored = append(scored, ScoredPost{Post: p, Priority: priorityFor(hours, s)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})

	if len(scored) > s.PostsPerRun {
		scored = scored[:s.PostsPerRun]
	}
	return scored
}

func priorityFor(ageHours float64, s Settings) float64 {
	if !s.PrioritizeRecentPosts {
		return 1
	}
	w := float64(s.PriorityWeight)
	switch {
	case ageHours <= 24:
		return w * 2
	case ageHours <= 48:
		return w * 1.5
	case ageHours <= float64(s.PriorityDays)*24:
		return w
	default:
		return 1
	}
}
