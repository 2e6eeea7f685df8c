package autovoter

import (
	"math/rand"

	"github.com/ankeapp/anke-backend/internal/models"
)

// CommentAction is the tagged variant for the one comment-type action a
// post may receive per run. The eligible set is built first, then
// sampled uniformly; there is no probability weighting between variants.
type CommentAction int

const (
	ActionNewComment CommentAction = iota
	ActionUserReply
	ActionAuthorReply
)

func (a CommentAction) String() string {
	switch a {
	case ActionNewComment:
		return "new_comment"
	case ActionUserReply:
		return "user_reply"
	case ActionAuthorReply:
		return "author_reply"
	default:
		return "unknown"
	}
}

// EligibleActions builds the candidate set for a post that already has
// comments. New comments need remaining budget and a configured prompt;
// replies need at least one top-level comment and a reply prompt.
// An empty result means the post gets no comment action this run.
func EligibleActions(remaining int, topLevel int, commentPrompt, replyPrompt string) []CommentAction {
	var actions []CommentAction
	if remaining > 0 && commentPrompt != "" {
		actions = append(actions, ActionNewComment)
	}
	if topLevel > 0 && replyPrompt != "" {
		actions = append(actions, ActionUserReply, ActionAuthorReply)
	}
	return actions
}

func pickAction(rng *rand.Rand, actions []CommentAction) CommentAction {
	return actions[rng.Intn(len(actions))]
}

// varied returns base plus a uniform offset in [-variance, +variance].
func varied(rng *rand.Rand, base, variance int) int {
	return base + rng.Intn(variance*2+1) - variance
}

// actualVotes computes the number of votes to cast this run. Variance
// can push the raw value below zero; it is clamped so the reported
// count is never negative.
func actualVotes(rng *rand.Rand, s Settings) int {
	n := varied(rng, s.VotesPerRun, s.VotesVariance)
	if n < 0 {
		return 0
	}
	return n
}

// commentBudget is how many more comments the post may receive, with
// the per-post ceiling jittered so comment counts don't cluster at a
// fixed maximum across the site.
func commentBudget(rng *rand.Rand, s Settings, currentCount int) int {
	maxForPost := varied(rng, s.MaxCommentsPerPost, s.MaxCommentsVariance)
	remaining := maxForPost - currentCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// topLevelComments filters to valid reply targets.
func topLevelComments(comments []models.Comment) []models.Comment {
	var parents []models.Comment
	for _, c := range comments {
		if c.IsTopLevel() {
			parents = append(parents, c)
		}
	}
	return parents
}

// chance rolls a percent-probability gate.
func chance(rng *rand.Rand, percent int) bool {
	return rng.Float64()*100 <= float64(percent)
}
