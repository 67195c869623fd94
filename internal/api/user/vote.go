package user

import (
	"time"

	"github.com/FACorreiaa/go-user-rating/internal/types"
)

// VoteCooldown is how long a voter waits between two accepted votes.
const VoteCooldown = time.Hour

// evaluateVote runs the vote checks in order and returns the first failure.
// A nil or soft-deleted voter/votee counts as absent.
func evaluateVote(voter, votee *types.User, value int, now time.Time) error {
	if voter == nil || voter.IsDeleted() {
		return types.ErrVoterNotFound
	}
	if votee == nil || votee.IsDeleted() {
		return types.ErrVoteeNotFound
	}
	if voter.ID == votee.ID {
		return types.ErrSelfVote
	}
	if !canVote(voter.LastVotedAt, now) {
		return types.ErrRateLimited
	}
	if value != 1 && value != -1 {
		return types.ErrInvalidVoteValue
	}
	return nil
}

// canVote reports whether a full cooldown has elapsed since lastVotedAt.
func canVote(lastVotedAt *time.Time, now time.Time) bool {
	return lastVotedAt == nil || now.Sub(*lastVotedAt) >= VoteCooldown
}
