package user

import (
	"time"

	"github.com/FACorreiaa/go-user-rating/internal/types"
)

// checkUnmodifiedSince fails when updatedAt is later than since. HTTP dates
// carry whole seconds, so updatedAt is truncated to the second first and a
// since within that same second passes regardless of its fraction.
func checkUnmodifiedSince(updatedAt time.Time, since *time.Time) error {
	if since == nil {
		return nil
	}
	if updatedAt.Truncate(time.Second).After(*since) {
		return types.ErrPreconditionFailed
	}
	return nil
}
