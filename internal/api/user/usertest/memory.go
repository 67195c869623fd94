// Package usertest provides an in-memory user.UserRepo for tests.
package usertest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-rating/internal/api/user"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

var _ user.UserRepo = (*MemoryRepo)(nil)

// MemoryRepo mirrors the Postgres repository semantics over a map.
// Listing order is creation time, then insertion order.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*types.User
	order []uuid.UUID
	Now   func() time.Time
}

func NewMemoryRepo(now func() time.Time) *MemoryRepo {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepo{users: map[uuid.UUID]*types.User{}, Now: now}
}

func clone(u *types.User) *types.User {
	c := *u
	if u.LastVotedAt != nil {
		t := *u.LastVotedAt
		c.LastVotedAt = &t
	}
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func (m *MemoryRepo) CreateUser(_ context.Context, u *types.User) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Nickname == u.Nickname {
			return nil, types.ErrDuplicateNickname
		}
	}
	now := m.Now().UTC()
	stored := clone(u)
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.users[stored.ID] = stored
	m.order = append(m.order, stored.ID)
	return clone(stored), nil
}

func (m *MemoryRepo) GetUserByID(_ context.Context, id uuid.UUID) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, types.ErrNotFound)
	}
	return clone(u), nil
}

func (m *MemoryRepo) GetUserByNickname(_ context.Context, nickname string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Nickname == nickname {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", nickname, types.ErrNotFound)
}

func (m *MemoryRepo) ListUsers(_ context.Context, page, pageSize int) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := make([]*types.User, 0, len(m.order))
	for _, id := range m.order {
		if u := m.users[id]; !u.IsDeleted() {
			live = append(live, u)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].CreatedAt.Before(live[j].CreatedAt) })

	out := make([]types.User, 0, min(pageSize, len(live)))
	if page < 1 || pageSize < 1 || page-1 >= (len(live)+pageSize-1)/pageSize {
		return out, nil
	}
	for i := (page - 1) * pageSize; i < len(live) && len(out) < pageSize; i++ {
		out = append(out, *clone(live[i]))
	}
	return out, nil
}

func (m *MemoryRepo) UpdateUser(_ context.Context, id uuid.UUID, changes types.UserChanges, unmodifiedSince *time.Time) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("user %s: %w", id, types.ErrNotFound)
	}
	if unmodifiedSince != nil && u.UpdatedAt.Truncate(time.Second).After(*unmodifiedSince) {
		return nil, types.ErrPreconditionFailed
	}
	if changes.FirstName != nil {
		u.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = *changes.LastName
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	if changes.Password != nil && changes.Salt != nil {
		u.Password = *changes.Password
		u.Salt = *changes.Salt
	}
	u.UpdatedAt = changes.UpdatedAt
	return clone(u), nil
}

func (m *MemoryRepo) SoftDeleteUser(_ context.Context, id uuid.UUID, at time.Time) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("user %s: %w", id, types.ErrNotFound)
	}
	u.DeletedAt = &at
	return clone(u), nil
}

func (m *MemoryRepo) RecordVote(_ context.Context, vote types.VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	votee, ok := m.users[vote.VoteeID]
	if !ok || votee.IsDeleted() {
		return types.ErrVoteeNotFound
	}
	voter, ok := m.users[vote.VoterID]
	if !ok || voter.IsDeleted() {
		return types.ErrVoterNotFound
	}
	if voter.LastVotedAt != nil && voter.LastVotedAt.After(vote.NotAfter) {
		return types.ErrRateLimited
	}
	votee.Rating += vote.Value
	at := vote.VotedAt
	voter.LastVotedAt = &at
	return nil
}

// Put stores u as is, keeping its id and timestamps.
func (m *MemoryRepo) Put(u *types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		m.order = append(m.order, u.ID)
	}
	m.users[u.ID] = clone(u)
}
