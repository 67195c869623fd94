package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-user-rating/app/observability/metrics"
	"github.com/FACorreiaa/go-user-rating/internal/api/auth"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
type UserService interface {
	// Accounts
	Register(ctx context.Context, params types.RegisterUserParams) (*types.User, error)
	Login(ctx context.Context, nickname, password string) (string, error)

	// Lookups exclude soft-deleted users.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*types.User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]types.User, error)

	// Mutations
	UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams, unmodifiedSince *time.Time) (*types.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) (*types.User, error)
	Vote(ctx context.Context, voterID, voteeID uuid.UUID, value int) error
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger  *slog.Logger
	repo    UserRepo
	hasher  auth.PasswordHasher
	tokens  auth.TokenIssuer
	metrics *metrics.AppMetrics
	now     func() time.Time
}

// Option configures a UserServiceImpl.
type Option func(*UserServiceImpl)

// WithClock replaces the wall clock used for timestamps and vote cooldowns.
func WithClock(now func() time.Time) Option {
	return func(s *UserServiceImpl) { s.now = now }
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, hasher auth.PasswordHasher, tokens auth.TokenIssuer, m *metrics.AppMetrics, logger *slog.Logger, opts ...Option) *UserServiceImpl {
	s := &UserServiceImpl{
		logger:  logger,
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserServiceImpl) clock() time.Time {
	return s.now().UTC()
}

// fail marks span as failed. Domain errors are expected outcomes and are
// logged at warn level; anything else is logged as an error.
func fail(ctx context.Context, l *slog.Logger, span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	if types.KindOf(err) == types.KindUnexpected {
		l.ErrorContext(ctx, msg, slog.Any("error", err))
		return
	}
	l.WarnContext(ctx, msg, slog.String("kind", types.KindOf(err).String()))
}

// liveUser fetches a user and maps absent or soft-deleted rows to notFound.
func (s *UserServiceImpl) liveUser(ctx context.Context, userID uuid.UUID, notFound error) (*types.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if u.IsDeleted() {
		return nil, notFound
	}
	return u, nil
}

func validateRegistration(p types.RegisterUserParams) error {
	switch {
	case strings.TrimSpace(p.Nickname) == "":
		return types.NewValidationError("nickname is required")
	case strings.TrimSpace(p.FirstName) == "":
		return types.NewValidationError("firstName is required")
	case strings.TrimSpace(p.LastName) == "":
		return types.NewValidationError("lastName is required")
	case p.Password == "":
		return types.NewValidationError("password is required")
	case !p.Role.Valid():
		return types.NewValidationError("role must be one of user, moderator, admin")
	}
	return nil
}

// Register creates a user after checking that the nickname is unused,
// including by soft-deleted users.
func (s *UserServiceImpl) Register(ctx context.Context, params types.RegisterUserParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.nickname", params.Nickname),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"), slog.String("nickname", params.Nickname))
	l.DebugContext(ctx, "Registering user")

	if err := validateRegistration(params); err != nil {
		fail(ctx, l, span, err, "Invalid registration")
		return nil, err
	}

	_, err := s.repo.GetUserByNickname(ctx, params.Nickname)
	switch {
	case err == nil:
		fail(ctx, l, span, types.ErrDuplicateNickname, "Nickname already taken")
		return nil, types.ErrDuplicateNickname
	case !errors.Is(err, types.ErrNotFound):
		err = fmt.Errorf("error checking nickname: %w", err)
		fail(ctx, l, span, err, "Failed to check nickname")
		return nil, err
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		fail(ctx, l, span, err, "Failed to generate salt")
		return nil, err
	}

	created, err := s.repo.CreateUser(ctx, &types.User{
		Nickname:  params.Nickname,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Password:  s.hasher.Hash(params.Password, salt),
		Salt:      salt,
		Role:      params.Role,
	})
	if err != nil {
		if types.KindOf(err) == types.KindUnexpected {
			err = fmt.Errorf("error creating user: %w", err)
		}
		fail(ctx, l, span, err, "Failed to create user")
		return nil, err
	}

	s.metrics.RecordRegister(ctx)
	l.InfoContext(ctx, "User registered", slog.String("userID", created.ID.String()))
	span.SetStatus(codes.Ok, "User registered")
	return created, nil
}

// Login returns a signed token. Unknown nickname, deleted account and wrong
// password all yield types.ErrAuthFailure.
func (s *UserServiceImpl) Login(ctx context.Context, nickname, password string) (string, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("user.nickname", nickname),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"), slog.String("nickname", nickname))

	u, err := s.repo.GetUserByNickname(ctx, nickname)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		err = fmt.Errorf("error fetching user: %w", err)
		fail(ctx, l, span, err, "Failed to fetch user for login")
		return "", err
	}

	if u == nil || u.IsDeleted() || !s.hasher.Verify(password, u.Salt, u.Password) {
		s.metrics.RecordLogin(ctx, false)
		fail(ctx, l, span, types.ErrAuthFailure, "Login rejected")
		return "", types.ErrAuthFailure
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		fail(ctx, l, span, err, "Failed to issue token")
		return "", fmt.Errorf("error issuing token: %w", err)
	}

	s.metrics.RecordLogin(ctx, true)
	l.InfoContext(ctx, "User logged in", slog.String("userID", u.ID.String()))
	span.SetStatus(codes.Ok, "Login successful")
	return token, nil
}

// GetUserByID retrieves a live user by id.
func (s *UserServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetUserByID", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetUserByID"), slog.String("userID", userID.String()))

	u, err := s.liveUser(ctx, userID, types.ErrUserNotFound)
	if err != nil {
		fail(ctx, l, span, err, "Failed to fetch user")
		return nil, err
	}
	span.SetStatus(codes.Ok, "User fetched")
	return u, nil
}

// GetUserByNickname retrieves a live user by nickname.
func (s *UserServiceImpl) GetUserByNickname(ctx context.Context, nickname string) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetUserByNickname", trace.WithAttributes(
		attribute.String("user.nickname", nickname),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetUserByNickname"), slog.String("nickname", nickname))

	u, err := s.repo.GetUserByNickname(ctx, nickname)
	switch {
	case errors.Is(err, types.ErrNotFound):
		err = types.ErrUserNotFound
	case err != nil:
		err = fmt.Errorf("error fetching user: %w", err)
	case u.IsDeleted():
		err = types.ErrUserNotFound
	}
	if err != nil {
		fail(ctx, l, span, err, "Failed to fetch user")
		return nil, err
	}
	span.SetStatus(codes.Ok, "User fetched")
	return u, nil
}

// ListUsers returns page (1-based) of live users.
func (s *UserServiceImpl) ListUsers(ctx context.Context, page, pageSize int) ([]types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ListUsers", trace.WithAttributes(
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ListUsers"))

	if page < 1 || pageSize < 1 {
		err := types.NewValidationError("page and pageSize must be positive integers")
		fail(ctx, l, span, err, "Invalid pagination")
		return nil, err
	}

	if _, ok := pageOffset(page, pageSize); !ok {
		l.DebugContext(ctx, "Page lies beyond any stored data")
		span.SetStatus(codes.Ok, "Users listed")
		return []types.User{}, nil
	}

	users, err := s.repo.ListUsers(ctx, page, pageSize)
	if err != nil {
		err = fmt.Errorf("error listing users: %w", err)
		fail(ctx, l, span, err, "Failed to list users")
		return nil, err
	}

	l.DebugContext(ctx, "Users listed", slog.Int("count", len(users)))
	span.SetStatus(codes.Ok, "Users listed")
	return users, nil
}

func validateUpdate(p types.UpdateUserParams) error {
	switch {
	case p.Empty():
		return types.NewValidationError("No fields to update")
	case p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "":
		return types.NewValidationError("firstName must not be empty")
	case p.LastName != nil && strings.TrimSpace(*p.LastName) == "":
		return types.NewValidationError("lastName must not be empty")
	case p.Role != nil && !p.Role.Valid():
		return types.NewValidationError("role must be one of user, moderator, admin")
	case p.Password != nil && *p.Password == "":
		return types.NewValidationError("password must not be empty")
	}
	return nil
}

// UpdateUser applies params to a live user. With unmodifiedSince set the
// update is rejected with types.ErrPreconditionFailed if the record changed
// after that instant. The comparison uses whole seconds, the precision of an
// HTTP date: updated_at is truncated to the second, so an unmodifiedSince
// within the same second as updated_at passes even when its sub-second part
// is earlier.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams, unmodifiedSince *time.Time) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateUser", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Bool("precondition", unmodifiedSince != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateUser"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Updating user")

	if err := validateUpdate(params); err != nil {
		fail(ctx, l, span, err, "Invalid update")
		return nil, err
	}

	current, err := s.liveUser(ctx, userID, types.ErrUserNotFound)
	if err != nil {
		fail(ctx, l, span, err, "Failed to fetch user for update")
		return nil, err
	}

	if err := checkUnmodifiedSince(current.UpdatedAt, unmodifiedSince); err != nil {
		fail(ctx, l, span, err, "Precondition failed")
		return nil, err
	}

	changes := types.UserChanges{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Role:      params.Role,
		UpdatedAt: s.clock(),
	}
	if params.Password != nil {
		salt, err := s.hasher.NewSalt()
		if err != nil {
			fail(ctx, l, span, err, "Failed to generate salt")
			return nil, err
		}
		digest := s.hasher.Hash(*params.Password, salt)
		changes.Password = &digest
		changes.Salt = &salt
	}

	updated, err := s.repo.UpdateUser(ctx, userID, changes, unmodifiedSince)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			err = types.ErrUserNotFound
		case types.KindOf(err) == types.KindUnexpected:
			err = fmt.Errorf("error updating user: %w", err)
		}
		fail(ctx, l, span, err, "Failed to update user")
		return nil, err
	}

	l.InfoContext(ctx, "User updated")
	span.SetStatus(codes.Ok, "User updated")
	return updated, nil
}

// DeleteUser soft-deletes a live user and returns the deleted record.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "DeleteUser", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteUser"), slog.String("userID", userID.String()))

	if _, err := s.liveUser(ctx, userID, types.ErrUserNotFound); err != nil {
		fail(ctx, l, span, err, "Failed to fetch user for delete")
		return nil, err
	}

	deleted, err := s.repo.SoftDeleteUser(ctx, userID, s.clock())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			err = types.ErrUserNotFound
		} else {
			err = fmt.Errorf("error deleting user: %w", err)
		}
		fail(ctx, l, span, err, "Failed to delete user")
		return nil, err
	}

	l.InfoContext(ctx, "User soft-deleted")
	span.SetStatus(codes.Ok, "User deleted")
	return deleted, nil
}

// Vote applies value (+1 or -1) from voterID to voteeID's rating. A voter
// may cast one accepted vote per VoteCooldown. Nothing is written when any
// check fails.
func (s *UserServiceImpl) Vote(ctx context.Context, voterID, voteeID uuid.UUID, value int) (err error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Vote", trace.WithAttributes(
		attribute.String("vote.voter_id", voterID.String()),
		attribute.String("vote.votee_id", voteeID.String()),
		attribute.Int("vote.value", value),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Vote"),
		slog.String("voterID", voterID.String()), slog.String("voteeID", voteeID.String()))

	defer func() {
		outcome := "accepted"
		if err != nil {
			outcome = types.KindOf(err).String()
		}
		s.metrics.RecordVote(ctx, outcome)
	}()

	voter, err := s.liveUser(ctx, voterID, types.ErrVoterNotFound)
	if err != nil {
		fail(ctx, l, span, err, "Failed to fetch voter")
		return err
	}
	votee, err := s.liveUser(ctx, voteeID, types.ErrVoteeNotFound)
	if err != nil && !errors.Is(err, types.ErrVoteeNotFound) {
		fail(ctx, l, span, err, "Failed to fetch votee")
		return err
	}

	now := s.clock()
	if err = evaluateVote(voter, votee, value, now); err != nil {
		fail(ctx, l, span, err, "Vote rejected")
		return err
	}

	err = s.repo.RecordVote(ctx, types.VoteRecord{
		VoterID:  voter.ID,
		VoteeID:  votee.ID,
		Value:    value,
		VotedAt:  now,
		NotAfter: now.Add(-VoteCooldown),
	})
	if err != nil {
		if types.KindOf(err) == types.KindUnexpected {
			err = fmt.Errorf("error recording vote: %w", err)
		}
		fail(ctx, l, span, err, "Failed to record vote")
		return err
	}

	l.InfoContext(ctx, "Vote accepted", slog.Int("value", value))
	span.SetStatus(codes.Ok, "Vote accepted")
	return nil
}
