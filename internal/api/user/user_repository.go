package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-user-rating/app/db"
	"github.com/FACorreiaa/go-user-rating/app/observability/metrics"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// CreateUser inserts a new user; the store assigns the id.
	// Returns types.ErrDuplicateNickname on a nickname conflict.
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)

	// GetUserByID and GetUserByNickname return soft-deleted rows too.
	// Returns types.ErrNotFound if no row matches.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*types.User, error)

	// ListUsers returns one page of live users ordered by creation time.
	ListUsers(ctx context.Context, page, pageSize int) ([]types.User, error)

	// UpdateUser applies changes to a live user. When unmodifiedSince is set
	// the write only happens if the stored updated_at, at second precision,
	// is not after it; otherwise types.ErrPreconditionFailed is returned.
	UpdateUser(ctx context.Context, userID uuid.UUID, changes types.UserChanges, unmodifiedSince *time.Time) (*types.User, error)

	// SoftDeleteUser stamps deleted_at on a live user.
	SoftDeleteUser(ctx context.Context, userID uuid.UUID, at time.Time) (*types.User, error)

	// RecordVote applies an accepted vote: votee rating first, then the
	// voter's last_voted_at, in one transaction.
	RecordVote(ctx context.Context, vote types.VoteRecord) error
}

const userColumns = "id, nickname, first_name, last_name, password, salt, role, rating, last_voted_at, created_at, updated_at, deleted_at"

const uniqueViolation = "23505"

type PostgresUserRepo struct {
	logger  *slog.Logger
	db      database.DB
	metrics *metrics.AppMetrics
}

func NewPostgresUserRepo(db database.DB, logger *slog.Logger, m *metrics.AppMetrics) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger:  logger,
		db:      db,
		metrics: m,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*types.User, error) {
	var u types.User
	var role string
	if err := row.Scan(
		&u.ID, &u.Nickname, &u.FirstName, &u.LastName, &u.Password, &u.Salt, &role,
		&u.Rating, &u.LastVotedAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	); err != nil {
		return nil, err
	}
	u.Role = types.Role(role)
	return &u, nil
}

func (r *PostgresUserRepo) startSpan(ctx context.Context, name, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "users"),
	}, attrs...)
	return otel.Tracer("UserRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

// finish records the query outcome on span and in metrics. Not-found style
// sentinels are outcomes, not database errors.
func (r *PostgresUserRepo) finish(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	dbErr := err
	if errors.Is(err, types.ErrNotFound) || types.KindOf(err) != types.KindUnexpected {
		dbErr = nil
	}
	r.metrics.RecordDBQuery(ctx, operation, start, dbErr)
	if dbErr != nil {
		span.RecordError(dbErr)
		span.SetStatus(codes.Error, "DB "+operation+" failed")
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, user *types.User) (created *types.User, err error) {
	ctx, span := r.startSpan(ctx, "CreateUser", "INSERT")
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "INSERT", start, err) }()

	l := r.logger.With(slog.String("method", "CreateUser"), slog.String("nickname", user.Nickname))

	query := `
		INSERT INTO users (nickname, first_name, last_name, password, salt, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	created, err = scanUser(r.db.QueryRow(ctx, query,
		user.Nickname, user.FirstName, user.LastName, user.Password, user.Salt, string(user.Role)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			l.WarnContext(ctx, "Nickname already taken", slog.String("constraint", pgErr.ConstraintName))
			return nil, types.ErrDuplicateNickname
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.String("userID", created.ID.String()))
	span.SetAttributes(attribute.String("db.user.id", created.ID.String()))
	return created, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (u *types.User, err error) {
	ctx, span := r.startSpan(ctx, "GetUserByID", "SELECT", attribute.String("db.user.id", userID.String()))
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "SELECT", start, err) }()

	u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to fetch user by id", slog.String("userID", userID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) GetUserByNickname(ctx context.Context, nickname string) (u *types.User, err error) {
	ctx, span := r.startSpan(ctx, "GetUserByNickname", "SELECT", attribute.String("db.user.nickname", nickname))
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "SELECT", start, err) }()

	u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = $1`, nickname))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", nickname, types.ErrNotFound)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to fetch user by nickname", slog.String("nickname", nickname), slog.Any("error", err))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context, page, pageSize int) (users []types.User, err error) {
	ctx, span := r.startSpan(ctx, "ListUsers", "SELECT",
		attribute.Int("page", page), attribute.Int("page_size", pageSize))
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "SELECT", start, err) }()

	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return []types.User{}, nil
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	users = make([]types.User, 0, pageSize)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

func (r *PostgresUserRepo) UpdateUser(ctx context.Context, userID uuid.UUID, changes types.UserChanges, unmodifiedSince *time.Time) (u *types.User, err error) {
	ctx, span := r.startSpan(ctx, "UpdateUser", "UPDATE", attribute.String("db.user.id", userID.String()))
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "UPDATE", start, err) }()

	l := r.logger.With(slog.String("method", "UpdateUser"), slog.String("userID", userID.String()))

	var setClauses []string
	var args []any
	argID := 1

	if changes.FirstName != nil {
		setClauses = append(setClauses, fmt.Sprintf("first_name = $%d", argID))
		args = append(args, *changes.FirstName)
		argID++
		span.SetAttributes(attribute.Bool("update.first_name", true))
	}
	if changes.LastName != nil {
		setClauses = append(setClauses, fmt.Sprintf("last_name = $%d", argID))
		args = append(args, *changes.LastName)
		argID++
		span.SetAttributes(attribute.Bool("update.last_name", true))
	}
	if changes.Role != nil {
		setClauses = append(setClauses, fmt.Sprintf("role = $%d", argID))
		args = append(args, string(*changes.Role))
		argID++
		span.SetAttributes(attribute.Bool("update.role", true))
	}
	if changes.Password != nil && changes.Salt != nil {
		setClauses = append(setClauses, fmt.Sprintf("password = $%d", argID), fmt.Sprintf("salt = $%d", argID+1))
		args = append(args, *changes.Password, *changes.Salt)
		argID += 2
		span.SetAttributes(attribute.Bool("update.password", true))
	}

	if len(setClauses) == 0 {
		return nil, types.NewValidationError("No fields to update")
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, changes.UpdatedAt)
	argID++

	where := fmt.Sprintf("id = $%d AND deleted_at IS NULL", argID)
	args = append(args, userID)
	argID++

	if unmodifiedSince != nil {
		where += fmt.Sprintf(" AND date_trunc('second', updated_at) <= $%d", argID)
		args = append(args, *unmodifiedSince)
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE %s RETURNING %s",
		strings.Join(setClauses, ", "), where, userColumns)

	l.DebugContext(ctx, "Executing dynamic update query", slog.String("query", query), slog.Int("arg_count", len(args)))

	u, err = scanUser(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		l.InfoContext(ctx, "User updated successfully")
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		l.ErrorContext(ctx, "Failed to execute update query", slog.Any("error", err))
		return nil, fmt.Errorf("database error updating user: %w", err)
	}

	// No row matched: either the user is gone or the guard rejected the write.
	current, lookupErr := r.GetUserByID(ctx, userID)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if current.IsDeleted() {
		return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
	}
	if unmodifiedSince != nil {
		l.WarnContext(ctx, "Update rejected by precondition",
			slog.Time("updated_at", current.UpdatedAt), slog.Time("if_unmodified_since", *unmodifiedSince))
		return nil, types.ErrPreconditionFailed
	}
	return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
}

func (r *PostgresUserRepo) SoftDeleteUser(ctx context.Context, userID uuid.UUID, at time.Time) (u *types.User, err error) {
	ctx, span := r.startSpan(ctx, "SoftDeleteUser", "UPDATE", attribute.String("db.user.id", userID.String()))
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "UPDATE", start, err) }()

	query := `
		UPDATE users SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING ` + userColumns

	u, err = scanUser(r.db.QueryRow(ctx, query, at, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to soft-delete user", slog.String("userID", userID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("database error deleting user: %w", err)
	}
	r.logger.InfoContext(ctx, "User soft-deleted", slog.String("userID", userID.String()))
	return u, nil
}

func (r *PostgresUserRepo) RecordVote(ctx context.Context, vote types.VoteRecord) (err error) {
	ctx, span := r.startSpan(ctx, "RecordVote", "UPDATE",
		attribute.String("vote.voter_id", vote.VoterID.String()),
		attribute.String("vote.votee_id", vote.VoteeID.String()),
		attribute.Int("vote.value", vote.Value))
	defer span.End()
	start := time.Now()
	defer func() { r.finish(ctx, span, "UPDATE", start, err) }()

	l := r.logger.With(slog.String("method", "RecordVote"))

	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET rating = rating + $1 WHERE id = $2 AND deleted_at IS NULL`,
			vote.Value, vote.VoteeID)
		if err != nil {
			return fmt.Errorf("database error updating rating: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return types.ErrVoteeNotFound
		}

		tag, err = tx.Exec(ctx, `
			UPDATE users SET last_voted_at = $1
			WHERE id = $2 AND deleted_at IS NULL
			  AND (last_voted_at IS NULL OR last_voted_at <= $3)`,
			vote.VotedAt, vote.VoterID, vote.NotAfter)
		if err != nil {
			return fmt.Errorf("database error updating voter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Either the voter was deleted meanwhile or a concurrent vote
			// by the same voter won the cooldown window.
			var live bool
			err = tx.QueryRow(ctx, `SELECT deleted_at IS NULL FROM users WHERE id = $1`, vote.VoterID).Scan(&live)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				return types.ErrVoterNotFound
			case err != nil:
				return fmt.Errorf("database error checking voter: %w", err)
			case !live:
				return types.ErrVoterNotFound
			}
			return types.ErrRateLimited
		}
		return nil
	})
	if err != nil {
		l.WarnContext(ctx, "Vote not recorded", slog.Any("error", err))
		return err
	}

	l.InfoContext(ctx, "Vote recorded")
	return nil
}
