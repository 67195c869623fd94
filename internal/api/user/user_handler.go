package user

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-rating/config"
	"github.com/FACorreiaa/go-user-rating/internal/api"
	"github.com/FACorreiaa/go-user-rating/internal/api/auth"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

const voteRecordedMessage = "Vote recorded successfully."

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	GetUserByID(w http.ResponseWriter, r *http.Request)
	GetUserByNickname(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	Vote(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	pagination  config.PaginationConfig
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, pagination config.PaginationConfig, logger *slog.Logger) *HandlerImpl {
	if logger == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		userService: userService,
		pagination:  pagination,
		logger:      logger,
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindValidation,
		types.KindSelfVote,
		types.KindRateLimited,
		types.KindInvalidVoteValue,
		types.KindDuplicateNickname:
		return http.StatusBadRequest
	case types.KindUserNotFound,
		types.KindVoterNotFound,
		types.KindVoteeNotFound:
		return http.StatusNotFound
	case types.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case types.KindAuthFailure:
		return http.StatusUnauthorized
	case types.KindUnexpected:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// writeError renders err. Unexpected errors are logged and replaced by a
// generic message.
func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	kind := types.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, status, "Internal Server Error")
		return
	}
	api.ErrorResponse(w, r, status, err.Error())
}

func setLastModified(w http.ResponseWriter, u *types.User) {
	w.Header().Set("Last-Modified", u.UpdatedAt.UTC().Format(http.TimeFormat))
}

// Register godoc
// @Summary      Register User
// @Description  Creates a user account with a unique nickname.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user body types.RegisterUserParams true "New user"
// @Success      201 {object} types.User "Created user"
// @Failure      400 {object} types.Response "Invalid input or nickname taken"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var params types.RegisterUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.userService.Register(r.Context(), params)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// Login godoc
// @Summary      Login
// @Description  Verifies nickname and password and returns a signed access token.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        credentials body types.LoginRequest true "Credentials"
// @Success      200 {object} types.LoginResponse "Token"
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      401 {object} types.Response "Authentication failed"
// @Router       /users/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Nickname == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "nickname and password are required")
		return
	}

	token, err := h.userService.Login(r.Context(), req.Nickname, req.Password)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{Token: token})
}

// GetUserByID godoc
// @Summary      Get User
// @Description  Retrieves a user's public profile by id.
// @Tags         Users
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} types.UserProfile "User profile"
// @Header       200 {string} Last-Modified "Time of the last update"
// @Failure      404 {object} types.Response "User not found"
// @Router       /users/{userId} [get]
func (h *HandlerImpl) GetUserByID(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetUserByID"))

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		// an id that cannot exist is simply not found
		api.ErrorResponse(w, r, http.StatusNotFound, types.ErrUserNotFound.Message)
		return
	}

	u, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	setLastModified(w, u)
	api.WriteJSONResponse(w, r, http.StatusOK, types.NewUserProfile(u))
}

// GetUserByNickname godoc
// @Summary      Get User By Nickname
// @Description  Retrieves a user's public profile by nickname.
// @Tags         Users
// @Produce      json
// @Param        nickname path string true "Nickname"
// @Success      200 {object} types.UserProfile "User profile"
// @Failure      404 {object} types.Response "User not found"
// @Router       /users/nickname/{nickname} [get]
func (h *HandlerImpl) GetUserByNickname(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetUserByNickname"))

	nickname := chi.URLParam(r, "nickname")
	if nickname == "" {
		api.ErrorResponse(w, r, http.StatusNotFound, types.ErrUserNotFound.Message)
		return
	}

	u, err := h.userService.GetUserByNickname(r.Context(), nickname)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.NewUserProfile(u))
}

func positiveQueryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ListUsers godoc
// @Summary      List Users
// @Description  Returns one page of users that have not been deleted.
// @Tags         Users
// @Produce      json
// @Param        page query int false "Page number (1-based)" default(1)
// @Param        pageSize query int false "Page size" default(10)
// @Success      200 {array} types.UserProfile "User profiles"
// @Failure      400 {object} types.Response "Invalid pagination"
// @Router       /users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ListUsers"))

	page, ok := positiveQueryInt(r, "page", 1)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	pageSize, ok := positiveQueryInt(r, "pageSize", h.pagination.DefaultPageSize)
	if !ok || pageSize > h.pagination.MaxPageSize {
		api.ErrorResponse(w, r, http.StatusBadRequest,
			"pageSize must be an integer between 1 and "+strconv.Itoa(h.pagination.MaxPageSize))
		return
	}

	users, err := h.userService.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	profiles := make([]types.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, types.NewUserProfile(&users[i]))
	}
	api.WriteJSONResponse(w, r, http.StatusOK, profiles)
}

// UpdateUser godoc
// @Summary      Update User
// @Description  Updates a user's profile. Send If-Unmodified-Since to reject the update when the record changed in the meantime.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        If-Unmodified-Since header string false "HTTP date of the caller's last read"
// @Param        user body types.UpdateUserParams true "Fields to update"
// @Success      200 {object} types.User "Updated user"
// @Header       200 {string} Last-Modified "Time of this update"
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      401 {object} types.Response "Authentication failed"
// @Failure      404 {object} types.Response "User not found"
// @Failure      412 {object} types.Response "Resource has been modified"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /users/{userId} [put]
func (h *HandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateUser"))

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var since *time.Time
	if raw := r.Header.Get("If-Unmodified-Since"); raw != "" {
		t, err := http.ParseTime(raw)
		if err != nil {
			l.WarnContext(ctx, "Invalid If-Unmodified-Since header", slog.String("value", raw))
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid If-Unmodified-Since header")
			return
		}
		since = &t
	}

	var params types.UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateUser(ctx, userID, params, since)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	setLastModified(w, updated)
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Soft-deletes a user. The record is kept but hidden from every lookup.
// @Tags         Users
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} types.User "Deleted user"
// @Failure      400 {object} types.Response "Invalid user ID"
// @Failure      401 {object} types.Response "Authentication failed"
// @Failure      404 {object} types.Response "User not found"
// @Security     BearerAuth
// @Router       /users/{userId} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteUser"))

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	deleted, err := h.userService.DeleteUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, deleted)
}

// Vote godoc
// @Summary      Vote
// @Description  Casts a +1 or -1 vote for another user. One vote per hour per voter.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        vote body types.VoteRequest true "Vote"
// @Success      200 {object} types.Response "Vote recorded"
// @Failure      400 {object} types.Response "Self-vote, rate limit or invalid value"
// @Failure      401 {object} types.Response "Authentication failed"
// @Failure      404 {object} types.Response "Voter or votee not found"
// @Security     BearerAuth
// @Router       /users/vote [post]
func (h *HandlerImpl) Vote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Vote"))

	voterIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || voterIDStr == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, types.ErrAuthFailure.Message)
		return
	}
	voterID, err := uuid.Parse(voterIDStr)
	if err != nil {
		l.WarnContext(ctx, "Token carries malformed user id", slog.String("userID", voterIDStr))
		api.ErrorResponse(w, r, http.StatusUnauthorized, types.ErrAuthFailure.Message)
		return
	}

	var req types.VoteRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	voteeID, err := uuid.Parse(req.UserID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	if req.Vote == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "vote is required")
		return
	}

	if err := h.userService.Vote(ctx, voterID, voteeID, *req.Vote); err != nil {
		h.writeError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: voteRecordedMessage,
	})
}
