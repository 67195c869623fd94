package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-rating/config"
	"github.com/FACorreiaa/go-user-rating/internal/api/auth"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

var _ UserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, p types.RegisterUserParams) (*types.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, nickname, password string) (string, error) {
	args := m.Called(ctx, nickname, password)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) GetUserByNickname(ctx context.Context, nickname string) (*types.User, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, page, pageSize int) ([]types.User, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, p types.UpdateUserParams, since *time.Time) (*types.User, error) {
	args := m.Called(ctx, id, p, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) Vote(ctx context.Context, voterID, voteeID uuid.UUID, value int) error {
	args := m.Called(ctx, voterID, voteeID, value)
	return args.Error(0)
}

func newTestHandler() (*HandlerImpl, *MockUserService, http.Handler) {
	svc := new(MockUserService)
	h := NewHandlerImpl(svc, config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100}, testLogger())
	r := chi.NewRouter()
	r.Post("/users", h.Register)
	r.Get("/users", h.ListUsers)
	r.Post("/users/login", h.Login)
	r.Post("/users/vote", h.Vote)
	r.Get("/users/nickname/{nickname}", h.GetUserByNickname)
	r.Get("/users/{userId}", h.GetUserByID)
	r.Put("/users/{userId}", h.UpdateUser)
	r.Delete("/users/{userId}", h.DeleteUser)
	return h, svc, r
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestStatusFor_CoversEveryKind(t *testing.T) {
	want := map[types.ErrorKind]int{
		types.KindUnexpected:         http.StatusInternalServerError,
		types.KindValidation:         http.StatusBadRequest,
		types.KindUserNotFound:       http.StatusNotFound,
		types.KindVoterNotFound:      http.StatusNotFound,
		types.KindVoteeNotFound:      http.StatusNotFound,
		types.KindSelfVote:           http.StatusBadRequest,
		types.KindRateLimited:        http.StatusBadRequest,
		types.KindInvalidVoteValue:   http.StatusBadRequest,
		types.KindPreconditionFailed: http.StatusPreconditionFailed,
		types.KindDuplicateNickname:  http.StatusBadRequest,
		types.KindAuthFailure:        http.StatusUnauthorized,
	}
	for kind, status := range want {
		assert.Equal(t, status, statusFor(kind), kind.String())
	}
}

func TestHandler_Register(t *testing.T) {
	_, svc, h := newTestHandler()
	params := types.RegisterUserParams{Nickname: "neo", FirstName: "T", LastName: "A", Password: "pw", Role: types.RoleUser}
	svc.On("Register", mock.Anything, params).Return(&types.User{ID: uuid.New(), Nickname: "neo", Password: "digest", Salt: "salt"}, nil)

	rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"nickname":"neo","firstName":"T","lastName":"A","password":"pw","role":"user"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "neo", body["nickname"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "salt")
}

func TestHandler_Register_Errors(t *testing.T) {
	_, svc, h := newTestHandler()
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, types.ErrDuplicateNickname).Once()

	rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"nickname":"neo","firstName":"T","lastName":"A","password":"pw","role":"user"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, types.ErrDuplicateNickname.Message, body["error"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"nickname":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused")).Once()
	rec, body = do(t, h, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"nickname":"x"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body["error"], "internals are not exposed")
}

func TestHandler_GetUserByID(t *testing.T) {
	_, svc, h := newTestHandler()
	id := uuid.New()
	updated := time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)
	svc.On("GetUserByID", mock.Anything, id).Return(&types.User{ID: id, Nickname: "neo", Rating: 4, UpdatedAt: updated}, nil)

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sun, 01 Jun 2025 12:30:15 GMT", rec.Header().Get("Last-Modified"))
	assert.Equal(t, map[string]any{"nickname": "neo", "firstName": "", "lastName": "", "role": "", "rating": float64(4)}, body)
}

func TestHandler_GetUserByID_NotFound(t *testing.T) {
	_, svc, h := newTestHandler()
	id := uuid.New()
	svc.On("GetUserByID", mock.Anything, id).Return(nil, types.ErrUserNotFound)

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", body["error"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetUserByNickname(t *testing.T) {
	_, svc, h := newTestHandler()
	svc.On("GetUserByNickname", mock.Anything, "neo").Return(&types.User{Nickname: "neo"}, nil)
	svc.On("GetUserByNickname", mock.Anything, "ghost").Return(nil, types.ErrUserNotFound)

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/users/nickname/neo", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "neo", body["nickname"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/users/nickname/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListUsers(t *testing.T) {
	_, svc, h := newTestHandler()
	svc.On("ListUsers", mock.Anything, 1, 10).Return([]types.User{}, nil)
	svc.On("ListUsers", mock.Anything, 2, 5).Return([]types.User{{Nickname: "a"}, {Nickname: "b"}}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?page=2&pageSize=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var profiles []types.UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	assert.Len(t, profiles, 2)

	for _, q := range []string{"page=0", "page=abc", "pageSize=0", "pageSize=101", "page=-1"} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandler_UpdateUser(t *testing.T) {
	_, svc, h := newTestHandler()
	id := uuid.New()
	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updatedAt := since.Add(time.Minute)
	first := "Tom"

	svc.On("UpdateUser", mock.Anything, id, types.UpdateUserParams{FirstName: &first}, mock.MatchedBy(func(s *time.Time) bool {
		return s != nil && s.Equal(since)
	})).Return(&types.User{ID: id, FirstName: "Tom", UpdatedAt: updatedAt}, nil)

	req := httptest.NewRequest(http.MethodPut, "/users/"+id.String(), strings.NewReader(`{"firstName":"Tom"}`))
	req.Header.Set("If-Unmodified-Since", since.Format(http.TimeFormat))
	rec, body := do(t, h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tom", body["firstName"])
	assert.Equal(t, updatedAt.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))
}

func TestHandler_UpdateUser_Errors(t *testing.T) {
	_, svc, h := newTestHandler()
	id := uuid.New()
	svc.On("UpdateUser", mock.Anything, id, mock.Anything, mock.Anything).Return(nil, types.ErrPreconditionFailed)

	req := httptest.NewRequest(http.MethodPut, "/users/"+id.String(), strings.NewReader(`{"lastName":"A"}`))
	req.Header.Set("If-Unmodified-Since", "Sun, 01 Jun 2025 12:00:00 GMT")
	rec, body := do(t, h, req)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "Resource has been modified", body["error"])

	req = httptest.NewRequest(http.MethodPut, "/users/"+id.String(), strings.NewReader(`{"lastName":"A"}`))
	req.Header.Set("If-Unmodified-Since", "yesterday")
	rec, _ = do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, httptest.NewRequest(http.MethodPut, "/users/"+id.String(), strings.NewReader(`{"nickname":"smuggled"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, httptest.NewRequest(http.MethodPut, "/users/bad-id", strings.NewReader(`{"lastName":"A"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteUser(t *testing.T) {
	_, svc, h := newTestHandler()
	id, gone := uuid.New(), uuid.New()
	at := time.Now()
	svc.On("DeleteUser", mock.Anything, id).Return(&types.User{ID: id, DeletedAt: &at}, nil)
	svc.On("DeleteUser", mock.Anything, gone).Return(nil, types.ErrUserNotFound)

	rec, body := do(t, h, httptest.NewRequest(http.MethodDelete, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["deleted_at"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodDelete, "/users/"+gone.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, httptest.NewRequest(http.MethodDelete, "/users/123", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Login(t *testing.T) {
	_, svc, h := newTestHandler()
	svc.On("Login", mock.Anything, "neo", "pw").Return("signed.jwt.token", nil)
	svc.On("Login", mock.Anything, "neo", "bad").Return("", types.ErrAuthFailure)

	rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"nickname":"neo","password":"pw"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed.jwt.token", body["token"])

	rec, body = do(t, h, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"nickname":"neo","password":"bad"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication failed", body["error"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"nickname":"neo"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func voteRequest(voterID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users/vote", strings.NewReader(body))
	if voterID != "" {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, voterID))
	}
	return req
}

func TestHandler_Vote(t *testing.T) {
	_, svc, h := newTestHandler()
	voter, votee := uuid.New(), uuid.New()
	svc.On("Vote", mock.Anything, voter, votee, 1).Return(nil).Once()

	rec, body := do(t, h, voteRequest(voter.String(), `{"userId":"`+votee.String()+`","vote":1}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Vote recorded successfully.", body["message"])

	tests := []struct {
		name    string
		svcErr  error
		want    int
		wantMsg string
	}{
		{"self vote", types.ErrSelfVote, http.StatusBadRequest, "You cannot vote for yourself."},
		{"rate limited", types.ErrRateLimited, http.StatusBadRequest, "You can only vote once per hour."},
		{"invalid value", types.ErrInvalidVoteValue, http.StatusBadRequest, types.ErrInvalidVoteValue.Message},
		{"voter gone", types.ErrVoterNotFound, http.StatusNotFound, "Voter not found or deleted."},
		{"votee gone", types.ErrVoteeNotFound, http.StatusNotFound, "User to vote for not found or deleted."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.On("Vote", mock.Anything, voter, votee, 1).Return(tt.svcErr).Once()
			rec, body := do(t, h, voteRequest(voter.String(), `{"userId":"`+votee.String()+`","vote":1}`))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestHandler_Vote_BadInput(t *testing.T) {
	_, svc, h := newTestHandler()
	voter := uuid.New().String()

	rec, _ := do(t, h, voteRequest("", `{"userId":"`+uuid.NewString()+`","vote":1}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, voteRequest(voter, `{"userId":"abc","vote":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, voteRequest(voter, `{"userId":"`+uuid.NewString()+`"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertNotCalled(t, "Vote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
