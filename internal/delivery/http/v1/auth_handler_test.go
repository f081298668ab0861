package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tutoring-backend/config"
	"go-tutoring-backend/internal/delivery/http/middleware"
	v1 "go-tutoring-backend/internal/delivery/http/v1"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/internal/usecase"
	"go-tutoring-backend/pkg/auth"
)

const testJWTSecret = "unit-test-secret"

// fakeUserRepo keeps users in memory. GetByID returns (nil, nil) for an
// unknown id, matching the postgres repository contract.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.AvatarURL = &avatarURL
	}
	return nil
}

// stubOnboardingUC satisfies the /auth/me dependency; these tests only care
// about the identity flow.
type stubOnboardingUC struct{}

func (stubOnboardingUC) CompleteStep(ctx context.Context, userID, stepID string) (*domain.OnboardingStatus, error) {
	return nil, nil
}

func (stubOnboardingUC) GetStatus(ctx context.Context, userID string) (*domain.OnboardingStatus, error) {
	return nil, nil
}

func (stubOnboardingUC) IsComplete(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

func (stubOnboardingUC) TrackProgress(ctx context.Context, userID string) (*domain.ProgressReport, error) {
	return nil, nil
}

// newAuthTestRouter wires the real middleware, auth usecase and handler the
// same way the production router does.
func newAuthTestRouter(repo *fakeUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{SupabaseJWTSecret: testJWTSecret}
	authUC := usecase.NewAuthUsecase(repo)

	r := gin.New()
	r.Use(middleware.ErrorHandler())

	protected := r.Group("/v1")
	protected.Use(middleware.AuthMiddleware(auth.NewProvider(""), cfg, authUC))
	v1.NewAuthHandler(protected, authUC, stubOnboardingUC{})

	return r
}

func signTestToken(t *testing.T, sub, email, fullName string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if fullName != "" {
		claims["user_metadata"] = map[string]interface{}{"full_name": fullName}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// A valid token whose subject has no local row yet must not be locked out;
// the middleware syncs the row from the claims and the request proceeds.
func TestAuthSync_FirstTokenCreatesUserRow(t *testing.T) {
	repo := newFakeUserRepo()
	r := newAuthTestRouter(repo)

	token := signTestToken(t, "tutor-new", "new@example.com", "New Tutor")
	rec := doRequest(r, http.MethodPost, "/v1/auth/sync", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created, err := repo.GetByID(context.Background(), "tutor-new")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, "New Tutor", created.FullName)
	assert.Equal(t, domain.RoleTutor, created.Role)
}

func TestAuthMe_UnknownSubjectIsSyncedThenServed(t *testing.T) {
	repo := newFakeUserRepo()
	r := newAuthTestRouter(repo)

	token := signTestToken(t, "tutor-fresh", "fresh@example.com", "")
	rec := doRequest(r, http.MethodGet, "/v1/auth/me", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool        `json:"success"`
		Data    domain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "tutor-fresh", body.Data.ID)
	assert.Equal(t, domain.RoleTutor, body.Data.Role)
}

// The sync must not clobber an existing row's role or name.
func TestAuthSync_ExistingUserIsUntouched(t *testing.T) {
	repo := newFakeUserRepo()
	existing := &domain.User{
		ID:       "tutor-1",
		Email:    "t1@example.com",
		FullName: "Original Name",
		Role:     domain.RoleAdmin,
	}
	require.NoError(t, repo.Create(context.Background(), existing))
	r := newAuthTestRouter(repo)

	token := signTestToken(t, "tutor-1", "t1@example.com", "Hijacked Name")
	rec := doRequest(r, http.MethodPost, "/v1/auth/sync", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := repo.GetByID(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
	assert.Equal(t, "Original Name", stored.FullName)
}

func TestAuthMiddleware_RejectsMissingAndInvalidTokens(t *testing.T) {
	repo := newFakeUserRepo()
	r := newAuthTestRouter(repo)

	rec := doRequest(r, http.MethodGet, "/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(r, http.MethodGet, "/v1/auth/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid shape, wrong key
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tutor-x",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	rec = doRequest(r, http.MethodGet, "/v1/auth/me", wrongKey)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// No row may be created for rejected requests
	assert.Empty(t, repo.users)
}
