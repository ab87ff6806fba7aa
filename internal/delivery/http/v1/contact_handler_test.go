package v1_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"contact-backend/config"
	v1 "contact-backend/internal/delivery/http/v1"
	"contact-backend/internal/domain"
	"contact-backend/internal/usecase"
	"contact-backend/pkg/email"
	"contact-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminSecret = "test-admin-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = nopWriter{}
	os.Exit(m.Run())
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

type MockContactRepo struct {
	mock.Mock
}

func (m *MockContactRepo) Create(ctx context.Context, s *domain.ContactSubmission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockContactRepo) List(ctx context.Context, opts domain.ContactListOptions) ([]*domain.ContactSubmission, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ContactSubmission), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type stubHealth map[string]string

func (s stubHealth) Check(context.Context) map[string]string { return s }

type testServer struct {
	router   *gin.Engine
	repo     *MockContactRepo
	notifier *MockNotifier
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		AllowedOrigins: []string{"https://Krutik3008.github.io"},
		AdminJWTSecret: adminSecret,
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	repo := new(MockContactRepo)
	notifier := new(MockNotifier)
	contactUC := usecase.NewContactUsecase(repo, repo, notifier, "owner@example.com", validation.New(), nil)

	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  stubHealth{"status": "ok", "database": "up", "redis": "disabled"},
		Config:    cfg,
	})

	return &testServer{router: router, repo: repo, notifier: notifier}
}

func (s *testServer) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

const annBody = `{"name":"Ann","email":"ann@x.com","subject":"Hi","message":"Hello"}`

func TestSubmitContactMissingFields(t *testing.T) {
	bodies := map[string]string{
		"empty name":     `{"name":"","email":"ann@x.com","subject":"Hi","message":"Hello"}`,
		"absent email":   `{"name":"Ann","subject":"Hi","message":"Hello"}`,
		"absent subject": `{"name":"Ann","email":"ann@x.com","message":"Hello"}`,
		"empty message":  `{"name":"Ann","email":"ann@x.com","subject":"Hi","message":""}`,
		"empty object":   `{}`,
		"empty body":     ``,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t)

			rec := srv.post(body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"message":"All fields are required"}`, rec.Body.String())
			srv.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			srv.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitContactMalformedJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.post(`{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Invalid request body"`)
	srv.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitContactSuccess(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.ContactSubmission).ID = "abc123"
	})
	srv.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)

	rec := srv.post(annBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Message saved and email sent successfully"}`, rec.Body.String())
	srv.repo.AssertNumberOfCalls(t, "Create", 1)
	srv.notifier.AssertNumberOfCalls(t, "Send", 1)
}

func TestSubmitContactStoreFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert contact submission: connection refused"))

	rec := srv.post(annBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{
		"message": "Failed to save message to database",
		"error": "insert contact submission: connection refused"
	}`, rec.Body.String())
	srv.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSubmitContactEmailFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.ContactSubmission).ID = "abc123"
	})
	srv.notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("auth failed"))

	rec := srv.post(annBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"message": "Message saved to database, but failed to send email",
		"error": "auth failed",
		"savedData": {"id": "abc123", "name": "Ann", "email": "ann@x.com", "subject": "Hi", "message": "Hello"}
	}`, rec.Body.String())
}

func TestSubmitContactRateLimited(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.ContactRateLimitPerMinute = 1 })
	srv.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	srv.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)

	first := srv.post(annBody)
	second := srv.post(annBody)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	srv.repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestSubmitContactUnlimitedWhenRateLimitDisabled(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.ContactRateLimitPerMinute = 0 })
	srv.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	srv.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 7; i++ {
		rec := srv.post(annBody)
		assert.Equal(t, http.StatusCreated, rec.Code, "request %d", i+1)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
	srv.repo.AssertNumberOfCalls(t, "Create", 7)
}

func TestSubmitContactRateLimitIgnoresForwardedFor(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.ContactRateLimitPerMinute = 1 })
	srv.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	srv.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)

	codes := make([]int, 0, 2)
	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(annBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestSubmitContactKeepsEmptyErrorText(t *testing.T) {
	t.Run("email failure", func(t *testing.T) {
		srv := newTestServer(t)
		srv.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.ContactSubmission).ID = "abc123"
		})
		srv.notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New(""))

		rec := srv.post(annBody)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{
			"message": "Message saved to database, but failed to send email",
			"error": "",
			"savedData": {"id": "abc123", "name": "Ann", "email": "ann@x.com", "subject": "Hi", "message": "Hello"}
		}`, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		srv := newTestServer(t)
		srv.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New(""))

		rec := srv.post(annBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Failed to save message to database","error":""}`, rec.Body.String())
	})
}

func TestLiveness(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend is running", rec.Body.String())
}

func TestReadiness(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up","redis":"disabled"}`, rec.Body.String())
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(adminSecret))
	require.NoError(t, err)
	return signed
}

func TestListContacts(t *testing.T) {
	get := func(srv *testServer, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?limit=5&offset=10", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("requires token", func(t *testing.T) {
		srv := newTestServer(t)
		rec := get(srv, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		srv.repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-admin role", func(t *testing.T) {
		srv := newTestServer(t)
		rec := get(srv, adminToken(t, "viewer"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("lists with admin token", func(t *testing.T) {
		srv := newTestServer(t)
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		srv.repo.On("List", mock.Anything, domain.ContactListOptions{Limit: 5, Offset: 10}).Return([]*domain.ContactSubmission{
			{ID: "abc123", Name: "Ann", Email: "ann@x.com", Subject: "Hi", Message: "Hello", CreatedAt: created},
		}, nil)

		rec := get(srv, adminToken(t, "admin"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"message": "Contact submissions retrieved",
			"data": [{"id":"abc123","name":"Ann","email":"ann@x.com","subject":"Hi","message":"Hello","created_at":"2026-01-02T03:04:05Z"}]
		}`, rec.Body.String())
	})

	t.Run("disabled without secret", func(t *testing.T) {
		srv := newTestServer(t, func(c *config.Config) { c.AdminJWTSecret = "" })
		rec := get(srv, adminToken(t, "admin"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
