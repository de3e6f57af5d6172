package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexanderjung3838-wq/roboentrega/internal/adapter/meli"
	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
	"github.com/alexanderjung3838-wq/roboentrega/internal/repository"
	"github.com/alexanderjung3838-wq/roboentrega/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type botHarness struct {
	router *gin.Engine
	api    *stubAPI
	repo   *repository.MemoryCredentialRepo
}

func newBotHarness(t *testing.T) *botHarness {
	t.Helper()
	api := &stubAPI{}
	repo := repository.NewMemoryCredentialRepo()
	creds := service.NewCredentialService(repo, api, 30*time.Minute, zap.NewNop())
	pipeline := service.NewOrderPipeline(creds, api, service.DefaultRules(), nil, 5*time.Second, zap.NewNop())
	bot := NewBotHandler(api, creds, pipeline, zap.NewNop())

	router := gin.New()
	router.GET("/", bot.Health)
	router.GET("/auth", bot.AuthRedirect)
	router.GET("/callback", bot.Callback)
	router.POST("/notifications", bot.Notifications)

	return &botHarness{router: router, api: api, repo: repo}
}

func (h *botHarness) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newBotHarness(t)
	rec := h.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "online")
}

func TestAuthRedirect(t *testing.T) {
	h := newBotHarness(t)
	rec := h.do(http.MethodGet, "/auth", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, h.api.AuthorizationURL(), rec.Header().Get("Location"))
}

func TestCallback_Success(t *testing.T) {
	h := newBotHarness(t)
	h.api.token = &meli.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    21600,
	}

	rec := h.do(http.MethodGet, "/callback?code=abc123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sucesso")

	stored, err := h.repo.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "access", stored.AccessToken)
	require.NotZero(t, stored.SavedAt)
}

func TestCallback_MissingCode(t *testing.T) {
	h := newBotHarness(t)
	rec := h.do(http.MethodGet, "/callback", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallback_ExchangeFailureLeavesStoreUntouched(t *testing.T) {
	h := newBotHarness(t)
	existing := domain.Credential{
		AccessToken:  "keep-me",
		RefreshToken: "keep-me-too",
		ExpiresIn:    21600,
		SavedAt:      time.Now().UnixMilli(),
	}
	require.NoError(t, h.repo.Upsert(context.Background(), existing))
	h.api.exchangeErr = errors.New("status=400 body=invalid_grant")

	rec := h.do(http.MethodGet, "/callback?code=used-code", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "authorization code exchange failed")

	stored, err := h.repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, existing, *stored)
}

func TestNotifications_AlwaysAcknowledges(t *testing.T) {
	h := newBotHarness(t)

	cases := []struct {
		name string
		body string
	}{
		{"order event", `{"topic":"orders_v2","resource":"/orders/2000001"}`},
		{"other topic", `{"topic":"questions","resource":"/questions/1"}`},
		{"malformed json", `{"topic":`},
		{"unexpected shape", `[1,2,3]`},
		{"empty body", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, "/notifications", tc.body)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "OK", rec.Body.String())
		})
	}
}

func TestNotifications_AcknowledgesBeforePipelineOutcome(t *testing.T) {
	h := newBotHarness(t)
	// Downstream fetch will fail; the acknowledgment must not care.
	h.api.fetchErr = errors.New("status=500")

	rec := h.do(http.MethodPost, "/notifications", `{"topic":"orders_v2","resource":"/orders/2000001"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestNotifications_ForeignTopicTriggersNoFetch(t *testing.T) {
	h := newBotHarness(t)
	rec := h.do(http.MethodPost, "/notifications", `{"topic":"items","resource":"/items/MLB1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, h.api.fetchCalls.Load())
}

// stubAPI implements meli.API for handler tests.
type stubAPI struct {
	token       *meli.TokenResponse
	exchangeErr error
	fetchErr    error
	fetchCalls  atomic.Int64
}

var _ meli.API = (*stubAPI)(nil)

func (s *stubAPI) AuthorizationURL() string {
	return "https://auth.mercadolivre.com.br/authorization?client_id=test"
}

func (s *stubAPI) ExchangeCode(ctx context.Context, code string) (*meli.TokenResponse, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.token, nil
}

func (s *stubAPI) RefreshToken(ctx context.Context, refreshToken string) (*meli.TokenResponse, error) {
	return nil, errors.New("not configured")
}

func (s *stubAPI) FetchOrder(ctx context.Context, accessToken, resource string) (*domain.Order, error) {
	s.fetchCalls.Add(1)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return &domain.Order{ID: 1, Status: "cancelled"}, nil
}

func (s *stubAPI) SendMessage(ctx context.Context, accessToken string, packID, sellerID int64, msg domain.OutboundMessage) error {
	return nil
}
