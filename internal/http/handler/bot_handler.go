package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alexanderjung3838-wq/roboentrega/internal/adapter/meli"
	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
	"github.com/alexanderjung3838-wq/roboentrega/internal/service"
)

// BotHandler exposes the authorization flow and webhook intake endpoints.
type BotHandler struct {
	API      meli.API
	Creds    *service.CredentialService
	Pipeline *service.OrderPipeline
	Logger   *zap.Logger
}

// NewBotHandler creates the handler set.
func NewBotHandler(api meli.API, creds *service.CredentialService, pipeline *service.OrderPipeline, logger *zap.Logger) *BotHandler {
	if logger == nil {
		logger = zap.L()
	}
	return &BotHandler{API: api, Creds: creds, Pipeline: pipeline, Logger: logger}
}

// Health is the liveness indicator.
func (h *BotHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "roboentrega online")
}

// AuthRedirect sends the seller to the marketplace authorization page.
func (h *BotHandler) AuthRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, h.API.AuthorizationURL())
}

// Callback completes the OAuth flow: it exchanges the single-use code and
// persists the first credential. Failures are terminal for this attempt; the
// seller must restart at /auth. The stored credential is never touched on
// failure.
func (h *BotHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "missing code parameter")
		return
	}

	token, err := h.API.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.Logger.Error("authorization code exchange failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "%v: %v", domain.ErrAuthExchangeFailed, err)
		return
	}

	if _, err := h.Creds.Save(c.Request.Context(), token); err != nil {
		h.Logger.Error("credential bootstrap failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "%v: %v", domain.ErrAuthExchangeFailed, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte("<h1>Sucesso!</h1><p>Robô autenticado. Pode fechar esta janela.</p>"))
}

// Notifications is the webhook intake. It acknowledges 200 before and
// regardless of any downstream work; malformed payloads are logged and
// dropped without failing the response.
func (h *BotHandler) Notifications(c *gin.Context) {
	var event struct {
		Topic    string `json:"topic"`
		Resource string `json:"resource"`
	}
	if err := c.ShouldBindJSON(&event); err != nil {
		h.Logger.Warn("dropping malformed notification", zap.Error(err))
		c.String(http.StatusOK, "OK")
		return
	}

	h.Pipeline.Dispatch(event.Topic, event.Resource)
	c.String(http.StatusOK, "OK")
}
