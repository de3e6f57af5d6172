package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/alexanderjung3838-wq/roboentrega/internal/config"
	"github.com/alexanderjung3838-wq/roboentrega/internal/http/handler"
	httpmiddleware "github.com/alexanderjung3838-wq/roboentrega/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, bot *handler.BotHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/", bot.Health)
	r.GET("/auth", bot.AuthRedirect)
	r.GET("/callback", bot.Callback)
	r.POST("/notifications", bot.Notifications)

	return r
}
