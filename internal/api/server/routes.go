package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bz888/parley/internal/api/server/handlers"
)

func registerRoutes(engine *gin.Engine, handler *handlers.Handler, staticDir string) {
	api := engine.Group("/api")
	api.POST("/chat", handler.ChatHandler)
	api.GET("/models", handler.ModelHandler)
	api.GET("/status", handler.StatusHandler)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if staticDir != "" {
		files := http.FileServer(http.Dir(staticDir))
		engine.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.Status(http.StatusNotFound)
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
}
