package api

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured. With an
// empty cronSecret the scrape endpoints are open.
func NewServer(handler *Handler, cronSecret string) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler, cronSecret)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, cronSecret string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/feed.xml", handler.GetFeed)
	r.GET("/deals.json", handler.GetDeals)

	api := r.Group("/api")
	api.Use(authMiddleware(cronSecret))
	{
		api.POST("/scrape", handler.ScrapeArticles)
		api.GET("/scrape", handler.ScrapeArticles)
		api.POST("/scrape/deals", handler.ScrapeDeals)
		api.GET("/scrape/deals", handler.ScrapeDeals)
	}

	if cronSecret != "" {
		slog.Info("Scrape endpoints require a bearer token")
	} else {
		slog.Warn("Scrape endpoints are unauthenticated (CRON_SECRET not set)")
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "DevelopersMatrix ingestion",
			"version":     handler.version,
			"description": "Tech news and deals ingestion service",
			"endpoints": map[string]string{
				"scrape":       "/api/scrape (GET or POST)",
				"scrape_deals": "/api/scrape/deals (GET or POST)",
				"feed":         "/feed.xml",
				"deals":        "/deals.json",
				"health":       "/health",
			},
			"auth_required": cronSecret != "",
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware rejects requests whose Authorization header is not
// "Bearer <secret>" before any handler runs.
func authMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")

		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			slog.Warn("Unauthorized scrape request", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
