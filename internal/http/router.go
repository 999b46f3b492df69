// Package http is the JSON transport in front of the session service.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/admission"
	httpH "github.com/abhisek/algotutor/internal/http/handlers"
	httpMW "github.com/abhisek/algotutor/internal/http/middleware"
	"github.com/abhisek/algotutor/internal/logger"
)

type RouterConfig struct {
	SessionHandler *httpH.SessionHandler
	TopicHandler   *httpH.TopicHandler
	HealthHandler  *httpH.HealthHandler

	// CORSOrigins are the browser origins allowed to call the API; empty
	// allows the local dev servers.
	CORSOrigins []string

	// Limiter guards the routes that call the model. Nil admits everything.
	Limiter admission.Limiter
	Logger  *logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Logger))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	if cfg.TopicHandler != nil {
		api.GET("/topics", cfg.TopicHandler.ListTopics)
	}

	if h := cfg.SessionHandler; h != nil {
		api.POST("/start-session", h.StartSession)
		api.POST("/load-session", h.LoadSession)
		api.POST("/submit-test", h.SubmitTest)
		api.POST("/check-student-code", h.CheckStudentCode)

		guarded := api.Group("/")
		if cfg.Limiter != nil {
			guarded.Use(httpMW.Admission(cfg.Limiter, cfg.Logger))
		}
		guarded.POST("/chat", h.Chat)
		guarded.POST("/get-test", h.GetTest)
	}

	return r
}
