package ui

import (
	"agrosim/app"
	"agrosim/domain/core"
	"agrosim/internal"
	"agrosim/internal/model"

	"github.com/gin-gonic/gin"
)

const requestIDKey = "request_id"

// Server is the public advisory API.
type Server struct {
	router  *gin.Engine
	service *app.SimulationService
	bundle  *model.Bundle // nil in fallback-only mode
	log     *internal.Logger
}

// NewServer creates the API server around the simulation service.
func NewServer(service *app.SimulationService, bundle *model.Bundle, mode string, log *internal.Logger) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	if log == nil {
		log = internal.DefaultLogger
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		bundle:  bundle,
		log:     log,
	}
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/options", s.handleOptions)
	s.router.POST("/simulate", s.handleSimulate)
	s.router.POST("/predict-yield", s.handlePredictYield)
	s.router.GET("/model-info", s.handleModelInfo)
}

// Router exposes the gin engine (used by tests).
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the API server.
func (s *Server) Start(addr string) error {
	s.log.Info("starting advisory API on http://%s", addr)
	return s.router.Run(addr)
}

// requestID tags every request for log correlation and echoes the tag back
// in the X-Request-ID header.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := core.NewRequestID()
		c.Set(requestIDKey, string(id))
		c.Header("X-Request-ID", string(id))
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("%s %s -> %d [%s]",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.GetString(requestIDKey))
	}
}
