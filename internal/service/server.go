// Package service exposes the workflow over HTTP. The surface is two routes:
// a health probe and a single synchronous login endpoint that runs one
// workflow pass per request.
package service

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetimport/internal/workflow"
)

// WorkflowRunner is the slice of the workflow engine the server consumes.
type WorkflowRunner interface {
	Run(ctx context.Context, req workflow.Request) workflow.Result
}

// Server is the HTTP front door. Requests are served synchronously; the
// response is the full workflow Result, and workflow faults never surface as
// HTTP 5xx.
type Server struct {
	runner WorkflowRunner
	logger *zap.Logger
	router *gin.Engine
}

// NewServer wires the routes onto a fresh gin engine.
func NewServer(runner WorkflowRunner, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		runner: runner,
		logger: logger.Named("http"),
	}

	router := gin.New()
	router.Use(s.requestLogger(), gin.Recovery())
	router.GET("/health", s.handleHealth)
	router.POST("/login", s.handleLogin)
	s.router = router

	return s
}

// Handler returns the router for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// loginRequest is the transport shape of a run request. Only the credentials
// are mandatory; the remaining fields switch the run between the simple and
// the full import workflow.
type loginRequest struct {
	URL           string `json:"url"`
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password" binding:"required"`
	S3Filename    string `json:"s3_filename"`
	ExpectedGross string `json:"expected_gross"`
	InvoiceNo     string `json:"invoice_no"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result := s.runner.Run(c.Request.Context(), workflow.Request{
		URL:           req.URL,
		Username:      req.Username,
		Password:      req.Password,
		S3Filename:    req.S3Filename,
		ExpectedGross: req.ExpectedGross,
		InvoiceNo:     req.InvoiceNo,
	})

	// Classified workflow failures are part of the contract, not transport
	// errors: the caller inspects success and error.key.
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// requestLogger records one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Request handled.",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
