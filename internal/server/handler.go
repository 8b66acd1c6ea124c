package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crypto-query-lab/internal/domain"
)

// QueryEngine answers queries.
type QueryEngine interface {
	HandleQuery(ctx context.Context, query string) (*domain.QueryResult, error)
}

// QueryHandler serves the query API.
type QueryHandler struct {
	engine QueryEngine
	logger *logrus.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(engine QueryEngine, logger *logrus.Logger) *QueryHandler {
	return &QueryHandler{engine: engine, logger: logger}
}

// PostQuery handles POST /api/query.
func (h *QueryHandler) PostQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body must be a JSON object with a string \"query\" field"})
		return
	}

	result, err := h.engine.HandleQuery(c.Request.Context(), req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewQueryResponse(result))
}

func (h *QueryHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	resp := ErrorResponse{Error: "internal failure while processing query"}
	var failure *domain.InternalFailure
	if errors.As(err, &failure) {
		ms := failure.Elapsed.Milliseconds()
		resp.ElapsedMS = &ms
		err = failure.Cause
	}
	h.logger.WithError(err).WithField("path", c.FullPath()).Error("query failed")
	c.JSON(http.StatusInternalServerError, resp)
}

// GetHealth handles GET /health.
func (h *QueryHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
