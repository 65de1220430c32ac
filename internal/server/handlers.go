package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/models"
)

const healthMessage = "Time Complexity Estimator API is running"

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"message":  healthMessage,
		"strategy": s.analyzer.Strategy(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.count(outcomeTooLarge)
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return
		}
		s.count(outcomeBadRequest)
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
		return
	}

	req.Normalize()
	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.count(analyzer.KindEmptyCode)
			c.JSON(http.StatusBadRequest, errorBody(analyzer.ErrEmptyCode.Error()))
			return
		}
		s.count(outcomeBadRequest)
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	c.Set(ctxFingerprint, analyzer.Fingerprint(req.Code))

	if s.metrics != nil {
		s.metrics.InFlight.Inc()
		defer s.metrics.InFlight.Dec()
	}
	start := time.Now()
	res, err := s.analyzer.Analyze(c.Request.Context(), req.Code)
	if s.metrics != nil {
		s.metrics.Duration.Observe(time.Since(start).Seconds())
	}

	switch {
	case res != nil:
		// Semantic failures travel as a 200 with an error field.
		if res.Failed() {
			s.count(analyzer.ErrorKind(err))
		} else {
			s.count(outcomeOK)
			if s.metrics != nil {
				s.metrics.Estimates.WithLabelValues(timeClassLabel(res.TimeComplexity)).Inc()
			}
		}
		c.JSON(http.StatusOK, res)
	case errors.Is(err, analyzer.ErrEmptyCode):
		s.count(analyzer.KindEmptyCode)
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	default:
		s.count(analyzer.ErrorKind(err))
		s.logger.Error("analysis failed",
			"request_id", c.GetString(ctxRequestID),
			"error", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error: "+err.Error()))
	}
}

func (s *Server) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Requests.WithLabelValues(outcome).Inc()
	}
}
