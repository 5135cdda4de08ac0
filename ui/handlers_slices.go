package ui

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"slicefinder/adapters/tfma"
	"slicefinder/app"
	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
	"slicefinder/internal/errors"

	"github.com/gin-gonic/gin"
)

// FindTopSlicesRequest carries TFMA documents plus comparison settings.
// Metrics is a JSON array of MetricsForSlice objects, or a string holding
// newline-delimited records. Statistics is a DatasetFeatureStatisticsList.
type FindTopSlicesRequest struct {
	Metrics        json.RawMessage `json:"metrics" binding:"required"`
	Statistics     json.RawMessage `json:"statistics"`
	MetricKey      string          `json:"metric_key" binding:"required"`
	Comparison     string          `json:"comparison" binding:"required"`
	Alpha          *float64        `json:"alpha" binding:"omitempty,gt=0,lte=1"`
	MinNumExamples *float64        `json:"min_num_examples" binding:"omitempty,gte=0"`
	TopK           *int            `json:"top_k" binding:"omitempty,gte=0"`
	RankBy         string          `json:"rank_by" binding:"omitempty,oneof=PVALUE EFFECT_SIZE pvalue effect_size"`
}

// BatchRequest runs several comparisons at once
type BatchRequest struct {
	Requests []FindTopSlicesRequest `json:"requests" binding:"required,min=1,dive"`
}

// bindError separates a body cut off by the size limit from a malformed one
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.TooLarge(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
	}
	return errors.Wrap(core.NewInvalidInputError("%v", err), "invalid request body")
}

func (s *Server) handleFindTopSlices(c *gin.Context) {
	var req FindTopSlicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}

	discovery, err := req.toDiscoveryRequest()
	if err != nil {
		s.respondError(c, err)
		return
	}

	run, err := s.service.Discover(c.Request.Context(), discovery)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleFindTopSlicesBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}

	discoveries := make([]app.DiscoveryRequest, len(req.Requests))
	for i, r := range req.Requests {
		d, err := r.toDiscoveryRequest()
		if err != nil {
			s.respondError(c, errors.Wrapf(err, "request %d", i))
			return
		}
		discoveries[i] = d
	}

	runs, err := s.service.RunBatch(c.Request.Context(), discoveries)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(c, core.NewInvalidInputError("limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = parsed
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	run, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func (r FindTopSlicesRequest) toDiscoveryRequest() (app.DiscoveryRequest, error) {
	comparison, err := slicing.ParseComparisonType(r.Comparison)
	if err != nil {
		return app.DiscoveryRequest{}, err
	}

	metrics, err := decodeMetrics(r.Metrics)
	if err != nil {
		return app.DiscoveryRequest{}, err
	}

	var stats *slicing.FeatureStatistics
	if len(r.Statistics) > 0 && string(r.Statistics) != "null" {
		stats, err = tfma.ReadStatistics(bytes.NewReader(r.Statistics))
		if err != nil {
			return app.DiscoveryRequest{}, err
		}
	}

	overrides := app.OptionOverrides{
		Alpha:          r.Alpha,
		MinNumExamples: r.MinNumExamples,
		TopK:           r.TopK,
	}
	if r.RankBy != "" {
		if overrides.RankBy, err = slicing.ParseRankBy(r.RankBy); err != nil {
			return app.DiscoveryRequest{}, err
		}
	}

	return app.DiscoveryRequest{
		Metrics:    metrics,
		Statistics: stats,
		MetricKey:  r.MetricKey,
		Comparison: comparison,
		Overrides:  overrides,
	}, nil
}

func decodeMetrics(raw json.RawMessage) ([]slicing.MetricRecord, error) {
	var ndjson string
	if err := json.Unmarshal(raw, &ndjson); err == nil {
		return tfma.ReadMetrics(bytes.NewReader([]byte(ndjson)))
	}
	return tfma.ReadMetrics(bytes.NewReader(raw))
}
