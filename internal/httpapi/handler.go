// internal/httpapi/handler.go
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/metrics"
	"vehicle-search/internal/models"
	"vehicle-search/internal/parser"
	"vehicle-search/internal/relax"
	"vehicle-search/internal/search"
)

// MaxRoundsLimit caps max_rounds on a search request.
const MaxRoundsLimit = 10

type ParseRequest struct {
	Text string `json:"text"`
}

type ParseResponse struct {
	Filters        models.FilterSet `json:"filters"`
	SuggestedModel string           `json:"suggested_model,omitempty"`
}

type RelaxRequest struct {
	Filters *models.FilterSet `json:"filters"`
}

type RelaxResponse struct {
	Filters models.FilterSet   `json:"filters"`
	Steps   []relax.StepResult `json:"steps"`
	Applied []relax.StepName   `json:"applied"`
	Changed bool               `json:"changed"`
}

type SearchRequest struct {
	Text      string `json:"text"`
	MaxRounds *int   `json:"max_rounds,omitempty"`
}

// Handler serves the REST facade over the parser, the relaxation engine
// and the automated search.
type Handler struct {
	parser *parser.Parser
	relax  *relax.Engine
	search *search.Service
	logger logger.Logger
}

func NewHandler(p *parser.Parser, e *relax.Engine, svc *search.Service, log logger.Logger) *Handler {
	return &Handler{
		parser: p,
		relax:  e,
		search: svc,
		logger: log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
}

// Parse handles POST /api/v1/parse
func (h *Handler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required")
		return
	}

	filters := h.parser.Parse(req.Text)
	metrics.RecordParse(filters)

	resp := ParseResponse{Filters: filters}
	if model, ok := h.parser.Suggestion(req.Text, filters); ok {
		resp.SuggestedModel = model
	}
	c.JSON(http.StatusOK, resp)
}

// Relax handles POST /api/v1/relax with one automated pass.
func (h *Handler) Relax(c *gin.Context) {
	var req RelaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if req.Filters == nil {
		badRequest(c, "filters is required")
		return
	}

	relaxed, report := h.relax.Automated(*req.Filters)
	search.RecordReport(report)

	c.JSON(http.StatusOK, RelaxResponse{
		Filters: relaxed,
		Steps:   report.Steps,
		Applied: report.Applied(),
		Changed: report.Changed(),
	})
}

// Search handles POST /api/v1/search
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required")
		return
	}

	rounds := h.relax.Config().MaxRounds
	if req.MaxRounds != nil {
		if *req.MaxRounds < 0 || *req.MaxRounds > MaxRoundsLimit {
			badRequest(c, "max_rounds must be between 0 and 10")
			return
		}
		rounds = *req.MaxRounds
	}

	out, err := h.search.SearchRounds(c.Request.Context(), req.Text, rounds)
	if err != nil {
		h.logger.WithError(err).Error("search failed", map[string]interface{}{"text": req.Text})
		status, body := errorBody(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vehicle-search",
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": errors.ErrCodeInvalidInput})
}

// errorBody maps a search failure to a status: Query Service transport
// problems are upstream failures, timeouts are gateway timeouts.
func errorBody(err error) (int, gin.H) {
	body := gin.H{"error": errors.UserMessage(err)}
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		body["code"] = errors.ErrCodeInternal
		return http.StatusInternalServerError, body
	}
	body["code"] = stdErr.Code

	switch {
	case stdErr.Code == errors.ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout, body
	case errors.GetErrorCategory(stdErr.Code) == "PROTOCOL":
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}
