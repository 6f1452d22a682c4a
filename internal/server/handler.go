package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"SpotSim/internal/export"
	"SpotSim/internal/model"
	"SpotSim/internal/simulator"
)

// Runner executes one simulation.
type Runner interface {
	Run(ctx context.Context, req model.SimulationRequest) (*simulator.Report, error)
}

// simulateQuery carries the query string of the simulate endpoints.
// Omitted values fall back to the configured defaults.
type simulateQuery struct {
	Symbol     string `form:"symbol"`
	Investment string `form:"investment"`
	ProfitPct  string `form:"profit_pct"`
	Plot       bool   `form:"plot"`
}

type Handler struct {
	runner   Runner
	defaults model.SimulationRequest
}

// NewHandler mounts the simulation routes on r.
func NewHandler(r *gin.Engine, runner Runner, defaults model.SimulationRequest) *Handler {
	h := &Handler{runner: runner, defaults: defaults}
	v1 := r.Group("/api/v1/simulate")
	{
		v1.GET("", h.Simulate)
		v1.GET("/export", h.Export)
	}
	return h
}

// Simulate returns the result record, plus chart series when plot=true.
func (h *Handler) Simulate(c *gin.Context) {
	report, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export returns the result as a CSV attachment.
func (h *Handler) Export(c *gin.Context) {
	report, ok := h.run(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report.Result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := fmt.Sprintf("%s_simulation_%s.csv", report.Result.Symbol, report.Result.ComputedAt.UTC().Format("20060102T150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) run(c *gin.Context) (*simulator.Report, bool) {
	var q simulateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	req, err := h.request(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	report, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, false
	}
	return report, true
}

func (h *Handler) request(q simulateQuery) (model.SimulationRequest, error) {
	symbol, investment, pct := h.defaults.Symbol, h.defaults.Investment, h.defaults.ProfitPct
	if q.Symbol != "" {
		symbol = q.Symbol
	}
	if q.Investment != "" {
		v, err := decimal.NewFromString(q.Investment)
		if err != nil {
			return model.SimulationRequest{}, errors.Errorf("invalid investment %q", q.Investment)
		}
		investment = v
	}
	if q.ProfitPct != "" {
		v, err := decimal.NewFromString(q.ProfitPct)
		if err != nil {
			return model.SimulationRequest{}, errors.Errorf("invalid profit_pct %q", q.ProfitPct)
		}
		pct = v
	}
	return model.NewSimulationRequest(symbol, investment, pct, q.Plot)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, simulator.ErrInvalidPrecondition):
		return http.StatusBadRequest
	case errors.Is(err, simulator.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, simulator.ErrDataUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
