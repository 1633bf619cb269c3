package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	models "GridPull/internal/domain/models"
	"GridPull/internal/services/likeday"
	"GridPull/internal/usecase"
	xhttp "GridPull/pkg/http"
	xlogger "GridPull/pkg/logger"
	"GridPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// LikeDayEchoHandler exposes the like-day query and backfill endpoints.
type LikeDayEchoHandler struct {
	logger   *xlogger.Logger
	uc       *usecase.LikeDayUseCase
	backfill *usecase.BackfillUseCase
	health   func(echo.Context) error
}

func NewLikeDayEchoHandler(logger *xlogger.Logger, uc *usecase.LikeDayUseCase, backfill *usecase.BackfillUseCase) *LikeDayEchoHandler {
	return &LikeDayEchoHandler{logger: logger, uc: uc, backfill: backfill}
}

// SetHealthCheck installs the health probe used by /health.
func (h *LikeDayEchoHandler) SetHealthCheck(fn func(echo.Context) error) { h.health = fn }

func (h *LikeDayEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/like-days", h.LikeDays)
	g.POST("/backfill", h.Backfill)
	e.GET("/health", h.Health)
}

func (h *LikeDayEchoHandler) LikeDays(c echo.Context) error {
	req := &models.LikeDayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params, perr := buildLikeDayParams(req)
	if perr != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_PARSE",
			Message: perr.Error(),
		}})
	}

	report, err := h.uc.FindLikeDays(c.Request().Context(), *params)
	if err != nil {
		switch {
		case errors.Is(err, likeday.ErrInvalidSpec):
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_INVALID_SPEC",
				Message: err.Error(),
			}})
		case errors.Is(err, likeday.ErrNoDataForTarget):
			return xhttp.NotFoundResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_NO_TARGET_DATA",
				Message: err.Error(),
			}})
		default:
			h.logger.Error("like-day usecase error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, &xhttp.AppError{
				Code:    "ERR_UPSTREAM",
				Message: "price store query failed",
				Status:  http.StatusBadGateway,
				Err:     err,
			})
		}
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *LikeDayEchoHandler) Backfill(c echo.Context) error {
	if h.backfill == nil {
		return xhttp.AppErrorResponse(c, &xhttp.AppError{
			Code:    "ERR_BACKFILL_DISABLED",
			Message: "backfill queue is not configured",
			Status:  http.StatusServiceUnavailable,
		})
	}
	req := &models.BackfillRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	err := h.backfill.Enqueue(c.Request().Context(), usecase.BackfillPayload{
		Hub:    req.Hub,
		Market: req.Market,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		h.logger.Error("backfill enqueue error", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_BACKFILL",
			Message: err.Error(),
		}})
	}
	return xhttp.CreatedResponse(c, map[string]string{
		"status": "queued",
		"hub":    req.Hub,
		"market": req.Market,
		"start":  req.Start,
		"end":    req.End,
	})
}

func (h *LikeDayEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		return h.health(c)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// buildLikeDayParams turns the validated query strings into use case params.
func buildLikeDayParams(req *models.LikeDayRequest) (*usecase.FindLikeDaysParams, error) {
	spec, err := parseFeatureSpec(req.Features, req.Hours, req.DaysOfWeek, req.Months)
	if err != nil {
		return nil, err
	}

	return &usecase.FindLikeDaysParams{
		TargetDate: util.ParseDateDefault(req.TargetDate, util.Tomorrow()),
		Hub:        req.Hub,
		Spec:       *spec,
		HistStart:  util.ParseDateDefault(req.HistStart, time.Time{}),
		HistEnd:    util.ParseDateDefault(req.HistEnd, time.Time{}),
		NNeighbors: req.NNeighbors,
		Metric:     models.NormalizeMetric(req.Metric),
	}, nil
}

// parseFeatureSpec parses "da.lmp_total:1,rt.lmp_total:0.5" plus the calendar
// filter lists. An empty features string means the default DA total feature.
func parseFeatureSpec(features, hours, daysOfWeek, months string) (*models.FeatureSpec, error) {
	spec := &models.FeatureSpec{}

	if strings.TrimSpace(features) == "" {
		spec.Features = []models.FeatureWeight{
			{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1.0},
		}
	} else {
		for _, raw := range strings.Split(features, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			fw, err := parseFeature(raw)
			if err != nil {
				return nil, err
			}
			spec.Features = append(spec.Features, *fw)
		}
	}

	var err error
	if spec.Hours, err = util.ParseIntList(hours); err != nil {
		return nil, fmt.Errorf("hours: %w", err)
	}
	if spec.DaysOfWeek, err = util.ParseIntList(daysOfWeek); err != nil {
		return nil, fmt.Errorf("days_of_week: %w", err)
	}
	if spec.Months, err = util.ParseIntList(months); err != nil {
		return nil, fmt.Errorf("months: %w", err)
	}
	return spec, nil
}

// parseFeature parses one "market.component[:weight]" term.
func parseFeature(s string) (*models.FeatureWeight, error) {
	weight := 1.0
	if i := strings.LastIndex(s, ":"); i >= 0 {
		w, err := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("feature %q: bad weight", s)
		}
		weight = w
		s = s[:i]
	}
	pair := strings.SplitN(strings.TrimSpace(s), ".", 2)
	if len(pair) != 2 {
		return nil, fmt.Errorf("feature %q: want market.component[:weight]", s)
	}
	return &models.FeatureWeight{
		Market:    models.Market(pair[0]),
		Component: models.Component(pair[1]),
		Weight:    weight,
	}, nil
}
