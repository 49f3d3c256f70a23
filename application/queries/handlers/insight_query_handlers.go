// Package handlers adapts queries to the service facade for bus dispatch
package handlers

import (
	"context"
	"fmt"
	"strings"

	"astroinsight/application/queries"
	"astroinsight/application/queries/bus"
	"astroinsight/application/services"
	"astroinsight/domain/core/valueobjects"
)

// GetInsightHandler answers GetInsightQuery
type GetInsightHandler struct {
	service *services.InsightService
}

// NewGetInsightHandler creates the handler
func NewGetInsightHandler(service *services.InsightService) *GetInsightHandler {
	return &GetInsightHandler{service: service}
}

// Handle implements bus.QueryHandler
func (h *GetInsightHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetInsightQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.service.GetByID(ctx, q.InsightID)
}

// GetInsightByTypeHandler answers GetInsightByTypeQuery
type GetInsightByTypeHandler struct {
	service *services.InsightService
}

// NewGetInsightByTypeHandler creates the handler
func NewGetInsightByTypeHandler(service *services.InsightService) *GetInsightByTypeHandler {
	return &GetInsightByTypeHandler{service: service}
}

// Handle implements bus.QueryHandler
func (h *GetInsightByTypeHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetInsightByTypeQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	insightType, err := valueobjects.ParseInsightType(q.InsightType)
	if err != nil {
		return nil, err
	}
	return h.service.GetByType(ctx, q.BirthChartID, insightType)
}

// ListInsightsHandler answers ListInsightsQuery
type ListInsightsHandler struct {
	service *services.InsightService
}

// NewListInsightsHandler creates the handler
func NewListInsightsHandler(service *services.InsightService) *ListInsightsHandler {
	return &ListInsightsHandler{service: service}
}

// Handle implements bus.QueryHandler
func (h *ListInsightsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ListInsightsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	analyses, pagination, err := h.service.GetByUser(ctx, q.UserID, q.Pagination)
	if err != nil {
		return nil, err
	}

	return &queries.ListInsightsResult{
		Analyses:   analyses,
		Pagination: pagination,
	}, nil
}

// FilterInsightsHandler answers FilterInsightsQuery
type FilterInsightsHandler struct {
	service *services.InsightService
}

// NewFilterInsightsHandler creates the handler
func NewFilterInsightsHandler(service *services.InsightService) *FilterInsightsHandler {
	return &FilterInsightsHandler{service: service}
}

// Handle implements bus.QueryHandler
func (h *FilterInsightsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.FilterInsightsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	if q.HasDateRange() {
		insights, err := h.service.GetByDateRange(ctx, q.BirthChartID, q.From, q.To)
		if err != nil {
			return nil, err
		}
		if q.Category == "" {
			return insights, nil
		}
		filtered := insights[:0]
		for _, ins := range insights {
			if strings.EqualFold(ins.Category, q.Category) {
				filtered = append(filtered, ins)
			}
		}
		return filtered, nil
	}

	return h.service.GetByCategory(ctx, q.BirthChartID, q.Category)
}

// GetTimingWindowsHandler answers GetTimingWindowsQuery
type GetTimingWindowsHandler struct {
	service *services.InsightService
}

// NewGetTimingWindowsHandler creates the handler
func NewGetTimingWindowsHandler(service *services.InsightService) *GetTimingWindowsHandler {
	return &GetTimingWindowsHandler{service: service}
}

// Handle implements bus.QueryHandler
func (h *GetTimingWindowsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetTimingWindowsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.service.GetTimingWindows(ctx, q.BirthChartID, q.HorizonDays, q.ReferenceDate)
}
