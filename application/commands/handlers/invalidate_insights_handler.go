package handlers

import (
	"context"
	"fmt"

	"astroinsight/application/commands"
	"astroinsight/application/commands/bus"
	"astroinsight/application/services"
)

// InvalidateInsightsHandler executes InvalidateInsightsCommand
type InvalidateInsightsHandler struct {
	service *services.InsightService
}

// NewInvalidateInsightsHandler creates the handler
func NewInvalidateInsightsHandler(service *services.InsightService) *InvalidateInsightsHandler {
	return &InvalidateInsightsHandler{service: service}
}

// Handle implements bus.CommandHandler
func (h *InvalidateInsightsHandler) Handle(ctx context.Context, cmd bus.Command) error {
	invalidate, ok := cmd.(commands.InvalidateInsightsCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	return h.service.InvalidateInsights(ctx, invalidate.BirthChartID, invalidate.Reason)
}
