package handlers

import (
	"context"
	"fmt"

	"astroinsight/application/commands"
	"astroinsight/application/commands/bus"
	"astroinsight/application/services"
	"astroinsight/domain/core/valueobjects"
	"astroinsight/pkg/common"
)

// GenerateInsightHandler executes GenerateInsightCommand through the
// service facade
type GenerateInsightHandler struct {
	service *services.InsightService
}

// NewGenerateInsightHandler creates the handler
func NewGenerateInsightHandler(service *services.InsightService) *GenerateInsightHandler {
	return &GenerateInsightHandler{service: service}
}

// Handle implements bus.CommandHandler
func (h *GenerateInsightHandler) Handle(ctx context.Context, cmd bus.Command) error {
	generate, ok := cmd.(commands.GenerateInsightCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	insightType, err := valueobjects.ParseInsightType(generate.InsightType)
	if err != nil {
		return err
	}

	ctx = common.WithUserID(ctx, generate.UserID)
	_, err = h.service.AnalyzeInsights(ctx, services.AnalyzeRequest{
		UserID:        generate.UserID,
		ChartID:       generate.BirthChartID,
		InsightType:   insightType,
		ThemeKey:      generate.ThemeKey,
		ReferenceDate: generate.ReferenceDate,
	})
	return err
}
