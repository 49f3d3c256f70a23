package services

import (
	"fmt"
	"strings"
	"time"

	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
)

// GenerationRequest carries everything one generation needs. The orchestrator
// fills it from repositories; the prompt builder only reads it.
type GenerationRequest struct {
	UserID        string
	InsightType   valueobjects.InsightType
	Chart         *entities.BirthChart
	Theme         *entities.LifeTheme
	Transit       *entities.Transit
	Transits      []entities.Transit
	ReferenceDate time.Time
}

// EntityID returns the cache entity for the request: the chart for
// chart-scoped kinds, the theme key under the chart for theme-scoped ones.
func (r GenerationRequest) EntityID() string {
	if r.Theme != nil {
		return r.Chart.ID + ":" + r.Theme.Key
	}
	return r.Chart.ID
}

// PromptBuilder renders generator prompts per insight kind. It is pure:
// same request, same prompt. Sanitization and truncation happen in the
// orchestrator after building.
type PromptBuilder struct {
	maxLength int
}

// NewPromptBuilder creates a builder capped at maxLength runes
func NewPromptBuilder(maxLength int) *PromptBuilder {
	return &PromptBuilder{maxLength: maxLength}
}

// Build renders the prompt for a request
func (b *PromptBuilder) Build(req GenerationRequest) (string, error) {
	if req.Chart == nil {
		return "", pkgerrors.NewValidationError("generation request has no birth chart")
	}

	var prompt string
	switch req.InsightType {
	case valueobjects.InsightTypeDaily:
		prompt = b.daily(req)
	case valueobjects.InsightTypeWeekly:
		prompt = b.weekly(req)
	case valueobjects.InsightTypeTransit:
		if req.Transit == nil {
			return "", pkgerrors.NewValidationError("transit insight requires a transit")
		}
		prompt = b.transit(req)
	case valueobjects.InsightTypeBirthChart:
		prompt = b.natal(req)
	case valueobjects.InsightTypeLifeTheme, valueobjects.InsightTypeThemeForecast:
		if req.Theme == nil {
			return "", pkgerrors.NewValidationError("theme insight requires a life theme")
		}
		prompt = b.theme(req)
	case valueobjects.InsightTypeNodePath:
		prompt = b.nodePath(req)
	case valueobjects.InsightTypePattern:
		prompt = b.pattern(req)
	case valueobjects.InsightTypeHouseThemes:
		prompt = b.houses(req, "Describe the life areas emphasized by the occupied houses.")
	case valueobjects.InsightTypeHouseLords:
		prompt = b.houses(req, "Describe how each house ruler conditions its house's affairs.")
	default:
		return "", pkgerrors.NewValidationError(fmt.Sprintf("no prompt defined for insight type %q", req.InsightType))
	}

	return b.truncate(prompt), nil
}

func (b *PromptBuilder) daily(req GenerationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a daily astrological insight for %s.\n\n", req.ReferenceDate.UTC().Format("January 2, 2006"))
	b.writePlacements(&sb, req.Chart)
	b.writeTransits(&sb, "Today's transits:", req.Transits)
	sb.WriteString("\nFocus on the day's dominant influence. Keep it under three paragraphs, grounded and practical.")
	return sb.String()
}

func (b *PromptBuilder) weekly(req GenerationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a weekly astrological forecast for the week of %s.\n\n", req.ReferenceDate.UTC().Format("January 2, 2006"))
	b.writePlacements(&sb, req.Chart)
	b.writeTransits(&sb, "This week's transits:", req.Transits)
	sb.WriteString("\nStructure the forecast around the strongest transit cluster of the week.")
	return sb.String()
}

func (b *PromptBuilder) transit(req GenerationRequest) string {
	var sb strings.Builder
	t := req.Transit
	fmt.Fprintf(&sb, "Interpret the transit %s %s %s", t.Planet, t.AspectType, t.AspectingNatal)
	if t.House > 0 {
		fmt.Fprintf(&sb, " in house %d", t.House)
	}
	fmt.Fprintf(&sb, " (orb %.1f, exact %s).\n\n", t.Orb, t.ExactDate.UTC().Format("2006-01-02"))
	if text := t.Text(); text != "" {
		fmt.Fprintf(&sb, "Context: %s\n\n", text)
	}
	b.writePlacements(&sb, req.Chart)
	sb.WriteString("\nExplain what this transit activates in the natal chart and how long the influence lasts.")
	return sb.String()
}

func (b *PromptBuilder) natal(req GenerationRequest) string {
	var sb strings.Builder
	sb.WriteString("Write a natal chart reading.\n\n")
	b.writePlacements(&sb, req.Chart)
	if len(req.Chart.Aspects) > 0 {
		sb.WriteString("Major aspects:\n")
		for _, a := range req.Chart.Aspects {
			fmt.Fprintf(&sb, "- %s %s %s (orb %.1f)\n", a.Body1, a.Type, a.Body2, a.Orb)
		}
	}
	sb.WriteString("\nCover temperament, strengths, and growth edges. No jargon beyond the placements named above.")
	return sb.String()
}

func (b *PromptBuilder) theme(req GenerationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write an insight on the life theme %q (%s).\n", req.Theme.Title, req.Theme.LifeArea)
	if req.Theme.Description != "" {
		fmt.Fprintf(&sb, "Theme background: %s\n", req.Theme.Description)
	}
	sb.WriteString("\n")
	b.writePlacements(&sb, req.Chart)
	if req.InsightType == valueobjects.InsightTypeThemeForecast {
		fmt.Fprintf(&sb, "\nForecast how this theme develops from %s onward, using the transits below.\n", req.ReferenceDate.UTC().Format("2006-01-02"))
		b.writeTransits(&sb, "Upcoming transits:", req.Transits)
	} else {
		sb.WriteString("\nDescribe how the chart expresses this theme across its life area.")
	}
	return sb.String()
}

func (b *PromptBuilder) nodePath(req GenerationRequest) string {
	var sb strings.Builder
	sb.WriteString("Write a north node path reading.\n\n")
	if node := req.Chart.Body("North Node"); node != nil {
		fmt.Fprintf(&sb, "North Node: %s, house %d\n", node.Sign, node.House)
	}
	if node := req.Chart.Body("South Node"); node != nil {
		fmt.Fprintf(&sb, "South Node: %s, house %d\n", node.Sign, node.House)
	}
	sb.WriteString("\n")
	b.writePlacements(&sb, req.Chart)
	sb.WriteString("\nContrast the familiar south node patterns with the north node direction of growth.")
	return sb.String()
}

func (b *PromptBuilder) pattern(req GenerationRequest) string {
	var sb strings.Builder
	sb.WriteString("Identify the dominant aspect patterns in this chart and interpret them.\n\n")
	b.writePlacements(&sb, req.Chart)
	if len(req.Chart.Aspects) > 0 {
		sb.WriteString("Aspects:\n")
		for _, a := range req.Chart.Aspects {
			fmt.Fprintf(&sb, "- %s %s %s (orb %.1f)\n", a.Body1, a.Type, a.Body2, a.Orb)
		}
	}
	return sb.String()
}

func (b *PromptBuilder) houses(req GenerationRequest, instruction string) string {
	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\n")
	b.writePlacements(&sb, req.Chart)
	if len(req.Chart.Houses) > 0 {
		sb.WriteString("Houses:\n")
		for _, h := range req.Chart.Houses {
			fmt.Fprintf(&sb, "- House %d: %s (cusp %.1f)\n", h.Number, h.Sign, h.Cusp)
		}
	}
	return sb.String()
}

func (b *PromptBuilder) writePlacements(sb *strings.Builder, chart *entities.BirthChart) {
	if len(chart.Bodies) == 0 {
		return
	}
	sb.WriteString("Natal placements:\n")
	for _, body := range chart.Bodies {
		fmt.Fprintf(sb, "- %s: %s", body.Name, body.Sign)
		if body.House > 0 {
			fmt.Fprintf(sb, ", house %d", body.House)
		}
		if body.Retro {
			sb.WriteString(", retrograde")
		}
		sb.WriteString("\n")
	}
}

func (b *PromptBuilder) writeTransits(sb *strings.Builder, heading string, transits []entities.Transit) {
	if len(transits) == 0 {
		return
	}
	sb.WriteString(heading)
	sb.WriteString("\n")
	for _, t := range transits {
		fmt.Fprintf(sb, "- %s %s %s (orb %.1f, exact %s)\n",
			t.Planet, t.AspectType, t.AspectingNatal, t.Orb, t.ExactDate.UTC().Format("2006-01-02"))
	}
}

func (b *PromptBuilder) truncate(s string) string {
	if b.maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= b.maxLength {
		return s
	}
	return string(runes[:b.maxLength])
}
