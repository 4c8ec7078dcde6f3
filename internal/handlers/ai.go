package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/metrics"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func aiCoach() (services.Coach, error) {
	coach, err := services.CurrentCoach()
	if errors.Is(err, services.ErrAIDisabled) {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "AI features are not configured")
	}
	return coach, err
}

// callAI runs fn as the named AI operation and records its outcome.
func callAI(c *fiber.Ctx, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.AILatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.AICalls.WithLabelValues(operation, "ok").Inc()
		return nil
	}

	outcome := "error"
	if errors.Is(err, services.ErrAIResponse) {
		outcome = "invalid"
	}
	metrics.AICalls.WithLabelValues(operation, outcome).Inc()
	slog.WarnContext(c.UserContext(), "ai call failed", "operation", operation, "error", err)
	return fiber.NewError(fiber.StatusBadGateway, "The AI collaborator could not answer, try again")
}

// SuggestObjective turns a free-text idea into a draft objective. Nothing is saved.
func SuggestObjective(c *fiber.Ctx) error {
	if _, _, err := currentMember(c); err != nil {
		return err
	}

	var req models.SuggestionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	coach, err := aiCoach()
	if err != nil {
		return err
	}

	var suggestion *models.Suggestion
	err = callAI(c, "suggest_objective", func() error {
		var err error
		suggestion, err = coach.SuggestObjective(c.UserContext(), req.Idea)
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(suggestion)
}

// MonthlyReport asks the AI for a review of the caller's own objectives
func MonthlyReport(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var objectives []models.Objective
	if err := database.DB.WithContext(ctx).
		Where("organization_id = ? AND owner_id = ?", orgID, profile.ID).
		Preload("KeyResults", preloadKeyResults).
		Order("created_at DESC, id ASC").
		Find(&objectives).Error; err != nil {
		return storeError(c, err, "Failed to fetch objectives")
	}

	if len(objectives) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Create an objective before requesting a report",
		})
	}

	coach, err := aiCoach()
	if err != nil {
		return err
	}

	var report *models.MonthlyReport
	err = callAI(c, "monthly_report", func() error {
		var err error
		report, err = coach.MonthlyReport(ctx, objectives)
		return err
	})
	if err != nil {
		return err
	}

	summaries := make([]models.ObjectiveSummary, 0, len(objectives))
	for i := range objectives {
		summaries = append(summaries, models.ObjectiveSummary{
			ID:         objectives[i].ID,
			Title:      objectives[i].Title,
			Progress:   objectives[i].Progress(),
			KeyResults: len(objectives[i].KeyResults),
		})
	}

	return c.JSON(fiber.Map{
		"report":      report,
		"objectives":  summaries,
		"generatedAt": time.Now().UTC(),
	})
}
