package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/metrics"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// keyResultObjective resolves the objective holding key result :id for viewer.
func keyResultObjective(c *fiber.Ctx, viewer *models.Profile, policy *okr.Policy) (*models.Objective, *models.KeyResult, error) {
	krID, err := paramUUID(c, "id", "key result")
	if err != nil {
		return nil, nil, err
	}

	var kr models.KeyResult
	if err := database.DB.WithContext(c.UserContext()).Where("id = ?", krID).First(&kr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "Key result not found")
		}
		return nil, nil, storeError(c, err, "Failed to load key result")
	}

	objective, err := ownedObjective(c, viewer, policy, kr.ObjectiveID)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code == fiber.StatusNotFound {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "Key result not found")
		}
		return nil, nil, err
	}
	found, err := keyResultIn(objective, kr.ID)
	if err != nil {
		return nil, nil, err
	}
	return objective, found, nil
}

// keyResultIn picks krID out of the objective's loaded key results. The row
// can disappear between the two reads in keyResultObjective.
func keyResultIn(objective *models.Objective, krID uuid.UUID) (*models.KeyResult, error) {
	kr := objective.FindKeyResult(krID)
	if kr == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Key result not found")
	}
	return kr, nil
}

// CreateKeyResult adds a key result to one of the caller's objectives
func CreateKeyResult(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	objectiveID, err := paramUUID(c, "id", "objective")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req models.CreateKeyResultRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objective, err := ownedObjective(c, profile, policy, objectiveID)
	if err != nil {
		return err
	}

	kr := models.KeyResult{
		ObjectiveID:  objective.ID,
		Title:        strings.TrimSpace(req.Title),
		CurrentValue: req.CurrentValue,
		TargetValue:  req.TargetValue,
		Unit:         req.Unit,
	}
	if err := database.DB.WithContext(ctx).Create(&kr).Error; err != nil {
		return storeError(c, err, "Failed to create key result")
	}
	objective.KeyResults = append(objective.KeyResults, kr)

	broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventKeyResultUpdated, fiber.Map{
		"objectiveId": objective.ID.String(),
		"keyResultId": kr.ID.String(),
		"progress":    objective.Progress(),
	})

	return c.Status(fiber.StatusCreated).JSON(viewObjective(policy, profile.ID, *objective))
}

// UpdateKeyResult edits a key result, typically to report progress
func UpdateKeyResult(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req models.UpdateKeyResultRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objective, kr, err := keyResultObjective(c, profile, policy)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		kr.Title = strings.TrimSpace(*req.Title)
		updates["title"] = kr.Title
	}
	if req.CurrentValue != nil {
		kr.CurrentValue = *req.CurrentValue
		updates["current_value"] = kr.CurrentValue
	}
	if req.TargetValue != nil {
		kr.TargetValue = *req.TargetValue
		updates["target_value"] = kr.TargetValue
	}
	if req.Unit != nil {
		kr.Unit = *req.Unit
		updates["unit"] = kr.Unit
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(ctx).Model(&models.KeyResult{}).
			Where("id = ?", kr.ID).
			Updates(updates).Error; err != nil {
			return storeError(c, err, "Failed to update key result")
		}
		broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventKeyResultUpdated, fiber.Map{
			"objectiveId": objective.ID.String(),
			"keyResultId": kr.ID.String(),
			"progress":    objective.Progress(),
		})
	}

	return c.JSON(viewObjective(policy, profile.ID, *objective))
}

// DeleteKeyResult removes a key result. An objective keeps at least one.
func DeleteKeyResult(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objective, kr, err := keyResultObjective(c, profile, policy)
	if err != nil {
		return err
	}

	if len(objective.KeyResults) <= 1 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "An objective needs at least one key result",
		})
	}

	if err := database.DB.WithContext(ctx).Delete(&models.KeyResult{}, "id = ?", kr.ID).Error; err != nil {
		return storeError(c, err, "Failed to delete key result")
	}

	broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventKeyResultUpdated, fiber.Map{
		"objectiveId": objective.ID.String(),
		"keyResultId": kr.ID.String(),
		"deleted":     true,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// AdoptKeyResult copies a superior's key result into a new objective owned
// by the caller. Mode "ai" asks the coach to rephrase the key result as an
// objective title first.
func AdoptKeyResult(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	krID, err := paramUUID(c, "id", "key result")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req models.AdoptKeyResultRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}
	mode := req.Mode
	if mode == "" {
		mode = "manual"
	}

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objectives, err := loadOrganizationObjectives(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to fetch objectives")
	}

	// check permission before spending an AI call
	adoption, err := policy.Adopt(profile.ID, krID, objectives)
	if err != nil {
		result := metrics.AdoptionFailed
		switch {
		case errors.Is(err, okr.ErrNotFound):
			result = metrics.AdoptionNotFound
		case errors.Is(err, okr.ErrAdoptionDenied):
			result = metrics.AdoptionDenied
		}
		metrics.Adoptions.WithLabelValues(result, mode).Inc()
		if errors.Is(err, okr.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Key result not found")
		}
		return okrError(c, err)
	}

	var opts []okr.AdoptOption
	if mode == "ai" {
		suggestion, err := transformWithAI(c, adoption.Source.Title)
		if err != nil {
			metrics.Adoptions.WithLabelValues(metrics.AdoptionFailed, mode).Inc()
			return err
		}
		opts = append(opts, okr.WithTitle(suggestion.ObjectiveTitle))
	}
	if req.Title != "" {
		opts = append(opts, okr.WithTitle(req.Title))
	}
	if len(opts) > 0 {
		if adoption, err = policy.Adopt(profile.ID, krID, objectives, opts...); err != nil {
			return okrError(c, err)
		}
	}

	draft := adoption.Draft
	if err := database.DB.WithContext(ctx).Create(&draft).Error; err != nil {
		metrics.Adoptions.WithLabelValues(metrics.AdoptionFailed, mode).Inc()
		return storeError(c, err, "Failed to save adopted objective")
	}
	metrics.Adoptions.WithLabelValues(metrics.AdoptionCreated, mode).Inc()
	slog.InfoContext(ctx, "key result adopted",
		"profile", profile.ID, "source", adoption.Source.ID, "objective", draft.ID, "mode", mode)

	meta := map[string]interface{}{
		"objectiveId":       draft.ID.String(),
		"sourceKeyResultId": adoption.Source.ID.String(),
		"sourceObjectiveId": adoption.SourceObjectiveID.String(),
	}
	LogActivity(ctx, orgID, profile.ID, models.ActivityKeyResultAdopted, &draft.ID, meta)
	CreateNotification(ctx, adoption.SourceOwnerID, models.NotificationKeyResultAdopted,
		"Key result adopted",
		displayName(profile)+" adopted \""+adoption.Source.Title+"\"",
		meta,
	)
	broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventKeyResultAdopted, meta)

	return c.Status(fiber.StatusCreated).JSON(viewObjective(policy, profile.ID, draft))
}

func transformWithAI(c *fiber.Ctx, title string) (*models.Suggestion, error) {
	coach, err := aiCoach()
	if err != nil {
		return nil, err
	}
	var suggestion *models.Suggestion
	err = callAI(c, "transform_key_result", func() error {
		var err error
		suggestion, err = coach.TransformKeyResult(c.UserContext(), title)
		return err
	})
	return suggestion, err
}
