package handlers

import (
	"strings"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/metrics"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetObjectives returns the caller's objective buckets. With ?tab= only
// that bucket is returned.
func GetObjectives(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objectives, err := loadOrganizationObjectives(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to fetch objectives")
	}

	buckets := policy.FilterForViewer(objectives, profile.ID)
	tabs := policy.AvailableTabs(profile.ID)
	role := okr.RoleOf(profile).String()

	if tab := okr.Tab(strings.ToLower(c.Query("tab"))); tab != "" {
		if !policy.HasTab(profile.ID, tab) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown tab",
				"tabs":  tabs,
			})
		}
		metrics.VisibilityRequests.WithLabelValues(role, string(tab)).Inc()
		return c.JSON(fiber.Map{
			"tab":        tab,
			"tabs":       tabs,
			"objectives": viewObjectives(policy, profile.ID, buckets.Tab(tab)),
		})
	}

	metrics.VisibilityRequests.WithLabelValues(role, "buckets").Inc()
	resp := fiber.Map{
		"tabs":     tabs,
		"mine":     viewObjectives(policy, profile.ID, buckets.Mine),
		"team":     viewObjectives(policy, profile.ID, buckets.Team),
		"superior": viewObjectives(policy, profile.ID, buckets.Superior),
	}
	if buckets.All != nil {
		resp["all"] = viewObjectives(policy, profile.ID, buckets.All)
	}
	return c.JSON(resp)
}

// GetObjective returns one visible objective
func GetObjective(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	objectiveID, err := paramUUID(c, "id", "objective")
	if err != nil {
		return err
	}

	policy, err := loadPolicy(c.UserContext(), orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objective, err := visibleObjective(c, profile, policy, objectiveID)
	if err != nil {
		return err
	}

	return c.JSON(viewObjective(policy, profile.ID, *objective))
}

func CreateObjective(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req models.CreateObjectiveRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	objective := models.Objective{
		OwnerID:        profile.ID,
		OrganizationID: orgID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Category:       req.Category,
	}
	for _, kr := range req.KeyResults {
		objective.KeyResults = append(objective.KeyResults, models.KeyResult{
			Title:        strings.TrimSpace(kr.Title),
			CurrentValue: kr.CurrentValue,
			TargetValue:  kr.TargetValue,
			Unit:         kr.Unit,
		})
	}

	if err := database.DB.WithContext(ctx).Create(&objective).Error; err != nil {
		return storeError(c, err, "Failed to create objective")
	}

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}

	LogActivity(ctx, orgID, profile.ID, models.ActivityObjectiveCreated, &objective.ID, map[string]interface{}{
		"title": objective.Title,
	})
	broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventObjectiveCreated, fiber.Map{
		"objectiveId": objective.ID.String(),
	})

	return c.Status(fiber.StatusCreated).JSON(viewObjective(policy, profile.ID, objective))
}

func UpdateObjective(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	objectiveID, err := paramUUID(c, "id", "objective")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req models.UpdateObjectiveRequest
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

	updates := map[string]interface{}{}
	if req.Title != nil {
		objective.Title = strings.TrimSpace(*req.Title)
		updates["title"] = objective.Title
	}
	if req.Description != nil {
		objective.Description = req.Description
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		objective.Category = *req.Category
		updates["category"] = *req.Category
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(ctx).Model(&models.Objective{}).
			Where("id = ?", objective.ID).
			Updates(updates).Error; err != nil {
			return storeError(c, err, "Failed to update objective")
		}
		LogActivity(ctx, orgID, profile.ID, models.ActivityObjectiveUpdated, &objective.ID, nil)
		broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventObjectiveUpdated, fiber.Map{
			"objectiveId": objective.ID.String(),
		})
	}

	return c.JSON(viewObjective(policy, profile.ID, *objective))
}

// DeleteObjective deletes an objective with its key results, comments and coaching
func DeleteObjective(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	objectiveID, err := paramUUID(c, "id", "objective")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objective, err := ownedObjective(c, profile, policy, objectiveID)
	if err != nil {
		return err
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("objective_id = ?", objective.ID).Delete(&models.KeyResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("objective_id = ?", objective.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("objective_id = ?", objective.ID).Delete(&models.CoachingSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(objective).Error
	})
	if err != nil {
		return storeError(c, err, "Failed to delete objective")
	}

	LogActivity(ctx, orgID, profile.ID, models.ActivityObjectiveDeleted, &objective.ID, map[string]interface{}{
		"title": objective.Title,
	})
	broadcastObjectiveEvent(policy, orgID, profile.ID, profile.ID, EventObjectiveDeleted, fiber.Map{
		"objectiveId": objective.ID.String(),
	})

	return c.SendStatus(fiber.StatusNoContent)
}
