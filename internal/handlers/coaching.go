package handlers

import (
	"time"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestCoaching asks the AI coach for a verdict on one of the caller's
// objectives and stores it.
func RequestCoaching(c *fiber.Ctx) error {
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

	coach, err := aiCoach()
	if err != nil {
		return err
	}

	var coaching *models.Coaching
	err = callAI(c, "coach", func() error {
		var err error
		coaching, err = coach.Coach(ctx, objective)
		return err
	})
	if err != nil {
		return err
	}

	session := models.CoachingSession{
		ObjectiveID: objective.ID,
		Status:      coaching.Status,
		Summary:     coaching.Summary,
		Tips:        coaching.Tips,
		Progress:    objective.Progress(),
	}
	if session.Tips == nil {
		session.Tips = []string{}
	}

	now := time.Now()
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return tx.Model(&models.Objective{}).
			Where("id = ?", objective.ID).
			Update("last_coaching_at", now).Error
	})
	if err != nil {
		return storeError(c, err, "Failed to save coaching")
	}

	LogActivity(ctx, orgID, profile.ID, models.ActivityCoachingRequested, &objective.ID, map[string]interface{}{
		"status": session.Status,
	})
	broadcastObjectiveEvent(policy, orgID, profile.ID, objective.OwnerID, EventCoachingAdded, fiber.Map{
		"objectiveId": objective.ID.String(),
		"status":      session.Status,
	})

	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetCoachingHistory lists the coaching sessions of a visible objective, newest first
func GetCoachingHistory(c *fiber.Ctx) error {
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

	var sessions []models.CoachingSession
	if err := database.DB.WithContext(c.UserContext()).
		Where("objective_id = ?", objective.ID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return storeError(c, err, "Failed to fetch coaching history")
	}

	return c.JSON(sessions)
}
