package handlers

import (
	"errors"
	"strings"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AddComment adds a comment to an objective the caller can see
func AddComment(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	objectiveID, err := paramUUID(c, "id", "objective")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req models.CreateCommentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Comment text is required",
		})
	}

	policy, err := loadPolicy(ctx, orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	objective, err := visibleObjective(c, profile, policy, objectiveID)
	if err != nil {
		return err
	}

	comment := models.Comment{
		ObjectiveID: objective.ID,
		ProfileID:   profile.ID,
		Text:        text,
	}
	if err := database.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return storeError(c, err, "Failed to add comment")
	}
	comment.Profile = *profile

	meta := map[string]interface{}{
		"objectiveId": objective.ID.String(),
		"commentId":   comment.ID.String(),
	}
	LogActivity(ctx, orgID, profile.ID, models.ActivityCommentAdded, &objective.ID, meta)

	if objective.OwnerID != profile.ID {
		CreateNotification(ctx, objective.OwnerID, models.NotificationCommentReceived,
			"New comment",
			displayName(profile)+" commented on \""+objective.Title+"\"",
			meta,
		)
	}

	broadcastObjectiveEvent(policy, orgID, profile.ID, objective.OwnerID, EventCommentAdded, meta)

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments returns the comments of a visible objective, oldest first
func GetComments(c *fiber.Ctx) error {
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

	var comments []models.Comment
	if err := database.DB.WithContext(c.UserContext()).
		Where("objective_id = ?", objective.ID).
		Preload("Profile").
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return storeError(c, err, "Failed to fetch comments")
	}

	return c.JSON(comments)
}

// DeleteComment deletes a comment (only by the comment author)
func DeleteComment(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	objectiveID, err := paramUUID(c, "id", "objective")
	if err != nil {
		return err
	}
	commentID, err := paramUUID(c, "commentId", "comment")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var comment models.Comment
	if err := database.DB.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Comment not found",
			})
		}
		return storeError(c, err, "Failed to load comment")
	}
	if comment.ObjectiveID != objectiveID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Comment not found",
		})
	}

	if comment.ProfileID != profile.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only delete your own comments",
		})
	}

	if err := database.DB.WithContext(ctx).Delete(&comment).Error; err != nil {
		return storeError(c, err, "Failed to delete comment")
	}

	// the objective may already be gone; only broadcast when it is still there
	if objective, err := loadObjective(ctx, comment.ObjectiveID); err == nil {
		if policy, err := loadPolicy(ctx, orgID); err == nil {
			broadcastObjectiveEvent(policy, orgID, profile.ID, objective.OwnerID, EventCommentDeleted, fiber.Map{
				"objectiveId": objective.ID.String(),
				"commentId":   comment.ID.String(),
			})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
