package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// pagination reads ?page= and ?limit= with the usual bounds.
func pagination(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

// GetActivity returns paginated organization activity, restricted to the
// actors whose objectives the caller may see.
func GetActivity(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	policy, err := loadPolicy(c.UserContext(), orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}

	page, limit, offset := pagination(c)
	actors := policy.VisibleOwnerIDs(profile.ID).Slice()

	db := database.DB.WithContext(c.UserContext())
	var activities []models.Activity
	if err := db.Where("organization_id = ? AND profile_id IN ?", orgID, actors).
		Preload("Profile").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error; err != nil {
		return storeError(c, err, "Failed to fetch activity")
	}

	var total int64
	db.Model(&models.Activity{}).Where("organization_id = ? AND profile_id IN ?", orgID, actors).Count(&total)

	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// LogActivity is a helper to create activity entries from other handlers
func LogActivity(ctx context.Context, orgID, profileID uuid.UUID, actionType string, targetID *uuid.UUID, metadata map[string]interface{}) {
	activity := models.Activity{
		OrganizationID: orgID,
		ProfileID:      profileID,
		ActionType:     actionType,
		TargetID:       targetID,
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			s := string(data)
			activity.Metadata = &s
		}
	}

	if err := database.DB.WithContext(ctx).Create(&activity).Error; err != nil {
		slog.WarnContext(ctx, "failed to log activity", "action", actionType, "error", err)
	}
}
