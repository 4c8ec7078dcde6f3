package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/middleware"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetNotifications returns paginated notifications for the current profile
func GetNotifications(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	page, limit, offset := pagination(c)
	db := database.DB.WithContext(c.UserContext())

	var notifications []models.Notification
	if err := db.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return storeError(c, err, "Failed to fetch notifications")
	}

	var total int64
	db.Model(&models.Notification{}).Where("profile_id = ?", profileID).Count(&total)

	var unread int64
	db.Model(&models.Notification{}).Where("profile_id = ? AND read = ?", profileID, false).Count(&unread)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"page":          page,
		"limit":         limit,
	})
}

// MarkNotificationRead marks a single notification as read
func MarkNotificationRead(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	notifID, err := paramUUID(c, "id", "notification")
	if err != nil {
		return err
	}

	result := database.DB.WithContext(c.UserContext()).Model(&models.Notification{}).
		Where("id = ? AND profile_id = ?", notifID, profileID).
		Update("read", true)
	if result.Error != nil {
		return storeError(c, result.Error, "Failed to update notification")
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current profile
func MarkAllRead(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)

	if err := database.DB.WithContext(c.UserContext()).Model(&models.Notification{}).
		Where("profile_id = ? AND read = ?", profileID, false).
		Update("read", true).Error; err != nil {
		return storeError(c, err, "Failed to update notifications")
	}

	return c.JSON(fiber.Map{"success": true})
}

// RegisterDeviceToken saves the FCM token for push notifications
func RegisterDeviceToken(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)

	var req models.RegisterDeviceTokenRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := database.DB.WithContext(c.UserContext()).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("fcm_token", req.Token).Error; err != nil {
		return storeError(c, err, "Failed to save device token")
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateNotification is a helper to create notifications from other handlers
func CreateNotification(ctx context.Context, profileID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) {
	notif := models.Notification{
		ProfileID: profileID,
		Type:      notifType,
		Title:     title,
		Body:      body,
	}

	var pushData map[string]string
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			s := string(data)
			notif.Metadata = &s
		}
		pushData = make(map[string]string, len(metadata)+1)
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
		pushData["type"] = notifType
	}

	if err := database.DB.WithContext(ctx).Create(&notif).Error; err != nil {
		slog.WarnContext(ctx, "failed to create notification", "type", notifType, "error", err)
		return
	}

	if services.Push.Enabled() {
		// the request context ends with the response
		go services.Push.SendToProfile(context.Background(), profileID, title, body, pushData)
	}
}
