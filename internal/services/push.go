package services

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// PushService handles sending push notifications via Firebase Cloud Messaging
type PushService struct {
	client *messaging.Client
}

// Global push service instance
var Push *PushService

// InitPush initializes the Firebase push notification service.
// Returns nil gracefully if no service account is configured (dev mode).
func InitPush(serviceAccountPath string) error {
	if serviceAccountPath == "" {
		slog.Info("fcm: no service account configured, push notifications disabled")
		Push = &PushService{client: nil}
		return nil
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		slog.Warn("fcm: failed to initialize firebase app", "error", err)
		Push = &PushService{client: nil}
		return nil
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		slog.Warn("fcm: failed to get messaging client", "error", err)
		Push = &PushService{client: nil}
		return nil
	}

	Push = &PushService{client: client}
	slog.Info("fcm: push notifications enabled")
	return nil
}

// Enabled reports whether messages will actually be sent.
func (p *PushService) Enabled() bool {
	return p != nil && p.client != nil
}

// SendToProfile sends a push notification to a profile's registered device.
// No-op if push is not configured or the profile has no FCM token. Tokens
// FCM reports as unregistered are cleared.
func (p *PushService) SendToProfile(ctx context.Context, profileID uuid.UUID, title, body string, data map[string]string) {
	if !p.Enabled() {
		return
	}

	var profile models.Profile
	if err := database.DB.WithContext(ctx).Select("id", "fcm_token").Where("id = ?", profileID).First(&profile).Error; err != nil {
		return
	}
	if profile.FCMToken == "" {
		return
	}

	_, err := p.client.Send(ctx, buildMessage(profile.FCMToken, title, body, data))
	switch {
	case err == nil:
	case messaging.IsRegistrationTokenNotRegistered(err):
		slog.Info("fcm: dropping stale device token", "profile", profileID)
		database.DB.WithContext(ctx).Model(&models.Profile{}).
			Where("id = ?", profileID).
			Update("fcm_token", "")
	default:
		slog.Warn("fcm: send failed", "profile", profileID, "error", err)
	}
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
