package handlers

import (
	"errors"
	"time"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateInvite generates an invite code for the caller's organization (owner only)
func CreateInvite(c *fiber.Ctx) error {
	profile, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	if okr.RoleOf(profile) != okr.RoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the organization owner can invite people",
		})
	}

	var req models.CreateInviteRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}

	invite := models.OrganizationInvite{
		OrganizationID: orgID,
		InviterID:      profile.ID,
		AppRole:        req.AppRole,
		MaxUses:        req.MaxUses,
	}

	if req.ManagerID != nil {
		var manager models.Profile
		if err := database.DB.WithContext(c.UserContext()).
			Where("id = ? AND organization_id = ?", *req.ManagerID, orgID).
			First(&manager).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Manager must be a member of the organization",
			})
		}
		invite.ManagerID = &manager.ID
	}

	if req.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(req.ExpiresIn) * time.Hour)
		invite.ExpiresAt = &exp
	}

	if err := database.DB.WithContext(c.UserContext()).Create(&invite).Error; err != nil {
		return storeError(c, err, "Failed to create invite")
	}

	return c.Status(fiber.StatusCreated).JSON(invite)
}

// JoinOrganization joins an organization via invite code
func JoinOrganization(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var invite models.OrganizationInvite
	if err := database.DB.WithContext(ctx).Where("invite_code = ?", c.Params("code")).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invalid invite code",
			})
		}
		return storeError(c, err, "Failed to load invite")
	}

	if profile.OrganizationID != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "You already belong to an organization",
		})
	}

	if !invite.IsValid(time.Now()) {
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "This invite has expired or reached its usage limit",
		})
	}

	var org models.Organization
	if err := database.DB.WithContext(ctx).Where("id = ?", invite.OrganizationID).First(&org).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Organization no longer exists",
		})
	}

	updates := map[string]interface{}{
		"organization_id": org.ID,
		"app_role":        invite.AppRole,
		"manager_id":      nil,
	}
	if invite.ManagerID != nil {
		// the manager may have left since the invite was issued
		var manager models.Profile
		if err := database.DB.WithContext(ctx).
			Where("id = ? AND organization_id = ?", *invite.ManagerID, org.ID).
			First(&manager).Error; err == nil {
			updates["manager_id"] = manager.ID
		}
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(profile).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&invite).Update("used_count", gorm.Expr("used_count + 1")).Error
	})
	if err != nil {
		return storeError(c, err, "Failed to join organization")
	}

	LogActivity(ctx, org.ID, profile.ID, models.ActivityMemberJoined, nil, nil)

	name := displayName(profile)
	CreateNotification(ctx, invite.InviterID, models.NotificationMemberJoined,
		"New member joined",
		name+" joined "+org.Name,
		map[string]interface{}{"organizationId": org.ID.String(), "profileId": profile.ID.String()},
	)

	WS.Broadcast(org.ID, profile.ID, WSEvent{
		Type:           EventMemberJoined,
		OrganizationID: org.ID.String(),
		ProfileID:      profile.ID.String(),
		Data: map[string]interface{}{
			"name": name,
		},
	}, nil)

	return c.JSON(fiber.Map{
		"message":        "Successfully joined organization",
		"organizationId": org.ID,
	})
}
