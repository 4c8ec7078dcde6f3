package handlers

import (
	"strings"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateOrganization creates an organization owned by the caller
func CreateOrganization(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if profile.OrganizationID != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "You already belong to an organization",
		})
	}

	var req models.CreateOrganizationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	org := models.Organization{Name: strings.TrimSpace(req.Name)}
	err = database.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Model(profile).Updates(map[string]interface{}{
			"organization_id": org.ID,
			"app_role":        models.AppRoleOwner,
			"manager_id":      nil,
		}).Error
	})
	if err != nil {
		return storeError(c, err, "Failed to create organization")
	}

	profile.OrganizationID = &org.ID
	profile.AppRole = models.AppRoleOwner
	profile.ManagerID = nil

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"organization": org,
		"profile":      profile,
	})
}

// GetPeople returns the directory of the caller's organization
func GetPeople(c *fiber.Ctx) error {
	_, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	policy, err := loadPolicy(c.UserContext(), orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}

	dir := policy.Directory()
	people := make([]models.PersonInfo, 0)
	for _, p := range dir.All(orgID) {
		people = append(people, p.Info())
	}

	resp := fiber.Map{"people": people, "ownerId": nil}
	if owner, ok := dir.Owner(orgID); ok {
		resp["ownerId"] = owner.ID
	}
	return c.JSON(resp)
}

// AssignPerson lets the organization owner set a member's app role and manager
func AssignPerson(c *fiber.Ctx) error {
	caller, orgID, err := currentMember(c)
	if err != nil {
		return err
	}
	if okr.RoleOf(caller) != okr.RoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the organization owner can change roles and managers",
		})
	}

	targetID, err := paramUUID(c, "id", "profile")
	if err != nil {
		return err
	}

	var req models.AssignProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	policy, err := loadPolicy(c.UserContext(), orgID)
	if err != nil {
		return storeError(c, err, "Failed to load directory")
	}
	dir := policy.Directory()

	target, ok := dir.Person(targetID)
	if !ok || !target.InOrganization(orgID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Person not found",
		})
	}

	updates := map[string]interface{}{}

	if req.AppRole != nil && *req.AppRole != target.AppRole {
		if *req.AppRole == models.AppRoleOwner {
			if owner, ok := dir.Owner(orgID); ok && owner.ID != target.ID {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "The organization already has an owner",
				})
			}
		}
		if target.ID == caller.ID && *req.AppRole != models.AppRoleOwner {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "The owner cannot step down without a successor",
			})
		}
		updates["app_role"] = *req.AppRole
	}

	switch {
	case req.ClearManager:
		updates["manager_id"] = nil
	case req.ManagerID != nil:
		manager, ok := dir.Person(*req.ManagerID)
		if !ok || !manager.InOrganization(orgID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Manager must be a member of the organization",
			})
		}
		if dir.WouldCycle(target.ID, manager.ID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "That manager would create a reporting cycle",
			})
		}
		updates["manager_id"] = manager.ID
	}

	if len(updates) == 0 {
		return c.JSON(target.Info())
	}

	if err := database.DB.WithContext(c.UserContext()).
		Model(&models.Profile{}).
		Where("id = ?", target.ID).
		Updates(updates).Error; err != nil {
		return storeError(c, err, "Failed to update person")
	}

	var updated models.Profile
	if err := database.DB.WithContext(c.UserContext()).Where("id = ?", target.ID).First(&updated).Error; err != nil {
		return storeError(c, err, "Failed to load person")
	}

	WS.Broadcast(orgID, caller.ID, WSEvent{
		Type:           EventDirectoryUpdated,
		OrganizationID: orgID.String(),
		ProfileID:      caller.ID.String(),
		Data:           updated.Info(),
	}, nil)

	return c.JSON(updated.Info())
}
