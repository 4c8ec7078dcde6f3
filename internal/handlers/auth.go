package handlers

import (
	"errors"
	"strings"

	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/middleware"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Check if profile exists
	var existing models.Profile
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already registered",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	profile := models.Profile{
		Email:    email,
		Password: string(hashedPassword),
		Name:     name,
	}

	if err := database.DB.Create(&profile).Error; err != nil {
		return storeError(c, err, "Failed to create profile")
	}

	token, err := middleware.GenerateToken(jwtSecret, profile.ID, profile.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token:   token,
		Profile: profile,
	})
}

func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	var profile models.Profile
	if err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateToken(jwtSecret, profile.ID, profile.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(models.AuthResponse{
		Token:   token,
		Profile: profile,
	})
}

// GetMe returns the caller's profile with its organization and policy role.
func GetMe(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}

	var organization *models.Organization
	if profile.OrganizationID != nil {
		var org models.Organization
		err := database.DB.WithContext(c.UserContext()).Where("id = ?", *profile.OrganizationID).First(&org).Error
		switch {
		case err == nil:
			organization = &org
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return storeError(c, err, "Failed to load organization")
		}
	}

	return c.JSON(fiber.Map{
		"profile":      profile,
		"organization": organization,
		"role":         okr.RoleOf(profile).String(),
		"onboarded":    organization != nil,
	})
}

func UpdateProfile(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if req.Name != nil {
		profile.Name = strings.TrimSpace(*req.Name)
		if req.Avatar == nil {
			profile.Avatar = models.Initials(profile.Name)
		}
	}
	if req.JobTitle != nil {
		profile.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.Avatar != nil {
		profile.Avatar = *req.Avatar
	}
	if req.Color != nil {
		profile.Color = *req.Color
	}

	if err := database.DB.WithContext(c.UserContext()).Save(profile).Error; err != nil {
		return storeError(c, err, "Failed to update profile")
	}

	return c.JSON(profile)
}
