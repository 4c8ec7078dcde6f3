package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arnold/okrmaster-api/internal/config"
	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/metrics"
	"github.com/arnold/okrmaster-api/internal/middleware"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/arnold/okrmaster-api/internal/okr"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	validate  = validator.New()
	jwtSecret = "your-secret-key-change-in-production"
)

// Configure wires runtime settings into the handlers.
func Configure(cfg *config.Config) {
	jwtSecret = cfg.JWTSecret
}

// validationError carries the failed field → tag pairs of a request body.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	return "validation failed"
}

// ErrorHandler renders errors returned by handlers as {"error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": ve.fields,
		})
	}

	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// bindJSON parses the body into v and validates it.
func bindJSON(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return validateStruct(v)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = e.Tag()
	}
	return &validationError{fields: fields}
}

func paramUUID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" ID")
	}
	return id, nil
}

// storeError logs a database failure and hides it behind msg.
func storeError(c *fiber.Ctx, err error, msg string) error {
	slog.Error(msg, "method", c.Method(), "path", c.Path(), "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// okrError maps core sentinel errors onto HTTP errors.
func okrError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, okr.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	case errors.Is(err, okr.ErrAdoptionDenied):
		return fiber.NewError(fiber.StatusForbidden, "You can only adopt key results from your manager or the organization owner")
	case errors.Is(err, okr.ErrConfiguration):
		return fiber.NewError(fiber.StatusConflict, "The reporting structure is misconfigured")
	}
	return storeError(c, err, "Request failed")
}

// currentProfile loads the authenticated profile.
func currentProfile(c *fiber.Ctx) (*models.Profile, error) {
	var profile models.Profile
	err := database.DB.WithContext(c.UserContext()).
		Where("id = ?", middleware.GetProfileID(c)).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Profile not found")
	}
	if err != nil {
		return nil, storeError(c, err, "Failed to load profile")
	}
	return &profile, nil
}

// currentMember loads the authenticated profile and requires an organization.
func currentMember(c *fiber.Ctx) (*models.Profile, uuid.UUID, error) {
	profile, err := currentProfile(c)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if profile.OrganizationID == nil {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusForbidden, "Create or join an organization first")
	}
	return profile, *profile.OrganizationID, nil
}

// loadPolicy snapshots the directory of an organization. Configuration
// problems are logged and counted; the policy still answers with the first
// owner in load order.
func loadPolicy(ctx context.Context, orgID uuid.UUID) (*okr.Policy, error) {
	var people []models.Profile
	if err := database.DB.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at ASC, id ASC").
		Find(&people).Error; err != nil {
		return nil, err
	}

	dir := okr.NewDirectory(people)
	if err := dir.Validate(orgID); err != nil {
		metrics.ConfigurationWarnings.Inc()
		slog.WarnContext(ctx, "reporting graph misconfigured", "organization", orgID, "error", err)
	}
	return okr.NewPolicy(dir), nil
}

func preloadKeyResults(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// loadOrganizationObjectives returns every objective of orgID with its key results.
func loadOrganizationObjectives(ctx context.Context, orgID uuid.UUID) ([]models.Objective, error) {
	var objectives []models.Objective
	err := database.DB.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Preload("KeyResults", preloadKeyResults).
		Order("created_at DESC, id ASC").
		Find(&objectives).Error
	return objectives, err
}

func loadObjective(ctx context.Context, id uuid.UUID) (*models.Objective, error) {
	var objective models.Objective
	if err := database.DB.WithContext(ctx).
		Where("id = ?", id).
		Preload("KeyResults", preloadKeyResults).
		First(&objective).Error; err != nil {
		return nil, err
	}
	return &objective, nil
}

// visibleObjective loads an objective the viewer may see. Objectives outside
// the viewer's organization or visibility answer 404 so their existence does
// not leak.
func visibleObjective(c *fiber.Ctx, viewer *models.Profile, policy *okr.Policy, id uuid.UUID) (*models.Objective, error) {
	objective, err := loadObjective(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Objective not found")
	}
	if err != nil {
		return nil, storeError(c, err, "Failed to load objective")
	}
	if !viewer.InOrganization(objective.OrganizationID) || !policy.CanView(viewer.ID, objective.OwnerID) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Objective not found")
	}
	return objective, nil
}

// ownedObjective is visibleObjective restricted to the viewer's own objectives.
func ownedObjective(c *fiber.Ctx, viewer *models.Profile, policy *okr.Policy, id uuid.UUID) (*models.Objective, error) {
	objective, err := visibleObjective(c, viewer, policy, id)
	if err != nil {
		return nil, err
	}
	if objective.OwnerID != viewer.ID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Only the owner can change this objective")
	}
	return objective, nil
}

// viewObjective renders an objective for viewerID.
func viewObjective(policy *okr.Policy, viewerID uuid.UUID, o models.Objective) models.ObjectiveView {
	if o.KeyResults == nil {
		o.KeyResults = []models.KeyResult{}
	}
	v := models.ObjectiveView{
		Objective: o,
		Progress:  o.Progress(),
		Adoptable: policy.CanAdopt(viewerID, o.OwnerID),
	}
	if owner, ok := policy.Directory().Person(o.OwnerID); ok {
		info := owner.Info()
		v.Owner = &info
	}
	return v
}

func viewObjectives(policy *okr.Policy, viewerID uuid.UUID, objectives []models.Objective) []models.ObjectiveView {
	out := make([]models.ObjectiveView, 0, len(objectives))
	for _, o := range objectives {
		out = append(out, viewObjective(policy, viewerID, o))
	}
	return out
}

func displayName(p *models.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}
