package handlers

import (
	"errors"
	"testing"

	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyResultIn(t *testing.T) {
	kept := models.KeyResult{ID: uuid.New(), Title: "Ship v2"}
	objective := &models.Objective{ID: uuid.New(), KeyResults: []models.KeyResult{kept}}

	kr, err := keyResultIn(objective, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship v2", kr.Title)

	// deleted after the first read: 404 instead of a nil key result
	kr, err = keyResultIn(objective, uuid.New())
	assert.Nil(t, kr)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
	assert.Equal(t, "Key result not found", fe.Message)
}
