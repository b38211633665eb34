package caching

import (
	"testing"

	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7f1c6c1e-8b4f-4a55-9d3a-2f0e2d1f7b11")

	assert.Equal(t, "estatehub:property:7f1c6c1e-8b4f-4a55-9d3a-2f0e2d1f7b11", PropertyKey(id))
	assert.Equal(t, "estatehub:roles:7f1c6c1e-8b4f-4a55-9d3a-2f0e2d1f7b11", HeldRolesKey(id))
	assert.Equal(t, "estatehub:comparison:7f1c6c1e-8b4f-4a55-9d3a-2f0e2d1f7b11", ShortlistKey(models.ShortlistComparison, id))
	assert.Equal(t, "estatehub:favorites:7f1c6c1e-8b4f-4a55-9d3a-2f0e2d1f7b11", ShortlistKey(models.ShortlistFavorites, id))
	assert.Equal(t, "estatehub:notifications:7f1c6c1e-8b4f-4a55-9d3a-2f0e2d1f7b11", NotificationChannel(id))
	assert.Equal(t, "estatehub:ratelimit:credential:abc", RateLimitKey("credential:abc"))
}
