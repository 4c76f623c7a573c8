package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLeadModernColumns(t *testing.T) {
	created := time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC)
	lead := normalizeLead(map[string]interface{}{
		"id":         "lead-1",
		"email":      "maria@example.com",
		"name":       "Maria Silva",
		"created_at": created,
	})

	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, "maria@example.com", lead.Email)
	assert.Equal(t, "Maria Silva", lead.Name)
	assert.Equal(t, created, lead.CreatedAt)
}

func TestNormalizeLeadLegacyColumns(t *testing.T) {
	lead := normalizeLead(map[string]interface{}{
		"uid":       "legacy-9",
		"email":     "joao@example.com",
		"nome":      "João Santos",
		"timestamp": "2025-04-20T10:00:00Z",
	})

	assert.Equal(t, "legacy-9", lead.ID)
	assert.Equal(t, "João Santos", lead.Name)
	assert.Equal(t, time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC), lead.CreatedAt)
}

func TestNormalizeLeadPrefersModernOverLegacy(t *testing.T) {
	lead := normalizeLead(map[string]interface{}{
		"id":      "new-id",
		"lead_id": "old-id",
		"email":   "ana@example.com",
		"name":    "Ana",
		"nome":    "Ana Antiga",
	})

	assert.Equal(t, "new-id", lead.ID)
	assert.Equal(t, "Ana", lead.Name)
}

func TestNormalizeLeadSkipsEmptyValues(t *testing.T) {
	lead := normalizeLead(map[string]interface{}{
		"id":      "",
		"lead_id": "fallback-id",
		"email":   "x@example.com",
	})

	assert.Equal(t, "fallback-id", lead.ID)
	assert.Equal(t, "", lead.Name)
	assert.True(t, lead.CreatedAt.IsZero())
}
