package firestore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"innovation-events/internal/model"
)

func TestDocIDStable(t *testing.T) {
	assert.Equal(t, DocID("16982059077"), DocID(" 16982059077 "))
	assert.NotEqual(t, DocID("16982059077"), DocID("3570959959"))
	assert.Len(t, DocID("x"), 32)
}

func TestOrganizerMapping(t *testing.T) {
	m := organizerToMap(model.Organizer{ID: " 3570959959", Name: "Volta"}, 4, "batch-1")
	assert.Equal(t, "3570959959", m["id"])
	assert.Equal(t, 4, m["position"])
	assert.Equal(t, "batch-1", m["batch_id"])

	assert.Equal(t, model.Organizer{ID: "3570959959", Name: "Volta"}, mapToOrganizer(m))
	assert.Equal(t, model.Organizer{ID: "42"}, mapToOrganizer(map[string]interface{}{"id": int64(42)}))
}
