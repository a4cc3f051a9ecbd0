// File: internal/event/model_test.go
package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTotalWasteKG(t *testing.T) {
	ev := &Event{PlasticKG: 12.5, OrganicKG: 3, MetalKG: 1.5, OtherKG: 0.25}
	assert.InDelta(t, 17.25, ev.TotalWasteKG(), 0.0001)

	assert.Zero(t, (&Event{}).TotalWasteKG())
}

func TestHasVolunteer(t *testing.T) {
	joined := uuid.New()
	ev := &Event{VolunteerIDs: pq.StringArray{joined.String(), uuid.New().String()}}

	assert.True(t, ev.HasVolunteer(joined))
	assert.False(t, ev.HasVolunteer(uuid.New()))
	assert.False(t, (&Event{}).HasVolunteer(joined))
}

func TestToEventResponse_SpotsLeft(t *testing.T) {
	ev := &Event{
		Capacity:     3,
		VolunteerIDs: pq.StringArray{uuid.New().String()},
	}
	assert.Equal(t, 2, ToEventResponse(ev).SpotsLeft)

	// Spots never go negative even if a capacity shrink left the event
	// oversubscribed.
	ev.Capacity = 0
	assert.Equal(t, 0, ToEventResponse(ev).SpotsLeft)
}
