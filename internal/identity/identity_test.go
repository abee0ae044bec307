package identity

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointID_Deterministic(t *testing.T) {
	first := PointID("64f1c0a9e4b0a1b2c3d4e5f6")
	second := PointID("64f1c0a9e4b0a1b2c3d4e5f6")
	assert.Equal(t, first, second)
}

func TestPointID_Version5(t *testing.T) {
	id := PointID("64f1c0a9e4b0a1b2c3d4e5f6")
	assert.Equal(t, uuid.Version(5), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
}

func TestPointID_DistinctInputsDistinctIDs(t *testing.T) {
	seen := make(map[uuid.UUID]string, 1000)
	for i := 0; i < 1000; i++ {
		recordID := fmt.Sprintf("64f1c0a9e4b0a1b2c3d%05x", i)
		id := PointID(recordID)
		previous, collided := seen[id]
		require.False(t, collided, "collision between %s and %s", previous, recordID)
		seen[id] = recordID
	}
	assert.Len(t, seen, 1000)
}

func TestPointID_RoundTripsThroughString(t *testing.T) {
	id := PointID("some-record")
	parsed, err := uuid.Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}
