package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplication_JobRef(t *testing.T) {
	objectID := primitive.NewObjectID()

	tests := []struct {
		name  string
		jobID any
		want  string
	}{
		{"object id", objectID, objectID.Hex()},
		{"string", "64f1c0a9e4b0a1b2c3d4e5f6", "64f1c0a9e4b0a1b2c3d4e5f6"},
		{"absent", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := Application{JobID: tt.jobID}
			assert.Equal(t, tt.want, app.JobRef())
		})
	}
}

func TestApplication_Uploaded(t *testing.T) {
	tests := []struct {
		name string
		flag any
		want bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"legacy string true", "True", true},
		{"legacy string false", "False", false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := Application{RagUploaded: tt.flag}
			assert.Equal(t, tt.want, app.Uploaded())
		})
	}
}

func TestEligibleFilter(t *testing.T) {
	filter := eligibleFilter()

	assert.Equal(t, StatusOpen, filter["resume_status"])
	assert.Equal(t, bson.M{"$exists": true, "$regex": "^http"}, filter["resume"])

	// The flag may be false, the legacy string "False", or absent entirely.
	or, ok := filter["$or"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, or, 3)
}
