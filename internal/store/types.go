package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resume lifecycle statuses written by the pipelines. A record moves
// open → indexed|failed during indexing and indexed → selected|rejected
// during matching; the pipelines never move a record back to open.
const (
	StatusOpen     = "open"
	StatusIndexed  = "indexed"
	StatusFailed   = "failed"
	StatusSelected = "selected"
	StatusRejected = "rejected"
)

// Application is a job application record. The upstream submission flow owns
// these documents; the pipelines only read them and update the resume
// lifecycle fields. Fields written by older tooling are loosely typed in the
// store, so they are declared as `any` and resolved through accessors.
type Application struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Resume       string             `bson:"resume,omitempty"`
	ResumeStatus string             `bson:"resume_status,omitempty"`
	RagUploaded  any                `bson:"rag_uploaded,omitempty"`
	JobID        any                `bson:"jobID,omitempty"`
	Error        string             `bson:"error,omitempty"`
	IndexedAt    float64            `bson:"indexed_at,omitempty"`
}

// JobRef returns the application's job id as a hex string regardless of
// whether the document stores it as an ObjectID or a string.
func (a *Application) JobRef() string {
	switch v := a.JobID.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Uploaded reports whether the record's vector has been confirmed in the
// index. Older writers stored the flag as the string "True"/"False".
func (a *Application) Uploaded() bool {
	switch v := a.RagUploaded.(type) {
	case bool:
		return v
	case string:
		return v == "True" || v == "true"
	default:
		return false
	}
}

// Job is an open position. Read-only to the pipelines. Status holds the hex
// string of the company-scoped job status document id.
type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID   primitive.ObjectID `bson:"company_id,omitempty"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status,omitempty"`
}

// Company gates the matching pipeline via the aiFeaturesEnabled flag.
type Company struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name,omitempty"`
	AIFeaturesEnabled bool               `bson:"aiFeaturesEnabled,omitempty"`
}

// JobStatus resolves a company's status label to its id. Labels are scoped
// per company, so "Open" has a different id for every company.
type JobStatus struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID primitive.ObjectID `bson:"company_id,omitempty"`
	Label     string             `bson:"jobStatus,omitempty"`
}
