package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoOpenStatus indicates a company has no job status labelled "Open", so
// none of its jobs can be considered open.
var ErrNoOpenStatus = errors.New("no open job status defined for company")

// AICompanies returns the companies with AI features enabled.
func (s *Store) AICompanies(ctx context.Context) ([]Company, error) {
	cursor, err := s.companies.Find(ctx, bson.M{"aiFeaturesEnabled": true})
	if err != nil {
		return nil, &Error{Op: "query companies", Cause: err}
	}

	var companies []Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, &Error{Op: "decode companies", Cause: err}
	}
	return companies, nil
}

// OpenStatusID resolves the id of the company's "Open" job status. Status
// labels are company-scoped, so the lookup happens once per company.
func (s *Store) OpenStatusID(ctx context.Context, companyID primitive.ObjectID) (primitive.ObjectID, error) {
	var status JobStatus
	err := s.jobStatuses.FindOne(ctx, bson.M{
		"company_id": companyID,
		"jobStatus":  "Open",
	}).Decode(&status)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, ErrNoOpenStatus
	}
	if err != nil {
		return primitive.NilObjectID, &Error{Op: "resolve open status", Cause: err}
	}
	return status.ID, nil
}

// OpenJobs returns the company's jobs whose status equals the resolved open
// status id. Job documents store the status id as a hex string.
func (s *Store) OpenJobs(ctx context.Context, companyID, statusID primitive.ObjectID) ([]Job, error) {
	cursor, err := s.jobs.Find(ctx, bson.M{
		"company_id": companyID,
		"status":     statusID.Hex(),
	})
	if err != nil {
		return nil, &Error{Op: "query open jobs", Cause: err}
	}

	var jobs []Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, &Error{Op: "decode open jobs", Cause: err}
	}
	return jobs, nil
}
