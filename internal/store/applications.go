package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// eligibleFilter selects applications ready for indexing: an open resume
// status, a URL-shaped resume reference, and no confirmed index upload.
// The $or covers legacy writers that stored the flag as the string "False".
func eligibleFilter() bson.M {
	return bson.M{
		"resume":        bson.M{"$exists": true, "$regex": "^http"},
		"resume_status": StatusOpen,
		"$or": bson.A{
			bson.M{"rag_uploaded": false},
			bson.M{"rag_uploaded": "False"},
			bson.M{"rag_uploaded": bson.M{"$exists": false}},
		},
	}
}

// CountPending returns the number of applications eligible for indexing.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	n, err := s.applications.CountDocuments(ctx, eligibleFilter())
	if err != nil {
		return 0, &Error{Op: "count pending applications", Cause: err}
	}
	return n, nil
}

// PendingApplications returns up to limit applications eligible for indexing.
func (s *Store) PendingApplications(ctx context.Context, limit int64) ([]Application, error) {
	cursor, err := s.applications.Find(ctx, eligibleFilter(), options.Find().SetLimit(limit))
	if err != nil {
		return nil, &Error{Op: "query pending applications", Cause: err}
	}

	var apps []Application
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, &Error{Op: "decode pending applications", Cause: err}
	}
	return apps, nil
}

// MarkIndexed records a confirmed index write: status, upload flag and
// timestamp in one update. Called only after the vector upsert succeeded.
func (s *Store) MarkIndexed(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.applications.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"resume_status": StatusIndexed,
		"rag_uploaded":  true,
		"indexed_at":    float64(time.Now().UnixMilli()) / 1000,
	}})
	if err != nil {
		return &Error{Op: "mark application indexed", Cause: err}
	}
	return nil
}

// MarkFailed records a terminal indexing failure with its reason. The upload
// flag is left untouched so an external re-queue can retry the record.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	_, err := s.applications.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"resume_status": StatusFailed,
		"error":         reason,
	}})
	if err != nil {
		return &Error{Op: "mark application failed", Cause: err}
	}
	return nil
}

// SetResumeStatus writes a matching decision for an application identified by
// the hex id carried in the vector payload.
func (s *Store) SetResumeStatus(ctx context.Context, applicationID, status string) error {
	id, err := primitive.ObjectIDFromHex(applicationID)
	if err != nil {
		return &Error{Op: "parse application id " + applicationID, Cause: err}
	}
	_, err = s.applications.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"resume_status": status,
	}})
	if err != nil {
		return &Error{Op: "set resume status", Cause: err}
	}
	return nil
}
