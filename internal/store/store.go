// Package store provides MongoDB access to applications, jobs, companies and
// job statuses.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names fixed by the upstream application schema. The applications
// collection name is configurable because staging environments rename it.
const (
	jobsCollection        = "jobs"
	companiesCollection   = "companies"
	jobStatusesCollection = "job-statuses"
)

// Error represents a document store read or write failure.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("store error: %s", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Store wraps a MongoDB client scoped to one database.
type Store struct {
	client       *mongo.Client
	applications *mongo.Collection
	jobs         *mongo.Collection
	companies    *mongo.Collection
	jobStatuses  *mongo.Collection
}

// Connect establishes and verifies a MongoDB connection.
func Connect(ctx context.Context, uri, dbName, applicationColl string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &Error{Op: "connect", Cause: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &Error{Op: "ping", Cause: err}
	}

	db := client.Database(dbName)
	return &Store{
		client:       client,
		applications: db.Collection(applicationColl),
		jobs:         db.Collection(jobsCollection),
		companies:    db.Collection(companiesCollection),
		jobStatuses:  db.Collection(jobStatusesCollection),
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
