// Package vector wraps the Qdrant collection holding resume embeddings.
package vector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

const defaultGRPCPort = 6334

// Error represents a vector index failure: the service is unreachable or
// rejected the request.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("index error: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("index error: %s", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Point is one resume embedding together with its identifying payload.
type Point struct {
	ID            string
	Vector        []float32
	ApplicationID string
	JobID         string
	ResumeText    string
}

// ScoredPoint is a similarity search result, highest score first.
type ScoredPoint struct {
	ID            string
	Score         float32
	ApplicationID string
	JobID         string
}

// Index is the vector index surface the pipelines consume.
type Index interface {
	EnsureCollection(ctx context.Context, dimension uint64) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, limit uint64) ([]ScoredPoint, error)
}

// Client talks to one Qdrant collection over gRPC.
type Client struct {
	client     *qdrant.Client
	collection string
}

// New parses a Qdrant URL (https enables TLS, port defaults to the gRPC port)
// and builds a collection-scoped client.
func New(rawURL, apiKey, collection string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &Error{Op: "parse URL " + rawURL, Cause: err}
	}

	port := defaultGRPCPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, &Error{Op: "parse port " + p, Cause: err}
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, &Error{Op: "connect", Cause: err}
	}
	return &Client{client: client, collection: collection}, nil
}

// EnsureCollection creates the cosine-metric collection if it does not exist.
// Safe to call on every startup.
func (c *Client) EnsureCollection(ctx context.Context, dimension uint64) error {
	exists, err := c.client.CollectionExists(ctx, c.collection)
	if err != nil {
		return &Error{Op: "collection lookup", Cause: err}
	}
	if exists {
		return nil
	}

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &Error{Op: "create collection", Cause: err}
	}
	return nil
}

// Upsert writes points by id, overwriting existing ones. Idempotent per
// point, so a failed batch can be retried wholesale.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"application_id": p.ApplicationID,
				"job_id":         p.JobID,
				"resume_text":    p.ResumeText,
			}),
		})
	}

	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return &Error{Op: fmt.Sprintf("upsert %d points", len(points)), Cause: err}
	}
	return nil
}

// Search returns the points most similar to vector, ordered by descending
// cosine similarity, with their identifying payload fields.
func (c *Client) Search(ctx context.Context, vector []float32, limit uint64) ([]ScoredPoint, error) {
	results, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &Error{Op: "similarity query", Cause: err}
	}

	points := make([]ScoredPoint, 0, len(results))
	for _, r := range results {
		point := ScoredPoint{Score: r.GetScore()}
		if id := r.GetId(); id != nil {
			point.ID = id.GetUuid()
		}
		payload := r.GetPayload()
		if v, ok := payload["application_id"]; ok {
			point.ApplicationID = v.GetStringValue()
		}
		if v, ok := payload["job_id"]; ok {
			point.JobID = v.GetStringValue()
		}
		points = append(points, point)
	}
	return points, nil
}

// Close releases the gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}
