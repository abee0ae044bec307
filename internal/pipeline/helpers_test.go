package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/vector"
)

// fakeApplications is an in-memory ApplicationStore tracking every write.
type fakeApplications struct {
	mu       sync.Mutex
	pending  [][]store.Application // one slice per poll, then empty forever
	polls    int
	indexed  []string
	failed   map[string]string
	statuses map[string]string

	failMarkIndexed bool
	failMarkFailed  bool
	failSetStatus   map[string]error

	// repeat re-serves the final batch forever, mimicking records that stay
	// eligible because their status write never landed.
	repeat bool
}

func newFakeApplications(batches ...[]store.Application) *fakeApplications {
	return &fakeApplications{
		pending:  batches,
		failed:   make(map[string]string),
		statuses: make(map[string]string),
	}
}

func (f *fakeApplications) CountPending(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.polls < len(f.pending) {
		return int64(len(f.pending[f.polls])), nil
	}
	if f.repeat && len(f.pending) > 0 {
		return int64(len(f.pending[len(f.pending)-1])), nil
	}
	return 0, nil
}

func (f *fakeApplications) PendingApplications(_ context.Context, limit int64) ([]store.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.polls >= len(f.pending) {
		if f.repeat && len(f.pending) > 0 {
			return f.pending[len(f.pending)-1], nil
		}
		return nil, nil
	}
	batch := f.pending[f.polls]
	f.polls++
	if int64(len(batch)) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

func (f *fakeApplications) MarkIndexed(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkIndexed {
		return errors.New("write failed")
	}
	f.indexed = append(f.indexed, id.Hex())
	return nil
}

func (f *fakeApplications) MarkFailed(_ context.Context, id primitive.ObjectID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkFailed {
		return errors.New("write failed")
	}
	f.failed[id.Hex()] = reason
	return nil
}

func (f *fakeApplications) SetResumeStatus(_ context.Context, applicationID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failSetStatus[applicationID]; ok {
		return err
	}
	f.statuses[applicationID] = status
	return nil
}

// fakeJobs serves a fixed company/job layout.
type fakeJobs struct {
	companies  []store.Company
	openStatus map[string]primitive.ObjectID // company hex -> status id
	jobs       map[string][]store.Job        // company hex -> jobs
}

func (f *fakeJobs) AICompanies(context.Context) ([]store.Company, error) {
	return f.companies, nil
}

func (f *fakeJobs) OpenStatusID(_ context.Context, companyID primitive.ObjectID) (primitive.ObjectID, error) {
	id, ok := f.openStatus[companyID.Hex()]
	if !ok {
		return primitive.NilObjectID, store.ErrNoOpenStatus
	}
	return id, nil
}

func (f *fakeJobs) OpenJobs(_ context.Context, companyID, _ primitive.ObjectID) ([]store.Job, error) {
	return f.jobs[companyID.Hex()], nil
}

// fakeFetcher maps keys to document bytes.
type fakeFetcher struct {
	objects map[string][]byte
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	f.fetched = append(f.fetched, key)
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return data, nil
}

// fakeExtractor returns the document bytes as text, or an error for keys in
// the broken set.
type fakeExtractor struct {
	broken map[string]bool
}

func (f *fakeExtractor) Extract(data []byte, sourceKey string) (string, error) {
	if f.broken[sourceKey] {
		return "", fmt.Errorf("no text extracted from %s", sourceKey)
	}
	return string(data), nil
}

// fakeEmbedder produces a deterministic tiny vector from the text length.
type fakeEmbedder struct {
	fail      bool
	badVector bool
	calls     []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("model unavailable")
	}
	f.calls = append(f.calls, text)
	if f.badVector {
		return []float32{1}, nil
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

// fakeIndex records upserts and serves canned search results.
type fakeIndex struct {
	mu       sync.Mutex
	points   map[string]vector.Point
	upserts  int
	results  []vector.ScoredPoint
	upsertEr error
	searchEr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{points: make(map[string]vector.Point)}
}

func (f *fakeIndex) EnsureCollection(context.Context, uint64) error { return nil }

func (f *fakeIndex) Upsert(_ context.Context, points []vector.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertEr != nil {
		return f.upsertEr
	}
	f.upserts++
	for _, p := range points {
		f.points[p.ID] = p
	}
	return nil
}

func (f *fakeIndex) Search(context.Context, []float32, uint64) ([]vector.ScoredPoint, error) {
	if f.searchEr != nil {
		return nil, f.searchEr
	}
	return f.results, nil
}

func testDeps(apps *fakeApplications, jobs *fakeJobs, fetcher *fakeFetcher, index *fakeIndex) *Deps {
	return &Deps{
		Applications: apps,
		Jobs:         jobs,
		Blobs:        fetcher,
		Extractor:    &fakeExtractor{},
		Embedder:     &fakeEmbedder{},
		Index:        index,
		PollDelay:    1, // nanosecond, keeps the re-poll loop fast in tests
	}
}
