package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"webrag/internal/domain"
	"webrag/internal/vectorstore/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var errBoom = errors.New("boom")

type fakeEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeStore struct {
	result domain.RetrievalResult
	err    error
	topK   int
}

func (f *fakeStore) Add(context.Context, []string, []string, [][]float32, []domain.Metadata) error {
	return nil
}

func (f *fakeStore) Query(_ context.Context, _ []float32, topK int) (domain.RetrievalResult, error) {
	f.topK = topK
	return f.result, f.err
}

func (f *fakeStore) Delete(context.Context, map[string]string) error { return nil }

type fakeLLM struct {
	prompt string
	opts   domain.GenerateOptions
	reply  string
	err    error
	calls  int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	f.calls++
	f.prompt, f.opts = prompt, opts
	return f.reply, f.err
}

func (f *fakeLLM) HealthCheck(context.Context) error { return f.err }

// recordingStore wraps the memory store, recording deletes and failing adds on demand.
type recordingStore struct {
	*memory.Storage
	deletes []map[string]string
	addErr  error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Storage: memory.NewStorage()}
}

func (r *recordingStore) Add(ctx context.Context, ids, docs []string, embs [][]float32, metas []domain.Metadata) error {
	if r.addErr != nil {
		return r.addErr
	}
	return r.Storage.Add(ctx, ids, docs, embs, metas)
}

func (r *recordingStore) Delete(ctx context.Context, where map[string]string) error {
	r.deletes = append(r.deletes, where)
	return r.Storage.Delete(ctx, where)
}

type memorySnapshots struct {
	snap  domain.Snapshot
	saves int
}

func (m *memorySnapshots) Load(context.Context) (domain.Snapshot, error) {
	out := domain.Snapshot{}
	for k, v := range m.snap {
		out[k] = v
	}
	return out, nil
}

func (m *memorySnapshots) Save(_ context.Context, s domain.Snapshot) error {
	m.saves++
	m.snap = s
	return nil
}

func page(title, sentence string) string {
	return "# " + title + "\n\n" + strings.TrimSpace(strings.Repeat(sentence+" ", 3))
}
