package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/output"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
	"github.com/thirukguru/receipt-parser/service/receiptparser/receipttest"
	"github.com/thirukguru/receipt-parser/service/storage"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

type mockSource struct {
	data  map[string][]byte
	delay time.Duration

	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (m *mockSource) Prepare(context.Context, []string) error { return nil }

func (m *mockSource) Load(ctx context.Context, ref string) ([]byte, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	b, ok := m.data[ref]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", ref)
	}
	return b, nil
}

type mockOutput struct {
	mu       sync.Mutex
	rendered []model.RenderReceiptsInput
	versions []model.VersionInfo
	stopped  int
	err      error
}

func (m *mockOutput) RenderReceipts(input model.RenderReceiptsInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered = append(m.rendered, input)
	return m.err
}

func (m *mockOutput) RenderVersion(info model.VersionInfo) error {
	m.versions = append(m.versions, info)
	return nil
}

func (m *mockOutput) Format() output.Format { return output.FormatTable }

func (m *mockOutput) StopSpinner() { m.stopped++ }

func newTestService(t *testing.T, src *mockSource, store storage.Service, out *mockOutput) *service {
	t.Helper()
	l, _ := logger.NewTest()
	svc := NewService(src, receiptparser.NewService(receiptparser.WithLogger(l)), store, out, model.VersionInfo{Version: "1.0.0"}, l).(*service)
	svc.newRunID = func() string { return "run-test" }
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestOrchestrateParsesAndRendersInOrder(t *testing.T) {
	src := &mockSource{data: map[string][]byte{
		"a.bin": receipttest.Sample().Marshal(),
		"b.bin": receipttest.Sample().Marshal(),
	}}
	out := &mockOutput{}
	svc := newTestService(t, src, nil, out)

	err := svc.Orchestrate(context.Background(), model.Flags{Receipts: []string{"a.bin", "b.bin"}, Concurrency: 2})
	require.NoError(t, err)

	require.Len(t, out.rendered, 1)
	input := out.rendered[0]
	assert.Equal(t, "run-test", input.RunUUID)
	assert.Equal(t, "1.0.0", input.Version)
	require.Len(t, input.Results, 2)
	assert.Equal(t, "a.bin", input.Results[0].Source)
	assert.Equal(t, "b.bin", input.Results[1].Source)
	for _, r := range input.Results {
		assert.True(t, r.OK())
		assert.Equal(t, "com.example.app", r.Receipt.BundleID)
	}
	assert.Equal(t, 1, out.stopped)
}

func TestOrchestrateKeepsPerReceiptErrors(t *testing.T) {
	src := &mockSource{data: map[string][]byte{
		"good.bin":    receipttest.Sample().Marshal(),
		"garbage.bin": []byte("not a receipt"),
	}}
	out := &mockOutput{}
	svc := newTestService(t, src, nil, out)

	err := svc.Orchestrate(context.Background(), model.Flags{Receipts: []string{"missing.bin", "good.bin", "garbage.bin"}, Concurrency: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailures)
	assert.Contains(t, err.Error(), "2 of 3")

	results := out.rendered[0].Results
	require.Len(t, results, 3)
	assert.ErrorContains(t, results[0].Err, "failed to load receipt")
	assert.True(t, results[1].OK())
	assert.ErrorIs(t, results[2].Err, receiptparser.ErrASN1ParsingFailed)
}

func TestOrchestrateWithoutReceipts(t *testing.T) {
	out := &mockOutput{}
	svc := newTestService(t, &mockSource{}, nil, out)

	err := svc.Orchestrate(context.Background(), model.Flags{})
	assert.ErrorIs(t, err, ErrNoReceipts)
	assert.Empty(t, out.rendered)
	assert.Equal(t, 1, out.stopped)
}

func TestOrchestrateVersion(t *testing.T) {
	out := &mockOutput{}
	svc := newTestService(t, &mockSource{}, nil, out)

	require.NoError(t, svc.Orchestrate(context.Background(), model.Flags{Version: true}))
	assert.Empty(t, out.rendered)
	assert.Equal(t, 1, out.stopped)
	require.Len(t, out.versions, 1)
	assert.Equal(t, "1.0.0", out.versions[0].Version)
}

func TestOrchestrateStoresReceipts(t *testing.T) {
	store, err := storage.NewService(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	src := &mockSource{data: map[string][]byte{"a.bin": receipttest.Sample().Marshal()}}
	out := &mockOutput{}
	svc := newTestService(t, src, store, out)

	require.NoError(t, svc.Orchestrate(context.Background(), model.Flags{Receipts: []string{"a.bin"}, Store: true}))

	result := out.rendered[0].Results[0]
	require.True(t, result.OK())
	assert.Greater(t, result.ReceiptID, int64(0))

	recent, err := store.GetRecentReceipts("", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "run-test", recent[0].RunUUID)
	assert.Equal(t, "a.bin", recent[0].Source)
	assert.Equal(t, "1.0.0", recent[0].Version)
}

func TestOrchestrateRenderError(t *testing.T) {
	src := &mockSource{data: map[string][]byte{"a.bin": receipttest.Sample().Marshal()}}
	out := &mockOutput{err: errors.New("broken pipe")}
	svc := newTestService(t, src, nil, out)

	err := svc.Orchestrate(context.Background(), model.Flags{Receipts: []string{"a.bin"}})
	assert.ErrorContains(t, err, "failed to render receipts: broken pipe")
}

func TestParseAllRespectsConcurrencyLimit(t *testing.T) {
	data := receipttest.Sample().Marshal()
	src := &mockSource{data: map[string][]byte{}, delay: 20 * time.Millisecond}
	refs := make([]string, 8)
	for i := range refs {
		refs[i] = fmt.Sprintf("r%d.bin", i)
		src.data[refs[i]] = data
	}
	svc := newTestService(t, src, nil, &mockOutput{})

	results := svc.ParseAll(context.Background(), refs, 2)

	require.Len(t, results, len(refs))
	for i, r := range results {
		assert.Equal(t, refs[i], r.Source)
		assert.True(t, r.OK())
	}
	assert.LessOrEqual(t, src.maxSeen.Load(), int32(2))
}

func TestParseAllCancelledContext(t *testing.T) {
	src := &mockSource{data: map[string][]byte{"a.bin": receipttest.Sample().Marshal()}}
	svc := newTestService(t, src, nil, &mockOutput{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.ParseAll(ctx, []string{"a.bin"}, 0)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
