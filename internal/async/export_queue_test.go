package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-insights/constants"
)

type fakeExporter struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeExporter) ExportToDir(_ context.Context, id, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if err := f.fail[id]; err != nil {
		return "", err
	}
	return filepath.Join(dir, id+".xlsx"), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportQueueRunsJobs(t *testing.T) {
	exp := &fakeExporter{fail: map[string]error{"bad": errors.New("boom")}}
	q := NewExportQueue(exp, "/exports", quietLogger(), WithWorkers(2), WithQueueSize(1), WithProcessTimeout(time.Second))

	ctx := context.Background()
	for _, id := range []string{"a", "b", "bad", "c"} {
		require.NoError(t, q.Enqueue(ctx, Job{ShareID: id}))
	}
	q.Shutdown(ctx)

	assert.ElementsMatch(t, []string{"a", "b", "bad", "c"}, exp.calls)

	st, ok := q.State("a")
	require.True(t, ok)
	assert.Equal(t, constants.JobStatusDone, st.Status)
	assert.Equal(t, filepath.Join("/exports", "a.xlsx"), st.Path)

	st, ok = q.State("bad")
	require.True(t, ok)
	assert.Equal(t, constants.JobStatusFailed, st.Status)
	assert.Equal(t, "boom", st.Error)

	_, ok = q.State("missing")
	assert.False(t, ok)
}

func TestExportQueueRejectsAfterShutdown(t *testing.T) {
	q := NewExportQueue(&fakeExporter{}, t.TempDir(), quietLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{ShareID: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
