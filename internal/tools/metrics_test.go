package tools

import (
	"context"
	"testing"
	"time"

	"github.com/codev-cli/codev/internal/approval"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMetrics(t *testing.T) {
	t.Parallel()

	m := NewInMemoryMetrics()
	m.RecordToolCall("shell", true)
	m.RecordToolCall("shell", true)
	m.RecordToolCall("browse", false)
	m.RecordCommand(2*time.Second, 0)
	m.RecordCommand(time.Second, 1)
	m.RecordPatch(2, 0, true)
	m.RecordPatch(1, 100, true)
	m.RecordPatch(0, 0, false)

	got := m.Snapshot()
	require.Equal(t, map[string]int64{"shell": 2, "browse": 1}, got.Calls)
	require.EqualValues(t, 1, got.Rejected)
	require.Equal(t, CommandMetrics{Total: 2, Failed: 1, TotalTime: 3 * time.Second, MinTime: time.Second, MaxTime: 2 * time.Second}, got.Commands)
	require.Equal(t, PatchMetrics{Applied: 2, Failed: 1, FilesChanged: 3, Fuzzy: 1}, got.Patches)

	got.Calls["shell"] = 99
	require.EqualValues(t, 2, m.Snapshot().Calls["shell"])

	m.Reset()
	require.Equal(t, MetricsSnapshot{Calls: map[string]int64{}}, m.Snapshot())
}

func TestDispatcherRecordsMetrics(t *testing.T) {
	t.Parallel()

	metrics := NewInMemoryMetrics()
	d, err := NewDispatcher(Options{WorkingDir: t.TempDir(), Policy: approval.FullAuto, Metrics: metrics})
	require.NoError(t, err)
	writeWorkFile(t, d, "hello.txt", "hello\nworld\n")

	d.Dispatch(context.Background(), call(ShellToolName, map[string]any{"command": "exit 3"}))
	d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	d.Dispatch(context.Background(), Call{Name: "browse"})

	got := d.Metrics().Snapshot()
	require.Equal(t, map[string]int64{ShellToolName: 1, EditFileToolName: 2, "browse": 1}, got.Calls)
	require.EqualValues(t, 1, got.Rejected)
	require.EqualValues(t, 1, got.Commands.Total)
	require.EqualValues(t, 1, got.Commands.Failed)
	require.Equal(t, PatchMetrics{Applied: 1, Failed: 1, FilesChanged: 1}, got.Patches)
}
