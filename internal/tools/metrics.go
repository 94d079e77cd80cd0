package tools

import (
	"sync"
	"time"
)

// Metrics collects tool dispatch statistics.
type Metrics interface {
	// RecordToolCall records one dispatched call; ok is false when the call
	// was rejected before reaching its handler.
	RecordToolCall(name string, ok bool)
	// RecordCommand records a foreground shell command.
	RecordCommand(duration time.Duration, exitCode int)
	// RecordPatch records one patch application attempt.
	RecordPatch(files, fuzz int, applied bool)
	Snapshot() MetricsSnapshot
	Reset()
}

// MetricsSnapshot is a point-in-time view of collected metrics.
type MetricsSnapshot struct {
	Calls    map[string]int64 `json:"calls"`
	Rejected int64            `json:"rejected"`
	Commands CommandMetrics   `json:"commands"`
	Patches  PatchMetrics     `json:"patches"`
}

// CommandMetrics tracks foreground shell commands.
type CommandMetrics struct {
	Total     int64         `json:"total"`
	Failed    int64         `json:"failed"`
	TotalTime time.Duration `json:"total_time"`
	MinTime   time.Duration `json:"min_time"`
	MaxTime   time.Duration `json:"max_time"`
}

// PatchMetrics tracks patch applications.
type PatchMetrics struct {
	Applied      int64 `json:"applied"`
	Failed       int64 `json:"failed"`
	FilesChanged int64 `json:"files_changed"`
	// Fuzzy counts applied patches that needed whitespace or EOF fuzz.
	Fuzzy int64 `json:"fuzzy"`
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordToolCall(string, bool)      {}
func (NoOpMetrics) RecordCommand(time.Duration, int) {}
func (NoOpMetrics) RecordPatch(int, int, bool)       {}
func (NoOpMetrics) Snapshot() MetricsSnapshot        { return MetricsSnapshot{} }
func (NoOpMetrics) Reset()                           {}

// InMemoryMetrics is a thread-safe in-memory Metrics.
type InMemoryMetrics struct {
	mu       sync.Mutex
	calls    map[string]int64
	rejected int64
	commands CommandMetrics
	patches  PatchMetrics
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{calls: make(map[string]int64)}
}

func (m *InMemoryMetrics) RecordToolCall(name string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	if !ok {
		m.rejected++
	}
}

func (m *InMemoryMetrics) RecordCommand(duration time.Duration, exitCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &m.commands
	if c.Total == 0 || duration < c.MinTime {
		c.MinTime = duration
	}
	if duration > c.MaxTime {
		c.MaxTime = duration
	}
	c.Total++
	if exitCode != 0 {
		c.Failed++
	}
	c.TotalTime += duration
}

func (m *InMemoryMetrics) RecordPatch(files, fuzz int, applied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !applied {
		m.patches.Failed++
		return
	}
	m.patches.Applied++
	m.patches.FilesChanged += int64(files)
	if fuzz > 0 {
		m.patches.Fuzzy++
	}
}

func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make(map[string]int64, len(m.calls))
	for k, v := range m.calls {
		calls[k] = v
	}
	return MetricsSnapshot{
		Calls:    calls,
		Rejected: m.rejected,
		Commands: m.commands,
		Patches:  m.patches,
	}
}

func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int64)
	m.rejected = 0
	m.commands = CommandMetrics{}
	m.patches = PatchMetrics{}
}
