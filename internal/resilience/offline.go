package resilience

import (
	"sync"

	"cmdforge/internal/observability"
)

// QueuedOperation is a unit of work deferred because the kernel was
// offline (or a feature was degraded) when it was first attempted.
type QueuedOperation interface {
	Kind() string
}

// SyncHistoryOp records that a history sync of EntriesCount entries was
// deferred and needs to run once connectivity returns.
type SyncHistoryOp struct {
	EntriesCount int
}

func (SyncHistoryOp) Kind() string { return "sync_history" }

// ReconnectMCPOp records that an MCP server needs to be reconnected.
type ReconnectMCPOp struct {
	ServerName string
}

func (ReconnectMCPOp) Kind() string { return "reconnect_mcp" }

// OfflineManager holds a FIFO queue of operations deferred while
// offline, and the offline flag itself.
type OfflineManager struct {
	mu      sync.Mutex
	offline bool
	queue   []QueuedOperation
	metrics *observability.Metrics
}

// NewOfflineManager builds a manager that starts online.
func NewOfflineManager() *OfflineManager {
	return NewOfflineManagerWithMetrics(nil)
}

// NewOfflineManagerWithMetrics builds a manager that starts online and
// also reports OfflineQueueDepth on metrics. metrics may be nil to
// disable reporting.
func NewOfflineManagerWithMetrics(metrics *observability.Metrics) *OfflineManager {
	return &OfflineManager{metrics: metrics}
}

// SetOffline flips the offline flag.
func (m *OfflineManager) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// IsOffline reports the current connectivity state.
func (m *OfflineManager) IsOffline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// QueueOperation appends op to the tail of the queue.
func (m *OfflineManager) QueueOperation(op QueuedOperation) {
	m.mu.Lock()
	m.queue = append(m.queue, op)
	depth := len(m.queue)
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.OfflineQueueDepth.Set(float64(depth))
	}
}

// Queue returns a snapshot of the currently queued operations, in FIFO order.
func (m *OfflineManager) Queue() []QueuedOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]QueuedOperation, len(m.queue))
	copy(out, m.queue)
	return out
}

// Depth reports how many operations are currently queued.
func (m *OfflineManager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Drain pops operations off the front of the queue one at a time,
// passing each to handle. An operation that fails to handle is
// requeued at the tail rather than retried in place, so a single
// persistently-failing operation cannot block the rest of the queue
// from making progress.
func (m *OfflineManager) Drain(handle func(QueuedOperation) error) {
	m.mu.Lock()
	pending := m.queue
	m.queue = nil
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.OfflineQueueDepth.Set(0)
	}

	for _, op := range pending {
		if err := handle(op); err != nil {
			m.QueueOperation(op)
		}
	}
}
