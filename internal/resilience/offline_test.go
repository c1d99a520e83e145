package resilience

import (
	"errors"
	"testing"
)

func TestOfflineManagerQueuesWhileOffline(t *testing.T) {
	m := NewOfflineManager()
	if m.IsOffline() {
		t.Fatalf("expected online by default")
	}

	m.SetOffline(true)
	m.QueueOperation(SyncHistoryOp{EntriesCount: 4})
	m.QueueOperation(ReconnectMCPOp{ServerName: "filesystem"})

	if m.Depth() != 2 {
		t.Fatalf("expected 2 queued operations, got %d", m.Depth())
	}

	queue := m.Queue()
	if queue[0].Kind() != "sync_history" || queue[1].Kind() != "reconnect_mcp" {
		t.Fatalf("expected FIFO order, got %v, %v", queue[0].Kind(), queue[1].Kind())
	}
}

func TestOfflineManagerDrainRequeuesFailuresAtTail(t *testing.T) {
	m := NewOfflineManager()
	m.QueueOperation(ReconnectMCPOp{ServerName: "broken"})
	m.QueueOperation(ReconnectMCPOp{ServerName: "fine"})

	var handled []string
	m.Drain(func(op QueuedOperation) error {
		reconnect := op.(ReconnectMCPOp)
		handled = append(handled, reconnect.ServerName)
		if reconnect.ServerName == "broken" {
			return errors.New("still down")
		}
		return nil
	})

	if len(handled) != 2 {
		t.Fatalf("expected both operations attempted, got %v", handled)
	}
	if m.Depth() != 1 {
		t.Fatalf("expected the failed operation requeued, got depth %d", m.Depth())
	}
	if m.Queue()[0].(ReconnectMCPOp).ServerName != "broken" {
		t.Fatalf("expected the failed operation back in the queue")
	}
}
