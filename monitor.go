package recorder

import "time"

// Monitor provides hooks to observe a recorder worker.
// All hooks are invoked from the worker goroutine, except RecordDropped which runs on
// the producer calling Save.
type Monitor interface {
	StorageReady(wait time.Duration)
	BatchFlushed(size int, took time.Duration)
	QueryAnswered(results int, took time.Duration)
	ReplyDiscarded()
	RecordDropped()
	WorkerStopped(err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = noopMonitor{}

func (noopMonitor) StorageReady(_ time.Duration) {}
func (noopMonitor) BatchFlushed(_ int, _ time.Duration) {}
func (noopMonitor) QueryAnswered(_ int, _ time.Duration) {}
func (noopMonitor) ReplyDiscarded() {}
func (noopMonitor) RecordDropped() {}
func (noopMonitor) WorkerStopped(_ error) {}
