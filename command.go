package recorder

import "sync/atomic"

type commandKind uint8

const (
	saveCommand commandKind = iota + 1
	loadCommand
)

// command is the unit sent from a Recorder to its worker: either a record to save
// or a query to answer.
type command[R, Q any] struct {
	kind   commandKind
	record R
	load   *loadRequest[R, Q]
}

// Outcomes of a loadRequest. Exactly one of the worker and the caller moves a
// request out of requestPending; the other side observes the result.
const (
	requestPending int32 = iota
	requestAnswered
	requestAbandoned
)

// loadRequest carries a query and the single-use channel its answer is sent on.
// reply has capacity 1, so the worker never blocks on a requester that went away.
type loadRequest[R, Q any] struct {
	query Q
	reply chan []R
	state atomic.Int32
}

// answer claims the request for the worker. It is false if the caller gave up first.
func (l *loadRequest[R, Q]) answer() bool {
	return l.state.CompareAndSwap(requestPending, requestAnswered)
}

// abandon claims the request for the caller. It is false if the worker already
// committed to sending a reply.
func (l *loadRequest[R, Q]) abandon() bool {
	return l.state.CompareAndSwap(requestPending, requestAbandoned)
}

func newLoadRequest[R, Q any](query Q) *loadRequest[R, Q] {
	return &loadRequest[R, Q]{
		query: query,
		reply: make(chan []R, 1),
	}
}

