package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tally/internal/platform/metrics"
	"tally/pkg/requestcontext"
)

const persistTimeout = 5 * time.Second

// Recorder decouples audit capture from the business transaction. Services
// call Record right after their transaction commits; a single drain goroutine
// persists entries in the order they were enqueued.
//
// Ordering: one inbox, one consumer. Because Record is called synchronously
// on the mutating request's own goroutine after commit, records for the same
// resource enter the inbox in commit order and are persisted in that order.
//
// Failure semantics: persistence errors are logged and counted, never
// propagated. The business mutation already committed; audit is best-effort
// durability on top of it.
type Recorder struct {
	inbox   chan Record
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithMetrics wires operation counters into the recorder.
func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder builds a recorder with a bounded inbox. A full inbox applies
// backpressure to mutating requests instead of dropping or reordering
// records.
func NewRecorder(store Store, logger *slog.Logger, buffer int, opts ...RecorderOption) *Recorder {
	if buffer < 1 {
		buffer = 64
	}
	r := &Recorder{
		inbox:  make(chan Record, buffer),
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record enqueues one entry for persistence. It stamps identity, timestamp,
// and the request correlation ID from ctx. The correlation ID is generated
// once per inbound request by the transport layer; callers outside a request
// (jobs, tests) get a fresh one so the non-null invariant holds.
func (r *Recorder) Record(ctx context.Context, record Record) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = requestcontext.Now(ctx)
	}
	if record.RequestID == "" {
		record.RequestID = requestcontext.RequestID(ctx)
	}
	if record.RequestID == "" {
		record.RequestID = uuid.NewString()
	}
	r.inbox <- record
}

// Run drains the inbox until ctx is cancelled, then flushes whatever is
// still buffered before returning. Callers run it in the background and
// cancel it only after request traffic has stopped.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case record := <-r.inbox:
			r.persist(record)
		case <-ctx.Done():
			for {
				select {
				case record := <-r.inbox:
					r.persist(record)
				default:
					return ctx.Err()
				}
			}
		}
	}
}

func (r *Recorder) persist(record Record) {
	// The request context is long gone by the time the record is drained;
	// persistence gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.store.Append(ctx, record); err != nil {
		if r.metrics != nil {
			r.metrics.AuditRecordsDropped.Inc()
		}
		r.logger.Error("audit record not persisted",
			"error", err,
			"action", record.Action,
			"resource", record.Resource,
			"request_id", record.RequestID,
		)
		return
	}
	if r.metrics != nil {
		r.metrics.AuditRecordsWritten.Inc()
	}
}
