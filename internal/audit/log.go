package audit

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/log"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
)

//go:generate mockgen -source=log.go -destination=mocks/mock_sink.go -package=mocks

// Sink recebe cada entrada gravada no log de auditoria
type Sink interface {
	Name() string
	Write(ctx context.Context, entry domain.AuditEntry) error
	Close() error
}

// Log é o registro append-only de uma execução. Todas as operações são
// serializadas; falhas de sink são registradas e nunca interrompem a execução.
type Log struct {
	mu      sync.Mutex
	runID   string
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
	sinks   []Sink
	entries []domain.AuditEntry
	reports []domain.ReportOutcome
	closed  bool
}

func NewLog(runID string, sinks ...Sink) *Log {
	return &Log{
		runID:   runID,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		sinks:   sinks,
	}
}

func (l *Log) RunID() string {
	return l.runID
}

// Record completa ID, run e horário da entrada e a repassa aos sinks
func (l *Log) Record(ctx context.Context, entry domain.AuditEntry) domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	entry.ID = ulid.MustNew(ulid.Timestamp(now), l.entropy).String()
	entry.RunID = l.runID
	entry.Timestamp = now

	l.entries = append(l.entries, entry)
	metrics.Mutations.WithLabelValues(string(entry.Proposal.Engine), string(entry.Outcome)).Inc()

	if l.closed {
		log.ForContext(ctx).WithField("audit_id", entry.ID).Warn("audit: entrada gravada após o fechamento, sinks ignorados")
		return entry
	}

	for _, sink := range l.sinks {
		if err := sink.Write(ctx, entry); err != nil {
			log.ForContext(ctx).WithFields(log.Fields{
				"sink":     sink.Name(),
				"audit_id": entry.ID,
			}).WithError(err).Warn("audit: falha no sink")
		}
	}

	return entry
}

// RecordReport guarda o resultado de um relatório
func (l *Log) RecordReport(ctx context.Context, outcome domain.ReportOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = l.now().UTC()
	}
	l.reports = append(l.reports, outcome)

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"report_id":       outcome.Request.ID,
		"report_type":     outcome.Request.Scope.Type,
		"state":           outcome.Request.State,
		"effective_state": outcome.EffectiveState,
		"rows":            outcome.Rows,
		"polls":           outcome.Request.Polls,
	})
	if outcome.Reason != "" {
		logger = logger.WithField("reason", outcome.Reason)
	}
	logger.Info("audit: resultado do relatório")
}

func (l *Log) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Reports() []domain.ReportOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.ReportOutcome, len(l.reports))
	copy(out, l.reports)
	return out
}

// Close fecha os sinks uma única vez
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
