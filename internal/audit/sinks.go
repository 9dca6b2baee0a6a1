package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/log"
)

var csvHeader = []string{
	"timestamp", "run_id", "id", "engine", "entity_type", "entity_id", "campaign_id", "ad_group_id",
	"field", "old_value", "new_value", "reason", "detail", "applied", "dry_run", "outcome", "error",
}

// CSVSink grava uma linha por entrada, com flush a cada escrita
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

// FileName segue o padrão ppc_audit_<YYYYMMDD_HHMMSS>_<runid>.csv
func FileName(startedAt time.Time, runID string) string {
	return fmt.Sprintf("ppc_audit_%s_%s.csv", startedAt.Format("20060102_150405"), runID)
}

func NewCSVSink(dir, runID string, startedAt time.Time) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: create dir: %w", err)
	}

	file, err := os.Create(filepath.Join(dir, FileName(startedAt, runID)))
	if err != nil {
		return nil, fmt.Errorf("audit: create file: %w", err)
	}

	sink := &CSVSink{file: file, writer: csv.NewWriter(file)}
	if err := sink.flush(csvHeader); err != nil {
		_ = file.Close()
		return nil, err
	}
	return sink, nil
}

func (s *CSVSink) Path() string {
	return s.file.Name()
}

func (s *CSVSink) Name() string {
	return "csv"
}

func (s *CSVSink) Write(_ context.Context, entry domain.AuditEntry) error {
	p := entry.Proposal
	return s.flush([]string{
		entry.Timestamp.Format(time.RFC3339),
		entry.RunID,
		entry.ID,
		string(p.Engine),
		string(p.Entity.Type),
		p.Entity.ID,
		p.Entity.CampaignID,
		p.Entity.AdGroupID,
		string(p.Field),
		p.OldValue,
		p.NewValue,
		string(p.Reason),
		p.Detail,
		strconv.FormatBool(entry.Applied),
		strconv.FormatBool(entry.DryRun),
		string(entry.Outcome),
		entry.Error,
	})
}

func (s *CSVSink) flush(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// LogSink emite cada entrada como log estruturado
type LogSink struct{}

func (LogSink) Name() string {
	return "log"
}

func (LogSink) Write(ctx context.Context, entry domain.AuditEntry) error {
	p := entry.Proposal
	fields := log.Fields{
		"audit_id":  entry.ID,
		"engine":    p.Engine,
		"entity":    p.Entity.Type,
		"entity_id": p.Entity.ID,
		"field":     p.Field,
		"old_value": p.OldValue,
		"new_value": p.NewValue,
		"reason":    p.Reason,
		"outcome":   entry.Outcome,
		"dry_run":   entry.DryRun,
	}
	if p.Field == domain.FieldCreate {
		fields["campaign_id"] = p.Entity.CampaignID
		fields["ad_group_id"] = p.Entity.AdGroupID
	}

	logger := log.ForContext(ctx).WithFields(fields)
	if entry.Error != "" {
		logger.WithField("error", entry.Error).Warn("audit: mutação falhou")
		return nil
	}
	logger.Info("audit: mutação")
	return nil
}

func (LogSink) Close() error {
	return nil
}

// EntryStore persiste entradas de auditoria (automation_audit)
type EntryStore interface {
	Save(ctx context.Context, entry domain.AuditEntry) error
}

type StoreSink struct {
	store EntryStore
}

func NewStoreSink(store EntryStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Name() string {
	return "postgres"
}

func (s *StoreSink) Write(ctx context.Context, entry domain.AuditEntry) error {
	return s.store.Save(ctx, entry)
}

func (s *StoreSink) Close() error {
	return nil
}
