package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/vfg2006/ppc-automation/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

const auditTable = "automation_audit"

var auditColumns = []string{
	"id", "run_id", "created_at", "engine", "entity_type", "entity_id", "campaign_id", "ad_group_id",
	"field", "old_value", "new_value", "reason", "detail", "applied", "dry_run", "outcome", "error",
}

type AuditRepository interface {
	Save(ctx context.Context, entry domain.AuditEntry) error
	ListByRun(ctx context.Context, runID string) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	conn postgres.Queryer
}

func NewAuditRepository(conn postgres.Queryer) AuditRepository {
	return &auditRepository{
		conn: conn,
	}
}

func (r *auditRepository) Save(ctx context.Context, entry domain.AuditEntry) error {
	p := entry.Proposal

	query, args, err := squirrel.
		Insert(auditTable).
		Columns(auditColumns...).
		Values(
			entry.ID,
			entry.RunID,
			entry.Timestamp,
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
			entry.Applied,
			entry.DryRun,
			string(entry.Outcome),
			entry.Error,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir a query")
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "erro ao gravar auditoria %s", entry.ID)
	}

	return nil
}

func (r *auditRepository) ListByRun(ctx context.Context, runID string) ([]domain.AuditEntry, error) {
	query, args, err := squirrel.
		Select(auditColumns...).
		From(auditTable).
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query")
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a query")
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao escanear auditoria")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração de linhas")
	}

	return entries, nil
}

func scanAuditEntry(rows *sql.Rows) (domain.AuditEntry, error) {
	var (
		entry                                               domain.AuditEntry
		engine, entityType, field, reason, outcome          string
		entityID, campaignID, adGroupID, oldValue, newValue sql.NullString
		detail, errMsg                                      sql.NullString
	)

	if err := rows.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Timestamp,
		&engine,
		&entityType,
		&entityID,
		&campaignID,
		&adGroupID,
		&field,
		&oldValue,
		&newValue,
		&reason,
		&detail,
		&entry.Applied,
		&entry.DryRun,
		&outcome,
		&errMsg,
	); err != nil {
		return entry, err
	}

	entry.Proposal = domain.MutationProposal{
		Engine: domain.EngineKind(engine),
		Entity: domain.EntityRef{
			Type:       domain.EntityType(entityType),
			ID:         entityID.String,
			CampaignID: campaignID.String,
			AdGroupID:  adGroupID.String,
		},
		Field:    domain.MutationField(field),
		OldValue: oldValue.String,
		NewValue: newValue.String,
		Reason:   domain.ReasonCode(reason),
		Detail:   detail.String,
	}
	entry.Outcome = domain.AuditOutcome(outcome)
	entry.Error = errMsg.String

	return entry, nil
}
