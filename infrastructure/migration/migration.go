package migration

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ppc-automation/infrastructure/database/postgres"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS campaign_budgets (
		campaign_id     TEXT NOT NULL,
		campaign_name   TEXT NOT NULL,
		daily_budget    NUMERIC(12, 2) NOT NULL,
		budget_type     TEXT NOT NULL,
		state           TEXT NOT NULL,
		targeting_type  TEXT,
		fetch_timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS campaign_budgets_fetch_idx ON campaign_budgets (campaign_id, fetch_timestamp)`,
	`CREATE TABLE IF NOT EXISTS campaign_performance (
		report_date                DATE NOT NULL,
		campaign_id                TEXT NOT NULL,
		impressions                BIGINT NOT NULL,
		clicks                     BIGINT NOT NULL,
		cost                       NUMERIC(12, 2) NOT NULL,
		attributed_sales_14d       NUMERIC(12, 2) NOT NULL,
		attributed_conversions_14d BIGINT NOT NULL,
		fetch_timestamp            TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS campaign_performance_date_idx ON campaign_performance (report_date, campaign_id)`,
	`CREATE TABLE IF NOT EXISTS keyword_performance (
		report_date                DATE NOT NULL,
		campaign_id                TEXT NOT NULL,
		ad_group_id                TEXT,
		keyword_id                 TEXT NOT NULL,
		keyword_text               TEXT,
		match_type                 TEXT,
		impressions                BIGINT NOT NULL,
		clicks                     BIGINT NOT NULL,
		cost                       NUMERIC(12, 2) NOT NULL,
		attributed_sales_14d       NUMERIC(12, 2) NOT NULL,
		attributed_conversions_14d BIGINT NOT NULL,
		fetch_timestamp            TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS keyword_performance_date_idx ON keyword_performance (report_date, keyword_id)`,
	`CREATE TABLE IF NOT EXISTS automation_audit (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		engine      TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   TEXT,
		campaign_id TEXT,
		ad_group_id TEXT,
		field       TEXT NOT NULL,
		old_value   TEXT,
		new_value   TEXT,
		reason      TEXT NOT NULL,
		detail      TEXT,
		applied     BOOLEAN NOT NULL,
		dry_run     BOOLEAN NOT NULL,
		outcome     TEXT NOT NULL,
		error       TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS automation_audit_run_idx ON automation_audit (run_id, created_at)`,
}

// Apply cria as tabelas do warehouse e da auditoria numa única transação
func Apply(ctx context.Context, conn postgres.Conn) error {
	logrus.WithField("statements", len(statements)).Info("migration: aplicando schema")

	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "migration: statement %d", i)
			}
		}
		return nil
	})
}
