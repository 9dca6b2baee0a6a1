package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/ppc-automation/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

var performanceTable = domain.WarehouseTable{
	Name:    "campaign_performance",
	Columns: []string{"report_date", "campaign_id", "clicks"},
}

func rows(n int) []domain.WarehouseRow {
	out := make([]domain.WarehouseRow, n)
	for i := range out {
		out[i] = domain.WarehouseRow{"2026-10-17", "c1", int64(i)}
	}
	return out
}

func TestWarehouseLoad(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		rows     []domain.WarehouseRow
		setup    func(mock sqlmock.Sqlmock)
		validate func(t *testing.T, loaded int, err error)
	}{
		{
			name: "insere em lotes numa transação",
			rows: rows(5),
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_performance (report_date,campaign_id,clicks) VALUES ($1,$2,$3),($4,$5,$6)")).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_performance (report_date,campaign_id,clicks) VALUES ($1,$2,$3),($4,$5,$6)")).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_performance (report_date,campaign_id,clicks) VALUES ($1,$2,$3)")).
					WithArgs("2026-10-17", "c1", int64(4)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			validate: func(t *testing.T, loaded int, err error) {
				require.NoError(t, err)
				assert.Equal(t, 5, loaded)
			},
		},
		{
			name: "falha faz rollback",
			rows: rows(3),
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO campaign_performance").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO campaign_performance").WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			validate: func(t *testing.T, loaded int, err error) {
				assert.ErrorContains(t, err, "disk full")
				assert.Equal(t, 0, loaded)
			},
		},
		{
			name:  "sem linhas não abre transação",
			rows:  nil,
			setup: func(mock sqlmock.Sqlmock) {},
			validate: func(t *testing.T, loaded int, err error) {
				require.NoError(t, err)
				assert.Equal(t, 0, loaded)
			},
		},
		{
			name:  "linha com colunas faltando",
			rows:  []domain.WarehouseRow{{"2026-10-17", "c1"}},
			setup: func(mock sqlmock.Sqlmock) {},
			validate: func(t *testing.T, loaded int, err error) {
				assert.ErrorContains(t, err, "row 0 has 2 values for 3 columns")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)

			loaded, err := NewWarehouseRepository(postgres.Wrap(db), 2).Load(ctx, performanceTable, tt.rows)
			tt.validate(t, loaded, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRowsPerInsert(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		columns   int
		want      int
	}{
		{name: "lote configurado cabe no limite", batchSize: 500, columns: 12, want: 500},
		{name: "lote grande é limitado por colunas", batchSize: 100000, columns: 12, want: 5461},
		{name: "tabela de três colunas", batchSize: 30000, columns: 3, want: 21845},
		{name: "sempre ao menos uma linha", batchSize: 10, columns: 70000, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewWarehouseRepository(nil, tt.batchSize).(*warehouseRepository)
			got := repo.rowsPerInsert(tt.columns)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got*tt.columns, maxBindParameters+tt.columns)
		})
	}
}

func TestWarehouseLoadSplitsAtBindParameterLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 21845 linhas × 3 colunas = 65535 parâmetros no primeiro INSERT
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_performance").WillReturnResult(sqlmock.NewResult(0, 21845))
	mock.ExpectExec("INSERT INTO campaign_performance").
		WithArgs("2026-10-17", "c1", int64(21845), "2026-10-17", "c1", int64(21846)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	loaded, err := NewWarehouseRepository(postgres.Wrap(db), 30000).Load(context.Background(), performanceTable, rows(21847))

	require.NoError(t, err)
	assert.Equal(t, 21847, loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	entry := domain.AuditEntry{
		ID:        "01JAUDIT",
		RunID:     "run-1",
		Timestamp: at,
		Proposal: domain.MutationProposal{
			Engine:   domain.EngineBidOptimization,
			Entity:   domain.EntityRef{Type: domain.EntityKeyword, ID: "k1", CampaignID: "c1", AdGroupID: "ag1"},
			Field:    domain.FieldBid,
			OldValue: "1.00",
			NewValue: "0.80",
			Reason:   domain.ReasonHighACOS,
		},
		DryRun:  true,
		Outcome: domain.OutcomeDryRun,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO automation_audit")).
		WithArgs("01JAUDIT", "run-1", at, "bid_optimization", "keyword", "k1", "c1", "ag1",
			"bid", "1.00", "0.80", "HIGH_ACOS", "", false, true, "dry_run", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAuditRepository(postgres.Wrap(db))
	require.NoError(t, repo.Save(ctx, entry))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, created_at")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(auditColumns).
			AddRow("01JAUDIT", "run-1", at, "bid_optimization", "keyword", "k1", "c1", "ag1",
				"bid", "1.00", "0.80", "HIGH_ACOS", nil, false, true, "dry_run", nil))

	entries, err := repo.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.Proposal, entries[0].Proposal)
	assert.Equal(t, domain.OutcomeDryRun, entries[0].Outcome)
	assert.True(t, entries[0].DryRun)

	assert.NoError(t, mock.ExpectationsWereMet())
}
