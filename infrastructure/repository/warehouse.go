package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/vfg2006/ppc-automation/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

const (
	defaultBatchSize = 500
	// limite de parâmetros por comando do protocolo do Postgres
	maxBindParameters = 65535
)

type WarehouseRepository interface {
	Load(ctx context.Context, table domain.WarehouseTable, rows []domain.WarehouseRow) (int, error)
}

type warehouseRepository struct {
	conn      postgres.Conn
	batchSize int
}

func NewWarehouseRepository(conn postgres.Conn, batchSize int) WarehouseRepository {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &warehouseRepository{
		conn:      conn,
		batchSize: batchSize,
	}
}

// Load grava as linhas em INSERTs de múltiplas linhas, batchSize por comando,
// numa única transação por tabela
func (r *warehouseRepository) Load(ctx context.Context, table domain.WarehouseTable, rows []domain.WarehouseRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	for i, row := range rows {
		if len(row) != len(table.Columns) {
			return 0, errors.Errorf("%s: row %d has %d values for %d columns", table.Name, i, len(row), len(table.Columns))
		}
	}

	batchSize := r.rowsPerInsert(len(table.Columns))

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(rows); start += batchSize {
			end := min(start+batchSize, len(rows))

			builder := squirrel.
				Insert(table.Name).
				Columns(table.Columns...).
				PlaceholderFormat(squirrel.Dollar)
			for _, row := range rows[start:end] {
				builder = builder.Values(row...)
			}

			query, args, err := builder.ToSql()
			if err != nil {
				return errors.Wrap(err, "erro ao construir a query")
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrapf(err, "%s: erro ao inserir linhas %d-%d", table.Name, start, end-1)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}

// rowsPerInsert limita o lote para que linhas × colunas caibam em um comando
func (r *warehouseRepository) rowsPerInsert(columns int) int {
	if columns < 1 {
		return r.batchSize
	}
	return max(1, min(r.batchSize, maxBindParameters/columns))
}
