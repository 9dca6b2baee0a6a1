package domain

import "time"

// WarehouseTable descreve uma tabela de destino da exportação
type WarehouseTable struct {
	Name    string
	Columns []string
}

// WarehouseRow segue a ordem de WarehouseTable.Columns
type WarehouseRow []any

// TableLoad é o resultado da carga de uma tabela
type TableLoad struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// ExportResult resume uma exportação. Todas as linhas compartilham FetchTimestamp.
type ExportResult struct {
	FetchTimestamp time.Time   `json:"fetch_timestamp"`
	Tables         []TableLoad `json:"tables"`
}

func (r ExportResult) Failed() bool {
	for _, t := range r.Tables {
		if t.Error != "" {
			return true
		}
	}
	return false
}
