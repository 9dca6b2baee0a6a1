package automation

import (
	"time"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/internal/executor"
)

// FeatureResult é o desfecho de um motor na execução
type FeatureResult struct {
	Engine    domain.EngineKind      `json:"engine"`
	Succeeded bool                   `json:"succeeded"`
	Reason    string                 `json:"reason,omitempty"`
	Proposals int                    `json:"proposals"`
	Mutations executor.EngineSummary `json:"mutations"`
}

// Summary resume uma execução. Auditoria e exportação parciais são mantidas
// mesmo quando a execução falha.
type Summary struct {
	RunID       string                 `json:"run_id"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  time.Time              `json:"finished_at"`
	DryRun      bool                   `json:"dry_run"`
	Features    []FeatureResult        `json:"features"`
	Reports     []domain.ReportOutcome `json:"reports"`
	Export      *domain.ExportResult   `json:"export,omitempty"`
	AuthErrors  int                    `json:"auth_errors"`
	FatalErrors int                    `json:"fatal_errors"`
	AuditFile   string                 `json:"audit_file,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

func (s *Summary) Succeeded() bool {
	if s.Error != "" || s.AuthErrors > 0 || s.FatalErrors > 0 {
		return false
	}
	if s.Export != nil && s.Export.Failed() {
		return false
	}
	for _, f := range s.Features {
		if !f.Succeeded {
			return false
		}
	}
	return true
}

func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *Summary) feature(kind domain.EngineKind) *FeatureResult {
	for i := range s.Features {
		if s.Features[i].Engine == kind {
			return &s.Features[i]
		}
	}
	return nil
}
