package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/ppc-automation/internal/automation"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/apiErrors"
	"github.com/vfg2006/ppc-automation/pkg/log"
)

//go:generate mockgen -source=runs.go -destination=mocks/mock_runs.go -package=mocks

// RunService é a parte do serviço de automação exposta pela API
type RunService interface {
	Run(ctx context.Context) (*automation.Summary, error)
	Running() bool
	LastSummary() *automation.Summary
}

// AuditLister consulta a auditoria persistida de uma execução
type AuditLister interface {
	ListByRun(ctx context.Context, runID string) ([]domain.AuditEntry, error)
}

type triggerResponse struct {
	Status string `json:"status"`
}

type auditResponse struct {
	RunID   string              `json:"run_id"`
	Entries []domain.AuditEntry `json:"entries"`
}

// TriggerRun inicia uma execução em background e responde 202
func TriggerRun(service RunService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if service.Running() {
			apiErrors.WriteError(w, apiErrors.ErrRunInProgress, automation.ErrRunInProgress.Error(), nil)
			return
		}

		// a execução não pode depender do contexto da requisição
		ctx := context.WithoutCancel(r.Context())
		go func() {
			if _, err := service.Run(ctx); err != nil {
				logger := log.ForContext(ctx).WithError(err)
				if errors.Is(err, automation.ErrRunInProgress) {
					logger.Warn("api: execução já em andamento")
					return
				}
				logger.Error("api: execução disparada falhou")
			}
		}()

		writeJSON(w, http.StatusAccepted, triggerResponse{Status: "started"})
	}
}

// LastRun devolve o resumo da última execução concluída
func LastRun(service RunService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := service.LastSummary()
		if summary == nil {
			apiErrors.WriteError(w, apiErrors.ErrRunNotFound, "no run has finished yet", nil)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// RunAudit lista as entradas de auditoria persistidas de uma execução
func RunAudit(lister AuditLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			apiErrors.WriteError(w, apiErrors.ErrNotConfigured, "audit persistence is disabled", nil)
			return
		}

		runID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if runID == "" {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "run id is required", nil)
			return
		}

		entries, err := lister.ListByRun(r.Context(), runID)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("api: erro ao listar a auditoria")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "failed to list audit entries", nil)
			return
		}
		if len(entries) == 0 {
			apiErrors.WriteError(w, apiErrors.ErrRunNotFound, "no audit entries for run", nil)
			return
		}

		writeJSON(w, http.StatusOK, auditResponse{RunID: runID, Entries: entries})
	}
}
