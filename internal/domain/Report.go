package domain

import (
	"errors"
	"fmt"
	"time"
)

type ReportType string

const (
	ReportTypeCampaigns   ReportType = "campaigns"
	ReportTypeKeywords    ReportType = "keywords"
	ReportTypeSearchTerms ReportType = "searchTerms"
)

type ReportScope struct {
	Type      ReportType `json:"type"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
}

func (s ReportScope) String() string {
	return fmt.Sprintf("%s:%s..%s", s.Type, s.StartDate.Format(time.DateOnly), s.EndDate.Format(time.DateOnly))
}

type ReportState string

const (
	ReportStateCreated   ReportState = "CREATED"
	ReportStateRequested ReportState = "REQUESTED"
	ReportStatePending   ReportState = "PENDING"
	ReportStateCompleted ReportState = "COMPLETED"
	ReportStateFailed    ReportState = "FAILED"
	ReportStateTimedOut  ReportState = "TIMED_OUT"
)

func (s ReportState) IsTerminal() bool {
	return s == ReportStateCompleted || s == ReportStateFailed || s == ReportStateTimedOut
}

var ErrInvalidTransition = errors.New("invalid report state transition")

// CREATED vai direto a TIMED_OUT quando o prazo da execução vence antes do pedido
var reportTransitions = map[ReportState][]ReportState{
	ReportStateCreated:   {ReportStateRequested, ReportStateFailed, ReportStateTimedOut},
	ReportStateRequested: {ReportStatePending, ReportStateCompleted, ReportStateFailed, ReportStateTimedOut},
	ReportStatePending:   {ReportStatePending, ReportStateCompleted, ReportStateFailed, ReportStateTimedOut},
}

// ReportRequest acompanha um relatório desde a criação até um estado terminal.
// Estados terminais não aceitam novas transições.
type ReportRequest struct {
	ID            string      `json:"id"`
	ExternalID    string      `json:"external_id"`
	Scope         ReportScope `json:"scope"`
	State         ReportState `json:"state"`
	Location      string      `json:"location,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
	Polls         int         `json:"polls"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func NewReportRequest(id string, scope ReportScope, now time.Time) *ReportRequest {
	return &ReportRequest{
		ID:        id,
		Scope:     scope,
		State:     ReportStateCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *ReportRequest) Transition(to ReportState, at time.Time) error {
	for _, allowed := range reportTransitions[r.State] {
		if allowed == to {
			r.State = to
			r.UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, to)
}

// Fail leva a requisição para FAILED ou TIMED_OUT registrando o motivo
func (r *ReportRequest) Fail(to ReportState, reason string, at time.Time) error {
	if err := r.Transition(to, at); err != nil {
		return err
	}
	r.FailureReason = reason
	return nil
}

type PollStatus string

const (
	PollStatusPending PollStatus = "pending"
	PollStatusDone    PollStatus = "done"
	PollStatusFailed  PollStatus = "failed"
)

// ReportStatus é a resposta de uma consulta de status na plataforma
type ReportStatus struct {
	ExternalID    string
	Status        PollStatus
	Location      string
	FailureReason string
}

// ReportOutcome é o registro de auditoria de um relatório. EffectiveState pode
// ser FAILED mesmo quando a requisição terminou COMPLETED (falha de parse).
type ReportOutcome struct {
	Request        ReportRequest `json:"request"`
	EffectiveState ReportState   `json:"effective_state"`
	Reason         string        `json:"reason,omitempty"`
	Rows           int           `json:"rows"`
	RecordedAt     time.Time     `json:"recorded_at"`
}
