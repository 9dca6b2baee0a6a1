package reporting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/internal/reporting/mocks"
)

var (
	day1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	campaignsScope = domain.ReportScope{Type: domain.ReportTypeCampaigns, StartDate: day1, EndDate: day2}
	keywordsScope  = domain.ReportScope{Type: domain.ReportTypeKeywords, StartDate: day1, EndDate: day2}
)

func fastOptions() Options {
	return Options{
		MaxInFlight:     2,
		InitialInterval: 2 * time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		BackoffFactor:   1.5,
		MaxWait:         time.Second,
	}
}

func parseTwoRows(scope domain.ReportScope, raw []byte) (*domain.ReportData, error) {
	return &domain.ReportData{
		Scope: scope,
		Performance: []domain.PerformanceRecord{
			{CampaignID: "c1", Date: day1},
			{CampaignID: "c2", Date: day1},
		},
	}, nil
}

// fakeClock avança apenas quando o manager dorme
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	return nil
}

func TestRunJobLifecycle(t *testing.T) {
	parseErr := errors.New("unexpected column")

	tests := []struct {
		name     string
		parse    ParseFunc
		setup    func(api *mocks.MockReportAPI)
		validate func(t *testing.T, result Result)
	}{
		{
			name:  "relatório concluído após polls pendentes",
			parse: parseTwoRows,
			setup: func(api *mocks.MockReportAPI) {
				api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
				gomock.InOrder(
					api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusPending}, nil).Times(2),
					api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusDone, Location: "https://s3/rep-1"}, nil),
				)
				api.EXPECT().DownloadReport(gomock.Any(), domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusDone, Location: "https://s3/rep-1"}).Return([]byte("raw"), nil)
			},
			validate: func(t *testing.T, result Result) {
				require.NoError(t, result.Err)
				assert.True(t, result.Completed())
				assert.Equal(t, domain.ReportStateCompleted, result.Request.State)
				assert.Equal(t, 3, result.Request.Polls)
				assert.Equal(t, "https://s3/rep-1", result.Request.Location)
				assert.Equal(t, 2, result.Outcome.Rows)
				assert.NotEmpty(t, result.Request.ID)
			},
		},
		{
			name: "falha de parse mantém COMPLETED com desfecho FAILED",
			parse: func(domain.ReportScope, []byte) (*domain.ReportData, error) {
				return nil, parseErr
			},
			setup: func(api *mocks.MockReportAPI) {
				api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
				api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusDone}, nil)
				api.EXPECT().DownloadReport(gomock.Any(), gomock.Any()).Return([]byte("raw"), nil)
			},
			validate: func(t *testing.T, result Result) {
				assert.ErrorIs(t, result.Err, parseErr)
				assert.False(t, result.Completed())
				assert.Nil(t, result.Data)
				assert.Equal(t, domain.ReportStateCompleted, result.Request.State)
				assert.Equal(t, domain.ReportStateFailed, result.Outcome.EffectiveState)
				assert.Contains(t, result.Outcome.Reason, "unexpected column")
			},
		},
		{
			name:  "falha no download",
			parse: parseTwoRows,
			setup: func(api *mocks.MockReportAPI) {
				api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
				api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusDone}, nil)
				api.EXPECT().DownloadReport(gomock.Any(), gomock.Any()).Return(nil, domain.NewAPIError(domain.ErrFatalAPI, "downloadReport", 403, "expired"))
			},
			validate: func(t *testing.T, result Result) {
				assert.ErrorIs(t, result.Err, domain.ErrFatalAPI)
				assert.Equal(t, domain.ReportStateCompleted, result.Request.State)
				assert.Equal(t, domain.ReportStateFailed, result.Outcome.EffectiveState)
			},
		},
		{
			name:  "plataforma informa falha",
			parse: parseTwoRows,
			setup: func(api *mocks.MockReportAPI) {
				api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
				api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusFailed, FailureReason: "internal error"}, nil)
			},
			validate: func(t *testing.T, result Result) {
				assert.Error(t, result.Err)
				assert.Equal(t, domain.ReportStateFailed, result.Request.State)
				assert.Equal(t, "internal error", result.Request.FailureReason)
				assert.Equal(t, domain.ReportStateFailed, result.Outcome.EffectiveState)
			},
		},
		{
			name:  "falha ao solicitar",
			parse: parseTwoRows,
			setup: func(api *mocks.MockReportAPI) {
				api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("", domain.NewFatalAPIError("requestReport", 4, errors.New("503")))
			},
			validate: func(t *testing.T, result Result) {
				assert.ErrorIs(t, result.Err, domain.ErrFatalAPI)
				assert.Equal(t, domain.ReportStateFailed, result.Request.State)
				assert.Equal(t, 0, result.Request.Polls)
				assert.Empty(t, result.Request.ExternalID)
			},
		},
		{
			name:  "erro no poll",
			parse: parseTwoRows,
			setup: func(api *mocks.MockReportAPI) {
				api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
				api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{}, domain.NewAPIError(domain.ErrFatalAPI, "pollReport", 404, "not found"))
			},
			validate: func(t *testing.T, result Result) {
				assert.ErrorIs(t, result.Err, domain.ErrFatalAPI)
				assert.Equal(t, domain.ReportStateFailed, result.Request.State)
				assert.Equal(t, 1, result.Request.Polls)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockReportAPI(ctrl)
			tt.setup(api)

			manager := NewManager(api, tt.parse, fastOptions())
			results := manager.Run(context.Background(), []domain.ReportScope{campaignsScope})

			require.Len(t, results, 1)
			tt.validate(t, results[0])
		})
	}
}

func TestPollingBackoffAndFinalPollAtDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockReportAPI(ctrl)

	api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
	api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusPending}, nil).Times(4)

	clock := &fakeClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	manager := NewManager(api, parseTwoRows, Options{
		MaxInFlight:     1,
		InitialInterval: 2 * time.Second,
		MaxInterval:     10 * time.Second,
		BackoffFactor:   1.5,
		MaxWait:         10 * time.Second,
	})
	manager.now = clock.Now
	manager.sleep = clock.Sleep

	results := manager.Run(context.Background(), []domain.ReportScope{campaignsScope})

	require.Len(t, results, 1)
	result := results[0]
	assert.ErrorIs(t, result.Err, domain.ErrReportTimeout)
	assert.Equal(t, domain.ReportStateTimedOut, result.Request.State)
	assert.Equal(t, 4, result.Request.Polls)
	// 2s, 3s, 4.5s e o poll final no prazo
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second, 4500 * time.Millisecond, 500 * time.Millisecond}, clock.waits)
}

func TestPollingIntervalIsCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockReportAPI(ctrl)

	polls := 0
	api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
	api.EXPECT().PollReport(gomock.Any(), "rep-1").DoAndReturn(func(context.Context, string) (domain.ReportStatus, error) {
		polls++
		if polls == 6 {
			return domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusDone}, nil
		}
		return domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusPending}, nil
	}).Times(6)
	api.EXPECT().DownloadReport(gomock.Any(), gomock.Any()).Return([]byte("raw"), nil)

	clock := &fakeClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	manager := NewManager(api, parseTwoRows, Options{
		MaxInFlight:     1,
		InitialInterval: 2 * time.Second,
		MaxInterval:     4 * time.Second,
		BackoffFactor:   2,
		MaxWait:         time.Minute,
	})
	manager.now = clock.Now
	manager.sleep = clock.Sleep

	results := manager.Run(context.Background(), []domain.ReportScope{campaignsScope})

	assert.True(t, results[0].Completed())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second}, clock.waits)
}

func TestTimedOutReportDoesNotBlockOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockReportAPI(ctrl)

	api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("slow", nil)
	api.EXPECT().RequestReport(gomock.Any(), keywordsScope).Return("fast", nil)
	api.EXPECT().PollReport(gomock.Any(), "slow").Return(domain.ReportStatus{ExternalID: "slow", Status: domain.PollStatusPending}, nil).AnyTimes()
	api.EXPECT().PollReport(gomock.Any(), "fast").Return(domain.ReportStatus{ExternalID: "fast", Status: domain.PollStatusDone}, nil)
	api.EXPECT().DownloadReport(gomock.Any(), gomock.Any()).Return([]byte("raw"), nil)

	opts := fastOptions()
	opts.MaxWait = 40 * time.Millisecond
	manager := NewManager(api, parseTwoRows, opts)

	results := manager.Run(context.Background(), []domain.ReportScope{campaignsScope, keywordsScope})

	require.Len(t, results, 2)
	assert.Equal(t, campaignsScope, results[0].Request.Scope, "resultados seguem a ordem dos escopos")
	assert.Equal(t, domain.ReportStateTimedOut, results[0].Request.State)
	assert.ErrorIs(t, results[0].Err, domain.ErrReportTimeout)
	assert.GreaterOrEqual(t, results[0].Request.Polls, 2)

	assert.Equal(t, keywordsScope, results[1].Request.Scope)
	assert.True(t, results[1].Completed())
}

func TestRunRespectsMaxInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockReportAPI(ctrl)

	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	api.EXPECT().RequestReport(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, domain.ReportScope) (string, error) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()
		return "rep", nil
	}).Times(5)
	api.EXPECT().PollReport(gomock.Any(), "rep").DoAndReturn(func(context.Context, string) (domain.ReportStatus, error) {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return domain.ReportStatus{ExternalID: "rep", Status: domain.PollStatusFailed}, nil
	}).Times(5)

	opts := fastOptions()
	opts.MaxInFlight = 2
	manager := NewManager(api, parseTwoRows, opts)

	scopes := make([]domain.ReportScope, 5)
	for i := range scopes {
		scopes[i] = campaignsScope
	}
	results := manager.Run(context.Background(), scopes)

	assert.Len(t, results, 5)
	assert.LessOrEqual(t, peak, 2)
}

func TestRunContextCancellation(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() (context.Context, context.CancelFunc)
		wantState domain.ReportState
		wantErr   error
	}{
		{
			name: "prazo da execução vira TIMED_OUT",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 20*time.Millisecond)
			},
			wantState: domain.ReportStateTimedOut,
			wantErr:   domain.ErrReportTimeout,
		},
		{
			name: "cancelamento vira FAILED",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(20*time.Millisecond, cancel)
				return ctx, cancel
			},
			wantState: domain.ReportStateFailed,
			wantErr:   context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockReportAPI(ctrl)
			api.EXPECT().RequestReport(gomock.Any(), campaignsScope).Return("rep-1", nil)
			api.EXPECT().PollReport(gomock.Any(), "rep-1").Return(domain.ReportStatus{ExternalID: "rep-1", Status: domain.PollStatusPending}, nil).AnyTimes()

			ctx, cancel := tt.ctx()
			defer cancel()

			manager := NewManager(api, parseTwoRows, fastOptions())
			results := manager.Run(ctx, []domain.ReportScope{campaignsScope})

			require.Len(t, results, 1)
			assert.Equal(t, tt.wantState, results[0].Request.State)
			assert.ErrorIs(t, results[0].Err, tt.wantErr)
			assert.Equal(t, tt.wantState, results[0].Outcome.EffectiveState)
		})
	}
}

func TestRequestInterruptedByRunDeadline(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() (context.Context, context.CancelFunc)
		wantState domain.ReportState
		wantErr   error
	}{
		{
			name: "prazo vencido durante o pedido vira TIMED_OUT",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			},
			wantState: domain.ReportStateTimedOut,
			wantErr:   domain.ErrReportTimeout,
		},
		{
			name: "cancelamento durante o pedido vira FAILED",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			wantState: domain.ReportStateFailed,
			wantErr:   context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			ctrl := gomock.NewController(t)
			api := mocks.NewMockReportAPI(ctrl)
			api.EXPECT().RequestReport(gomock.Any(), campaignsScope).
				DoAndReturn(func(ctx context.Context, _ domain.ReportScope) (string, error) {
					return "", ctx.Err()
				})

			results := NewManager(api, parseTwoRows, fastOptions()).Run(ctx, []domain.ReportScope{campaignsScope})

			require.Len(t, results, 1)
			assert.Equal(t, tt.wantState, results[0].Request.State)
			assert.Equal(t, tt.wantState, results[0].Outcome.EffectiveState)
			assert.ErrorIs(t, results[0].Err, tt.wantErr)
		})
	}
}
