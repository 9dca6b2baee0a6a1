package adsclient

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/ratelimit"
	"github.com/vfg2006/ppc-automation/pkg/retry"
)

type fakeAPI struct {
	server      *httptest.Server
	mux         *http.ServeMux
	tokenCalls  atomic.Int32
	issueTokens bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{mux: http.NewServeMux(), issueTokens: true}
	api.mux.HandleFunc("/auth/o2/token", func(w http.ResponseWriter, r *http.Request) {
		n := api.tokenCalls.Add(1)
		if !api.issueTokens {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"refresh token revoked"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":3600}`, n)
	})
	api.server = httptest.NewServer(api.mux)
	t.Cleanup(api.server.Close)
	return api
}

func (f *fakeAPI) client(pageSize, maxAttempts int) *AdsClient {
	cfg := config.Ads{
		BaseURL:     f.server.URL,
		TokenURL:    f.server.URL + "/auth/o2/token",
		HTTPTimeout: 5 * time.Second,
		PageSize:    pageSize,
		UserAgent:   "ppc-automation-test",
	}
	creds := config.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		ProfileID:    "profile-1",
	}
	policy := retry.NewPolicy(time.Millisecond, 5*time.Millisecond, maxAttempts, 0)
	return NewClient(cfg, creds, ratelimit.New(1000, 10), policy)
}

func TestAuthenticate(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client(100, 3)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, int32(1), api.tokenCalls.Load())

	// token em cache não dispara nova renovação
	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, int32(1), api.tokenCalls.Load())
}

func TestAuthenticateRejectedRefreshToken(t *testing.T) {
	api := newFakeAPI(t)
	api.issueTokens = false
	client := api.client(100, 3)

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Equal(t, int32(1), api.tokenCalls.Load(), "erro de autenticação não deve ser reexecutado")
}

func TestSendRefreshesTokenOnceOn401(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "client-id", r.Header.Get(headerClientID))
		assert.Equal(t, "profile-1", r.Header.Get(headerScope))

		if r.Header.Get("Authorization") == "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"code":"UNAUTHORIZED","details":"token expired"}`)
			return
		}
		fmt.Fprint(w, `[{"campaignId":123,"name":"Camp","state":"enabled","targetingType":"manual","dailyBudget":10}]`)
	})

	client := api.client(100, 3)
	campaigns, err := client.ListCampaigns(context.Background())

	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "123", campaigns[0].CampaignID.String())
	assert.Equal(t, int32(2), api.tokenCalls.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendSecond401IsAuthError(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"UNAUTHORIZED","details":"not authorized"}`)
	})

	client := api.client(100, 5)
	_, err := client.ListCampaigns(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.False(t, domain.IsRetryable(err))
	assert.Equal(t, int32(2), calls.Load(), "apenas uma reautenticação por chamada")
	assert.Equal(t, int32(2), api.tokenCalls.Load())
}

func TestSendRetriesTransientAndRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		failures []int
		want     int32
	}{
		{name: "503 seguido de sucesso", failures: []int{http.StatusServiceUnavailable}, want: 2},
		{name: "429 com Retry-After", failures: []int{http.StatusTooManyRequests, http.StatusTooManyRequests}, want: 3},
		{name: "408 é transitório", failures: []int{http.StatusRequestTimeout}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			var calls atomic.Int32
			api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
				n := int(calls.Add(1))
				if n <= len(tt.failures) {
					w.Header().Set("Retry-After", "0")
					w.WriteHeader(tt.failures[n-1])
					return
				}
				fmt.Fprint(w, `[]`)
			})

			client := api.client(100, 4)
			campaigns, err := client.ListCampaigns(context.Background())

			require.NoError(t, err)
			assert.Empty(t, campaigns)
			assert.Equal(t, tt.want, calls.Load())
		})
	}
}

func TestSendExhaustedRetriesBecomeFatal(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	client := api.client(100, 3)
	_, err := client.ListCampaigns(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFatalAPI)
	assert.ErrorIs(t, err, domain.ErrTransientAPI, "a última falha continua acessível")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendClientErrorIsNotRetried(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":"INVALID_ARGUMENT","details":"bad filter"}`)
	})

	client := api.client(100, 5)
	_, err := client.ListCampaigns(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFatalAPI)
	assert.Contains(t, err.Error(), "bad filter")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendMalformedBody(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	})

	_, err := api.client(100, 3).ListCampaigns(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFatalAPI)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestSendCancelledContext(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.client(100, 3).ListCampaigns(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestListKeywordsPaginates(t *testing.T) {
	api := newFakeAPI(t)
	var starts []int
	api.mux.HandleFunc("/v2/sp/keywords", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ag-1", r.URL.Query().Get("adGroupIdFilter"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))

		start, _ := strconv.Atoi(r.URL.Query().Get("startIndex"))
		starts = append(starts, start)

		total := 5
		var items []string
		for i := start; i < start+2 && i < total; i++ {
			items = append(items, fmt.Sprintf(`{"keywordId":%d,"adGroupId":"ag-1","campaignId":"c-1","keywordText":"kw %d","matchType":"exact","state":"enabled","bid":0.5}`, i+1, i+1))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(items, ","))
	})

	keywords, err := api.client(2, 3).ListKeywords(context.Background(), "ag-1")

	require.NoError(t, err)
	assert.Len(t, keywords, 5)
	assert.Equal(t, []int{0, 2, 4}, starts)
	assert.Equal(t, "5", keywords[4].KeywordID.String())
}

func TestUpdateKeywordBid(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{
			name:     "sucesso",
			response: `[{"code":"SUCCESS","keywordId":77}]`,
		},
		{
			name:     "mutação recusada",
			response: `[{"code":"INVALID_ARGUMENT","keywordId":77,"details":"bid below minimum"}]`,
			wantErr:  domain.ErrMutation,
		},
		{
			name:     "resposta vazia",
			response: `[]`,
			wantErr:  domain.ErrMutation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.mux.HandleFunc("/v2/sp/keywords", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)

				var updates []adsdomain.KeywordBidUpdate
				require.NoError(t, json.NewDecoder(r.Body).Decode(&updates))
				require.Len(t, updates, 1)
				assert.Equal(t, "77", updates[0].KeywordID.String())
				assert.InDelta(t, 1.25, updates[0].Bid, 1e-9)

				w.WriteHeader(http.StatusMultiStatus)
				fmt.Fprint(w, tt.response)
			})

			err := api.client(100, 3).UpdateKeywordBid(context.Background(), "77", 1.25)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, domain.IsRetryable(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateNegativeKeywordReturnsID(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v2/sp/negativeKeywords", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `[{"code":"SUCCESS","keywordId":9001}]`)
	})

	id, err := api.client(100, 3).CreateNegativeKeyword(context.Background(), adsdomain.NegativeKeyword{
		CampaignID:  "c-1",
		KeywordText: "free",
		MatchType:   "negativeExact",
		State:       "enabled",
	})

	require.NoError(t, err)
	assert.Equal(t, "9001", id)
}

func TestCreateIsNotRetriedAfterServerError(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		create func(c *AdsClient) error
	}{
		{
			name: "keyword",
			path: "/v2/sp/keywords",
			create: func(c *AdsClient) error {
				_, err := c.CreateKeyword(context.Background(), adsdomain.Keyword{
					CampaignID:  "c-1",
					AdGroupID:   "ag-1",
					KeywordText: "running shoes",
					MatchType:   "exact",
					State:       "enabled",
					Bid:         0.75,
				})
				return err
			},
		},
		{
			name: "negativa",
			path: "/v2/sp/negativeKeywords",
			create: func(c *AdsClient) error {
				_, err := c.CreateNegativeKeyword(context.Background(), adsdomain.NegativeKeyword{
					CampaignID:  "c-1",
					KeywordText: "free",
					MatchType:   "negativeExact",
					State:       "enabled",
				})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			var created atomic.Int32
			api.mux.HandleFunc(tt.path, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				// a criação é efetivada e o gateway responde 502
				created.Add(1)
				w.WriteHeader(http.StatusBadGateway)
			})

			err := tt.create(api.client(100, 4))

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrTransientAPI)
			assert.Equal(t, int32(1), created.Load(), "criação não pode ser reenviada")
		})
	}
}

func TestCreateRetriesRateLimit(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v2/sp/keywords", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[{"code":"SUCCESS","keywordId":555}]`)
	})

	id, err := api.client(100, 4).CreateKeyword(context.Background(), adsdomain.Keyword{
		CampaignID:  "c-1",
		AdGroupID:   "ag-1",
		KeywordText: "trail shoes",
		MatchType:   "exact",
		State:       "enabled",
		Bid:         0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "555", id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReportLifecycle(t *testing.T) {
	api := newFakeAPI(t)
	var downloadAuth string
	api.mux.HandleFunc("/reporting/reports", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contentTypeReportRequest, r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{"reportId":"rep-1","status":"PENDING"}`)
	})
	api.mux.HandleFunc("/reporting/reports/rep-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"reportId":"rep-1","status":"COMPLETED","url":"%s/files/rep-1.json.gz"}`, api.server.URL)
	})
	api.mux.HandleFunc("/files/rep-1.json.gz", func(w http.ResponseWriter, r *http.Request) {
		downloadAuth = r.Header.Get("Authorization")
		w.Write(gzipBytes(t, `[{"campaignId":1,"cost":2.5}]`))
	})

	client := api.client(100, 3)
	ctx := context.Background()

	id, err := client.RequestReport(ctx, adsdomain.ReportRequest{Name: "test"})
	require.NoError(t, err)
	assert.Equal(t, "rep-1", id)

	status, err := client.PollReport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", status.RawStatus())

	raw, err := client.DownloadReport(ctx, id, status.DownloadLocation())
	require.NoError(t, err)
	assert.Empty(t, downloadAuth, "URL pré-assinada não recebe credenciais")

	rows, err := DecodeReport(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2.5", rows[0]["cost"])
}

func TestRequestReportMissingID(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/reporting/reports", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"PENDING"}`)
	})

	_, err := api.client(100, 3).RequestReport(context.Background(), adsdomain.ReportRequest{})

	assert.ErrorIs(t, err, domain.ErrFatalAPI)
}

func TestDecodeReport(t *testing.T) {
	csvContent := "campaignId,impressions,cost\n111,1000,12.50\n222,50,0\n"
	jsonContent := `[{"campaignId":123456789012345678,"impressions":10,"cost":1.5,"keywordText":"shoes","extra":null}]`

	tests := []struct {
		name     string
		raw      []byte
		wantRows int
		check    func(t *testing.T, rows []adsdomain.ReportRow)
		wantErr  bool
	}{
		{
			name:     "json gzip preserva ids grandes",
			raw:      gzipBytes(t, jsonContent),
			wantRows: 1,
			check: func(t *testing.T, rows []adsdomain.ReportRow) {
				assert.Equal(t, "123456789012345678", rows[0]["campaignId"])
				assert.Equal(t, "1.5", rows[0]["cost"])
				assert.Equal(t, "", rows[0]["extra"])
			},
		},
		{
			name:     "csv sem compressão",
			raw:      []byte(csvContent),
			wantRows: 2,
			check: func(t *testing.T, rows []adsdomain.ReportRow) {
				assert.Equal(t, "222", rows[1]["campaignId"])
				assert.Equal(t, "12.50", rows[0]["cost"])
			},
		},
		{
			name:     "csv em zip",
			raw:      zipBytes(t, "report.csv", csvContent),
			wantRows: 2,
		},
		{
			name:    "vazio",
			raw:     gzipBytes(t, "  "),
			wantErr: true,
		},
		{
			name:    "json inválido",
			raw:     []byte(`[{"campaignId":`),
			wantErr: true,
		},
		{
			name:    "csv com colunas inconsistentes",
			raw:     []byte("a,b\n1,2,3\n"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := DecodeReport(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			if tt.check != nil {
				tt.check(t, rows)
			}
		})
	}
}

func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func zipBytes(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	file, err := writer.Create(name)
	require.NoError(t, err)
	_, err = file.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestVerifyConnection(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v2/sp/campaigns", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		fmt.Fprint(w, `[{"campaignId":1},{"campaignId":2}]`)
	})

	n, err := api.client(100, 3).VerifyConnection(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
