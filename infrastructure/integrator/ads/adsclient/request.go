package adsclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
	"github.com/vfg2006/ppc-automation/pkg/retry"
)

const (
	headerClientID = "Amazon-Advertising-API-ClientId"
	headerScope    = "Amazon-Advertising-API-Scope"

	contentTypeJSON = "application/json"
)

type request struct {
	operation   string
	method      string
	path        string // caminho relativo ao BaseURL ou URL absoluta
	query       url.Values
	body        any
	contentType string
	accept      string
	anonymous   bool // downloads em URL pré-assinada não levam credenciais

	// criações não são idempotentes: só 429 é reexecutado, já que após um 5xx
	// ou timeout a entidade pode ter sido criada
	nonIdempotent bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// send executa a requisição com rate limit, retry e no máximo uma
// reautenticação por chamada
func (c *AdsClient) send(ctx context.Context, req request) ([]byte, error) {
	reauthenticated := false

	policy := c.retry
	if req.nonIdempotent {
		policy = policy.RateLimitOnly()
	}

	return retry.Do(ctx, policy, req.operation, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		token := ""
		if !req.anonymous {
			var err error
			if token, err = c.tokens.Token(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.roundTrip(ctx, req, token)
		if err != nil {
			return nil, err
		}

		if resp.status == http.StatusUnauthorized && !req.anonymous {
			if reauthenticated {
				return nil, domain.NewAPIError(domain.ErrAuth, req.operation, resp.status, errorText(resp.body))
			}
			reauthenticated = true

			logrus.WithField("operation", req.operation).Warn("adsclient: 401 recebido, renovando token")

			if token, err = c.tokens.Refresh(ctx, token); err != nil {
				return nil, err
			}
			if err := c.limiter.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			if resp, err = c.roundTrip(ctx, req, token); err != nil {
				return nil, err
			}
			if resp.status == http.StatusUnauthorized {
				return nil, domain.NewAPIError(domain.ErrAuth, req.operation, resp.status, errorText(resp.body))
			}
		}

		return classify(req.operation, resp)
	})
}

// roundTrip envia uma única requisição HTTP. Depois de enviada, ela termina
// mesmo que a execução seja cancelada; o timeout do http.Client a limita.
func (c *AdsClient) roundTrip(ctx context.Context, req request, token string) (*response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := req.path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = strings.TrimRight(c.cfg.BaseURL, "/") + req.path
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(context.WithoutCancel(ctx), req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.operation, err)
	}

	if !req.anonymous {
		httpReq.Header.Set("Authorization", "Bearer "+token)
		httpReq.Header.Set(headerClientID, c.creds.ClientID)
		httpReq.Header.Set(headerScope, c.creds.ProfileID)
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", firstNonEmpty(req.contentType, contentTypeJSON))
	}
	httpReq.Header.Set("Accept", firstNonEmpty(req.accept, contentTypeJSON))

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.APIRequests.WithLabelValues(req.operation, "error").Inc()
		logrus.WithFields(logrus.Fields{
			"operation": req.operation,
			"timeout":   isTimeout(err),
			"error":     err.Error(),
		}).Warn("adsclient: falha de rede")
		return nil, &domain.APIError{Kind: domain.ErrTransientAPI, Operation: req.operation, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &domain.APIError{Kind: domain.ErrTransientAPI, Operation: req.operation, StatusCode: httpResp.StatusCode, Err: err}
	}

	metrics.APIRequests.WithLabelValues(req.operation, strconv.Itoa(httpResp.StatusCode)).Inc()
	logrus.WithFields(logrus.Fields{
		"operation":   req.operation,
		"status_code": httpResp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("adsclient: resposta recebida")

	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

func classify(operation string, resp *response) ([]byte, error) {
	switch {
	case resp.status >= 200 && resp.status < 300:
		return resp.body, nil
	case resp.status == http.StatusTooManyRequests:
		return nil, &domain.APIError{
			Kind:       domain.ErrRateLimitExceeded,
			Operation:  operation,
			StatusCode: resp.status,
			Message:    errorText(resp.body),
			RetryAfter: parseRetryAfter(resp.header.Get("Retry-After")),
		}
	case resp.status == http.StatusRequestTimeout || resp.status >= http.StatusInternalServerError:
		return nil, domain.NewAPIError(domain.ErrTransientAPI, operation, resp.status, errorText(resp.body))
	case resp.status == http.StatusUnauthorized:
		return nil, domain.NewAPIError(domain.ErrAuth, operation, resp.status, errorText(resp.body))
	default:
		return nil, domain.NewAPIError(domain.ErrFatalAPI, operation, resp.status, errorText(resp.body))
	}
}

// decode converte o corpo da resposta. Corpo inválido não é reexecutado.
func decode(operation string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.APIError{Kind: domain.ErrFatalAPI, Operation: operation, Message: "malformed response", Err: err}
	}
	return nil
}

func errorText(body []byte) string {
	var errResp adsdomain.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Text() != "" {
		return errResp.Text()
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return time.Until(at)
	}
	return 0
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
