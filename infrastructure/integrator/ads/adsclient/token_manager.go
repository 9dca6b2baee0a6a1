package adsclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
)

// expirySkew antecipa a expiração para evitar usar um token prestes a vencer
const expirySkew = 60 * time.Second

// TokenManager mantém o access token da execução. A renovação é feita por
// um único chamador de cada vez; os demais aguardam e reutilizam o novo token.
type TokenManager struct {
	oauth      *oauth2.Config
	creds      config.Credentials
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

func NewTokenManager(cfg config.Ads, creds config.Credentials, httpClient *http.Client) *TokenManager {
	return &TokenManager{
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		creds:      creds,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token devolve um token válido, renovando se estiver expirado
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.valid() {
		return tm.token.AccessToken, nil
	}
	return tm.refreshLocked(ctx)
}

// Refresh força a renovação após um 401. Se outro chamador já trocou o token
// recusado, o token atual é devolvido sem nova chamada.
func (tm *TokenManager) Refresh(ctx context.Context, rejected string) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != nil && tm.token.AccessToken != rejected && tm.valid() {
		return tm.token.AccessToken, nil
	}
	return tm.refreshLocked(ctx)
}

func (tm *TokenManager) valid() bool {
	if tm.token == nil || tm.token.AccessToken == "" {
		return false
	}
	if tm.token.Expiry.IsZero() {
		return true
	}
	return tm.now().Add(expirySkew).Before(tm.token.Expiry)
}

func (tm *TokenManager) refreshLocked(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, tm.httpClient)
	source := tm.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: tm.creds.RefreshToken})

	token, err := source.Token()
	if err != nil {
		authErr := &domain.APIError{Kind: domain.ErrAuth, Operation: "authenticate", Err: err}

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
			authErr.Message = retrieveErr.ErrorDescription
			if retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
				authErr.Kind = domain.ErrTransientAPI
			}
		}

		logrus.WithFields(logrus.Fields{
			"status_code": authErr.StatusCode,
			"error":       err.Error(),
		}).Error("adsclient: falha ao renovar access token")
		return "", authErr
	}

	tm.token = token
	metrics.TokenRefreshes.Inc()

	logrus.WithField("expires_at", token.Expiry.Format(time.RFC3339)).Debug("adsclient: access token renovado")

	return token.AccessToken, nil
}
