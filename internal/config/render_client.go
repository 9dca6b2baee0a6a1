package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SecretStorage entrega os secret files de um serviço como nome → conteúdo
type SecretStorage interface {
	ListSecrets(ctx context.Context, serviceID string) (map[string]string, error)
}

type RenderClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewRenderClient(config *Config) *RenderClient {
	return &RenderClient{
		APIKey:     config.Render.APIKey,
		BaseURL:    strings.TrimRight(config.Render.BaseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *RenderClient) ListSecrets(ctx context.Context, serviceID string) (map[string]string, error) {
	url := fmt.Sprintf("%s/services/%s/secret-files?limit=100", c.BaseURL, serviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("config: error list secrets: status %d: %s", resp.StatusCode, body)
	}

	var response []struct {
		SecretFile struct {
			Content string `json:"content"`
			Name    string `json:"name"`
		} `json:"secretFile"`
		Cursor string `json:"cursor"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	secretsMap := make(map[string]string, len(response))
	for _, sf := range response {
		secretsMap[sf.SecretFile.Name] = sf.SecretFile.Content
	}

	return secretsMap, nil
}

// LoadCredentials lê as credenciais dos secret files quando RENDER_SERVICE_ID
// está configurado; caso contrário usa o ambiente
func LoadCredentials(ctx context.Context, cfg *Config, store SecretStorage) (Credentials, error) {
	if cfg.Render.ServiceID == "" || store == nil {
		return CredentialsFromEnv()
	}

	secrets, err := store.ListSecrets(ctx, cfg.Render.ServiceID)
	if err != nil {
		return Credentials{}, fmt.Errorf("config: load credentials: %w", err)
	}

	logrus.WithField("service_id", cfg.Render.ServiceID).Debug("config: credenciais carregadas dos secret files")
	return NewCredentials(secrets)
}
