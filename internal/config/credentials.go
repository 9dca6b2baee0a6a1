package config

import (
	"os"
	"sort"
	"strings"

	"github.com/vfg2006/ppc-automation/internal/domain"
)

// Chaves obrigatórias do mapa de credenciais
const (
	KeyClientID     = "AMAZON_CLIENT_ID"
	KeyClientSecret = "AMAZON_CLIENT_SECRET"
	KeyRefreshToken = "AMAZON_REFRESH_TOKEN"
	KeyProfileID    = "AMAZON_PROFILE_ID"
)

var credentialKeys = []string{KeyClientID, KeyClientSecret, KeyRefreshToken, KeyProfileID}

// Credentials ficam apenas em memória durante a execução
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	ProfileID    string
}

// NewCredentials monta as credenciais a partir do mapa entregue pelo cofre
// de segredos. Qualquer chave ausente ou vazia é erro de validação.
func NewCredentials(secrets map[string]string) (Credentials, error) {
	var missing []string
	for _, key := range credentialKeys {
		if strings.TrimSpace(secrets[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Credentials{}, domain.NewValidationError("credentials", "missing keys: %s", strings.Join(missing, ", "))
	}

	return Credentials{
		ClientID:     strings.TrimSpace(secrets[KeyClientID]),
		ClientSecret: strings.TrimSpace(secrets[KeyClientSecret]),
		RefreshToken: strings.TrimSpace(secrets[KeyRefreshToken]),
		ProfileID:    strings.TrimSpace(secrets[KeyProfileID]),
	}, nil
}

// CredentialsFromEnv lê as quatro chaves do ambiente
func CredentialsFromEnv() (Credentials, error) {
	secrets := make(map[string]string, len(credentialKeys))
	for _, key := range credentialKeys {
		secrets[key] = os.Getenv(key)
	}
	return NewCredentials(secrets)
}
