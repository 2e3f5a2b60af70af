package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// DiscoveryPath is appended to the authority to locate provider metadata.
const DiscoveryPath = "/.well-known/openid-configuration"

// Configuration is the provider metadata document.
type Configuration struct {
	Issuer                string   `json:"issuer"`
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	UserInfoEndpoint      string   `json:"userinfo_endpoint,omitempty"`
	EndSessionEndpoint    string   `json:"end_session_endpoint,omitempty"`
	JWKSURI               string   `json:"jwks_uri"`
	ResponseModes         []string `json:"response_modes_supported,omitempty"`
	SigningAlgorithms     []string `json:"id_token_signing_alg_values_supported,omitempty"`
}

// configManager caches metadata and keys fetched over the backchannel.
type configManager struct {
	authority string
	client    *http.Client
	refresh   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	cfg     *Configuration
	jwks    *keyfunc.JWKS
	fetched time.Time
}

func (m *configManager) get(ctx context.Context) (*Configuration, jwt.Keyfunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg != nil && m.now().Sub(m.fetched) < m.refresh {
		return m.cfg, m.jwks.Keyfunc, nil
	}

	cfg, err := m.fetchConfiguration(ctx)
	if err != nil {
		return nil, nil, err
	}
	jwks, err := keyfunc.Get(cfg.JWKSURI, keyfunc.Options{
		Client:         m.client,
		RefreshTimeout: m.client.Timeout,
	})
	if err != nil {
		return nil, nil, errors.Join(ErrDiscovery, fmt.Errorf("jwks: %w", err))
	}

	m.cfg, m.jwks, m.fetched = cfg, jwks, m.now()
	return cfg, jwks.Keyfunc, nil
}

func (m *configManager) fetchConfiguration(ctx context.Context) (*Configuration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.authority+DiscoveryPath, nil)
	if err != nil {
		return nil, errors.Join(ErrDiscovery, err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrDiscovery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Join(ErrDiscovery, fmt.Errorf("status=%d body=%s", resp.StatusCode, body))
	}

	var cfg Configuration
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, errors.Join(ErrDiscovery, fmt.Errorf("decode: %w", err))
	}
	if cfg.AuthorizationEndpoint == "" || cfg.JWKSURI == "" {
		return nil, errors.Join(ErrDiscovery, errors.New("metadata lacks authorization_endpoint or jwks_uri"))
	}
	return &cfg, nil
}
