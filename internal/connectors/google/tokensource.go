// Package google provides shared plumbing for Google API access: OAuth
// token management, rate limiting, and error classification.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// LoadOAuthConfig reads an installed-app client secrets file (the JSON
// downloaded from the Google Cloud console) and returns an oauth2 config
// scoped to read-only Gmail access.
func LoadOAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", credentialsPath, err)
	}

	cfg, err := googleauth.ConfigFromJSON(data, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return cfg, nil
}

// LoadToken reads a cached OAuth token from disk.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return &token, nil
}

// SaveToken writes an OAuth token to disk with restricted permissions.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// NewTokenSource returns a token source backed by the cached token file.
// Refreshed tokens are persisted back to disk so the refresh token keeps
// working across unattended runs. A missing token file means the user has
// not completed the one-time authorisation.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, tokenPath string) (oauth2.TokenSource, error) {
	token, err := LoadToken(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no cached Gmail token at %s, run the auth command first",
				domain.ErrAuthInvalid, tokenPath)
		}
		return nil, err
	}

	return &persistingTokenSource{
		source: cfg.TokenSource(ctx, token),
		path:   tokenPath,
		last:   token.AccessToken,
	}, nil
}

// persistingTokenSource saves the token whenever a refresh produces a new
// access token.
type persistingTokenSource struct {
	mu     sync.Mutex
	source oauth2.TokenSource
	path   string
	last   string
}

// Token implements oauth2.TokenSource.
func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := SaveToken(p.path, token); err != nil {
			logger.Warn("persisting refreshed Gmail token failed: %v", err)
		}
	}
	return token, nil
}

// Authorise runs the one-time interactive flow: the user opens the
// consent URL, pastes the code back, and the exchanged token is cached
// for unattended runs.
func Authorise(ctx context.Context, cfg *oauth2.Config, tokenPath string, readCode func() (string, error)) error {
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	logger.Info("open the following URL in your browser and authorise access:\n\n  %s\n", url)

	code, err := readCode()
	if err != nil {
		return fmt.Errorf("read authorisation code: %w", err)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorisation code: %w", err)
	}

	if err := SaveToken(tokenPath, token); err != nil {
		return err
	}
	logger.Info("token saved to %s", tokenPath)
	return nil
}
