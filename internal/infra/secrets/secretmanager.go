// internal/infra/secrets/secretmanager.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("secrets: secret manager not configured")

// Provider reads secret payloads from Google Secret Manager.
type Provider struct {
	sm        *secretmanager.Client
	projectID string
}

func NewProvider(ctx context.Context, projectID string, opts ...option.ClientOption) (*Provider, error) {
	sm, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secrets: new client: %w", err)
	}
	return &Provider{sm: sm, projectID: strings.TrimSpace(projectID)}, nil
}

// Access returns the latest version of secretID, trimmed.
func (p *Provider) Access(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.sm == nil {
		return "", ErrNotConfigured
	}
	sid := strings.TrimSpace(secretID)
	if sid == "" {
		return "", errors.New("secrets: secretID is empty")
	}
	if p.projectID == "" {
		return "", errors.New("secrets: projectID is empty")
	}

	name := "projects/" + p.projectID + "/secrets/" + sid + "/versions/latest"
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secrets: access %s: %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secrets: empty payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Resolve returns direct when set, otherwise the secret's value. Both empty
// yields "" without error.
func (p *Provider) Resolve(ctx context.Context, direct, secretID string) (string, error) {
	if v := strings.TrimSpace(direct); v != "" {
		return v, nil
	}
	if strings.TrimSpace(secretID) == "" {
		return "", nil
	}
	return p.Access(ctx, secretID)
}

func (p *Provider) Close() error {
	if p == nil || p.sm == nil {
		return nil
	}
	return p.sm.Close()
}
