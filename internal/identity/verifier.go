package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ms-park-access/internal/logger"
)

var (
	// ErrUnknownHolder means the registry answered and the holder does not exist.
	ErrUnknownHolder = errors.New("holder not found in registry")
	// ErrVerificationUnavailable means the registry could not be reached or gave
	// an unexpected answer. Issuance fails closed on this.
	ErrVerificationUnavailable = errors.New("identity verification unavailable")
)

// Verifier checks holder identifiers against the registry service. The call is
// routed through the API gateway like every other cross-service request.
type Verifier struct {
	client  *http.Client
	baseURL string
	logger  *logger.Logger
}

// NewVerifier creates a Verifier bound to the gateway base URL. The timeout
// bounds every lookup end to end.
func NewVerifier(gatewayURL string, timeout time.Duration, log *logger.Logger) *Verifier {
	for len(gatewayURL) > 0 && gatewayURL[len(gatewayURL)-1] == '/' {
		gatewayURL = gatewayURL[:len(gatewayURL)-1]
	}
	return &Verifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: gatewayURL,
		logger:  log,
	}
}

// VerifyHolder returns nil when the holder exists, ErrUnknownHolder when the
// registry reports the holder does not exist, and ErrVerificationUnavailable
// for anything else.
func (v *Verifier) VerifyHolder(ctx context.Context, holderID string) error {
	url := fmt.Sprintf("%s/registry/%s", v.baseURL, holderID)
	v.logger.Debug("IDENTITY", fmt.Sprintf("Verifying holder: %s", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create registry request: %w", ErrVerificationUnavailable)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("IDENTITY", fmt.Sprintf("Registry unreachable: %v", err))
		return fmt.Errorf("registry unreachable: %w", ErrVerificationUnavailable)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			v.logger.Error("IDENTITY", fmt.Sprintf("Failed to close registry response body: %v", err))
		}
	}(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		v.logger.Info("IDENTITY", fmt.Sprintf("Holder %s verified via gateway", holderID))
		return nil
	case http.StatusNotFound:
		v.logger.Warn("IDENTITY", fmt.Sprintf("Holder %s not found in registry", holderID))
		return ErrUnknownHolder
	default:
		v.logger.Error("IDENTITY", fmt.Sprintf("Registry returned status: %d", resp.StatusCode))
		return fmt.Errorf("registry returned status %d: %w", resp.StatusCode, ErrVerificationUnavailable)
	}
}
