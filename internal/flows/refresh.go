package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureTransport
	RefreshFailureTimeout
	RefreshFailureStatus
	RefreshFailureBody
	RefreshFailureEmptyToken
	RefreshFailureStore
)

// Exchange responses larger than this are malformed by definition; the
// endpoint returns a two-field JSON object.
const maxExchangeBody = 1 << 20

// RefreshResult carries either the exchanged token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	StatusCode   int
	AccessToken  string
	RefreshToken string
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	// Exchange performs the network call against the token exchange
	// endpoint. The context it receives is bounded by Timeout.
	Exchange func(ctx context.Context, refreshToken string) (*http.Response, error)

	// Timeout bounds the exchange call, including the body read. Zero
	// means 10 seconds.
	Timeout time.Duration

	// WritePair persists the new pair. Both-or-neither semantics are the
	// store's responsibility.
	WritePair func(ctx context.Context, access, refresh string) error
}

// RunRefresh executes one refresh exchange. It never clears existing
// tokens: a failed refresh is reported to the caller, which decides
// whether to force a logout.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := deps.Exchange(exchangeCtx, refreshToken)
	if err != nil {
		kind := RefreshFailureTransport
		if errors.Is(err, context.DeadlineExceeded) {
			kind = RefreshFailureTimeout
		}
		return RefreshResult{Failure: kind, Err: err}
	}

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxExchangeBody))
	_ = resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return RefreshResult{
			Failure:    RefreshFailureStatus,
			Err:        fmt.Errorf("token exchange returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	if readErr != nil {
		kind := RefreshFailureBody
		if errors.Is(readErr, context.DeadlineExceeded) {
			kind = RefreshFailureTimeout
		}
		return RefreshResult{Failure: kind, Err: readErr, StatusCode: resp.StatusCode}
	}

	var body struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return RefreshResult{Failure: RefreshFailureBody, Err: err, StatusCode: resp.StatusCode}
	}
	if body.AccessToken == "" || body.RefreshToken == "" {
		return RefreshResult{
			Failure:    RefreshFailureEmptyToken,
			Err:        errors.New("token exchange response missing access or refresh token"),
			StatusCode: resp.StatusCode,
		}
	}

	if err := deps.WritePair(ctx, body.AccessToken, body.RefreshToken); err != nil {
		return RefreshResult{Failure: RefreshFailureStore, Err: err, StatusCode: resp.StatusCode}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		StatusCode:   resp.StatusCode,
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
}
