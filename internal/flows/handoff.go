package flows

import (
	"context"
	"errors"
	"net/url"
)

// Handoff URL query parameters. The receiving domain strips exactly
// these keys after consumption.
const (
	ParamSSO          = "sso"
	ParamAccessToken  = "accessToken"
	ParamRefreshToken = "refreshToken"
	ParamRedirect     = "redirect"
)

// HandoffFailureKind classifies handoff flow failures for root-level mapping.
type HandoffFailureKind int

const (
	HandoffFailureNone HandoffFailureKind = iota
	HandoffFailureNoSession
	HandoffFailureExpired
	HandoffFailureStore
)

// BuildHandoffResult carries the handoff URL or failure metadata.
type BuildHandoffResult struct {
	Failure HandoffFailureKind
	Err     error
	URL     string
}

// BuildHandoffDeps captures outbound handoff dependencies.
type BuildHandoffDeps struct {
	// ReadPair returns the locally stored pair; ok is false when either
	// token is absent.
	ReadPair func(ctx context.Context) (access, refresh string, ok bool, err error)

	// IsLive reports whether the access token is currently non-expired.
	IsLive func(access string) bool
}

// RunBuildHandoff serializes the current pair into a sibling-domain URL.
// A dead session is never handed off.
func RunBuildHandoff(ctx context.Context, targetDomain, redirectPath string, deps BuildHandoffDeps) BuildHandoffResult {
	access, refresh, ok, err := deps.ReadPair(ctx)
	if err != nil {
		return BuildHandoffResult{Failure: HandoffFailureNoSession, Err: err}
	}
	if !ok {
		return BuildHandoffResult{
			Failure: HandoffFailureNoSession,
			Err:     errors.New("no stored session to hand off"),
		}
	}
	if !deps.IsLive(access) {
		return BuildHandoffResult{
			Failure: HandoffFailureExpired,
			Err:     errors.New("stored access token is expired"),
		}
	}

	query := url.Values{}
	query.Set(ParamSSO, "true")
	query.Set(ParamAccessToken, access)
	query.Set(ParamRefreshToken, refresh)
	if redirectPath != "" {
		query.Set(ParamRedirect, redirectPath)
	}

	target := url.URL{
		Scheme:   "https",
		Host:     targetDomain,
		Path:     "/",
		RawQuery: query.Encode(),
	}
	return BuildHandoffResult{Failure: HandoffFailureNone, URL: target.String()}
}

// ConsumeHandoffResult carries the outcome of an inbound handoff check.
type ConsumeHandoffResult struct {
	Failure  HandoffFailureKind
	Err      error
	Consumed bool

	// CleanURL is the URL the caller should replace the visible location
	// with. On consumption it has the handoff parameters stripped (only
	// the redirect hint survives); otherwise it is the input unchanged.
	CleanURL *url.URL
}

// ConsumeHandoffDeps captures inbound handoff dependencies.
type ConsumeHandoffDeps struct {
	IsLive    func(access string) bool
	WritePair func(ctx context.Context, access, refresh string) error
}

// RunConsumeHandoff checks u for the handoff marker and, when the carried
// access token is live, seeds storage and scrubs the URL. Safe to call on
// every page load: no marker is a clean no-op.
func RunConsumeHandoff(ctx context.Context, u *url.URL, deps ConsumeHandoffDeps) ConsumeHandoffResult {
	query := u.Query()
	if query.Get(ParamSSO) != "true" {
		return ConsumeHandoffResult{Failure: HandoffFailureNone, CleanURL: u}
	}

	access := query.Get(ParamAccessToken)
	refresh := query.Get(ParamRefreshToken)
	if access == "" || refresh == "" || !deps.IsLive(access) {
		// Leave the URL alone so the caller can surface an auth error.
		return ConsumeHandoffResult{
			Failure:  HandoffFailureExpired,
			Err:      errors.New("handoff carries an expired or incomplete pair"),
			CleanURL: u,
		}
	}

	if err := deps.WritePair(ctx, access, refresh); err != nil {
		return ConsumeHandoffResult{Failure: HandoffFailureStore, Err: err, CleanURL: u}
	}

	clean := *u
	query.Del(ParamSSO)
	query.Del(ParamAccessToken)
	query.Del(ParamRefreshToken)
	clean.RawQuery = query.Encode()

	return ConsumeHandoffResult{Failure: HandoffFailureNone, Consumed: true, CleanURL: &clean}
}
