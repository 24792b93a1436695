package internaldefs

import (
	sessionkit "github.com/campushq/sessionkit"
)

// CounterDef maps one sessionkit counter to its exported name and help
// text. Shared by every exporter so names stay consistent across formats.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef maps one sessionkit histogram to its exported name and
// help text.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricRefreshSuccess, Name: "sessionkit_refresh_success_total", Help: "Successful token exchanges."},
	{ID: sessionkit.MetricRefreshFailure, Name: "sessionkit_refresh_failure_total", Help: "Failed token exchanges."},
	{ID: sessionkit.MetricRefreshTimeout, Name: "sessionkit_refresh_timeout_total", Help: "Token exchanges that hit the bounded timeout."},
	{ID: sessionkit.MetricRefreshShared, Name: "sessionkit_refresh_shared_total", Help: "Callers that joined an in-flight refresh instead of starting one."},
	{ID: sessionkit.MetricLogout, Name: "sessionkit_logout_total", Help: "Forced and explicit logouts."},
	{ID: sessionkit.MetricCredentialRejected, Name: "sessionkit_credential_rejected_total", Help: "Authenticated requests rejected with 401."},
	{ID: sessionkit.MetricNetworkAuthRequired, Name: "sessionkit_network_auth_required_total", Help: "Authenticated requests rejected with 511."},
	{ID: sessionkit.MetricPermissionDenied, Name: "sessionkit_permission_denied_total", Help: "Authenticated requests denied with 403."},
	{ID: sessionkit.MetricServerError, Name: "sessionkit_server_error_total", Help: "Authenticated requests that saw a 5xx response."},
	{ID: sessionkit.MetricTokenDecodeFailure, Name: "sessionkit_token_decode_failure_total", Help: "Stored access tokens that failed to decode."},
	{ID: sessionkit.MetricHandoffIssued, Name: "sessionkit_handoff_issued_total", Help: "Built cross-domain handoff URLs."},
	{ID: sessionkit.MetricHandoffConsumed, Name: "sessionkit_handoff_consumed_total", Help: "Inbound handoffs that seeded local storage."},
	{ID: sessionkit.MetricHandoffRejected, Name: "sessionkit_handoff_rejected_total", Help: "Handoffs rejected for a dead or missing pair."},
}

// HistogramDefs lists every exported histogram in a stable order.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricRequestLatency, Name: "sessionkit_request_latency_seconds", Help: "Authenticated request latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// core histogram layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are instrument-name-safe renderings of
// [HistogramBounds] for backends that forbid dots in metric names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// required by Prometheus-style histograms.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
