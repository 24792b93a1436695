package sessionkit

import (
	"net/http"
	"time"
)

// SecurityReport is a snapshot of the storage and refresh security
// posture, suitable for startup logging or an ops endpoint. It contains
// configuration facts only, never token material.
type SecurityReport struct {
	ProductionMode     bool
	SecureCookies      bool
	SameSitePolicy     http.SameSite
	SharedDomainScoped bool
	StoreWriteTTL      time.Duration
	RefreshTimeout     time.Duration
	DiagnosticsEnabled bool
	MetricsEnabled     bool
	StaffRoleCount     int
	LearnerRoleCount   int
}

// SecurityReport reports the manager's effective security posture.
func (m *Manager) SecurityReport() SecurityReport {
	return SecurityReport{
		ProductionMode:     m.config.Security.ProductionMode,
		SecureCookies:      m.config.Security.SecureCookies,
		SameSitePolicy:     m.config.Security.SameSitePolicy,
		SharedDomainScoped: m.config.Store.SharedDomain != "",
		StoreWriteTTL:      m.config.Store.WriteTTL,
		RefreshTimeout:     m.config.Refresh.Timeout,
		DiagnosticsEnabled: m.config.Diagnostics.Enabled,
		MetricsEnabled:     m.config.Metrics.Enabled,
		StaffRoleCount:     len(m.config.Roles.StaffRoles),
		LearnerRoleCount:   len(m.config.Roles.LearnerRoles),
	}
}
