// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: HTTP ports, TLS, logging
// level, and so on stay in CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: applyhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// Admin credentials for the review console. The password is hashed
	// at startup and never kept in plaintext beyond config load.
	AdminUser string
	AdminPass string

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (empty disables email sending)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@example.com)
	MailFromName string // From display name (e.g., BHSS Admin)

	// Organization branding used in credential and decision emails.
	OrgName string

	// Base URL for email links; LoginURL is derived from it when unset.
	BaseURL  string
	LoginURL string

	// Public intake rate limiting (per IP).
	SubmitLimit  int
	SubmitWindow time.Duration

	// Login rate limiting.
	LoginIPLimit    int
	LoginIPWindow   time.Duration
	LoginUserLimit  int
	LoginUserWindow time.Duration

	// Audit logging settings: "all", "db", "log", or "off" per category.
	AuditLogAuth   string
	AuditLogReview string

	// Notification dispatcher tuning.
	NotifyQueueSize   int
	NotifySendTimeout time.Duration

	// Database operation timeouts, applied at startup.
	DBTimeoutPing   time.Duration
	DBTimeoutShort  time.Duration
	DBTimeoutMedium time.Duration
	DBTimeoutBatch  time.Duration
}
