package config

import "time"

var (
	AppVersion = "v1.1.0"
	AppPort    = "3000"
	AppHost    = "0.0.0.0"
	AppDebug   = false

	// Backend the composer talks to for identity, lookup, accounts and
	// campaign persistence
	BackendBaseURL = "http://localhost:8000"
	BackendTimeout = 30 * time.Second

	// Abandoned wizard sessions are evicted after this much idle time
	SessionTTL           = 30 * time.Minute
	SessionSweepInterval = time.Minute
)
