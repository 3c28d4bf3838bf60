package constants

import "time"

// Session roles carried in the "role" claim.
const (
	RoleAdmin    = "admin"
	RoleOccupant = "occupant"
	RoleClient   = "client"
)

// Scheduled work
const (
	BillingBoundaryTimeout = 10 * time.Minute
	ShutdownTimeout        = 15 * time.Second
	ReceiptSendTimeout     = 20 * time.Second
)

// Request limits
const (
	MaxRequestBodyBytes = 1 << 20
)

// CORS
const (
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)
