package routes

const (
	// Health
	Health = "/health"

	// Admin endpoints
	AdminLogin            = "/api/v1/admin/login"
	AdminBlocks           = "/api/v1/admin/blocks"
	AdminFlats            = "/api/v1/admin/flats"
	AdminUnoccupiedFlats  = "/api/v1/admin/flats/unoccupied"
	AdminOccupiedFlats    = "/api/v1/admin/flats/occupied"
	AdminPayments         = "/api/v1/admin/payments"
	AdminBillingPeriodRun = "/api/v1/admin/billing/period-start"
	AdminOccupantsListing = "/api/v1/admin/occupants"

	// Public registration data
	FlatsAvailable = "/api/v1/flats/available"

	// Occupant endpoints
	OccupantRegister = "/api/v1/occupants/register"
	OccupantLogin    = "/api/v1/occupants/login"
	OccupantAmount   = "/api/v1/occupant/amount"
	OccupantPay      = "/api/v1/occupant/pay"
	OccupantPayments = "/api/v1/occupant/payments"
	OccupantVacate   = "/api/v1/occupant/vacate"

	// Client endpoints
	ClientRegister = "/api/v1/clients/register"
	ClientLogin    = "/api/v1/clients/login"
	ClientFlats    = "/api/v1/client/flats"
)
