package api

// Authentication endpoints
const (
	AuthGroup = "/api/auth"

	AuthLogin    = "/login/"
	AuthLogout   = "/logout/"
	AuthRegister = "/register/"
	AuthUserInfo = "/user-info/"
	AuthCSRF     = "/csrf/"
)

// Medication catalog and refill endpoints
const (
	MedicationGroup = "/api/medication"

	MedicationCollection = "/"
	MedicationItem       = "/:id/"

	RefillCollection = "/refill/"
	RefillItem       = "/refill/:id/"
	RefillAggregate  = "/refill/aggregate/"
)

const Health = "/healthz"

// Rate limit groups. Each group has its own read and write budget per client.
const (
	RateGroupMedication = "medication"
	RateGroupRefill     = "refill"
)
