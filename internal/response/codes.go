// Package response renders every API reply as the {code, data} envelope.
package response

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Outcome names a semantic result; the code table maps it to the wire code.
type Outcome string

const (
	LoginSuccess                  Outcome = "LOGIN_SUCCESS"
	LogoutSuccess                 Outcome = "LOGOUT_SUCCESS"
	RegistrationSuccess           Outcome = "REGISTRATION_SUCCESS"
	MedicationCreated             Outcome = "MEDICATION_CREATED"
	MedicationListSuccess         Outcome = "MEDICATION_LIST_SUCCESS"
	MedicationDetailSuccess       Outcome = "MEDICATION_DETAIL_SUCCESS"
	MedicationUpdated             Outcome = "MEDICATION_UPDATED"
	MedicationDeleted             Outcome = "MEDICATION_DELETED"
	RefillRequestListSuccess      Outcome = "REFILL_REQUEST_LIST_SUCCESS"
	RefillRequestCreated          Outcome = "REFILL_REQUEST_CREATED"
	RefillRequestUpdated          Outcome = "REFILL_REQUEST_UPDATED"
	UserInfoSuccess               Outcome = "USER_INFO_SUCCESS"
	RefillRequestAggregateSuccess Outcome = "REFILL_REQUEST_AGGREGATE_SUCCESS"
	CSRFTokenIssued               Outcome = "CSRF_TOKEN_ISSUED"

	UnexpectedError       Outcome = "UNEXPECTED_ERROR"
	InvalidCredentials    Outcome = "INVALID_CREDENTIALS"
	ValidationFailed      Outcome = "VALIDATION_ERROR"
	TooManyRequests       Outcome = "TOO_MANY_REQUESTS"
	AccountLocked         Outcome = "ACCOUNT_LOCKED"
	NotAuthenticated      Outcome = "NOT_AUTHENTICATED"
	Unauthorized          Outcome = "UNAUTHORIZED"
	Forbidden             Outcome = "FORBIDDEN"
	MedicationNotFound    Outcome = "MEDICATION_NOT_FOUND"
	RefillRequestNotFound Outcome = "REFILL_REQUEST_NOT_FOUND"
	NotFound              Outcome = "NOT_FOUND"
)

var requiredOutcomes = []Outcome{
	LoginSuccess, LogoutSuccess, RegistrationSuccess,
	MedicationCreated, MedicationListSuccess, MedicationDetailSuccess,
	MedicationUpdated, MedicationDeleted,
	RefillRequestListSuccess, RefillRequestCreated, RefillRequestUpdated,
	UserInfoSuccess, RefillRequestAggregateSuccess, CSRFTokenIssued,
	UnexpectedError, InvalidCredentials, ValidationFailed, TooManyRequests,
	AccountLocked, NotAuthenticated, Unauthorized, Forbidden,
	MedicationNotFound, RefillRequestNotFound, NotFound,
}

//go:embed response_codes.json
var defaultCodes []byte

// Table is the immutable outcome -> code mapping loaded at startup.
type Table struct {
	codes map[Outcome]string
}

// LoadTable reads the code table from path, or the embedded default when path
// is empty. Every known outcome must be present.
func LoadTable(path string) (*Table, error) {
	raw := defaultCodes
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read response codes %s: %w", path, err)
		}
		raw = b
	}
	return ParseTable(raw)
}

func ParseTable(raw []byte) (*Table, error) {
	var codes map[Outcome]string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, fmt.Errorf("failed to parse response codes: %w", err)
	}

	var missing []string
	for _, o := range requiredOutcomes {
		if codes[o] == "" {
			missing = append(missing, string(o))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("response codes missing: %s", strings.Join(missing, ", "))
	}

	return &Table{codes: codes}, nil
}

// Code returns the wire code for o. Unknown outcomes fall back to the
// outcome name so a typo is visible instead of silently empty.
func (t *Table) Code(o Outcome) string {
	if c, ok := t.codes[o]; ok {
		return c
	}
	return string(o)
}
