package refill

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

var ErrMedicationNotFound = errors.New("medication for refill request not found")

// MedicationLookup reports whether a medication exists.
type MedicationLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type Service struct {
	repository  Repository
	medications MedicationLookup
	log         *zap.Logger
}

func NewService(repo Repository, medications MedicationLookup, log *zap.Logger) *Service {
	return &Service{
		repository:  repo,
		medications: medications,
		log:         log,
	}
}

// scope limits non-admin callers to their own requests.
func scope(caller *identity.Identity) *uint {
	if caller.IsAdmin() {
		return nil
	}
	id := caller.UserID
	return &id
}

func (s *Service) List(ctx context.Context, caller *identity.Identity) ([]RefillRequest, error) {
	return s.repository.List(ctx, scope(caller))
}

func (s *Service) Aggregate(ctx context.Context, caller *identity.Identity) ([]AggregateRow, error) {
	return s.repository.Aggregate(ctx, scope(caller))
}

// Create files a PENDING request by caller. A nil quantity means one.
func (s *Service) Create(ctx context.Context, caller *identity.Identity, medicationID uint, quantity *int) (*RefillRequest, error) {
	qty := 1
	if quantity != nil {
		qty = *quantity
	}
	if qty < 1 {
		return nil, response.NewValidationError().Add("quantity", "Ensure this value is greater than or equal to 1.")
	}

	exists, err := s.medications.Exists(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up medication: %w", err)
	}
	if !exists {
		return nil, ErrMedicationNotFound
	}

	userID := caller.UserID
	req := &RefillRequest{
		UserID:       &userID,
		MedicationID: medicationID,
		Quantity:     qty,
		Status:       StatusPending,
	}
	if err := s.repository.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create refill request: %w", err)
	}

	s.log.Info("refill request created",
		zap.Uint("refill_request_id", req.ID),
		zap.Uint("medication_id", medicationID),
		zap.Uint("user_id", userID))

	return s.repository.Get(ctx, req.ID)
}

// UpdateStatus sets the status of request id. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status Status) (*RefillRequest, error) {
	if !status.Valid() {
		return nil, response.NewValidationError().Add("status", fmt.Sprintf("%q is not a valid choice.", status))
	}

	req, err := s.repository.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.log.Info("refill request status changed",
		zap.Uint("refill_request_id", id),
		zap.String("status", string(status)))
	return req, nil
}
