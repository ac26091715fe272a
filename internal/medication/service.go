package medication

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/response"
)

const blankMessage = "This field may not be blank."

type Service struct {
	repository Repository
	log        *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{
		repository: repo,
		log:        log,
	}
}

type CreateInput struct {
	Name         string
	Dosage       string
	Quantity     int
	Instructions *string
	Image        *string
}

// UpdateInput carries a partial update; nil fields are left alone.
type UpdateInput struct {
	Name         *string
	Dosage       *string
	Quantity     *int
	Instructions *string
	Image        *string
}

func (s *Service) List(ctx context.Context) ([]Medication, error) {
	return s.repository.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*Medication, error) {
	return s.repository.Get(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	return s.repository.Exists(ctx, id)
}

// Create stores a new medication credited to addedBy.
func (s *Service) Create(ctx context.Context, addedBy uint, in CreateInput) (*Medication, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Dosage = strings.TrimSpace(in.Dosage)

	verr := response.NewValidationError()
	if in.Name == "" {
		verr.Add("name", blankMessage)
	}
	if in.Dosage == "" {
		verr.Add("dosage", blankMessage)
	}
	if in.Quantity < 0 {
		verr.Add("quantity", "Ensure this value is greater than or equal to 0.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	m := &Medication{
		Name:         in.Name,
		Dosage:       in.Dosage,
		Quantity:     in.Quantity,
		Instructions: in.Instructions,
		Image:        in.Image,
		AddedByID:    &addedBy,
	}
	if err := s.repository.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	s.log.Info("medication created",
		zap.Uint("medication_id", m.ID),
		zap.String("name", m.Name),
		zap.Uint("added_by", addedBy))
	return m, nil
}

// Update applies the supplied fields of in to medication id.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*Medication, error) {
	verr := response.NewValidationError()
	changes := make(map[string]interface{})

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			verr.Add("name", blankMessage)
		}
		changes["name"] = name
	}
	if in.Dosage != nil {
		dosage := strings.TrimSpace(*in.Dosage)
		if dosage == "" {
			verr.Add("dosage", blankMessage)
		}
		changes["dosage"] = dosage
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			verr.Add("quantity", "Ensure this value is greater than or equal to 0.")
		}
		changes["quantity"] = *in.Quantity
	}
	if in.Instructions != nil {
		changes["instructions"] = in.Instructions
	}
	if in.Image != nil {
		changes["image"] = in.Image
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	m, err := s.repository.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.log.Info("medication updated",
		zap.Uint("medication_id", id),
		zap.Int("fields", len(changes)))
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("medication deleted", zap.Uint("medication_id", id))
	return nil
}
