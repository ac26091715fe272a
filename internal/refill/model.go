package refill

import (
	"time"

	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/medication"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	default:
		return false
	}
}

type RefillRequest struct {
	ID           uint                  `gorm:"primaryKey"`
	UserID       *uint                 `gorm:"index"`
	User         *auth.User            `gorm:"constraint:OnDelete:SET NULL"`
	MedicationID uint                  `gorm:"not null;index"`
	Medication   medication.Medication `gorm:"constraint:OnDelete:CASCADE"`
	Quantity     int                   `gorm:"not null"`
	Status       Status                `gorm:"size:10;not null"`
	RequestedAt  time.Time             `gorm:"autoCreateTime"`
	UpdatedAt    time.Time
}

func (RefillRequest) TableName() string {
	return "refill_requests"
}

func (r *RefillRequest) username() *string {
	if r.User == nil {
		return nil
	}
	name := r.User.Username
	return &name
}

// Payload is the flat wire form returned by create and update.
type Payload struct {
	ID          uint      `json:"id"`
	User        *string   `json:"user"`
	Medication  uint      `json:"medication"`
	Quantity    int       `json:"quantity"`
	Status      Status    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewPayload(r *RefillRequest) Payload {
	return Payload{
		ID:          r.ID,
		User:        r.username(),
		Medication:  r.MedicationID,
		Quantity:    r.Quantity,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// DetailPayload embeds the full medication, as listed.
type DetailPayload struct {
	ID          uint               `json:"id"`
	User        *string            `json:"user"`
	Medication  medication.Payload `json:"medication"`
	Quantity    int                `json:"quantity"`
	Status      Status             `json:"status"`
	RequestedAt time.Time          `json:"requested_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewDetailPayloads(rs []RefillRequest) []DetailPayload {
	out := make([]DetailPayload, 0, len(rs))
	for i := range rs {
		r := &rs[i]
		out = append(out, DetailPayload{
			ID:          r.ID,
			User:        r.username(),
			Medication:  medication.NewPayload(&r.Medication),
			Quantity:    r.Quantity,
			Status:      r.Status,
			RequestedAt: r.RequestedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}

// AggregateRow counts refill requests for one medication.
type AggregateRow struct {
	Name               string `json:"name"`
	RefillRequestCount int64  `json:"refill_request_count"`
}
