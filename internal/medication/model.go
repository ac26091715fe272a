package medication

import "time"

type Medication struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:100;not null"`
	Dosage       string  `gorm:"size:50;not null"`
	Quantity     int     `gorm:"not null"`
	Instructions *string `gorm:"type:text"`
	Image        *string `gorm:"size:255"`
	AddedByID    *uint   `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Medication) TableName() string {
	return "medications"
}

// Payload is the wire form of a Medication.
type Payload struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Quantity     int       `json:"quantity"`
	Instructions *string   `json:"instructions"`
	Image        *string   `json:"image"`
	AddedBy      *uint     `json:"added_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewPayload(m *Medication) Payload {
	return Payload{
		ID:           m.ID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		Quantity:     m.Quantity,
		Instructions: m.Instructions,
		Image:        m.Image,
		AddedBy:      m.AddedByID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func NewPayloads(ms []Medication) []Payload {
	out := make([]Payload, 0, len(ms))
	for i := range ms {
		out = append(out, NewPayload(&ms[i]))
	}
	return out
}
