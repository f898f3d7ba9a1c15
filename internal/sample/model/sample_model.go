package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/geom"
)

func NewSample(dataset string, vec geom.Point, label float64, class string, createdAt time.Time) Sample {
	return Sample{
		ID:        uuid.New(),
		Dataset:   dataset,
		Vec:       vec,
		Label:     label,
		Class:     class,
		CreatedAt: createdAt,
	}
}

// Sample is one labeled reference point. Class is set for categorical
// datasets, Label for numeric ones.
type Sample struct {
	ID        uuid.UUID  `json:"id"`
	Seq       uint64     `json:"seq"`
	Dataset   string     `json:"dataset"`
	Vec       geom.Point `json:"vector"`
	Label     float64    `json:"label"`
	Class     string     `json:"class,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (s Sample) Categorical() bool {
	return s.Class != ""
}
