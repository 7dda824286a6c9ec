package stats

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ConversionRecord is stored for every finished sticker conversion.
type ConversionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Animated    bool      `gorm:"index" json:"animated"`
	InputKind   string    `gorm:"size:16" json:"input_kind"`
	InputBytes  int       `json:"input_bytes"`
	OutputBytes int       `json:"output_bytes"`
	Attempts    int       `json:"attempts"`
	Oversized   bool      `json:"oversized"`
	Outcome     Outcome   `gorm:"size:16;index" json:"outcome"`
	Error       string    `gorm:"size:512" json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ConversionRecord) TableName() string {
	return "sticker_conversions"
}

// Summary aggregates the conversion history.
type Summary struct {
	Total       int64      `json:"total"`
	Static      int64      `json:"static"`
	Animated    int64      `json:"animated"`
	Failed      int64      `json:"failed"`
	Oversized   int64      `json:"oversized"`
	OutputBytes int64      `json:"output_bytes"`
	LastAt      *time.Time `json:"last_at,omitempty"`
}

type IStatsRepository interface {
	Record(ctx context.Context, record ConversionRecord) error
	Summary(ctx context.Context) (Summary, error)
	Close() error
}
