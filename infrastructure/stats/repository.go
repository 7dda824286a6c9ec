package stats

import (
	"context"
	"fmt"

	domainStats "github.com/AzielCF/piebot/domains/stats"
	"gorm.io/gorm"
)

// Repository persists conversion records with gorm.
type Repository struct {
	db *gorm.DB
}

var _ domainStats.IStatsRepository = (*Repository)(nil)

// NewRepository migrates the conversion table and returns the repository.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&domainStats.ConversionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sticker_conversions: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Record(ctx context.Context, record domainStats.ConversionRecord) error {
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	return nil
}

type summaryRow struct {
	Total       int64
	Animated    int64
	Failed      int64
	Oversized   int64
	OutputBytes int64
}

func (r *Repository) Summary(ctx context.Context) (domainStats.Summary, error) {
	var row summaryRow
	err := r.db.WithContext(ctx).
		Model(&domainStats.ConversionRecord{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN animated THEN 1 ELSE 0 END), 0) AS animated,
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0) AS failed,
			COALESCE(SUM(CASE WHEN oversized THEN 1 ELSE 0 END), 0) AS oversized,
			COALESCE(SUM(output_bytes), 0) AS output_bytes`, domainStats.OutcomeFailure).
		Scan(&row).Error
	if err != nil {
		return domainStats.Summary{}, fmt.Errorf("failed to summarize conversions: %w", err)
	}

	summary := domainStats.Summary{
		Total:       row.Total,
		Static:      row.Total - row.Animated,
		Animated:    row.Animated,
		Failed:      row.Failed,
		Oversized:   row.Oversized,
		OutputBytes: row.OutputBytes,
	}

	var last domainStats.ConversionRecord
	res := r.db.WithContext(ctx).Order("created_at DESC").Limit(1).Find(&last)
	if res.Error != nil {
		return summary, fmt.Errorf("failed to read last conversion: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		at := last.CreatedAt
		summary.LastAt = &at
	}
	return summary, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
