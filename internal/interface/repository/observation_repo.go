package repository

import (
	"context"
	"fmt"
	"time"

	"flight-price-tracker/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormObservationRepository implements the ObservationRepository interface
type GormObservationRepository struct {
	db *gorm.DB
}

// NewGormObservationRepository creates a new GORM observation repository
func NewGormObservationRepository(db *gorm.DB) *GormObservationRepository {
	return &GormObservationRepository{
		db: db,
	}
}

// PriceObservationRow GORM model for database mapping
type PriceObservationRow struct {
	ID              uint       `gorm:"primaryKey"`
	MessageID       string     `gorm:"column:message_id;size:512;uniqueIndex:idx_observation_message_position"`
	Position        int        `gorm:"column:position;uniqueIndex:idx_observation_message_position"`
	Variant         string     `gorm:"column:variant;size:32"`
	ObservationDate string     `gorm:"column:observation_date"`
	ObservedAt      *time.Time `gorm:"column:observed_at;index"`
	OutboundRoute   string     `gorm:"column:direction1"`
	OutboundDate    string     `gorm:"column:date1"`
	OutboundTime    string     `gorm:"column:time1"`
	ReturnRoute     string     `gorm:"column:direction2"`
	ReturnDate      string     `gorm:"column:date2"`
	ReturnTime      string     `gorm:"column:time2"`
	Price           string     `gorm:"column:price"`
	Label           string     `gorm:"column:label;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the default table name
func (PriceObservationRow) TableName() string {
	return "price_observations"
}

// Migrate creates or updates the observation table
func (r *GormObservationRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&PriceObservationRow{})
}

// SaveAll upserts observations keyed by message and position
func (r *GormObservationRepository) SaveAll(ctx context.Context, observations []entity.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}

	// One upsert statement may not touch the same key twice; a repeated message keeps
	// the slot of its first copy and the values of its last.
	type key struct {
		messageID string
		position  int
	}
	index := make(map[key]int, len(observations))
	rows := make([]PriceObservationRow, 0, len(observations))
	for _, o := range observations {
		k := key{o.MessageID, o.Position}
		if i, ok := index[k]; ok {
			rows[i] = toRow(o)
			continue
		}
		index[k] = len(rows)
		rows = append(rows, toRow(o))
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "position"}},
		UpdateAll: true,
	}).Create(&rows)
	if result.Error != nil {
		return fmt.Errorf("failed to save observations: %w", result.Error)
	}
	return nil
}

// HasMessage reports whether any observation of the message is stored
func (r *GormObservationRepository) HasMessage(ctx context.Context, messageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PriceObservationRow{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up observations of %s: %w", messageID, err)
	}
	return count > 0, nil
}

// List returns every stored observation in the order it was first stored
func (r *GormObservationRepository) List(ctx context.Context) ([]entity.PriceObservation, error) {
	var rows []PriceObservationRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	observations := make([]entity.PriceObservation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, row.toEntity())
	}
	return observations, nil
}

func toRow(o entity.PriceObservation) PriceObservationRow {
	row := PriceObservationRow{
		MessageID:       o.MessageID,
		Position:        o.Position,
		Variant:         string(o.Variant),
		ObservationDate: o.ObservationDate,
		OutboundRoute:   o.OutboundRoute,
		OutboundDate:    o.OutboundDate,
		OutboundTime:    o.OutboundTime,
		ReturnRoute:     o.ReturnRoute,
		ReturnDate:      o.ReturnDate,
		ReturnTime:      o.ReturnTime,
		Price:           o.Price,
		Label:           o.Label,
	}
	if t, ok := o.ObservedAt(); ok {
		row.ObservedAt = &t
	}
	return row
}

func (row PriceObservationRow) toEntity() entity.PriceObservation {
	return entity.PriceObservation{
		MessageID:       row.MessageID,
		Position:        row.Position,
		Variant:         entity.Variant(row.Variant),
		ObservationDate: row.ObservationDate,
		OutboundRoute:   row.OutboundRoute,
		OutboundDate:    row.OutboundDate,
		OutboundTime:    row.OutboundTime,
		ReturnRoute:     row.ReturnRoute,
		ReturnDate:      row.ReturnDate,
		ReturnTime:      row.ReturnTime,
		Price:           row.Price,
		Label:           row.Label,
	}
}
