package adapters

import (
	"time"

	"fire_backend/internal/feature/firedetection/domain/entity"
)

// FireEventModel is the GORM model for the fire_events table.
type FireEventModel struct {
	ID             string    `gorm:"primaryKey;size:64"`
	FireID         string    `gorm:"index;size:32;not null"`
	SessionID      string    `gorm:"index;size:128;not null"`
	Source         string    `gorm:"size:32;not null"`
	Mode           string    `gorm:"size:32;not null"`
	Confidence     float64   `gorm:"not null"`
	FireRatio      float64   `gorm:"not null"`
	MeanBrightness float64   `gorm:"not null"`
	FrameIndex     int       `gorm:"not null"`
	ImagePath      string    `gorm:"size:512"`
	Advisory       string    `gorm:"type:text"`
	DetectedAt     time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (FireEventModel) TableName() string {
	return "fire_events"
}

// ToEntity converts the GORM model to a domain entity.
func (m *FireEventModel) ToEntity() *entity.FireEvent {
	return &entity.FireEvent{
		ID:             m.ID,
		FireID:         m.FireID,
		SessionID:      m.SessionID,
		Source:         m.Source,
		Mode:           entity.Mode(m.Mode),
		Confidence:     m.Confidence,
		FireRatio:      m.FireRatio,
		MeanBrightness: m.MeanBrightness,
		FrameIndex:     m.FrameIndex,
		ImagePath:      m.ImagePath,
		Advisory:       m.Advisory,
		DetectedAt:     m.DetectedAt,
	}
}

// FireEventModelFromEntity converts a domain entity to a GORM model.
func FireEventModelFromEntity(e *entity.FireEvent) *FireEventModel {
	return &FireEventModel{
		ID:             e.ID,
		FireID:         e.FireID,
		SessionID:      e.SessionID,
		Source:         e.Source,
		Mode:           string(e.Mode),
		Confidence:     e.Confidence,
		FireRatio:      e.FireRatio,
		MeanBrightness: e.MeanBrightness,
		FrameIndex:     e.FrameIndex,
		ImagePath:      e.ImagePath,
		Advisory:       e.Advisory,
		DetectedAt:     e.DetectedAt,
	}
}
