package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store represents the canonical tenant model.
type Store struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string    `gorm:"column:name;not null"`
	NameSlug           string    `gorm:"column:name_slug;not null"`
	CustomPath         *string   `gorm:"column:custom_path"`
	Email              *string   `gorm:"column:email"`
	BackInStockEnabled bool      `gorm:"column:back_in_stock_enabled;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// StorefrontPath resolves the public path segment for the store: the owner's
// custom path when set, else the name-derived slug, else the store id.
func (s Store) StorefrontPath() string {
	if s.CustomPath != nil {
		if path := strings.TrimSpace(*s.CustomPath); path != "" {
			return path
		}
	}
	if slug := strings.TrimSpace(s.NameSlug); slug != "" {
		return slug
	}
	return s.ID.String()
}
