// Package gorm provides GORM model definitions and repository
// implementations for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CallerModel represents the GORM model for caller accounts
type CallerModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tier                 string    `gorm:"type:varchar(20);not null;default:'FREE'"`
	GenerationsThisMonth int64     `gorm:"not null;default:0"`
	LastResetAt          time.Time `gorm:"not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// GeneratedRecipeModel represents the GORM model for persisted recipes
type GeneratedRecipeModel struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey"`
	TargetID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex"`
	OwnerID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	Title        string      `gorm:"type:varchar(255);not null"`
	Description  string      `gorm:"type:text"`
	Servings     int         `gorm:"default:2"`
	PrepTime     string      `gorm:"type:varchar(50)"`
	CookTime     string      `gorm:"type:varchar(50)"`
	Ingredients  JSONField   `gorm:"type:jsonb"`
	Instructions string      `gorm:"type:text"`
	Nutrients    StringMap   `gorm:"type:jsonb"`
	Systems      StringSlice `gorm:"type:jsonb"`
	Model        string      `gorm:"type:varchar(100)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StringSlice custom type for handling JSON string arrays
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// StringMap custom type for handling JSON string-to-string objects
type StringMap map[string]string

// Scan implements the sql.Scanner interface
func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = StringMap{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into StringMap", value)
	}
}

// Value implements the driver.Valuer interface
func (m StringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// JSONField custom type for handling arbitrary JSON values
type JSONField json.RawMessage

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = JSONField(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "[]", nil
	}
	return []byte(j), nil
}

// TableName methods for custom table names
func (CallerModel) TableName() string {
	return "callers"
}

func (GeneratedRecipeModel) TableName() string {
	return "generated_recipes"
}

// BeforeCreate hook for CallerModel
func (c *CallerModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for GeneratedRecipeModel
func (r *GeneratedRecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
