// File: internal/domain/personality.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TraitList is an ordered list of trait strings. It is stored as a JSON array
// in a TEXT column; callers only ever see the structured form.
type TraitList []string

func (t TraitList) Value() (driver.Value, error) {
	if t == nil {
		t = TraitList{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TraitList) Scan(value interface{}) error {
	if value == nil {
		*t = TraitList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("traits column holds unexpected type")
	}
	if len(raw) == 0 {
		*t = TraitList{}
		return nil
	}
	return json.Unmarshal(raw, t)
}

// Personality is a named profile (description + traits) used to bias the
// system prompt sent to the completion API.
type Personality struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"-" gorm:"index;not null"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Traits      TraitList `json:"traits" gorm:"type:text"`
	CreatedAt   time.Time `json:"-"`
}
