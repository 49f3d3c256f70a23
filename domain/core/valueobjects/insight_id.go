package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// InsightID is a value object representing a unique insight identifier
// Value objects are immutable and have no identity beyond their value
type InsightID struct {
	value string
}

// NewInsightIDFromString creates an InsightID from an existing string
func NewInsightIDFromString(id string) (InsightID, error) {
	if id == "" {
		return InsightID{}, errors.New("insight ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return InsightID{}, errors.New("insight ID must be a valid UUID")
	}
	return InsightID{value: id}, nil
}

// String returns the string representation of the InsightID
func (id InsightID) String() string {
	return id.value
}

// Equals checks if two InsightIDs are equal
func (id InsightID) Equals(other InsightID) bool {
	return id.value == other.value
}

// IsZero checks if the InsightID is the zero value
func (id InsightID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id InsightID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *InsightID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("InsightID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
