// Package values contains domain value objects that encapsulate
// primitive types with validation.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// BuildID uniquely identifies one export invocation.
// It names the invocation's scratch workspace and tags every log line of the run.
type BuildID struct {
	value uuid.UUID
}

// NewBuildID creates a new random build ID
func NewBuildID() BuildID {
	return BuildID{value: uuid.New()}
}

// ParseBuildID parses a string into a BuildID
func ParseBuildID(s string) (BuildID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BuildID{}, fmt.Errorf("invalid build ID: %w", err)
	}
	return BuildID{value: id}, nil
}

// MustParseBuildID parses a string or panics (for tests only)
func MustParseBuildID(s string) BuildID {
	id, err := ParseBuildID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (b BuildID) String() string {
	return b.value.String()
}

// Short returns the first eight hex digits, used for directory names.
func (b BuildID) Short() string {
	return b.value.String()[:8]
}

// IsZero returns true if this is the zero value
func (b BuildID) IsZero() bool {
	return b.value == uuid.Nil
}

// Equals checks if two BuildIDs are equal
func (b BuildID) Equals(other BuildID) bool {
	return b.value == other.value
}

// MarshalJSON implements json.Marshaler
func (b BuildID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (b *BuildID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid build ID JSON")
	}
	s = s[1 : len(s)-1]

	id, err := ParseBuildID(s)
	if err != nil {
		return err
	}
	*b = id
	return nil
}

// MarshalYAML implements yaml.BytesMarshaler
func (b BuildID) MarshalYAML() ([]byte, error) {
	return []byte(b.value.String()), nil
}
