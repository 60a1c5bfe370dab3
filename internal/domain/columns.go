package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, a)
}

// SegmentContentList stores per-segment content as a JSON text column.
type SegmentContentList []SegmentContent

// Value implements the driver.Valuer interface for database serialization.
func (l SegmentContentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *SegmentContentList) Scan(value interface{}) error {
	if value == nil {
		*l = SegmentContentList{}
		return nil
	}
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, l)
}

// Value implements the driver.Valuer interface for database serialization.
func (p ReelPlan) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *ReelPlan) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, p)
}

// Value implements the driver.Valuer interface for database serialization.
func (i JobInstructions) Value() (driver.Value, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (i *JobInstructions) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, i)
}

// columnBytes normalizes the raw driver value to a byte slice.
func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column type for JSON field")
	}
}
