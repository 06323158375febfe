package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap is a free-form JSON object column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		if s, isStr := src.(string); isStr {
			data = []byte(s)
		} else {
			return errors.New("unsupported type for JSONMap")
		}
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}
