package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray stores an ordered string list as a JSON column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}
	if value == nil {
		*a = []string{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*a = []string{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return fmt.Errorf("models.StringArray: %w", err)
	}
	*a = arr
	return nil
}

// Float32Array stores an embedding vector as a JSON column.
type Float32Array []float32

func (a Float32Array) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]float32(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Float32Array) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.Float32Array: Scan on nil pointer")
	}
	if value == nil {
		*a = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models.Float32Array: unsupported Scan type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*a = nil
		return nil
	}

	var arr []float32
	if err := json.Unmarshal(raw, &arr); err != nil {
		return fmt.Errorf("models.Float32Array: %w", err)
	}
	*a = arr
	return nil
}
