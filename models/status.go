package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle flag of master data. Rows are never removed, only
// switched to Inactive.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// ParseStatus accepts any casing; empty means Active.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }
