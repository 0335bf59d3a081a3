package model

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a questionnaire version.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus maps a caller-supplied status string onto the closed
// status domain. Blank input defaults to draft; anything outside the
// domain is rejected.
func ParseStatus(s string) (Status, error) {
	switch status := Status(strings.TrimSpace(s)); status {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusActive, StatusInactive:
		return status, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}
