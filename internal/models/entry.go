package models

import (
	"strings"
	"time"
)

// Entry is a single mood-journal record, always scoped to its owner.
type Entry struct {
	ID         string
	UserID     string
	Mood       string
	Note       *string
	RecordedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const MaxNoteLength = 500

// AllowedMoods is the closed set of accepted mood values.
var AllowedMoods = []string{
	"happy", "sad", "angry", "anxious", "calm", "excited", "tired", "neutral",
}

// NormalizeMood matches value case-insensitively against AllowedMoods and
// returns the canonical form, or "" if it is not an allowed mood.
func NormalizeMood(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, allowed := range AllowedMoods {
		if strings.EqualFold(trimmed, allowed) {
			return allowed
		}
	}
	return ""
}
