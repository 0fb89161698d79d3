// Package models defines the domain entities for the expense tracker.
package models

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Categories offered by the front ends. The store treats categories as
// opaque keys and never validates against this list.
const (
	CategoryStaff   = "Staff"
	CategoryTravel  = "Travel"
	CategoryFood    = "Food"
	CategoryUtility = "Utility"
)

// DefaultCategory is used when the user does not pick one.
const DefaultCategory = CategoryStaff

// MaxNotesLength is the maximum number of characters kept for notes.
const MaxNotesLength = 100

// MaxTitleLength is the maximum number of characters kept for a title.
const MaxTitleLength = 80

// Categories lists the categories offered to users, in display order.
var Categories = []string{CategoryStaff, CategoryTravel, CategoryFood, CategoryUtility}

// Expense represents a single expense entry.
type Expense struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Amount     int64      `json:"amount"`
	Category   string     `json:"category"`
	Notes      string     `json:"notes,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	Date       civil.Date `json:"date"`
	ReceiptURI string     `json:"receipt_uri,omitempty"`
}

// HasReceipt reports whether a receipt reference is attached.
func (e Expense) HasReceipt() bool {
	return e.ReceiptURI != ""
}

// TruncateNotes caps notes at MaxNotesLength characters.
func TruncateNotes(notes string) string {
	r := []rune(notes)
	if len(r) <= MaxNotesLength {
		return notes
	}
	return string(r[:MaxNotesLength])
}

// IsKnownCategory reports whether name is one of Categories (case-insensitive)
// and returns its canonical spelling.
func IsKnownCategory(name string) (string, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
