package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	ticketIDPrefix = "SATY"
	dateKeyLayout  = "20060102"
)

// DateKey returns the YYYYMMDD key used for per-day sequence counters.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// FormatTicketID builds the external ticket identifier
// SATY-YYYYMMDD-NNNN. The sequence is zero-padded to four digits;
// sequences beyond 9999 widen the field rather than truncate.
func FormatTicketID(t time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", ticketIDPrefix, DateKey(t), sequence)
}

// ParseTicketID recovers the date and sequence from a ticket identifier
// produced by FormatTicketID.
func ParseTicketID(ticketID string) (time.Time, int, error) {
	parts := strings.Split(ticketID, "-")
	if len(parts) != 3 || parts[0] != ticketIDPrefix {
		return time.Time{}, 0, fmt.Errorf("malformed ticket id %q", ticketID)
	}

	date, err := time.Parse(dateKeyLayout, parts[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("malformed ticket id %q: %v", ticketID, err)
	}

	sequence, err := strconv.Atoi(parts[2])
	if err != nil || sequence < 1 {
		return time.Time{}, 0, fmt.Errorf("malformed ticket id %q: bad sequence", ticketID)
	}

	return date, sequence, nil
}
