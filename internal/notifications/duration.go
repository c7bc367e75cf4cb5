package notifications

import (
	"fmt"
	"time"
)

// leadKind is the reminder code understood by the mobile clients.
type leadKind int

const (
	lead5Minutes leadKind = iota
	lead10Minutes
	lead15Minutes
	lead30Minutes
	leadHour
	leadDay
)

func mapToLeadKind(d time.Duration) (leadKind, error) {
	switch d {
	case 5 * time.Minute:
		return lead5Minutes, nil
	case 10 * time.Minute:
		return lead10Minutes, nil
	case 15 * time.Minute:
		return lead15Minutes, nil
	case 30 * time.Minute:
		return lead30Minutes, nil
	case time.Hour:
		return leadHour, nil
	case 24 * time.Hour:
		return leadDay, nil
	default:
		return 0, fmt.Errorf("unsupported reminder lead: %v", d)
	}
}
