// Package verification models the segmented one-time-code input of the
// EmailCode step.
package verification

import (
	"strings"

	"onboarding/internal/onboarding/models"
	dErrors "onboarding/pkg/domain-errors"
)

// NoFocus means the input focus stays where it is.
const NoFocus = -1

// Entry is a fixed row of single-digit slots.
type Entry struct {
	slots [models.CodeLength]string
}

// RestoreEntry rebuilds an entry from persisted slots.
func RestoreEntry(slots [models.CodeLength]string) (Entry, error) {
	for _, v := range slots {
		if v != "" && !isDigit(v) {
			return Entry{}, dErrors.New(dErrors.CodeInvalidInput, "verification code slots hold single digits")
		}
	}
	return Entry{slots: slots}, nil
}

// SetDigit writes value into slot i. An empty value clears the slot. A digit
// written below the last slot moves focus to the next one; otherwise the
// returned focus is NoFocus.
func (e *Entry) SetDigit(i int, value string) (int, error) {
	if i < 0 || i >= models.CodeLength {
		return NoFocus, dErrors.New(dErrors.CodeInvalidInput, "code index out of range")
	}
	if value == "" {
		e.slots[i] = ""
		return NoFocus, nil
	}
	if !isDigit(value) {
		return NoFocus, dErrors.New(dErrors.CodeInvalidInput, "code slots accept a single digit")
	}
	e.slots[i] = value
	if i < models.CodeLength-1 {
		return i + 1, nil
	}
	return NoFocus, nil
}

// OnBackspace moves focus to the previous slot when slot i is already empty.
// It never clears anything itself.
func (e *Entry) OnBackspace(i int) (int, error) {
	if i < 0 || i >= models.CodeLength {
		return NoFocus, dErrors.New(dErrors.CodeInvalidInput, "code index out of range")
	}
	if e.slots[i] == "" && i > 0 {
		return i - 1, nil
	}
	return NoFocus, nil
}

// IsComplete reports whether every slot holds a digit.
func (e *Entry) IsComplete() bool {
	for _, v := range e.slots {
		if v == "" {
			return false
		}
	}
	return true
}

// Code joins the slots. It is only meaningful once IsComplete.
func (e *Entry) Code() string {
	return strings.Join(e.slots[:], "")
}

// Digits returns a copy of the slots.
func (e *Entry) Digits() [models.CodeLength]string {
	return e.slots
}

func isDigit(v string) bool {
	return len(v) == 1 && v[0] >= '0' && v[0] <= '9'
}
