package game

import (
	"time"

	"lifeserve/internal/core"
)

// Reason is a machine-readable outcome code for lifecycle operations. The
// session layer maps reasons to display strings.
type Reason string

const (
	ReasonOK            Reason = "OK"
	ReasonNoSpace       Reason = "NO_SPACE"
	ReasonCooldown      Reason = "COOLDOWN"
	ReasonUnknownPlayer Reason = "UNKNOWN_PLAYER"
	ReasonPartial       Reason = "PARTIAL"
	ReasonInternal      Reason = "INTERNAL"
)

// Error carries a Reason through error chains.
type Error struct {
	Reason  Reason
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Is reports whether target is an *Error with the same reason.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Reason == t.Reason
	}
	return false
}

// Sentinel errors for errors.Is matching.
var (
	ErrNoSpace       = &Error{Reason: ReasonNoSpace, Message: "no free spawn location"}
	ErrUnknownPlayer = &Error{Reason: ReasonUnknownPlayer, Message: "unknown player"}
	ErrInternal      = &Error{Reason: ReasonInternal, Message: "internal state inconsistency"}
)

// PlacementResult reports the outcome of placing a player's spawn pattern.
type PlacementResult struct {
	OK       bool
	Reason   Reason
	Anchor   core.Point
	Attempts int
	Disrupt  bool
}

// Err converts a failed result into an error.
func (r PlacementResult) Err() error {
	if r.OK {
		return nil
	}
	switch r.Reason {
	case ReasonUnknownPlayer:
		return ErrUnknownPlayer
	case ReasonInternal:
		return ErrInternal
	}
	return ErrNoSpace
}

// ResetReason distinguishes a manual god-mode reset from the automatic reset
// at the end of a round.
type ResetReason int

const (
	// ResetManual is requested by a god-mode player and zeroes all wins.
	ResetManual ResetReason = iota
	// ResetRoundEnd follows round-end scoring and keeps wins.
	ResetRoundEnd
)

// String names the reset reason for logs.
func (r ResetReason) String() string {
	if r == ResetRoundEnd {
		return "round-end"
	}
	return "manual"
}

// ResetResult reports a full board reset.
type ResetResult struct {
	OK       bool
	Reason   Reason
	Cause    ResetReason
	Placed   map[string]int
	Unplaced []int
}

// RespawnResult reports the outcome of a respawn request.
type RespawnResult struct {
	OK        bool
	Reason    Reason
	Remaining time.Duration
	Position  core.Point
	// Reset is set when the respawn was a god-mode full board reset.
	Reset *ResetResult
}

// RoundSummary reports a finished round.
type RoundSummary struct {
	Round       int
	Winner      int
	WinnerLead  int
	Generations int
	Reset       ResetResult
}

// TickReport summarises one simulation tick.
type TickReport struct {
	Generation int
	Live       int
	// Leader is the player credited with this generation in the lead, even
	// when the tick went on to end the round.
	Leader     int
	Stable     bool
	// BecameStable and Destabilized mark transitions of the detector.
	BecameStable bool
	Destabilized bool
	Round        *RoundSummary
}
