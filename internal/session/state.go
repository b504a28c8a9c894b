package session

import "time"

// PromptKind is the confirmation or entry a session is waiting on. At most
// one prompt is active; setting a new one abandons the previous one.
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptRespawnConfirm
	PromptGodModeExitConfirm
	PromptRestartConfirm
	PromptPasswordEntry
	PromptReloadConfirm
)

func (k PromptKind) String() string {
	switch k {
	case PromptNone:
		return "none"
	case PromptRespawnConfirm:
		return "respawn-confirm"
	case PromptGodModeExitConfirm:
		return "god-exit-confirm"
	case PromptRestartConfirm:
		return "restart-confirm"
	case PromptPasswordEntry:
		return "password-entry"
	case PromptReloadConfirm:
		return "reload-confirm"
	}
	return "unknown"
}

// maxPassword bounds the password entry buffer.
const maxPassword = 64

// Feedback is a banner shown until Expiry.
type Feedback struct {
	Text   string
	Expiry time.Time
}

// Active reports whether the banner should still be shown at now.
func (f Feedback) Active(now time.Time) bool {
	return f.Text != "" && now.Before(f.Expiry)
}

// State is the per-connection input state.
type State struct {
	Prompt   PromptKind
	Feedback Feedback
	GodMode  bool
	Cols     int
	Rows     int

	password []byte
}

// SetPrompt replaces the active prompt and discards any typed password.
func (s *State) SetPrompt(k PromptKind) {
	s.Prompt = k
	clear(s.password)
	s.password = s.password[:0]
}

// Expire drops the feedback banner once it has timed out.
func (s *State) Expire(now time.Time) {
	if s.Feedback.Text != "" && !now.Before(s.Feedback.Expiry) {
		s.Feedback = Feedback{}
	}
}
