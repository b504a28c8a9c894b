package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lifeserve/internal/game"
	"lifeserve/internal/ui"
)

// Control bytes understood by the input machine.
const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

// handleInputLocked feeds chunk through the session's state machine and
// reports whether the connection should be closed. Panics are recovered,
// logged and shown to the player as a generic banner.
// Caller must hold c.mu.
func (c *Coordinator) handleInputLocked(s *Session, chunk []byte) (closeConn bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logf("session %d (%s): recovered from panic handling input: %v", s.ID, s.Trace, r)
			s.state.SetPrompt(PromptNone)
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgInternal))
			closeConn = false
		}
	}()
	for _, b := range chunk {
		if c.handleKeyLocked(s, b) {
			return true
		}
	}
	return false
}

// Caller must hold c.mu.
func (c *Coordinator) handleKeyLocked(s *Session, b byte) bool {
	if b == keyCtrlC || b == keyCtrlD {
		return true
	}
	if s.state.Prompt == PromptPasswordEntry {
		c.passwordKeyLocked(s, b)
		return false
	}
	b = lower(b)
	if s.state.Prompt == PromptNone {
		return c.idleKeyLocked(s, b)
	}
	if b == 'q' {
		return true
	}
	// Line-mode clients send a newline after the answer.
	if b == '\r' || b == '\n' {
		return false
	}
	c.resolveLocked(s, b == 'y')
	return false
}

// lower folds ASCII letters to lower case. Password bytes are never folded.
func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

// Caller must hold c.mu.
func (c *Coordinator) idleKeyLocked(s *Session, b byte) bool {
	switch b {
	case 'q':
		return true
	case 'r':
		if !s.state.GodMode && c.world.Cooldown(s.ID) > 0 {
			return false
		}
		s.state.SetPrompt(PromptRespawnConfirm)
	case 'g':
		switch {
		case s.state.GodMode:
			s.state.SetPrompt(PromptGodModeExitConfirm)
		case c.pass == nil:
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgGodDisabled))
		default:
			s.state.SetPrompt(PromptPasswordEntry)
		}
	case 'x':
		if s.state.GodMode {
			s.state.SetPrompt(PromptRestartConfirm)
		}
	case 'l':
		if s.state.GodMode {
			s.state.SetPrompt(PromptReloadConfirm)
		}
	}
	return false
}

// Caller must hold c.mu.
func (c *Coordinator) passwordKeyLocked(s *Session, b byte) {
	switch b {
	case '\r', '\n':
		ok := c.pass.Verify(s.state.password)
		s.state.SetPrompt(PromptNone)
		if !ok {
			c.logf("session %d (%s): god mode passphrase rejected", s.ID, s.Trace)
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgGodDenied))
			return
		}
		s.state.GodMode = true
		c.logf("session %d (%s): god mode enabled", s.ID, s.Trace)
		c.feedbackLocked(s, c.p.Sprintf(ui.MsgGodOn))
	case keyEscape:
		s.state.SetPrompt(PromptNone)
	case keyBackspace, keyDelete:
		if n := len(s.state.password); n > 0 {
			s.state.password = s.state.password[:n-1]
		}
	default:
		if b >= 0x20 && b < 0x7f && len(s.state.password) < maxPassword {
			s.state.password = append(s.state.password, b)
		}
	}
}

// resolveLocked answers the pending confirmation.
// Caller must hold c.mu.
func (c *Coordinator) resolveLocked(s *Session, yes bool) {
	kind := s.state.Prompt
	s.state.SetPrompt(PromptNone)
	switch kind {
	case PromptRespawnConfirm:
		if !yes {
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgRespawnCancel))
			return
		}
		c.feedbackLocked(s, c.respawnMessage(s, c.world.RespawnPlayer(s.ID, s.state.GodMode)))
	case PromptGodModeExitConfirm:
		if !yes {
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgGodStay))
			return
		}
		s.state.GodMode = false
		c.feedbackLocked(s, c.p.Sprintf(ui.MsgGodOff))
	case PromptRestartConfirm:
		if !yes {
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgRestartCancel))
			return
		}
		summary := c.world.EndRound()
		c.logf("session %d (%s): board restarted, round %d ended", s.ID, s.Trace, summary.Round)
		c.announceRoundLocked(summary)
		c.feedbackLocked(s, c.resetMessage(summary.Reset))
	case PromptReloadConfirm:
		if !yes {
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgReloadCancel))
			return
		}
		if err := c.world.ReloadEngine(); err != nil {
			c.logf("session %d (%s): reload engine: %v", s.ID, s.Trace, err)
			c.feedbackLocked(s, c.p.Sprintf(ui.MsgReloadFailed))
			return
		}
		c.feedbackLocked(s, c.p.Sprintf(ui.MsgReloadOK))
	default:
		panic(fmt.Sprintf("session: no resolution for prompt %v", kind))
	}
}

func (c *Coordinator) respawnMessage(s *Session, res game.RespawnResult) string {
	if res.Reset != nil {
		return c.resetMessage(*res.Reset)
	}
	switch res.Reason {
	case game.ReasonOK:
		return c.p.Sprintf(ui.MsgRespawnOK)
	case game.ReasonCooldown:
		return c.p.Sprintf(ui.MsgRespawnWait, strconv.Itoa(int((res.Remaining+time.Second-1)/time.Second)))
	case game.ReasonNoSpace:
		return c.p.Sprintf(ui.MsgRespawnSpace)
	}
	c.logf("session %d (%s): respawn failed: %s", s.ID, s.Trace, res.Reason)
	return c.p.Sprintf(ui.MsgInternal)
}

func (c *Coordinator) resetMessage(res game.ResetResult) string {
	if res.OK {
		return c.p.Sprintf(ui.MsgRestartOK)
	}
	return c.p.Sprintf(ui.MsgRestartPart, strconv.Itoa(len(res.Unplaced)))
}

// promptText returns the localised line for the active prompt.
func (c *Coordinator) promptText(s *State) string {
	switch s.Prompt {
	case PromptRespawnConfirm:
		if s.GodMode {
			return c.p.Sprintf(ui.MsgResetAsk)
		}
		return c.p.Sprintf(ui.MsgRespawnAsk)
	case PromptGodModeExitConfirm:
		return c.p.Sprintf(ui.MsgGodExitAsk)
	case PromptRestartConfirm:
		return c.p.Sprintf(ui.MsgRestartAsk)
	case PromptReloadConfirm:
		return c.p.Sprintf(ui.MsgReloadAsk)
	case PromptPasswordEntry:
		return c.p.Sprintf(ui.MsgGodPassword, strings.Repeat("*", len(s.password)))
	}
	return ""
}
