package sshd

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// ptyRequest is the payload of a "pty-req" channel request (RFC 4254 6.2).
type ptyRequest struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

// windowChange is the payload of a "window-change" request (RFC 4254 6.7).
type windowChange struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

type exitStatus struct {
	Status uint32
}

func parsePtyRequest(payload []byte) (ptyRequest, error) {
	var req ptyRequest
	if err := ssh.Unmarshal(payload, &req); err != nil {
		return ptyRequest{}, fmt.Errorf("parse pty-req: %w", err)
	}
	return req, nil
}

func parseWindowChange(payload []byte) (windowChange, error) {
	var req windowChange
	if err := ssh.Unmarshal(payload, &req); err != nil {
		return windowChange{}, fmt.Errorf("parse window-change: %w", err)
	}
	return req, nil
}
