// Package approval decides when a tool call needs the user's consent and
// collects that consent interactively.
package approval

import (
	"context"
	"fmt"
	"strings"
)

// Policy controls which tool calls require confirmation.
type Policy string

const (
	// Suggest asks before every command and every file edit.
	Suggest Policy = "suggest"
	// AutoEdit applies file edits without asking but still confirms commands.
	AutoEdit Policy = "auto-edit"
	// FullAuto never asks.
	FullAuto Policy = "full-auto"
)

// Policies lists the accepted policy names.
var Policies = []Policy{Suggest, AutoEdit, FullAuto}

// ParsePolicy validates raw. An empty value means Suggest.
func ParsePolicy(raw string) (Policy, error) {
	normalized := Policy(strings.ToLower(strings.TrimSpace(raw)))
	if normalized == "" {
		return Suggest, nil
	}
	for _, p := range Policies {
		if p == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown approval policy %q (want one of suggest, auto-edit, full-auto)", raw)
}

// NeedsCommandApproval reports whether shell commands must be confirmed.
func (p Policy) NeedsCommandApproval() bool {
	return p != FullAuto
}

// NeedsEditApproval reports whether file edits must be confirmed.
func (p Policy) NeedsEditApproval() bool {
	return p != FullAuto && p != AutoEdit
}

// Decision is the user's answer to a confirmation request.
type Decision string

const (
	Approve Decision = "approve"
	Deny    Decision = "deny"
	Explain Decision = "explain"
	Modify  Decision = "modify"
)

// Edit describes a pending file edit shown to the user.
type Edit struct {
	Path    string
	Content string
	// Preview is a unified diff of the edit when it could be computed.
	Preview string
}

// Request is what the user is asked to confirm. Edit is nil for commands.
type Request struct {
	Command []string
	Edit    *Edit
}

// Confirmation is the outcome of a Request.
type Confirmation struct {
	Decision    Decision
	DenyMessage string
	Explanation string
	// Command replaces Request.Command when Decision is Modify.
	Command []string
}

// Approved reports whether the request may proceed unchanged.
func (c Confirmation) Approved() bool {
	return c.Decision == Approve
}

// Confirmer asks the user about a Request.
type Confirmer interface {
	Confirm(ctx context.Context, req Request) (Confirmation, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, req Request) (Confirmation, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	return f(ctx, req)
}

// AlwaysApprove confirms everything. It backs --yes.
var AlwaysApprove = ConfirmerFunc(func(context.Context, Request) (Confirmation, error) {
	return Confirmation{Decision: Approve}, nil
})
