// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a hierarchy error.
type Kind string

const (
	KindSelfReference       Kind = "self_reference"
	KindDuplicateEdge       Kind = "duplicate_edge"
	KindCycleDetected       Kind = "cycle_detected"
	KindConflictingRelation Kind = "conflicting_relation"
	KindNotFound            Kind = "not_found"
	KindStorageUnavailable  Kind = "storage_unavailable"
)

// Sentinel errors. Stores return these directly; the Service wraps them in
// *Error carrying the titles involved. Both match with errors.Is.
var (
	ErrSelfReference       = errors.New("category cannot be its own parent")
	ErrDuplicateEdge       = errors.New("edge already exists")
	ErrCycleDetected       = errors.New("edge would create a cycle")
	ErrConflictingRelation = errors.New("category requested as both parent and child")
	ErrNotFound            = errors.New("not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

var kindSentinels = map[Kind]error{
	KindSelfReference:       ErrSelfReference,
	KindDuplicateEdge:       ErrDuplicateEdge,
	KindCycleDetected:       ErrCycleDetected,
	KindConflictingRelation: ErrConflictingRelation,
	KindNotFound:            ErrNotFound,
	KindStorageUnavailable:  ErrStorageUnavailable,
}

// Error is a mutation or lookup failure reported to callers. Child and
// Parent hold category titles (or the raw id when the category could not be
// found), so operators can tell which relationship was rejected.
type Error struct {
	Kind   Kind
	Op     string
	Child  string
	Parent string
	// Chain is the ancestor chain found by the cycle guard, from the
	// requested parent up to the requested child.
	Chain []string
	// Reason explains a conflicting relation request.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch e.Kind {
	case KindSelfReference:
		fmt.Fprintf(&b, "%q cannot be its own parent", e.Child)
	case KindDuplicateEdge:
		fmt.Fprintf(&b, "%q is already a parent of %q", e.Parent, e.Child)
	case KindCycleDetected:
		fmt.Fprintf(&b, "cannot add %q as a parent of %q: %q is already an ancestor of %q (%s)",
			e.Parent, e.Child, e.Child, e.Parent, strings.Join(e.Chain, " -> "))
	case KindConflictingRelation:
		reason := e.Reason
		if reason == "" {
			reason = "requested as both a parent and a child"
		}
		fmt.Fprintf(&b, "%q and %q: %s", e.Child, e.Parent, reason)
	case KindNotFound:
		if e.Parent != "" && e.Child != "" {
			fmt.Fprintf(&b, "%q is not a parent of %q", e.Parent, e.Child)
		} else {
			fmt.Fprintf(&b, "category %s not found", e.Child+e.Parent)
		}
	case KindStorageUnavailable:
		b.WriteString(ErrStorageUnavailable.Error())
	default:
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil && !errors.Is(kindSentinels[e.Kind], e.Err) {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of err. Errors that carry no hierarchy kind are
// treated as storage failures.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindStorageUnavailable
}

// classify turns any error returned inside a Store scope into an *Error
// tagged with op. Bare sentinels keep their kind; anything else is a
// storage failure.
func classify(op string, err error) error {
	var he *Error
	if errors.As(err, &he) {
		if he.Op == "" {
			he.Op = op
		}
		return he
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}
