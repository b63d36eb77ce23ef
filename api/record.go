// File: api/record.go
// Package api defines the core data model for crashpipe.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "strings"

// MaxChainDepth bounds the inner-record chain walk. Real causal chains are
// far shorter; the bound guards against accidental cycles.
const MaxChainDepth = 64

// Record is one captured fault in language-neutral form.
// The Inner chain is exclusively owned, acyclic and finite.
type Record struct {
	Kind           string   // logical exception/error type name
	Message        string   // single-line message, no embedded newlines
	StackTrace     []string // frame descriptors, oldest-call-first, each "at ..."-prefixed with a trailing newline
	Inner          *Record  // causal chain, nil at the end
	WrapperSDKName string   // identifies the producing binding/runtime for backend attribution
}

// StackText returns the stack trace as a single block of text, one frame
// per line, in the human-readable framing expected by symbolication tools.
func (r *Record) StackText() string {
	if len(r.StackTrace) == 0 {
		return ""
	}
	var b strings.Builder
	for _, frame := range r.StackTrace {
		b.WriteString(frame)
	}
	return b.String()
}

// ChainLen returns the number of records in the causal chain, including
// the receiver. Walks at most MaxChainDepth links.
func (r *Record) ChainLen() int {
	n := 0
	for cur := r; cur != nil && n < MaxChainDepth; cur = cur.Inner {
		n++
	}
	return n
}

// Attachment is a supplementary diagnostic payload attached to a report.
type Attachment struct {
	Name        string
	ContentType string
	Payload     []byte
}
