package id

import (
	"strings"

	"github.com/google/uuid"
)

// IDs are random 128-bit UUIDs with a human-readable prefix. The prefix
// carries the entity kind (and, for messages, the author role) so log lines
// and database dumps stay debuggable; callers must treat the whole string
// as opaque.

// NewThread generates a thread ID.
func NewThread() string {
	return "thread_" + uuid.New().String()
}

// NewMessage generates a message ID for the given role.
func NewMessage(role string) string {
	return "msg_" + role + "_" + uuid.New().String()
}

// New generates a bare UUID string.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether s ends in a well-formed UUID.
func IsValid(s string) bool {
	if i := strings.LastIndex(s, "_"); i >= 0 {
		s = s[i+1:]
	}
	_, err := uuid.Parse(s)
	return err == nil
}
