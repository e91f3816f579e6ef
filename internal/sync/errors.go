package sync

import "fmt"

// ErrorKind classifies a refresh failure so callers can decide between
// retrying on the next tick and halting the session.
type ErrorKind int

const (
	// KindNetwork is a transport or connectivity failure. The previous
	// alert set is retained and the next scheduled tick retries.
	KindNetwork ErrorKind = iota

	// KindSessionExpired is an authoritative de-auth from the server.
	// The alert set is cleared and polling halts.
	KindSessionExpired

	// KindMalformed is an unexpected payload shape. Treated like a
	// network failure for retry purposes.
	KindMalformed
)

// String returns the kind's name for logs and messages.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindSessionExpired:
		return "session_expired"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// SyncError wraps a refresh failure with its classification. No sync
// error is fatal to the process; every kind is recoverable by the next
// cycle or by explicit reauthentication.
type SyncError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed (%s): %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *SyncError) Unwrap() error {
	return e.Err
}
