package network

import (
	"github.com/pkg/errors"
	"strings"
)

var (
	// ErrStateNotInitialized is returned for commands that arrive before startup has finished.
	ErrStateNotInitialized = errors.New("network state not yet initialized")

	// ErrLoopStopped is returned for commands sent after the dispatcher loop has exited.
	ErrLoopStopped = errors.New("network loop stopped")

	// ErrActivationFailed is returned when the portal connection deactivates instead of coming up.
	ErrActivationFailed = errors.New("failed to activate captive portal connection")
)

// UpstreamError is a NetworkManager failure that happened while executing a command.
type UpstreamError struct {
	Action string
	Err    error
}

func (e *UpstreamError) Error() string {
	return "failed to execute " + e.Action + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StartupError is returned when the startup sequence fails. Phase is the
// last phase that was reached successfully.
type StartupError struct {
	Phase Phase
	Err   error
}

func (e *StartupError) Error() string {
	return e.Err.Error()
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// ErrorChain splits an error into one message per wrapping layer, outermost
// first. Layers that only add a stack trace are skipped.
func ErrorChain(err error) []string {
	var chain []string

	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)

		if next != nil {
			inner := next.Error()
			if msg == inner {
				err = next
				continue
			}

			msg = strings.TrimSuffix(msg, ": "+inner)
		}

		chain = append(chain, msg)
		err = next
	}

	return chain
}
