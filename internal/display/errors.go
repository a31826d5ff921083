package display

import (
	"errors"
	"fmt"
)

var (
	ErrQuery              = errors.New("display topology query failed")
	ErrTopologyCommit     = errors.New("display topology commit failed")
	ErrNoEnabledDisplay   = errors.New("at least one display must remain enabled")
	ErrLastDisplay        = errors.New("cannot disable the last enabled display")
	ErrStalePathIndex     = errors.New("path index does not match the current topology")
	ErrDisplayNotFound    = errors.New("display not found")
	ErrResolutionChange   = errors.New("resolution change failed")
	ErrRestartRequired    = errors.New("resolution change requires a restart")
	ErrDPIUnavailable     = errors.New("dpi scaling information unavailable")
	ErrDPIWrite           = errors.New("dpi scaling change failed")
	ErrAdapterIDMalformed = errors.New("malformed adapter id")
)

// StatusError is an OS call that returned a non-zero status.
type StatusError struct {
	Op     string
	Status uintptr
	Kind   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

// ModeChangeError is a legacy mode change that did not report immediate
// success.
type ModeChangeError struct {
	Device string
	Status ChangeStatus
}

func (e *ModeChangeError) Error() string {
	return fmt.Sprintf("change mode of %s: %s", e.Device, e.Status)
}

func (e *ModeChangeError) Unwrap() error {
	if e.Status == ChangeRestart {
		return ErrRestartRequired
	}
	return ErrResolutionChange
}
