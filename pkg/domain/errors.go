package domain

import "errors"

// ErrNotAttached is returned by sync-safe controller entry points invoked
// before Attach. It indicates a host integration bug, not a user error.
var ErrNotAttached = errors.New("controller not attached: call Attach first")

// ErrLoopNotRunning is returned by Attach when the supplied execution loop
// is not actively running.
var ErrLoopNotRunning = errors.New("execution loop is not running")

// ErrUnknownCommand is returned when an operation names a command absent
// from the loaded configuration.
var ErrUnknownCommand = errors.New("unknown command")
