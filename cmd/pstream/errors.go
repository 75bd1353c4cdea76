package main

import "fmt"

// exitError carries a process exit code alongside its message, letting
// main's top-level error handling choose the right code without every
// subcommand knowing about os.Exit.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func runtimeErrorf(format string, args ...interface{}) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 1
}
