package watch

import "fmt"

// FetchError reports a failed spec fetch: a non-200 response (StatusCode set)
// or a transport/read failure (Err set).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: request failed with status code %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RegenerationError reports a regeneration command that could not start or
// exited unsuccessfully. ExitCode is -1 when the command did not exit on its
// own.
type RegenerationError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *RegenerationError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("command %q exited with status %d: %v", e.Command, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *RegenerationError) Unwrap() error { return e.Err }
