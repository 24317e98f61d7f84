package tracker

import "fmt"

// NetworkError reports a tracker that could not be reached or that answered
// with a non-success status. The body of a failed response is never read.
type NetworkError struct {
	URL        string
	StatusCode int // zero unless the tracker answered
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tracker %s: http response status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("tracker %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
