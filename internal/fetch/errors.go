package fetch

import "fmt"

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %q from %s", e.Status, e.URL)
}
