package fetch

import "fmt"

// FetchError reports a failed query fetch: a transport failure or a
// non-2xx response. It is propagated unchanged to the caller; retry
// policy, if any, belongs to the relay or the operator.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
