package index

import (
	"errors"
	"fmt"
	"time"
)

// ErrInconsistency is the sentinel matched by every InconsistencyError.
var ErrInconsistency = errors.New("index inconsistency")

// InconsistencyError describes an index record that was expected but is missing.
type InconsistencyError struct {
	Partition PartitionID
	Instant   time.Time
	Key       any
	Reason    string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("index inconsistency: partition=%d instant=%s key=%v: %s", e.Partition, e.Instant.Format(time.RFC3339Nano), e.Key, e.Reason)
}

func (e *InconsistencyError) Unwrap() error {
	return ErrInconsistency
}
