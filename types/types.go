package types

import (
	"time"
)

type LifecycleManager interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// Clock abstracts time so TTL and eviction ordering are testable.
type Clock interface {
	Now() time.Time
}

// Sizer computes the byte size of a value for total-size accounting.
// The engine never mandates a serialization format; callers supply
// whatever measure matches their payloads.
type Sizer[T any] func(value T) (int64, error)
