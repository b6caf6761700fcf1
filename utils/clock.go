package utils

import (
	"time"

	"github.com/finpulse/fincache/types"
)

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the wall clock used outside of tests.
func SystemClock() types.Clock {
	return systemClock{}
}
