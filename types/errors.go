package types

import (
	"errors"
	"fmt"
)

var (
	ErrCacheKeyEmpty = errors.New("cache key empty")
	ErrEntryTooLarge = errors.New("entry too large")
	ErrSerialization = errors.New("value size could not be determined")
)

var (
	ErrSnapshot                = errors.New("snapshot operation failed")
	ErrSnapshotNotFound        = errors.New("snapshot not found")
	ErrSnapshotStale           = errors.New("snapshot too old")
	ErrSnapshotVersionMismatch = errors.New("snapshot version mismatch")
	ErrSnapshotChecksum        = errors.New("snapshot checksum mismatch")
	ErrSnapshotStoreTypeUnknown = errors.New("snapshot store type unknown")
)

var (
	ErrEngineAlreadyRunning = errors.New("engine already running")
	ErrEngineNotRunning     = errors.New("engine not running")
)

var (
	ErrConfigNotFound       = errors.New("config not found")
	ErrConfigParseFailed    = errors.New("config parse failed")
	ErrConfigValidateFailed = errors.New("config validate failed")
)

var (
	ErrSchedulerRunning    = errors.New("scheduler is running")
	ErrSchedulerJobExists  = errors.New("scheduler job exists")
	ErrSchedulerJobIsNil   = errors.New("scheduler job is nil")
	ErrSchedulerJobNoName  = errors.New("scheduler job name is empty")
	ErrSchedulerBadInterval = errors.New("scheduler interval invalid")
	ErrMetricsStartFailed  = errors.New("metrics start failed")
)

func Errorf(baseErr error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", baseErr, fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func IsError(err, target error) bool {
	return errors.Is(err, target)
}
