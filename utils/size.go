package utils

import (
	"github.com/bytedance/sonic"

	"github.com/finpulse/fincache/types"
)

// JSONSizer measures a value by the length of its sonic-encoded form.
// It is the default when the caller does not supply a sizer of its own.
func JSONSizer[T any]() types.Sizer[T] {
	return func(value T) (int64, error) {
		data, err := sonic.ConfigDefault.Marshal(value)
		if err != nil {
			return 0, err
		}
		return int64(len(data)), nil
	}
}
