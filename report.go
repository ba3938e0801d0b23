package ttlcache

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/zhuquanbin/ttl-cache/index"
)

func newSometimes() *rate.Sometimes {
	return &rate.Sometimes{First: 10, Interval: time.Second}
}

// logErrorHandler returns an ErrorHandler that logs anomalies to logger.
// Bursts are throttled per kind of anomaly: the first few of each kind are logged,
// then at most one per second, so a failing callback cannot hide index inconsistencies.
func logErrorHandler(logger zerolog.Logger) ErrorHandler {
	var (
		inconsistencies = newSometimes()
		callbacks       = newSometimes()
		others          = newSometimes()
	)
	return func(err error) {
		var ie *index.InconsistencyError
		var ce *CallbackError
		switch {
		case errors.As(err, &ie):
			inconsistencies.Do(func() {
				logger.Warn().
					Int64("partition", int64(ie.Partition)).
					Time("partition_start", ie.Partition.Start()).
					Time("instant", ie.Instant).
					Str("key", fmt.Sprint(ie.Key)).
					Str("reason", ie.Reason).
					Msg("ttlcache: index inconsistency repaired")
			})
		case errors.As(err, &ce):
			callbacks.Do(func() {
				logger.Error().
					Err(ce.Err).
					Str("key", fmt.Sprint(ce.Key)).
					Msg("ttlcache: expiry callback failed")
			})
		default:
			others.Do(func() {
				logger.Error().Err(err).Msg("ttlcache: anomaly")
			})
		}
	}
}
