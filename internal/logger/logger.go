// Package logger adapts the global zerolog logger to the logging interfaces of third party libraries.
package logger

import "github.com/rs/zerolog/log"

// Logger satisfies retryablehttp.Logger. Everything is logged at debug level.
type Logger struct{}

func (*Logger) Printf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}
