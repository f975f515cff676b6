package scheduler

import (
	"fmt"

	"github.com/bobmcallan/vire-markets/internal/common"
)

// cronLogger adapts the arbor logger to cron.Logger.
type cronLogger struct {
	logger *common.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	e := l.logger.Debug()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Str(fmt.Sprint(keysAndValues[i]), fmt.Sprint(keysAndValues[i+1]))
	}
	e.Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	e := l.logger.Error().Str("error", err.Error())
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Str(fmt.Sprint(keysAndValues[i]), fmt.Sprint(keysAndValues[i+1]))
	}
	e.Msg("cron: " + msg)
}
