package app

import (
	"strings"

	"github.com/fropcore/bmiwidget/pkg/logger"
)

const defaultLogLevel = "info"

// ConfigureLogging installs the process logger. console selects the
// development encoder; main turns it on for GIN_DEBUG=true.
func ConfigureLogging(level string, console bool) error {
	opts := logger.Options{Level: defaultLogLevel, Console: console}
	if lvl := strings.TrimSpace(level); lvl != "" {
		opts.Level = lvl
	}
	return logger.InitWithOptions(opts)
}
