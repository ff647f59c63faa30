package utils

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

var logger = newLogger()

var nodeLog bool
var serverLog bool

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.InfoLevel,
	})
}

// Enable node (computation) and server (transport) logs
func InitLog(node, server bool) {
	nodeLog = node
	serverLog = server
	if node || server {
		logger.SetLevel(log.DebugLevel)
	}
}

// Shared logger, handed to the packages that log on their own
func Logger() *log.Logger {
	return logger
}

func ServerLog(format string, v ...any) {
	if serverLog {
		logger.Info(fmt.Sprintf(format, v...), "component", "server")
	}
}

func NodeLog(role string, format string, v ...any) {
	if nodeLog {
		logger.Info(fmt.Sprintf(format, v...), "component", role)
	}
}

func WarnLog(role string, format string, v ...any) {
	logger.Warn(fmt.Sprintf(format, v...), "component", role)
}

func FailOnError(format string, err error, v ...any) {
	if err != nil {
		logger.Fatal(fmt.Sprintf(format, v...), "err", err)
	}
}
