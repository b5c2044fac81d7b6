package codeview

import "log/slog"

const (
	logGroup = "codeview"
)

var logger *slog.Logger

func init() {
	logger = slog.Default().WithGroup(logGroup)
}

func SetLogger(log *slog.Logger) {
	logger = log.WithGroup(logGroup)
}
