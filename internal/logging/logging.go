package logging

import (
	"io"
	log "log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var levelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// Level maps a flag value to a slog level; unknown names mean info.
func Level(name string) log.Level {
	if l, ok := levelMap[strings.ToLower(name)]; ok {
		return l
	}
	return log.LevelInfo
}

// Setup installs a tint handler on stdout as the default logger.
func Setup(level string) {
	log.SetDefault(New(os.Stdout, level))
}

func New(w io.Writer, level string) *log.Logger {
	return log.New(tint.NewHandler(w, &tint.Options{
		Level:      Level(level),
		TimeFormat: time.TimeOnly,
		NoColor:    w != os.Stdout && w != os.Stderr,
	}))
}
