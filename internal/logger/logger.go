package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is the process-wide logger used when a context carries none.
	//nolint:gochecknoglobals // Shared by every package of the project.
	global *zap.SugaredLogger
	// level is the atomic level shared by every logger built with New.
	//nolint:gochecknoglobals // Changing it must affect already derived loggers.
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() { //nolint:gochecknoinits // Logging must work before any flag is parsed.
	SetLogger(New(os.Stdout))
}

// New builds a console logger writing to w and honoring the shared level.
func New(w io.Writer, options ...zap.Option) *zap.SugaredLogger {
	//nolint:exhaustruct // Remaining encoder fields keep zap defaults.
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)

	return zap.New(core, options...).Sugar()
}

// ParseLevel converts a level name such as "debug" or "WARN" to a zap level.
// Unknown names yield InfoLevel and false.
func ParseLevel(s string) (zapcore.Level, bool) {
	var parsed zapcore.Level
	if err := parsed.Set(strings.ToLower(strings.TrimSpace(s))); err != nil {
		return zapcore.InfoLevel, false
	}

	return parsed, true
}

// Level reports the current minimum level.
func Level() zapcore.Level {
	return level.Level()
}

// SetLevel changes the minimum level of every logger built with New.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// SetLevelName applies a textual level and reports whether it was recognised.
func SetLevelName(name string) bool {
	parsed, ok := ParseLevel(name)
	if ok {
		SetLevel(parsed)
	}

	return ok
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger replaces the global logger. Not safe for concurrent use.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// Sync flushes buffered entries of the global logger.
func Sync() {
	_ = global.Sync() //nolint:errcheck // Sync on stdout fails on some platforms.
}
