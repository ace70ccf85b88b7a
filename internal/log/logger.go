package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger tags every record with the owning component on top of slog.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

// Config selects handler format and level. Level and Format are the
// string forms carried by LOG_LEVEL and LOG_FORMAT.
type Config struct {
	Level     string
	Format    string
	Component string
}

// DefaultConfig reads LOG_LEVEL and LOG_FORMAT from the environment.
// Logging has to come up before the config layer can report anything,
// so these two variables are read here rather than in internal/config.
func DefaultConfig() Config {
	return Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Component: ComponentApp,
	}
}

// New builds a logger from the given configuration. Unknown level or
// format strings fall back to info/text.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	component := cfg.Component
	if component == "" {
		component = ComponentApp
	}

	base := slog.New(handler)

	return &Logger{
		Logger:    base.With(FieldComponent, component),
		base:      base,
		component: component,
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger carrying the extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		base:      l.base,
		component: l.component,
	}
}

// WithComponent returns a logger retagged under a different component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.base.With(FieldComponent, component),
		base:      l.base,
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault routes the slog package-level functions through this logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
