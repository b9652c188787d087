package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"wiltd/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeHttp
	TypeSync
)

// Logger is the logging facade used across the daemon. Each log type is
// written to its own file so that sync noise doesn't drown app events.
type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

var typeFileNames = map[TypeEnum]string{
	TypeApp:  "app.log",
	TypeHttp: "http.log",
	TypeSync: "sync.log",
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	if err := os.MkdirAll(conf.Logger.Dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	provider := &LogProvider{
		loggers: make(map[TypeEnum]zerolog.Logger, len(typeFileNames)),
	}
	for t, name := range typeFileNames {
		path := filepath.Join(conf.Logger.Dir, name)
		file, err := os.OpenFile(
			path,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			os.FileMode(conf.Logger.Mode),
		)
		if err != nil {
			provider.Close()
			return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
		}
		provider.files = append(provider.files, file)
		provider.loggers[t] = zerolog.New(file).Level(level).With().Timestamp().Logger()
	}
	return provider, nil
}

func (l *LogProvider) logger(t TypeEnum) zerolog.Logger {
	if logger, ok := l.loggers[t]; ok {
		return logger
	}
	return l.loggers[TypeApp]
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lg := l.logger(t)
	lg.Error().Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lg := l.logger(t)
	lg.Warn().Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lg := l.logger(t)
	lg.Info().Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lg := l.logger(t)
	lg.Debug().Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lg := l.logger(t)
	lg.Fatal().Msgf(format, args...)
}

func (l *LogProvider) Close() {
	for _, file := range l.files {
		_ = file.Close()
	}
	l.files = nil
}
