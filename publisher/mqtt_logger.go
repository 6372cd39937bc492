package publisher

import (
	"fmt"
	"log/slog"
)

// mqttLogger routes paho's internal logging into slog.
type mqttLogger struct {
	logger *slog.Logger
	level  slog.Level
}

func newMqttLogger(logger *slog.Logger, level slog.Level) *mqttLogger {
	return &mqttLogger{logger: logger, level: level}
}

func (l *mqttLogger) Println(v ...any) {
	l.print(fmt.Sprint(v...))
}

func (l *mqttLogger) Printf(format string, v ...any) {
	l.print(fmt.Sprintf(format, v...))
}

func (l *mqttLogger) print(msg string) {
	switch {
	case l.level >= slog.LevelError:
		l.logger.Error(msg)
	case l.level >= slog.LevelWarn:
		l.logger.Warn(msg)
	case l.level >= slog.LevelInfo:
		l.logger.Info(msg)
	default:
		l.logger.Debug(msg)
	}
}
