package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

const serviceName = "shortlinks"

// Цвета для разных уровней логирования
var levelColors = map[string]string{
	"TRACE": "\x1b[36m",   // голубой
	"DEBUG": "\x1b[32m",   // зелёный
	"INFO":  "\x1b[34m",   // синий
	"WARN":  "\x1b[33m",   // жёлтый
	"ERROR": "\x1b[31m",   // красный
	"FATAL": "\x1b[31;1m", // ярко-красный
}

// NewLogger пишет в stdout. format "json" даёт по строке JSON на событие
// для сборщиков логов, всё остальное - цветной вывод для терминала.
// Неизвестный уровень превращается в info.
func NewLogger(level, format string) *zerolog.Logger {
	log := newLogger(os.Stdout, level, format)
	return &log
}

func newLogger(out io.Writer, level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldInteger = true

	ctx := zerolog.New(out).Level(parseLevel(level)).With().Timestamp()
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return ctx.Str("service", serviceName).Logger()
	}
	return ctx.Logger().Output(consoleWriter(out))
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05 MST",
		FormatLevel: func(i interface{}) string {
			lvl, _ := i.(string)
			lvl = strings.ToUpper(lvl)
			color, ok := levelColors[lvl]
			if !ok {
				color = "\x1b[0m"
			}
			return fmt.Sprintf("%s| %-6s|\x1b[0m", color, lvl)
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("\x1b[1m%s\x1b[0m", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("\x1b[36m%s:\x1b[0m", i)
		},
	}
}
