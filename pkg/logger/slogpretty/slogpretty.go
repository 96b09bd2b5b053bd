// Package slogpretty содержит цветной обработчик для `slog`, удобный при
// локальной разработке, и фабрику логгеров, выбирающую формат вывода по
// окружению.
package slogpretty

import (
	"context"
	"encoding/json"
	"io"
	stdLog "log"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Окружения, которые понимает SetupLogger.
const (
	EnvLocal = "local" // Цветной вывод, уровень debug.
	EnvDev   = "dev"   // JSON, уровень debug.
	EnvProd  = "prod"  // JSON, уровень info.
)

// FileOptions описывает необязательный файл логов с ротацией.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type setupOptions struct {
	stdout io.Writer
	file   *FileOptions
}

// Option настраивает SetupLogger.
type Option func(*setupOptions)

// WithFile дублирует JSON-логи в файл с ротацией (lumberjack).
// В окружении local не применяется: цветной вывод предназначен для терминала.
func WithFile(opts FileOptions) Option {
	return func(o *setupOptions) {
		if opts.Path != "" {
			o.file = &opts
		}
	}
}

// WithOutput заменяет os.Stdout основным приемником логов.
func WithOutput(w io.Writer) Option {
	return func(o *setupOptions) {
		o.stdout = w
	}
}

// PrettyHandlerOptions содержит опции PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts *slog.HandlerOptions
}

// PrettyHandler печатает каждую запись одной цветной строкой,
// за которой следуют атрибуты в виде JSON с отступами.
type PrettyHandler struct {
	slog.Handler
	l     *stdLog.Logger // Пишем через стандартный `log`, чтобы не уйти в рекурсию.
	attrs []slog.Attr
}

// NewPrettyHandler создает PrettyHandler, пишущий в out.
func (opts PrettyHandlerOptions) NewPrettyHandler(out io.Writer) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewJSONHandler(out, opts.SlogOpts),
		l:       stdLog.New(out, "", 0),
	}
}

// SetupLogger создает логгер для окружения env. Для неизвестного окружения
// используется JSON-обработчик как в prod.
func SetupLogger(env string, options ...Option) *slog.Logger {
	o := setupOptions{stdout: os.Stdout}
	for _, opt := range options {
		opt(&o)
	}

	if env == EnvLocal {
		return setupPrettySlog(o.stdout)
	}

	out := o.stdout
	if o.file != nil {
		out = io.MultiWriter(o.stdout, &lumberjack.Logger{
			Filename:   o.file.Path,
			MaxSize:    o.file.MaxSizeMB,
			MaxBackups: o.file.MaxBackups,
			MaxAge:     o.file.MaxAgeDays,
			Compress:   o.file.Compress,
		})
	}

	level := slog.LevelInfo
	if env == EnvDev {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(out))
}

// Handle форматирует запись r в одну цветную строку.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	var b []byte

	if len(fields) > 0 {
		var err error

		b, err = json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
	}

	h.l.Println(
		r.Time.Format("[15:04:05.000]"),
		level,
		color.CyanString(r.Message),
		color.WhiteString(string(b)),
	)

	return nil
}

// WithAttrs возвращает обработчик, добавляющий attrs к каждой записи.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &PrettyHandler{
		Handler: h.Handler,
		l:       h.l,
		attrs:   merged,
	}
}

// WithGroup делегирует вызов вложенному обработчику, группы не выводятся.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		Handler: h.Handler.WithGroup(name),
		l:       h.l,
		attrs:   h.attrs,
	}
}
