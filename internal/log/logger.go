package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger はアプリケーション内で使うロガーのインターフェースです。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Format はログの出力形式です。
type Format string

const (
	// FormatText は人が読むためのテキスト形式です。
	FormatText Format = "text"
	// FormatJSON はログ集約向けの JSON 形式です。
	FormatJSON Format = "json"
)

type config struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

// Option はロガー生成時の設定です。
type Option func(*config)

// WithLevel はログレベルを設定します。
func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat は出力形式を設定します。不正な形式は起動時に気付けるよう panic します。
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatText, FormatJSON:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatText, FormatJSON))
		}
	}
}

// WithOutput は出力先を設定します。nil は無視します。
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttrs は全てのログに付与する属性を追加します。
func WithAttrs(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// ParseLevel は "debug" / "info" / "warn" / "error" を slog.Level に変換します。
// 空文字は info として扱います。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Slog は slog.Logger をラップした Logger 実装です。
type Slog struct {
	l *slog.Logger
}

// New は新しい Slog を作成します。既定は info レベル、テキスト形式、標準出力です。
func New(opts ...Option) *Slog {
	cfg := &config{level: slog.LevelInfo, format: FormatText, output: os.Stdout}
	for _, o := range opts {
		o(cfg)
	}
	ho := &slog.HandlerOptions{Level: cfg.level}
	var h slog.Handler
	if cfg.format == FormatJSON {
		h = slog.NewJSONHandler(cfg.output, ho)
	} else {
		h = slog.NewTextHandler(cfg.output, ho)
	}
	if len(cfg.attrs) > 0 {
		h = h.WithAttrs(cfg.attrs)
	}
	return &Slog{l: slog.New(h)}
}

// With は属性を追加した子ロガーを返します。
func (s *Slog) With(args ...any) *Slog { return &Slog{l: s.l.With(args...)} }

// Slog は内部の *slog.Logger を返します。
func (s *Slog) Slog() *slog.Logger { return s.l }

func (s *Slog) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.l.Error(msg, args...) }
