package store

import (
	"time"

	"github.com/amakane-hakari/weakcache/internal/metrics"
)

type logLike interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config はストアの設定を表します。
type Config struct {
	Shards               int           // 2 の冪推奨。0/未指定なら 16
	CleanupInterval      time.Duration // 未指定なら 60 秒、0 以下で無効
	PrimitivesAlwaysHard bool          // ポインタ・マップ・チャネル以外の値を既定で強参照にする
	Logger               logLike
	Metrics              metrics.Interface
	EnableShardPadding   bool // シャードのパディングを有効にする
}

// Option はストアのオプションを設定する関数です。
type Option func(*Config)

// WithLogger はストアのロガーを設定するオプションです。
func WithLogger(l logLike) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics はストアのメトリクスを設定するオプションです。
func WithMetrics(m metrics.Interface) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithShards はストアのシャード数を設定するオプションです。
func WithShards(n int) Option {
	return func(c *Config) { c.Shards = n }
}

// WithCleanupInterval はスイーパーの実行間隔を設定するオプションです。
// 0 以下を渡すとスイーパーは起動せず、掃除は Get と Sweep の呼び出しに任されます。
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Config) { c.CleanupInterval = d }
}

// WithPrimitivesAlwaysHard はポインタ・マップ・チャネル以外の値を既定で強参照にするオプションです。
func WithPrimitivesAlwaysHard() Option {
	return func(c *Config) { c.PrimitivesAlwaysHard = true }
}

// WithShardPadding はストアのシャードパディングを有効にするオプションです。
func WithShardPadding() Option {
	return func(c *Config) { c.EnableShardPadding = true }
}

type putOptions struct {
	hardRef   *bool
	finalizer func()
}

// PutOption は Put ごとのオプションです。
type PutOption func(*putOptions)

// WithHardRef は値の保持方法を明示します。
// true なら常に強参照、false ならキャッシュ全体の WithPrimitivesAlwaysHard より優先して弱参照にします。
func WithHardRef(hard bool) PutOption {
	return func(o *putOptions) { o.hardRef = &hard }
}

// WithFinalizer は値が回収されたときに呼ばれるコールバックを設定します。
// グローバルなコールバックの後に呼ばれます。fn が値を参照していると値は回収されません。
func WithFinalizer(fn func()) PutOption {
	return func(o *putOptions) { o.finalizer = fn }
}
