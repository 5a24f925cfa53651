package store

import (
	"errors"
	"hash/maphash"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amakane-hakari/weakcache/internal/metrics"
)

// ErrInvalidKey は nil のキーで Put したときに返されます。
var ErrInvalidKey = errors.New("store: invalid key")

// DefaultCleanupInterval はスイーパーの既定の間隔です。
const DefaultCleanupInterval = 60 * time.Second

// Store は値を弱参照で保持できるキャッシュを表します。
// キーは常に強参照で保持されます (ポインタをキーにすると参照先はエントリが残る限り回収されません)。
// クリーンアップ間隔を有効にした場合、破棄する前に必ず Release を呼んでください。
type Store[K comparable, V any] struct {
	cfg           Config
	shardsCompact []shardCompact[K, V]
	shardsPadded  []shardPadding[K, V]
	shardMask     uint32
	seed          maphash.Seed

	size atomic.Int64
	seq  atomic.Uint64 // 挿入順
	gen  atomic.Uint64 // 書き込み世代

	globalFinalizer atomic.Pointer[func(K)]
	listener        atomic.Pointer[RemovalListener[K]]

	cleanupInterval time.Duration // 0 で無効
	stopCh          chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// New は新しい Store を作成します。
func New[K comparable, V any](opts ...Option) *Store[K, V] {
	cfg := Config{Shards: 16, CleanupInterval: DefaultCleanupInterval}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Shards < 1 {
		cfg.Shards = 16
	}
	// 2 の冪に揃える
	cfg.Shards = nextPowerOfTwo(cfg.Shards)
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop{}
	}

	s := &Store[K, V]{
		cfg:       cfg,
		shardMask: uint32(cfg.Shards - 1),
		seed:      maphash.MakeSeed(),
	}
	if cfg.CleanupInterval > 0 {
		s.cleanupInterval = cfg.CleanupInterval
	}
	if cfg.EnableShardPadding {
		s.shardsPadded = make([]shardPadding[K, V], cfg.Shards)
		for i := range s.shardsPadded {
			s.shardsPadded[i].m = make(map[K]entry[V])
		}
	} else {
		s.shardsCompact = make([]shardCompact[K, V], cfg.Shards)
		for i := range s.shardsCompact {
			s.shardsCompact[i].m = make(map[K]entry[V])
		}
	}

	if s.cleanupInterval > 0 {
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.cleanupLoop()
	}

	return s
}

// WithGlobalFinalizer はキャッシュ全体のファイナライズコールバックを設定します。
// 弱参照された値が回収されたとき、そのキーを引数に呼ばれます。
func (s *Store[K, V]) WithGlobalFinalizer(fn func(key K)) *Store[K, V] {
	if fn == nil {
		s.globalFinalizer.Store(nil)
		return s
	}
	s.globalFinalizer.Store(&fn)
	return s
}

// WithRemovalListener はエントリ削除の通知先を設定します。
func (s *Store[K, V]) WithRemovalListener(l RemovalListener[K]) *Store[K, V] {
	if l == nil {
		s.listener.Store(nil)
		return s
	}
	s.listener.Store(&l)
	return s
}

// Size はストア内のエントリ数を返します。
// 回収済みでまだ掃除されていないエントリも含みます。
func (s *Store[K, V]) Size() int {
	return int(s.size.Load())
}

// Release はスイーパーを停止します。何度呼んでも安全です。
func (s *Store[K, V]) Release() {
	if s.stopCh == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("store.release", "size", s.Size())
		}
	})
}

// Close は Release を呼びます。io.Closer を満たすためのものです。
func (s *Store[K, V]) Close() error {
	s.Release()
	return nil
}
