package store

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/amakane-hakari/weakcache/internal/metrics"
)

type benchConfig struct {
	shards    int
	readRatio float64
	hard      bool
	warmKeys  int
	parallel  bool
}

var benchMatrix = []benchConfig{
	{shards: 1, readRatio: 0.90, hard: true, warmKeys: 50_000, parallel: true},
	{shards: 16, readRatio: 0.90, hard: true, warmKeys: 50_000, parallel: true},
	{shards: 64, readRatio: 0.90, hard: true, warmKeys: 50_000, parallel: true},

	{shards: 16, readRatio: 0.50, hard: true, warmKeys: 50_000, parallel: true},
	{shards: 16, readRatio: 0.10, hard: true, warmKeys: 50_000, parallel: true},

	// 弱参照 (値はウォームアップで保持した slice から参照され続ける)
	{shards: 16, readRatio: 0.90, hard: false, warmKeys: 50_000, parallel: true},
	{shards: 16, readRatio: 0.50, hard: false, warmKeys: 50_000, parallel: true},

	// serial
	{shards: 16, readRatio: 0.90, hard: true, warmKeys: 50_000, parallel: false},
}

func BenchmarkStore_MixedWorkload(b *testing.B) {
	runtime.GC()

	for _, cfg := range benchMatrix {
		name := fmt.Sprintf("shards=%d, readRatio=%.0f, hard=%t, warmKeys=%d, parallel=%t",
			cfg.shards, cfg.readRatio*100, cfg.hard, cfg.warmKeys, cfg.parallel,
		)
		b.Run(name, func(b *testing.B) {
			runOneBenchmark(b, cfg)
		})
	}
}

func runOneBenchmark(b *testing.B, cfg benchConfig) {
	b.ReportAllocs()

	// 乱数(固定シードで再現性確保)
	rnd := rand.New(rand.NewSource(42))

	st := New[string, *payload](
		WithShards(cfg.shards),
		WithMetrics(metrics.Noop{}),
		WithCleanupInterval(0),
	)
	defer st.Release()

	// ウォームアップ
	keys := make([]string, cfg.warmKeys)
	values := make([]*payload, cfg.warmKeys)
	for i := 0; i < cfg.warmKeys; i++ {
		k := fmt.Sprintf("k%05d", i)
		values[i] = &payload{name: k, n: i}
		_, _ = st.Put(k, values[i], WithHardRef(cfg.hard))
		keys[i] = k
	}

	var putCounter atomic.Uint64
	var getHit atomic.Int64

	work := func(r *rand.Rand) {
		idx := r.Intn(len(keys))
		if r.Float64() < cfg.readRatio {
			if _, ok := st.Get(keys[idx]); ok {
				getHit.Add(1)
			}
			return
		}
		_, _ = st.Put(keys[idx], values[idx], WithHardRef(cfg.hard))
		putCounter.Add(1)
	}

	if cfg.parallel {
		b.SetParallelism(runtime.GOMAXPROCS(0)) // 1:1 目安
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			// 各ゴルーチン個別 rand
			rLocal := rand.New(rand.NewSource(rnd.Int63()))
			for pb.Next() {
				work(rLocal)
			}
		})
	} else {
		b.ResetTimer()
		rLocal := rand.New(rand.NewSource(rnd.Int63()))
		for i := 0; i < b.N; i++ {
			work(rLocal)
		}
	}

	b.StopTimer()
	runtime.KeepAlive(values)

	b.ReportMetric(float64(putCounter.Load()), "puts_total")
	b.ReportMetric(float64(getHit.Load()), "get_hits_total")
}

func BenchmarkStore_Sweep(b *testing.B) {
	st := New[int, *payload](WithCleanupInterval(0))
	defer st.Release()

	values := make([]*payload, 10_000)
	for i := range values {
		values[i] = &payload{n: i}
		_, _ = st.Put(i, values[i])
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st.Sweep()
	}
	b.StopTimer()
	runtime.KeepAlive(values)
}
