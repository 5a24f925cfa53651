package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prom は Prometheus を使ったメトリクス実装です。
type Prom struct {
	putNew    prometheus.Counter
	putUpdate prometheus.Counter
	getHit    prometheus.Counter
	getMiss   prometheus.Counter
	deleted   prometheus.Counter
	reclaimed prometheus.Counter
	finalized prometheus.Counter
	entries   prometheus.Gauge
	sweep     prometheus.Histogram
}

// NewProm は Prometheus を使ったメトリクス実装を初期化し、reg に登録します。
// reg が nil の場合は prometheus.DefaultRegisterer を使います。
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	makeC := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	p := &Prom{
		putNew:    makeC("put_new_total", "Number of new keys put"),
		putUpdate: makeC("put_update_total", "Number of existing keys overwritten"),
		getHit:    makeC("get_hit_total", "Number of cache hits"),
		getMiss:   makeC("get_miss_total", "Number of cache misses"),
		deleted:   makeC("deleted_total", "Number of entries removed by delete"),
		reclaimed: makeC("reclaimed_total", "Number of entries removed because their value was collected"),
		finalized: makeC("finalized_total", "Number of finalization callbacks run"),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Current number of entries in the store",
		}),
		sweep: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of cleanup sweeps",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	// 同じ Registerer に 2 回登録すると panic するので、呼び出し側で 1 回だけ作る
	reg.MustRegister(
		p.putNew, p.putUpdate, p.getHit, p.getMiss, p.deleted,
		p.reclaimed, p.finalized, p.entries, p.sweep,
	)
	return p
}

// IncPutNew は新しいキーが追加されたことをカウントします。
func (p *Prom) IncPutNew() { p.putNew.Inc() }

// IncPutUpdate は既存のキーが上書きされたことをカウントします。
func (p *Prom) IncPutUpdate() { p.putUpdate.Inc() }

// IncGetHit はキャッシュヒットをカウントします。
func (p *Prom) IncGetHit() { p.getHit.Inc() }

// IncGetMiss はキャッシュミスをカウントします。
func (p *Prom) IncGetMiss() { p.getMiss.Inc() }

// IncDeleted は明示的に削除されたエントリをカウントします。
func (p *Prom) IncDeleted() { p.deleted.Inc() }

// AddReclaimed は回収済みとして削除されたエントリの数を加算します。
func (p *Prom) AddReclaimed(n int) {
	if n > 0 {
		p.reclaimed.Add(float64(n))
	}
}

// IncFinalized はファイナライズコールバックの実行をカウントします。
func (p *Prom) IncFinalized() { p.finalized.Inc() }

// SetEntries は現在のエントリ数を設定します。
func (p *Prom) SetEntries(n int) {
	if n >= 0 {
		p.entries.Set(float64(n))
	}
}

// ObserveSweep はスイープにかかった時間を記録します。
func (p *Prom) ObserveSweep(d time.Duration) { p.sweep.Observe(d.Seconds()) }
