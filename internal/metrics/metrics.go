package metrics

import (
	"sync/atomic"
	"time"
)

// Interface はメトリクス更新用抽象
type Interface interface {
	IncPutNew()
	IncPutUpdate()
	IncGetHit()
	IncGetMiss()
	IncDeleted()
	AddReclaimed(n int)
	IncFinalized()
	SetEntries(n int)
	ObserveSweep(d time.Duration)
}

// Noop は何もしないメトリクス実装
type Noop struct{}

// IncPutNew は何もしないメトリクス実装
func (Noop) IncPutNew() {}

// IncPutUpdate は何もしないメトリクス実装
func (Noop) IncPutUpdate() {}

// IncGetHit は何もしないメトリクス実装
func (Noop) IncGetHit() {}

// IncGetMiss は何もしないメトリクス実装
func (Noop) IncGetMiss() {}

// IncDeleted は何もしないメトリクス実装
func (Noop) IncDeleted() {}

// AddReclaimed は何もしないメトリクス実装
func (Noop) AddReclaimed(_ int) {}

// IncFinalized は何もしないメトリクス実装
func (Noop) IncFinalized() {}

// SetEntries は何もしないメトリクス実装
func (Noop) SetEntries(_ int) {}

// ObserveSweep は何もしないメトリクス実装
func (Noop) ObserveSweep(_ time.Duration) {}

// Simple はシンプルなメトリクス実装です。
type Simple struct {
	PutNew    atomic.Uint64
	PutUpdate atomic.Uint64
	GetHit    atomic.Uint64
	GetMiss   atomic.Uint64
	Deleted   atomic.Uint64
	Reclaimed atomic.Uint64
	Finalized atomic.Uint64
	Entries   atomic.Int64
	Sweeps    atomic.Uint64
}

// NewSimple は新しい Simple メトリクスを作成します。
func NewSimple() *Simple { return &Simple{} }

// IncPutNew は新しいキーが追加されたことをカウントします。
func (m *Simple) IncPutNew() { m.PutNew.Add(1) }

// IncPutUpdate は既存のキーが上書きされたことをカウントします。
func (m *Simple) IncPutUpdate() { m.PutUpdate.Add(1) }

// IncGetHit はキャッシュヒットをカウントします。
func (m *Simple) IncGetHit() { m.GetHit.Add(1) }

// IncGetMiss はキャッシュミスをカウントします。
func (m *Simple) IncGetMiss() { m.GetMiss.Add(1) }

// IncDeleted は明示的に削除されたエントリをカウントします。
func (m *Simple) IncDeleted() { m.Deleted.Add(1) }

// AddReclaimed は回収済みとして削除されたエントリの数を加算します。
func (m *Simple) AddReclaimed(n int) {
	if n > 0 {
		m.Reclaimed.Add(uint64(n))
	}
}

// IncFinalized はファイナライズコールバックの実行をカウントします。
func (m *Simple) IncFinalized() { m.Finalized.Add(1) }

// SetEntries は現在のエントリ数を設定します。
func (m *Simple) SetEntries(n int) {
	if n >= 0 {
		m.Entries.Store(int64(n))
	}
}

// ObserveSweep はスイープの実行回数をカウントします。
func (m *Simple) ObserveSweep(_ time.Duration) { m.Sweeps.Add(1) }
