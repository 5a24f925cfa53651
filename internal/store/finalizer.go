package store

import (
	"runtime"
	"unsafe"
)

// registerFinalizer は弱参照の参照先が回収されたときに呼ばれるコールバックを登録します。
// グローバルなコールバックが先、Put ごとのコールバックが後に呼ばれます。
// コールバックには値ではなくキーを渡す (値を渡すと参照先が永久に回収されなくなる)。
func (s *Store[K, V]) registerFinalizer(target unsafe.Pointer, key K, perCall func()) {
	var global func(K)
	if p := s.globalFinalizer.Load(); p != nil {
		global = *p
	}
	if global == nil && perCall == nil {
		return
	}
	if kp, _, ok := pointerOf(any(key)); ok && kp == target {
		// キー自身が値と同じオブジェクトを指していると回収されない
		if s.cfg.Logger != nil {
			s.cfg.Logger.Error("store.finalizer.skipped", "key", key, "reason", "key references value")
		}
		return
	}

	m := s.cfg.Metrics
	l := s.cfg.Logger
	runtime.AddCleanup((*byte)(target), func(k K) {
		m.IncFinalized()
		if l != nil {
			l.Debug("store.finalized", "key", k)
		}
		if global != nil {
			global(k)
		}
		if perCall != nil {
			perCall()
		}
	}, key)
}
