package store

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// Put はキーと値をストアにセットし、value をそのまま返します。
// キーが nil の場合は ErrInvalidKey を返し、何も保存しません。
func (s *Store[K, V]) Put(key K, value V, opts ...PutOption) (V, error) {
	if isNil(any(key)) {
		return value, fmt.Errorf("%w: %v", ErrInvalidKey, any(key))
	}
	var po putOptions
	for _, o := range opts {
		o(&po)
	}

	h, target := s.newHolder(value, po.hardRef)
	if target != nil {
		s.registerFinalizer(target, key, po.finalizer)
	}

	mu, mp := s.getShard(key)
	mu.Lock()
	e, existed := mp[key]
	if !existed {
		e.seq = s.seq.Add(1)
		s.size.Add(1)
	}
	e.h = h
	e.gen = s.gen.Add(1)
	mp[key] = e
	mu.Unlock()

	if existed {
		s.cfg.Metrics.IncPutUpdate()
	} else {
		s.cfg.Metrics.IncPutNew()
		s.cfg.Metrics.SetEntries(s.Size())
	}

	if s.cfg.Logger != nil {
		if existed {
			s.cfg.Logger.Debug("store.update", "key", key, "holder", h.kind.String())
		} else {
			s.cfg.Logger.Debug("store.put", "key", key, "holder", h.kind.String())
		}
	}
	return value, nil
}

// lookup はエントリを読み出して値を解決します。削除は行いません。
// Get と Sweep の両方から使われ、Get を再帰的に呼ぶことはありません。
func (s *Store[K, V]) lookup(key K) (v V, ok bool, present bool, gen uint64) {
	mu, mp := s.getShard(key)
	mu.RLock()
	e, exists := mp[key]
	mu.RUnlock()
	if !exists {
		return v, false, false, 0
	}
	v, ok = e.h.resolve()
	return v, ok, true, e.gen
}

// Get はキーに対応する値を取得します。
// キーが無い、値が回収済み、または nil が保存されていた場合は false を返し、
// エントリがあればその場で削除します。
func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok, present, gen := s.lookup(key)
	if ok {
		s.cfg.Metrics.IncGetHit()
		return v, true
	}
	s.cfg.Metrics.IncGetMiss()
	if !present {
		var zero V
		return zero, false
	}

	// 遅延削除
	mu, mp := s.getShard(key)
	mu.Lock()
	// 解決してから他ゴルーチンが上書きしていないか再確認
	cur, still := mp[key]
	removed := still && cur.gen == gen
	if removed {
		delete(mp, key)
		s.size.Add(-1)
	}
	mu.Unlock()

	if removed {
		s.cfg.Metrics.AddReclaimed(1)
		s.cfg.Metrics.SetEntries(s.Size())
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("store.reclaimed", "key", key)
		}
		s.notifyRemoved(CauseReclaimed, key)
	}
	var zero V
	return zero, false
}

// Has はキーにエントリがあるかを返します。
// 値が回収済みでまだ掃除されていない場合も true になります。
func (s *Store[K, V]) Has(key K) bool {
	mu, mp := s.getShard(key)
	mu.RLock()
	_, exists := mp[key]
	mu.RUnlock()
	return exists
}

// Delete はキーに対応するエントリを削除します。
// 削除した場合は true、エントリが無く何もしなかった場合は false を返します。
func (s *Store[K, V]) Delete(key K) bool {
	mu, mp := s.getShard(key)
	mu.Lock()
	_, existed := mp[key]
	if existed {
		delete(mp, key)
		s.size.Add(-1)
	}
	mu.Unlock()
	if !existed {
		return false
	}

	s.cfg.Metrics.IncDeleted()
	s.cfg.Metrics.SetEntries(s.Size())
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug("store.delete", "key", key)
	}
	s.notifyRemoved(CauseDeleted, key)
	return true
}

type keyed[K comparable] struct {
	key K
	seq uint64
}

// Keys は現在のキーを初回挿入順に返すイテレータです。
// range を始めた時点のスナップショットを返すので、ループ中にストアを操作しても構いません。
func (s *Store[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		snap := make([]keyed[K], 0, s.Size())
		for i := 0; i < s.shardCount(); i++ {
			mu, mp := s.shardAt(i)
			mu.RLock()
			for k, e := range mp {
				snap = append(snap, keyed[K]{key: k, seq: e.seq})
			}
			mu.RUnlock()
		}
		slices.SortFunc(snap, func(a, b keyed[K]) int { return cmp.Compare(a.seq, b.seq) })
		for _, kv := range snap {
			if !yield(kv.key) {
				return
			}
		}
	}
}
