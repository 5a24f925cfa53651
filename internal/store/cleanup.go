package store

import "time"

func (s *Store[K, V]) cleanupLoop() {
	defer s.wg.Done()
	t := time.NewTicker(s.cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Sweep は全シャードを走査し、値が回収済み (または nil) のエントリを削除します。
// 削除した件数を返します。スイーパーを無効にした場合は呼び出し側が任意のタイミングで呼べます。
func (s *Store[K, V]) Sweep() int {
	start := time.Now()
	total := 0
	for i := 0; i < s.shardCount(); i++ {
		removed := s.sweepShard(i)
		if len(removed) == 0 {
			continue
		}
		total += len(removed)
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("store.sweep.shard", "shard", i, "removed", len(removed))
		}
		s.notifyRemoved(CauseSwept, removed...)
	}

	s.cfg.Metrics.ObserveSweep(time.Since(start))
	if total > 0 {
		s.cfg.Metrics.AddReclaimed(total)
		s.cfg.Metrics.SetEntries(s.Size())
		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("store.sweep", "removed", total, "size", s.Size(), "duration", time.Since(start).String())
		}
	}
	return total
}

func (s *Store[K, V]) sweepShard(i int) []K {
	mu, mp := s.shardAt(i)
	var removed []K
	mu.Lock()
	for k, e := range mp {
		if _, ok := e.h.resolve(); !ok {
			delete(mp, k)
			removed = append(removed, k)
		}
	}
	if len(removed) > 0 {
		s.size.Add(-int64(len(removed)))
	}
	mu.Unlock()
	return removed
}
