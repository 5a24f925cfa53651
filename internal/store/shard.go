package store

import "sync"

type shardCompact[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]entry[V]
}

type shardPadding[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]entry[V]
	_  [cacheLineSize]byte // cache line padding
}

func (s *Store[K, V]) getShard(key K) (rw *sync.RWMutex, m map[K]entry[V]) {
	return s.shardAt(int(s.hashKey(key) & s.shardMask))
}

func (s *Store[K, V]) shardAt(idx int) (rw *sync.RWMutex, m map[K]entry[V]) {
	if s.cfg.EnableShardPadding {
		sh := &s.shardsPadded[idx]
		return &sh.mu, sh.m
	}
	sh := &s.shardsCompact[idx]
	return &sh.mu, sh.m
}

func (s *Store[K, V]) shardCount() int {
	if s.cfg.EnableShardPadding {
		return len(s.shardsPadded)
	}
	return len(s.shardsCompact)
}
