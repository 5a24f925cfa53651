package store

import "hash/maphash"

// hashKey はシャード選択用のハッシュを返します。
// maphash.Comparable は == と一致するので、-0 と +0 のように等しいキーは必ず同じシャードに入ります。
func (s *Store[K, V]) hashKey(key K) uint32 {
	if s.shardMask == 0 {
		return 0
	}
	h := maphash.Comparable(s.seed, key)
	return uint32(h) ^ uint32(h>>32)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
