package store

import (
	"reflect"
	"weak"
)

// holderKind はエントリ値の保持方法を表します。
type holderKind uint8

const (
	holderDirect        holderKind = iota // 強参照
	holderWeakObject                      // ポインタ値を弱参照
	holderWeakPrimitive                   // 値を box に包んで box を弱参照
)

func (k holderKind) String() string {
	switch k {
	case holderDirect:
		return "direct"
	case holderWeakObject:
		return "weak-object"
	case holderWeakPrimitive:
		return "weak-primitive"
	default:
		return "unknown"
	}
}

// box はポインタを持たない値を弱参照できるようにする 1 フィールドのラッパーです。
type box[V any] struct {
	v V
}

type holder[V any] struct {
	kind   holderKind
	direct V
	obj    weak.Pointer[byte] // holderWeakObject: 参照先オブジェクトの先頭
	typ    reflect.Type       // holderWeakObject: 元のポインタ型
	prim   weak.Pointer[box[V]]
}

type entry[V any] struct {
	h   holder[V]
	seq uint64 // 初回挿入順。上書きでは変わらない
	gen uint64 // Put ごとに変わる
}

const cacheLineSize = 64
