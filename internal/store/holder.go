package store

import (
	"reflect"
	"unsafe"
	"weak"
)

// pointerOf は v が弱参照できる参照型であれば、その参照先のアドレスと動的な型を返します。
// 対象は非 nil のポインタ (参照先のサイズが 0 でないもの)、マップ、チャネルです。
func pointerOf(v any) (unsafe.Pointer, reflect.Type, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, false
	}
	switch rv.Kind() {
	case reflect.Pointer:
		// サイズ 0 の割り当ては全て同じアドレスを共有し、回収されない
		if rv.IsNil() || rv.Type().Elem().Size() == 0 {
			return nil, nil, false
		}
	case reflect.Map, reflect.Chan:
		if rv.IsNil() {
			return nil, nil, false
		}
	default:
		return nil, nil, false
	}
	return rv.UnsafePointer(), rv.Type(), true
}

// isFunc は v が非 nil の関数かを返します。
// クロージャを持たない関数値は読み取り専用領域に置かれ、弱参照も回収の検知もできません。
func isFunc(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func && !rv.IsNil()
}

// isNil は v が「値なし」として扱われるかを返します。
// マップとスライスの nil はそのまま使える値なので含めません。
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

func zeroSized[V any]() bool {
	var zero V
	return unsafe.Sizeof(zero) == 0
}

// newHolder は値を分類して holder を作ります。
// 弱参照になった場合は参照先 (ポインタの指す先か box) を target として返し、
// 呼び出し側がファイナライザを登録できるようにします。
func (s *Store[K, V]) newHolder(value V, hardRef *bool) (h holder[V], target unsafe.Pointer) {
	if hardRef != nil && *hardRef {
		return holder[V]{kind: holderDirect, direct: value}, nil
	}
	if zeroSized[V]() {
		return holder[V]{kind: holderDirect, direct: value}, nil
	}

	if p, typ, ok := pointerOf(any(value)); ok {
		return holder[V]{kind: holderWeakObject, obj: weak.Make((*byte)(p)), typ: typ}, p
	}

	if isFunc(any(value)) {
		return holder[V]{kind: holderDirect, direct: value}, nil
	}

	if hardRef == nil && s.cfg.PrimitivesAlwaysHard {
		return holder[V]{kind: holderDirect, direct: value}, nil
	}

	b := &box[V]{v: value}
	return holder[V]{kind: holderWeakPrimitive, prim: weak.Make(b)}, unsafe.Pointer(b)
}

// resolve は holder から現在の値を取り出します。回収済み・nil の場合は false。
// エントリの削除は行いません。
func (h holder[V]) resolve() (V, bool) {
	var zero V
	switch h.kind {
	case holderDirect:
		if isNil(any(h.direct)) {
			return zero, false
		}
		return h.direct, true
	case holderWeakObject:
		p := h.obj.Value()
		if p == nil {
			return zero, false
		}
		var rv reflect.Value
		if h.typ.Kind() == reflect.Pointer {
			rv = reflect.NewAt(h.typ.Elem(), unsafe.Pointer(p))
		} else {
			// マップとチャネルは値そのものが参照先への 1 語のポインタ
			rv = reflect.NewAt(h.typ, unsafe.Pointer(&p)).Elem()
		}
		v, ok := rv.Interface().(V)
		if !ok {
			return zero, false
		}
		return v, true
	case holderWeakPrimitive:
		b := h.prim.Value()
		if b == nil || isNil(any(b.v)) {
			return zero, false
		}
		return b.v, true
	default:
		return zero, false
	}
}

// isWeak は holder が弱参照かどうかを返します。
func (h holder[V]) isWeak() bool {
	return h.kind != holderDirect
}
