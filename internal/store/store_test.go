package store

import (
	"math"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	name string
	n    int
}

type namer interface{ Name() string }

func (p *payload) Name() string { return p.name }

func newManual[K comparable, V any](t *testing.T, opts ...Option) *Store[K, V] {
	t.Helper()
	s := New[K, V](append([]Option{WithCleanupInterval(0)}, opts...)...)
	t.Cleanup(s.Release)
	return s
}

// putDropped は呼び出し元に参照を残さずに弱参照の値を Put します。
//
//go:noinline
func putDropped(t *testing.T, s *Store[string, *payload], key string, opts ...PutOption) {
	t.Helper()
	_, err := s.Put(key, &payload{name: key, n: len(key)}, opts...)
	require.NoError(t, err)
}

func TestStore_PutGetHard(t *testing.T) {
	t.Run("pointer identity", func(t *testing.T) {
		s := newManual[string, *payload](t)
		p := &payload{name: "a"}

		got, err := s.Put("a", p, WithHardRef(true))
		require.NoError(t, err)
		assert.Same(t, p, got)

		v, ok := s.Get("a")
		require.True(t, ok)
		assert.Same(t, p, v)
	})

	t.Run("primitives", func(t *testing.T) {
		s := newManual[string, any](t, WithPrimitivesAlwaysHard())
		for i, v := range []any{"a string", 1, 3.5, true, 0, ""} {
			k := strconv.Itoa(i)
			_, err := s.Put(k, v)
			require.NoError(t, err)

			got, ok := s.Get(k)
			require.True(t, ok, "value %v", v)
			assert.Equal(t, v, got)
		}
	})
}

func TestStore_WeakObjectAliveWhileReferenced(t *testing.T) {
	s := newManual[string, *payload](t)
	p := &payload{name: "alive"}
	_, err := s.Put("k", p)
	require.NoError(t, err)

	runtime.GC()

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Same(t, p, v)
	runtime.KeepAlive(p)
}

func TestStore_WeakObjectThroughInterface(t *testing.T) {
	s := newManual[string, namer](t)
	p := &payload{name: "iface"}
	_, err := s.Put("k", p)
	require.NoError(t, err)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "iface", v.Name())
	assert.Same(t, p, v.(*payload))
	runtime.KeepAlive(p)
}

func TestStore_Has(t *testing.T) {
	s := newManual[string, any](t)
	assert.False(t, s.Has("a"))

	p := &payload{name: "a"}
	for _, v := range []any{"a string", 1, p} {
		_, err := s.Put("a", v, WithHardRef(true))
		require.NoError(t, err)
		assert.True(t, s.Has("a"))
	}

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Has("a"))
}

func TestStore_InvalidKey(t *testing.T) {
	s := newManual[*payload, string](t)

	v, err := s.Put(nil, "x")
	require.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, "x", v)
	assert.Equal(t, 0, s.Size())

	s2 := newManual[any, string](t)
	_, err = s2.Put(nil, "x")
	require.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, 0, s2.Size())
}

func TestStore_NilValueEvictedOnGet(t *testing.T) {
	s := newManual[string, *payload](t)
	assert.Equal(t, 0, s.Size())

	_, err := s.Put("a", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Has("a"))

	v, ok := s.Get("a")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, 0, s.Size())
	assert.False(t, s.Has("a"))

	_, err = s.Put("b", nil, WithHardRef(true))
	require.NoError(t, err)
	_, ok = s.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Size())
}

func TestStore_Delete(t *testing.T) {
	s := newManual[string, int](t, WithPrimitivesAlwaysHard())

	assert.False(t, s.Delete("a"), "deleting a missing key is a no-op")

	_, _ = s.Put("a", 1)
	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Delete("a"))
	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Size())
	assert.False(t, s.Delete("a"))
	assert.Equal(t, 0, s.Size())
}

func TestStore_OverwriteKeepsSize(t *testing.T) {
	s := newManual[string, int](t, WithPrimitivesAlwaysHard())

	_, _ = s.Put("a", 1)
	_, _ = s.Put("b", 2)
	_, _ = s.Put("a", 3)
	assert.Equal(t, 2, s.Size())

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStore_Keys(t *testing.T) {
	s := newManual[string, any](t, WithPrimitivesAlwaysHard())
	obj := &payload{name: "c"}
	data := []struct {
		key   string
		value any
	}{{"a", 1}, {"b", "a string"}, {"c", obj}}
	for _, d := range data {
		_, err := s.Put(d.key, d.value, WithHardRef(true))
		require.NoError(t, err)
	}

	i := 0
	for k := range s.Keys() {
		assert.Equal(t, data[i].key, k)
		v, ok := s.Get(k)
		require.True(t, ok)
		assert.Equal(t, data[i].value, v)
		i++
	}
	assert.Equal(t, 3, i)

	t.Run("re-insert keeps position", func(t *testing.T) {
		_, _ = s.Put("a", 10)
		assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(s.Keys()))
	})

	t.Run("delete then put moves to the end", func(t *testing.T) {
		s.Delete("a")
		_, _ = s.Put("a", 11)
		assert.Equal(t, []string{"b", "c", "a"}, slices.Collect(s.Keys()))
	})

	t.Run("break stops early", func(t *testing.T) {
		n := 0
		for range s.Keys() {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})

	t.Run("mutation while ranging", func(t *testing.T) {
		for k := range s.Keys() {
			s.Delete(k)
		}
		assert.Equal(t, 0, s.Size())
		assert.Empty(t, slices.Collect(s.Keys()))
	})
}

func TestStore_SizeMatchesHas(t *testing.T) {
	s := newManual[int, int](t, WithPrimitivesAlwaysHard(), WithShards(4))
	for i := range 50 {
		_, _ = s.Put(i%20, i)
		if i%7 == 0 {
			s.Delete(i % 13)
		}

		n := 0
		for k := range 20 {
			if s.Has(k) {
				n++
			}
		}
		require.Equal(t, n, s.Size(), "step %d", i)
		require.Equal(t, n, len(slices.Collect(s.Keys())))
	}
}

func TestStore_ReclaimedObjectEvictedOnGet(t *testing.T) {
	s := newManual[string, *payload](t)
	putDropped(t, s, "a")

	runtime.GC()

	// 掃除前なので構造上はまだ存在する
	assert.True(t, s.Has("a"))
	assert.Equal(t, 1, s.Size())

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := s.Get("a")
		return !ok && !s.Has("a")
	}, waitFor, tick)
	assert.Equal(t, 0, s.Size())
}

func TestStore_WeakPrimitiveIsReclaimed(t *testing.T) {
	s := newManual[string, string](t)
	_, err := s.Put("a", strconv.Itoa(12345))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := s.Get("a")
		return !ok
	}, waitFor, tick)
	assert.False(t, s.Has("a"))
}

func TestStore_HardRefPrecedence(t *testing.T) {
	s := newManual[string, string](t, WithPrimitivesAlwaysHard())

	_, _ = s.Put("hard", strconv.Itoa(1))
	_, _ = s.Put("weak", strconv.Itoa(2), WithHardRef(false))

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := s.Get("weak")
		return !ok
	}, waitFor, tick)

	v, ok := s.Get("hard")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestStore_HolderClassification(t *testing.T) {
	s := newManual[string, any](t)
	kindOf := func(v any, opts ...PutOption) holderKind {
		var po putOptions
		for _, o := range opts {
			o(&po)
		}
		h, _ := s.newHolder(v, po.hardRef)
		return h.kind
	}

	assert.Equal(t, holderWeakObject, kindOf(&payload{}))
	assert.Equal(t, holderDirect, kindOf(&payload{}, WithHardRef(true)))
	assert.Equal(t, holderWeakPrimitive, kindOf("s"))
	assert.Equal(t, holderWeakPrimitive, kindOf(42))
	assert.Equal(t, holderWeakPrimitive, kindOf(nil))
	assert.Equal(t, holderWeakPrimitive, kindOf(&struct{}{}), "zero-sized pointee cannot be tracked")
	assert.Equal(t, holderDirect, kindOf(42, WithHardRef(true)))
	assert.Equal(t, holderWeakObject, kindOf(map[string]int{"a": 1}))
	assert.Equal(t, holderWeakObject, kindOf(make(chan int)))
	assert.Equal(t, holderWeakPrimitive, kindOf(map[string]int(nil)))
	assert.Equal(t, holderDirect, kindOf(func() {}))
	assert.Equal(t, holderDirect, kindOf(func() {}, WithHardRef(false)))

	hard := newManual[string, any](t, WithPrimitivesAlwaysHard())
	h, _ := hard.newHolder(42, nil)
	assert.Equal(t, holderDirect, h.kind)
	h, _ = hard.newHolder(&payload{}, nil)
	assert.Equal(t, holderWeakObject, h.kind)

	empty := newManual[string, struct{}](t)
	he, _ := empty.newHolder(struct{}{}, nil)
	assert.Equal(t, holderDirect, he.kind)
}

func TestStore_Concurrency(t *testing.T) {
	s := newManual[string, string](t, WithPrimitivesAlwaysHard())
	const n = 1000
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := "k" + strconv.Itoa(i)
			_, _ = s.Put(k, "v")
			if _, ok := s.Get(k); !ok {
				t.Errorf("missing key %s", k)
			}
			s.Delete(k)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, s.Size())
}

func TestStore_ShardPadding(t *testing.T) {
	s := newManual[int, int](t, WithShardPadding(), WithShards(3), WithPrimitivesAlwaysHard())
	assert.Equal(t, 4, s.shardCount())

	for i := range 100 {
		_, _ = s.Put(i, i*2)
	}
	assert.Equal(t, 100, s.Size())
	v, ok := s.Get(42)
	require.True(t, ok)
	assert.Equal(t, 84, v)
}

func TestStore_ReleaseIdempotent(t *testing.T) {
	s := New[string, int]()
	s.Release()
	s.Release()
	require.NoError(t, s.Close())

	manual := New[string, int](WithCleanupInterval(0))
	manual.Release()
}

var globalPayload = payload{name: "global"}

func TestStore_PointerToPackageVariable(t *testing.T) {
	s := newManual[string, *payload](t)
	s.WithGlobalFinalizer(func(string) {})

	_, err := s.Put("g", &globalPayload)
	require.NoError(t, err)

	for range 3 {
		runtime.GC()
	}
	v, ok := s.Get("g")
	require.True(t, ok)
	assert.Same(t, &globalPayload, v)
	assert.Equal(t, 1, s.Size())
}

func TestStore_ReferenceKindsAliveWhileReferenced(t *testing.T) {
	s := newManual[string, any](t)
	m := map[string]int{"x": 1}
	ch := make(chan int, 1)
	calls := 0
	fn := func() { calls++ }

	for k, v := range map[string]any{"map": m, "chan": ch, "func": fn} {
		_, err := s.Put(k, v)
		require.NoError(t, err)
	}
	for range 5 {
		runtime.GC()
	}

	got, ok := s.Get("map")
	require.True(t, ok)
	m["x"] = 2
	assert.Equal(t, 2, got.(map[string]int)["x"], "same map, not a copy")

	got, ok = s.Get("chan")
	require.True(t, ok)
	got.(chan int) <- 7
	assert.Equal(t, 7, <-ch)

	got, ok = s.Get("func")
	require.True(t, ok)
	got.(func())()
	assert.Equal(t, 1, calls)

	runtime.KeepAlive(m)
	runtime.KeepAlive(ch)
}

//go:noinline
func putDroppedMap(t *testing.T, s *Store[string, map[string]int], key string) {
	t.Helper()
	_, err := s.Put(key, map[string]int{key: len(key)})
	require.NoError(t, err)
}

func TestStore_WeakMapReclaimed(t *testing.T) {
	s := newManual[string, map[string]int](t)
	putDroppedMap(t, s, "m")

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := s.Get("m")
		return !ok
	}, waitFor, tick)
	assert.False(t, s.Has("m"))
	assert.Zero(t, s.Size())
}

func TestStore_SignedZeroKeys(t *testing.T) {
	t.Run("float32", func(t *testing.T) {
		s := newManual[float32, int](t, WithPrimitivesAlwaysHard())
		negZero := float32(math.Copysign(0, -1))

		_, _ = s.Put(negZero, 1)
		assert.True(t, s.Has(0))

		_, _ = s.Put(0, 2)
		assert.Equal(t, 1, s.Size())
		v, ok := s.Get(negZero)
		require.True(t, ok)
		assert.Equal(t, 2, v)
	})

	t.Run("struct with floats", func(t *testing.T) {
		type point struct{ X, Y float64 }
		s := newManual[point, int](t, WithPrimitivesAlwaysHard())

		_, _ = s.Put(point{X: math.Copysign(0, -1), Y: 1}, 1)
		assert.True(t, s.Has(point{X: 0, Y: 1}))

		_, _ = s.Put(point{X: 0, Y: 1}, 2)
		assert.Equal(t, 1, s.Size())
		assert.Equal(t, []point{{X: 0, Y: 1}}, slices.Collect(s.Keys()))
	})
}
