package store

// RemovalCause はエントリが削除された理由を表します。
type RemovalCause uint8

const (
	// CauseDeleted は Delete による明示的な削除です。
	CauseDeleted RemovalCause = iota + 1
	// CauseReclaimed は Get が回収済み (または nil) の値を見つけたことによる遅延削除です。
	CauseReclaimed
	// CauseSwept はスイーパーによる削除です。
	CauseSwept
)

func (c RemovalCause) String() string {
	switch c {
	case CauseDeleted:
		return "deleted"
	case CauseReclaimed:
		return "reclaimed"
	case CauseSwept:
		return "swept"
	default:
		return "unknown"
	}
}

// RemovalListener はエントリ削除の通知を受け取ります。
// シャードのロック外、Size 更新後に呼ばれます。
type RemovalListener[K comparable] interface {
	OnRemove(key K, cause RemovalCause)
}

// RemovalListenerFunc は関数を RemovalListener として使うためのアダプタです。
type RemovalListenerFunc[K comparable] func(key K, cause RemovalCause)

// OnRemove は f(key, cause) を呼びます。
func (f RemovalListenerFunc[K]) OnRemove(key K, cause RemovalCause) { f(key, cause) }

func (s *Store[K, V]) notifyRemoved(cause RemovalCause, keys ...K) {
	p := s.listener.Load()
	if p == nil {
		return
	}
	l := *p
	for _, k := range keys {
		l.OnRemove(k, cause)
	}
}
