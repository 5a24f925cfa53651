package http

import (
	"net/http"
	"sync/atomic"
)

var draining atomic.Bool

// SetDraining はドレイニング状態を設定します。シャットダウン開始時に true にします。
func SetDraining(v bool) {
	draining.Store(v)
}

type healthDTO struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

// healthHandler は生存確認とキャッシュのエントリ数を返します。
// Entries は回収済みで未掃除のエントリも含む概算値です。
func healthHandler(st Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if draining.Load() {
			writeJSON(w, http.StatusServiceUnavailable, healthDTO{Status: "draining", Entries: st.Size()})
			return
		}
		writeJSON(w, http.StatusOK, healthDTO{Status: "ok", Entries: st.Size()})
	}
}
