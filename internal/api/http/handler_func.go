package http

import "net/http"

// HandlerFunc はキャッシュ API のハンドラの型です。
// 返したエラーは writeError で AppError の JSON エンベロープに変換されます。
// 成功時のレスポンスはハンドラ自身が書き込みます。
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		writeError(w, err)
	}
}
