package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodySize は PUT で受け付けるボディの上限です。
const maxBodySize = 1 << 20

// DecodeJSON はリクエストボディの JSON を dst にデコードします。
// 未知のフィールドと複数の JSON 値は INVALID_JSON として拒否します。
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return InvalidJSON("empty body")
	}
	defer func() {
		_ = r.Body.Close()
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var se *json.SyntaxError
		var ute *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return InvalidJSON("empty body")
		case errors.As(err, &se):
			return InvalidJSON("malformed JSON")
		case errors.As(err, &ute):
			return InvalidJSON("type mismatch in field " + ute.Field)
		default:
			return InvalidJSON("invalid JSON")
		}
	}
	if dec.More() {
		return InvalidJSON("multiple JSON values")
	}
	return nil
}
