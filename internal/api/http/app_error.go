package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amakane-hakari/weakcache/internal/store"
)

// AppError はキャッシュ API がクライアントに返すエラーです。
// {"error": {...}} のエンベロープで JSON として書き出されます。
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
}

const (
	// CodeBadRequest はリクエストの形式が不正なときのコードです (400)。
	CodeBadRequest = "BAD_REQUEST"
	// CodeNotFound はキーが無い、または値が回収済みのときのコードです (404)。
	CodeNotFound = "NOT_FOUND"
	// CodeInternalError は想定外のエラーのコードです (500)。
	CodeInternalError = "INTERNAL_ERROR"
	// CodeInvalidJSON は PUT のボディを読めなかったときのコードです (400)。
	CodeInvalidJSON = "INVALID_JSON"
	// CodeTimeout はリクエストの期限切れのコードです (408)。
	CodeTimeout = "TIMEOUT"
	// CodeCanceled はクライアントが切断したときのコードです (408)。
	CodeCanceled = "CANCELED"
	// CodeInvalidKey はストアがキーを拒否したときのコードです (400)。
	CodeInvalidKey = "INVALID_KEY"
)

func (e *AppError) Error() string { return e.Code + ": " + e.Message }

// NewAppError は AppError を作ります。meta は error.meta にそのまま入ります。
func NewAppError(status int, code, message string, meta any) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Meta:    meta,
	}
}

// BadRequest は 400 の AppError を返します。
func BadRequest(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, msg, nil)
}

// NotFound は 404 の AppError を返します。GET と DELETE でキーが無いときに使います。
func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, msg, nil)
}

// Internal は 500 の AppError を返します。
func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, msg, nil)
}

// InvalidJSON は DecodeJSON が返す 400 の AppError です。
func InvalidJSON(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidJSON, msg, nil)
}

// FromStdError は error を AppError に変換します。
// store.ErrInvalidKey とコンテキストのエラー以外は内容を隠して 500 にします。
func FromStdError(err error) *AppError {
	if err == nil {
		return nil
	}

	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	switch {
	case errors.Is(err, store.ErrInvalidKey):
		return NewAppError(http.StatusBadRequest, CodeInvalidKey, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		return NewAppError(http.StatusRequestTimeout, CodeCanceled, "request canceled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusRequestTimeout, CodeTimeout, "request timeout", nil)
	default:
		return Internal("unexpected error")
	}
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Err *AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	app := FromStdError(err)
	if app == nil {
		// Fallback
		app = Internal("unexpected error")
	}
	writeJSON(w, app.Status, errorEnvelope{Err: app})
}
