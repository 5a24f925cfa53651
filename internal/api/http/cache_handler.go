package http

import (
	"iter"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/amakane-hakari/weakcache/internal/store"
)

// Cache は HTTP から操作するキャッシュです。*store.Store[string, string] が満たします。
type Cache interface {
	Put(key, value string, opts ...store.PutOption) (string, error)
	Get(key string) (string, bool)
	Has(key string) bool
	Delete(key string) bool
	Keys() iter.Seq[string]
	Size() int
	Sweep() int
}

type cacheHandler struct {
	st Cache
}

func (h *cacheHandler) mount(r chi.Router) {
	r.Route("/cache", func(r chi.Router) {
		r.Method(http.MethodGet, "/", HandlerFunc(h.list))
		r.Method(http.MethodPost, "/sweep", HandlerFunc(h.sweep))
		r.Method(http.MethodPut, "/{key}", HandlerFunc(h.put))
		r.Method(http.MethodGet, "/{key}", HandlerFunc(h.get))
		r.Method(http.MethodHead, "/{key}", HandlerFunc(h.has))
		r.Method(http.MethodDelete, "/{key}", HandlerFunc(h.del))
	})
}

type putRequest struct {
	Value string `json:"value"`
	Hard  *bool  `json:"hard,omitempty"`
}

type valueDTO struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Hard  *bool  `json:"hard,omitempty"`
}

type deleteDTO struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
}

type listDTO struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

type sweepDTO struct {
	Removed int `json:"removed"`
	Size    int `json:"size"`
}

func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if key == "" {
		return "", BadRequest("empty key")
	}
	return key, nil
}

func (h *cacheHandler) put(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	var req putRequest
	if err := DecodeJSON(r, &req); err != nil {
		return err
	}
	var opts []store.PutOption
	if req.Hard != nil {
		opts = append(opts, store.WithHardRef(*req.Hard))
	}
	v, err := h.st.Put(key, req.Value, opts...)
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: v, Hard: req.Hard})
	return nil
}

func (h *cacheHandler) get(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	v, ok := h.st.Get(key)
	if !ok {
		return NotFound("key not found")
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: v})
	return nil
}

func (h *cacheHandler) has(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	if !h.st.Has(key) {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *cacheHandler) del(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	if !h.st.Delete(key) {
		return NotFound("key not found")
	}
	writeSuccess(w, http.StatusOK, deleteDTO{Key: key, Deleted: true})
	return nil
}

func (h *cacheHandler) list(w http.ResponseWriter, _ *http.Request) error {
	keys := slices.Collect(h.st.Keys())
	if keys == nil {
		keys = []string{}
	}
	writeSuccess(w, http.StatusOK, listDTO{Size: h.st.Size(), Keys: keys})
	return nil
}

func (h *cacheHandler) sweep(w http.ResponseWriter, _ *http.Request) error {
	removed := h.st.Sweep()
	writeSuccess(w, http.StatusOK, sweepDTO{Removed: removed, Size: h.st.Size()})
	return nil
}
