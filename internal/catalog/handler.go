package catalog

import (
	"errors"
	"net/http"

	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/httputil"
	sampleDb "github.com/go-sod/knn/internal/sample/database"
)

type dataset struct {
	Name    string `json:"name"`
	Samples int    `json:"samples"`
}

// NewHandler serves GET (list datasets) and DELETE ?name= (drop one).
func NewHandler(c dispatcher.Catalog) http.Handler {
	return &handler{catalog: c}
}

type handler struct {
	catalog dispatcher.Catalog
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		list, err := h.catalog.Datasets(ctx)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "list datasets, %v"}`, err)
			return
		}
		out := make([]dataset, len(list))
		for i, d := range list {
			out[i] = dataset{Name: d.Name, Samples: d.Samples}
		}
		httputil.RespJSON(ctx, w, http.StatusOK, out)
	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		err := h.catalog.Drop(ctx, name)
		switch {
		case errors.Is(err, dispatcher.ErrEmptyDataset):
			httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		case errors.Is(err, sampleDb.ErrDatasetNotFound):
			httputil.RespNotFound(ctx, w, `{"error": "%v"}`, err)
		case err != nil:
			httputil.RespInternalError(ctx, w, `{"error": "drop dataset, %v"}`, err)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		httputil.RespJSON(ctx, w, http.StatusMethodNotAllowed, map[string]string{
			"error": "method " + r.Method + " is not allowed",
		})
	}
}
