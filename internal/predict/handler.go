package predict

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/predictor"
	"github.com/go-sod/knn/internal/predictor/knn"
	sampleDb "github.com/go-sod/knn/internal/sample/database"
)

type request struct {
	Dataset string      `json:"dataset"`
	K       int         `json:"k"`
	Method  string      `json:"method"`
	Vectors [][]float64 `json:"vectors"`
}

type prediction struct {
	Vec       []float64   `json:"vector"`
	Label     float64     `json:"label"`
	Class     string      `json:"class,omitempty"`
	Neighbors []int       `json:"neighbors"`
	IDs       []uuid.UUID `json:"neighborIds"`
}

type response struct {
	Dataset     string       `json:"dataset"`
	Method      string       `json:"method"`
	K           int          `json:"k"`
	Predictions []prediction `json:"predictions"`
}

func NewHandler(cfg *Config, p dispatcher.Predictor) (http.Handler, error) {
	return &handler{
		cfg:       cfg,
		predictor: p,
	}, nil
}

type handler struct {
	predictor dispatcher.Predictor
	cfg       *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	defer r.Body.Close()
	if !httputil.DecodeJSON(ctx, w, r, &req) {
		return
	}

	vectors := make([]geom.Point, len(req.Vectors))
	for i := range req.Vectors {
		vectors[i] = geom.NewPoint(req.Vectors[i])
	}
	result, err := h.predictor.Predict(ctx, dispatcher.PredictRequest{
		Dataset: req.Dataset,
		K:       req.K,
		Method:  predictor.Method(req.Method),
		Vectors: vectors,
	})
	switch {
	case errors.Is(err, sampleDb.ErrDatasetNotFound):
		httputil.RespNotFound(ctx, w, `{"error": "%v"}`, err)
		return
	case errors.Is(err, dispatcher.ErrEmptyDataset),
		errors.Is(err, dispatcher.ErrInvalidVector),
		errors.Is(err, dispatcher.ErrTooManyItems),
		errors.Is(err, geom.ErrDimNotEqual),
		errors.Is(err, knn.ErrInvalidK),
		errors.Is(err, knn.ErrInvalidMethod),
		errors.Is(err, knn.ErrNoUniqueMode):
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	case err != nil:
		httputil.RespInternalError(ctx, w, `{"error": "predict processing error, %v"}`, err)
		return
	}

	resp := response{
		Dataset:     result.Dataset,
		Method:      string(result.Method),
		K:           result.K,
		Predictions: make([]prediction, len(result.Predictions)),
	}
	for i, p := range result.Predictions {
		resp.Predictions[i] = prediction{
			Vec:       req.Vectors[i],
			Label:     p.Label,
			Class:     p.Class,
			Neighbors: p.Neighbors,
			IDs:       p.IDs,
		}
	}
	httputil.RespJSON(ctx, w, http.StatusOK, resp)
}
