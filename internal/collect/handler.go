package collect

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/predictor/knn"
	"github.com/go-sod/knn/internal/sample/model"
)

type request struct {
	Dataset string `json:"dataset"`
	Data    []struct {
		Vec       []float64 `json:"vector"`
		Label     float64   `json:"label"`
		Class     string    `json:"class"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"data"`
}

type response struct {
	Dataset string `json:"dataset"`
	Stored  int    `json:"stored"`
}

func NewHandler(cfg *Config, collector dispatcher.Collector) (http.Handler, error) {
	s := &handler{
		collector: collector,
		cfg:       cfg,
	}
	return s, nil
}

type handler struct {
	collector dispatcher.Collector
	cfg       *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	defer r.Body.Close()
	if !httputil.DecodeJSON(ctx, w, r, &req) {
		return
	}

	now := time.Now().UTC()
	samples := make([]model.Sample, 0, len(req.Data))
	for _, dat := range req.Data {
		createdAt := dat.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		samples = append(samples, model.NewSample(req.Dataset, geom.NewPoint(dat.Vec), dat.Label, dat.Class, createdAt))
	}

	n, err := h.collector.Collect(ctx, samples...)
	switch {
	case errors.Is(err, dispatcher.ErrEmptyDataset),
		errors.Is(err, dispatcher.ErrInvalidVector),
		errors.Is(err, dispatcher.ErrMixedLabels),
		errors.Is(err, dispatcher.ErrTooManyItems),
		errors.Is(err, geom.ErrDimNotEqual),
		errors.Is(err, knn.ErrInvalidLabel):
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	case err != nil:
		httputil.RespInternalError(ctx, w, `{"error": "collect processing error, %v"}`, err)
		return
	}

	logger.Infof("Collected %d values for dataset %s", n, req.Dataset)
	httputil.RespJSON(ctx, w, http.StatusOK, response{Dataset: req.Dataset, Stored: n})
}
