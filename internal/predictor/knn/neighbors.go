package knn

import (
	"fmt"

	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/pkg/pqueue"
)

// Neighbors returns, for every query, the indices of the k closest reference
// points by Euclidean distance, nearest first.
func Neighbors(ref, queries []geom.Point, k int) ([][]int, error) {
	return neighborsWith(geom.EuclideanDistance, ref, queries, k)
}

func neighborsWith(distFn geom.DistanceFn, ref, queries []geom.Point, k int) ([][]int, error) {
	if err := validateK(k, len(ref)); err != nil {
		return nil, err
	}
	if err := validatePoints(ref, queries); err != nil {
		return nil, err
	}
	out := make([][]int, len(queries))
	for i := range queries {
		nn, err := nearest(distFn, ref, queries[i], k)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		out[i] = nn
	}
	return out, nil
}

// nearest scans the whole reference set. Equal distances keep reference
// order, so the lower index comes first.
func nearest(distFn geom.DistanceFn, ref []geom.Point, query geom.Point, k int) ([]int, error) {
	pq := pqueue.New(pqueue.WithCap(uint(k)))
	for j := range ref {
		distance, err := distFn(query, ref[j])
		if err != nil {
			return nil, fmt.Errorf("unable to compute distance between %v and reference %d: %w", query, j, err)
		}
		pq.Push(j, distance)
	}
	nn := pq.PopAll()
	if len(nn) < k {
		return nil, fmt.Errorf("found %d neighbors, expected %d: %w", len(nn), k, ErrInvalidK)
	}
	return nn, nil
}

func validateK(k, size int) error {
	if k <= 0 || k > size {
		return fmt.Errorf("k=%d, reference size %d: %w", k, size, ErrInvalidK)
	}
	return nil
}

// validatePoints checks that every point shares the dimension of the first
// reference point and holds only finite coordinates.
func validatePoints(ref, queries []geom.Point) error {
	dim, err := geom.CheckDimensions(-1, ref...)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if _, err := geom.CheckDimensions(dim, queries...); err != nil {
		return fmt.Errorf("queries: %w", err)
	}
	if err := geom.CheckFinite(ref...); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if err := geom.CheckFinite(queries...); err != nil {
		return fmt.Errorf("queries: %w", err)
	}
	return nil
}
