package diversity

import (
	"fmt"
	"math"
)

// DistanceMatrix is a square, symmetric, zero-diagonal matrix of
// non-negative distances between labelled samples.
type DistanceMatrix struct {
	IDs  []string
	Data []float64 // flat row-major, len(IDs)*len(IDs)
}

// NewDistanceMatrix validates and wraps data. The slices are not copied.
func NewDistanceMatrix(ids []string, data []float64) (*DistanceMatrix, error) {
	n := len(ids)
	if len(data) != n*n {
		return nil, fmt.Errorf("%w: data length %d does not match %d IDs", ErrInvalidDistanceMatrix, len(data), n)
	}
	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate ID %q", ErrInvalidDistanceMatrix, id)
		}
		seen[id] = struct{}{}
	}
	for i := 0; i < n; i++ {
		if data[i*n+i] != 0 {
			return nil, fmt.Errorf("%w: non-zero diagonal at %q", ErrInvalidDistanceMatrix, ids[i])
		}
		for j := i + 1; j < n; j++ {
			d := data[i*n+j]
			if math.IsNaN(d) || d < 0 {
				return nil, fmt.Errorf("%w: distance %q-%q is %v", ErrInvalidDistanceMatrix, ids[i], ids[j], d)
			}
			if d != data[j*n+i] {
				return nil, fmt.Errorf("%w: asymmetric at %q-%q", ErrInvalidDistanceMatrix, ids[i], ids[j])
			}
		}
	}
	return &DistanceMatrix{IDs: ids, Data: data}, nil
}

// Size returns the number of samples.
func (m *DistanceMatrix) Size() int { return len(m.IDs) }

// At returns the distance between samples i and j.
func (m *DistanceMatrix) At(i, j int) float64 { return m.Data[i*len(m.IDs)+j] }
