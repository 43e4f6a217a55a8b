package phylo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/TrevorS/umap"
)

// Method selects a member of the UniFrac family.
type Method string

const (
	UnweightedUniFrac           Method = "unweighted_unifrac"
	WeightedUnnormalizedUniFrac Method = "weighted_unnormalized_unifrac"
	WeightedNormalizedUniFrac   Method = "weighted_normalized_unifrac"
	GeneralizedUniFrac          Method = "generalized_unifrac"
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{UnweightedUniFrac, WeightedUnnormalizedUniFrac, WeightedNormalizedUniFrac, GeneralizedUniFrac}
}

var (
	// ErrUnknownMethod is returned for a method outside Methods().
	ErrUnknownMethod = errors.New("phylo: unknown UniFrac method")
	// ErrMissingTips is returned when table features are absent from the tree.
	ErrMissingTips = errors.New("phylo: features not present in tree")
)

// Options controls UniFrac computation.
type Options struct {
	Method Method

	// VarianceAdjusted weights each branch by the inverse standard
	// deviation of its expected abundance difference (Chang et al. 2011).
	VarianceAdjusted bool

	// Alpha controls the weight given to abundant lineages by
	// GeneralizedUniFrac. 1 reproduces weighted normalized UniFrac and 0
	// approaches unweighted. Ignored by other methods. Default: 1.
	Alpha float64

	// BypassTips ignores the branches leading to tips, trading some
	// accuracy for speed on very large trees.
	BypassTips bool

	// Threads is the number of goroutines used for pairwise distances.
	// Values < 1 mean 1. Default: 1.
	Threads int
}

// DefaultOptions returns unweighted UniFrac on one thread.
func DefaultOptions() Options {
	return Options{Method: UnweightedUniFrac, Alpha: 1, Threads: 1}
}

// ParseMethod validates a method name.
func ParseMethod(name string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == name {
			return m, nil
		}
	}
	names := make([]string, 0, len(Methods()))
	for _, m := range Methods() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("%w %q; valid methods are %s", ErrUnknownMethod, name, strings.Join(names, ", "))
}

// UniFrac computes the pairwise distance between every pair of rows of
// counts (samples × features, columns named by featureIDs) over tree.
// It returns a flat n×n row-major matrix.
func UniFrac(featureIDs []string, counts [][]float64, tree *Tree, opts Options) ([]float64, error) {
	if _, err := ParseMethod(string(opts.Method)); err != nil {
		return nil, err
	}
	if tree == nil || tree.Root == nil {
		return nil, errors.New("phylo: tree is empty")
	}
	tips, err := tree.TipIndex()
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range featureIDs {
		if _, ok := tips[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingTips, strings.Join(missing, ", "))
	}

	// Enumerate the branches that contribute, in post-order, and give every
	// node a slot so tip counts can be propagated to their ancestors.
	var nodes []*Node
	slot := make(map[*Node]int)
	tree.PostOrder(func(n *Node) {
		slot[n] = len(nodes)
		nodes = append(nodes, n)
	})
	var branches []int
	var lengths []float64
	for i, n := range nodes {
		if n.Parent == nil || n.Length == 0 {
			continue
		}
		if opts.BypassTips && n.IsTip() {
			continue
		}
		branches = append(branches, i)
		lengths = append(lengths, n.Length)
	}

	// Row layout per sample: [total, count under branch 0, branch 1, ...].
	n := len(counts)
	dims := len(branches) + 1
	flat := make([]float64, n*dims)
	under := make([]float64, len(nodes))
	for s, row := range counts {
		if len(row) != len(featureIDs) {
			return nil, fmt.Errorf("phylo: sample %d has %d counts, expected %d", s, len(row), len(featureIDs))
		}
		clear(under)
		var total float64
		for f, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("phylo: sample %d has negative count for %q", s, featureIDs[f])
			}
			under[slot[tips[featureIDs[f]]]] += c
			total += c
		}
		for i, nd := range nodes {
			if nd.Parent != nil {
				under[slot[nd.Parent]] += under[i]
			}
		}
		base := s * dims
		flat[base] = total
		for b, i := range branches {
			flat[base+1+b] = under[i]
		}
	}

	metric := branchMetric{lengths: lengths, opts: opts}
	return umap.ComputePairwiseDistancesParallel(flat, n, dims, metric, max(opts.Threads, 1)), nil
}

// branchMetric compares two samples laid out as [total, per-branch counts].
// It holds no mutable state and is safe for concurrent use.
type branchMetric struct {
	lengths []float64
	opts    Options
}

func (m branchMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

func (m branchMetric) Distance(a, b []float64) float64 {
	ta, tb := a[0], b[0]
	mT := ta + tb

	var num, den float64
	for i, l := range m.lengths {
		ca, cb := a[i+1], b[i+1]
		if ca == 0 && cb == 0 {
			continue
		}
		w := l
		if m.opts.VarianceAdjusted {
			mi := ca + cb
			v := mi * (mT - mi)
			if v <= 0 {
				continue
			}
			w /= math.Sqrt(v)
		}

		var pa, pb float64
		if ta > 0 {
			pa = ca / ta
		}
		if tb > 0 {
			pb = cb / tb
		}

		switch m.opts.Method {
		case UnweightedUniFrac:
			if (ca > 0) != (cb > 0) {
				num += w
			}
			den += w
		case WeightedUnnormalizedUniFrac:
			num += w * math.Abs(pa-pb)
		case WeightedNormalizedUniFrac:
			num += w * math.Abs(pa-pb)
			den += w * (pa + pb)
		case GeneralizedUniFrac:
			sum := pa + pb
			if sum == 0 {
				continue
			}
			scaled := w * math.Pow(sum, m.opts.Alpha)
			num += scaled * math.Abs(pa-pb) / sum
			den += scaled
		}
	}

	if m.opts.Method == WeightedUnnormalizedUniFrac {
		return num
	}
	if den == 0 {
		return 0
	}
	return num / den
}
