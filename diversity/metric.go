package diversity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/TrevorS/umap"
)

// Aitchison names the compositional metric: Euclidean distance between
// centred log-ratio transforms after a pseudocount is added.
const Aitchison = "aitchison"

// Metric selects how samples are compared. Exactly one of Name and Func is
// normally set; a non-nil Func takes precedence. The zero Metric means
// euclidean.
type Metric struct {
	Name string
	Func umap.DistanceMetric
}

// MetricName selects a metric by name.
func MetricName(name string) Metric { return Metric{Name: name} }

// MetricFunc selects a caller-supplied metric. It may be invoked from
// several goroutines at once and must not mutate its arguments.
func MetricFunc(f umap.DistanceMetric) Metric { return Metric{Name: "custom", Func: f} }

// ValidMetrics returns every metric name accepted by Metric, sorted, not
// including the precomputed sentinel.
func ValidMetrics() []string {
	names := append(umap.ValidMetrics(), Aitchison)
	sort.Strings(names)
	return names
}

func (m Metric) name() string {
	if m.Name == "" {
		return "euclidean"
	}
	return m.Name
}

func (m Metric) validate() error {
	if m.Func != nil {
		return nil
	}
	name := m.name()
	if name == Aitchison || umap.IsValidMetric(name) {
		return nil
	}
	return fmt.Errorf("%w %q; valid options are %s, %q, or a custom metric",
		ErrUnknownMetric, name, strings.Join(ValidMetrics(), ", "), umap.PrecomputedMetric)
}

func (m Metric) precomputed() bool {
	return m.Func == nil && m.name() == umap.PrecomputedMetric
}
