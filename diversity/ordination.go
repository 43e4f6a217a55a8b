package diversity

// Ordination places samples in a low-dimensional coordinate space.
// Eigvals and ProportionExplained are informational and may be all zero
// for methods without a variance decomposition.
type Ordination struct {
	ShortMethodName     string
	LongMethodName      string
	SampleIDs           []string
	Axes                []string
	Coordinates         [][]float64 // Coordinates[sample][axis]
	Eigvals             []float64
	ProportionExplained []float64
}

// Dims returns the number of axes.
func (o *Ordination) Dims() int { return len(o.Axes) }
