package diversity

import (
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/TrevorS/umap"
)

const (
	embedColumns = 3

	// UMAPShortName and UMAPLongName label ordinations produced by Embed.
	UMAPShortName = "umap"
	UMAPLongName  = "Uniform Manifold Approximation and Projection"
)

// EmbedOptions configures Embed.
type EmbedOptions struct {
	// NNeighbors is the neighbourhood size. 0 means 15.
	NNeighbors int

	// MinDist is the minimum spacing of embedded points, in [0, 1]. Zero is
	// a valid spacing; DefaultEmbedOptions sets 1.
	MinDist float64

	// NumberOfDimensions is the embedding dimension, in [1, 3]. The result
	// always has three axes; unused axes are zero before centering.
	// 0 means 2.
	NumberOfDimensions int

	// RandomState seeds the embedding. 0 means 724.
	RandomState int64

	// Workers bounds parallelism. 0 means runtime.NumCPU().
	Workers int

	// Logger receives progress messages. nil discards them.
	Logger *log.Logger
}

const (
	defaultEmbedNeighbors   = 15
	defaultEmbedDimensions  = 2
	defaultEmbedRandomState = int64(724)
)

// DefaultEmbedOptions returns 15 neighbours, a minimum distance of 1 and two
// dimensions seeded with 724.
func DefaultEmbedOptions() EmbedOptions {
	return EmbedOptions{
		NNeighbors:         defaultEmbedNeighbors,
		MinDist:            1,
		NumberOfDimensions: defaultEmbedDimensions,
		RandomState:        defaultEmbedRandomState,
	}
}

func (o *EmbedOptions) applyDefaults() {
	if o.NNeighbors == 0 {
		o.NNeighbors = defaultEmbedNeighbors
	}
	if o.NumberOfDimensions == 0 {
		o.NumberOfDimensions = defaultEmbedDimensions
	}
	if o.RandomState == 0 {
		o.RandomState = defaultEmbedRandomState
	}
}

// Embed places the samples of dm in a three-column ordination computed by
// UMAP on the precomputed distances and then centred with Center. Axes are
// named UMAP-0, UMAP-1 and UMAP-2.
func Embed(dm *DistanceMatrix, opts EmbedOptions) (*Ordination, error) {
	if dm == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidDistanceMatrix)
	}
	opts.applyDefaults()
	if opts.NumberOfDimensions < 1 || opts.NumberOfDimensions > embedColumns {
		return nil, fmt.Errorf("diversity: number of dimensions must be between 1 and %d, got %d", embedColumns, opts.NumberOfDimensions)
	}
	n := dm.Size()
	if opts.NumberOfDimensions > n {
		return nil, fmt.Errorf("%w: %d dimensions requested for %d samples", ErrTooManyDimensions, opts.NumberOfDimensions, n)
	}
	if opts.MinDist < 0 || opts.MinDist > 1 {
		return nil, fmt.Errorf("diversity: min_dist must be between 0 and 1, got %g", opts.MinDist)
	}

	cfg := umap.DefaultConfig()
	cfg.NNeighbors = opts.NNeighbors
	cfg.NComponents = opts.NumberOfDimensions
	cfg.MinDist = opts.MinDist
	cfg.RandomState = opts.RandomState
	cfg.Workers = opts.Workers
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Logger = opts.Logger
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	cfg.Logger.Debug("embedding distance matrix", "samples", n, "dimensions", opts.NumberOfDimensions)

	emb, err := umap.FitTransformPrecomputed(dm.Data, n, cfg)
	if err != nil {
		return nil, err
	}

	coords := make([][]float64, n)
	for i, row := range emb {
		coords[i] = make([]float64, embedColumns)
		copy(coords[i], row)
	}
	axes := make([]string, embedColumns)
	for i := range axes {
		axes[i] = fmt.Sprintf("UMAP-%d", i)
	}
	return Center(&Ordination{
		ShortMethodName:     UMAPShortName,
		LongMethodName:      UMAPLongName,
		SampleIDs:           append([]string(nil), dm.IDs...),
		Axes:                axes,
		Coordinates:         coords,
		Eigvals:             make([]float64, embedColumns),
		ProportionExplained: make([]float64, embedColumns),
	})
}
