// Package engine wires the Catalog Reader, Search Driver, Size
// Propagator, Cost Model, and Schema Builder into the single entry
// point a host calls: Synthesize builds and ranks candidate document
// schemas; Execute applies one chosen schema via the Data Mapper. This
// is the data flow spec.md §2 describes end to end.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/sem42198/mongo-migrator/internal/catalog"
	"github.com/sem42198/mongo-migrator/internal/cost"
	"github.com/sem42198/mongo-migrator/internal/docschema"
	"github.com/sem42198/mongo-migrator/internal/engineconfig"
	"github.com/sem42198/mongo-migrator/internal/mapper"
	"github.com/sem42198/mongo-migrator/internal/search"
	"github.com/sem42198/mongo-migrator/internal/sizeprop"
)

var logger = log.New(os.Stderr, "engine: ", log.LstdFlags)

var engineMetrics struct {
	candidatesRanked metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/sem42198/mongo-migrator/engine")
	engineMetrics.candidatesRanked, _ = m.Int64Counter("mongomigrator.engine.candidates_ranked",
		metric.WithDescription("candidate document schemas returned by one Synthesize call"),
		metric.WithUnit("{candidate}"),
	)
}

// ErrNoValidCandidate is returned when the search exhausts its mutation
// budget without producing any valid forest (spec.md §7: "Validation
// exhaustion").
var ErrNoValidCandidate = errors.New("engine: no valid document schema found within the search budget")

// Option is one ranked candidate: its document-schema plan plus the
// cost components that produced its score.
type Option struct {
	RunID  string
	Schema *docschema.Schema
	Score  float64
	Raw    cost.Raw
}

// Synthesize reads the catalog, searches for valid document forests,
// propagates sizes, runs the lossy-edge repair pass, and returns the
// ranked list of resulting schemas (lowest score first). An empty,
// nil-error return never happens: an empty candidate set is reported as
// ErrNoValidCandidate.
func Synthesize(ctx context.Context, src catalog.Source, cfg *engineconfig.Config) ([]Option, error) {
	if cfg == nil {
		cfg = engineconfig.DefaultConfig()
	}

	runID := uuid.New().String()

	initial, err := catalog.Read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("engine: reading catalog: %w", err)
	}
	logger.Printf("run %s: catalog read: %d tables, %d foreign keys", runID, initial.NumNodes(), initial.NumEdges())

	search.Preprocess(initial)

	candidates := search.RunWithBudget(initial, cfg.SearchBudgetRatio)
	if len(candidates) == 0 {
		return nil, ErrNoValidCandidate
	}
	for _, g := range candidates {
		sizeprop.Propagate(g)
	}

	candidates = search.ExpandLossyEdges(candidates)
	logger.Printf("run %s: search admitted %d candidates after lossy-edge expansion", runID, len(candidates))

	scored := cost.RankWithWeights(candidates, cfg.WeightDataLoss, cfg.WeightDataStorage, cfg.WeightRefCount)

	opts := make([]Option, len(scored))
	for i, s := range scored {
		opts[i] = Option{
			RunID:  runID,
			Schema: docschema.Build(s.Graph),
			Score:  s.Score,
			Raw:    s.Raw,
		}
	}

	engineMetrics.candidatesRanked.Add(ctx, int64(len(opts)))
	return opts, nil
}

// Execute applies schema against src/tgt: Phase 1 embedded load followed
// by Phase 2 reference patching. Reference-patching failure is fatal to
// the current pass (spec.md §7); the caller may retry Execute wholesale
// or just the ref pass by calling mapper.PatchRefs directly.
func Execute(ctx context.Context, schema *docschema.Schema, src mapper.Source, tgt mapper.Target) error {
	if err := mapper.Run(ctx, schema, src, tgt); err != nil {
		return fmt.Errorf("engine: phase 1 (embedded load): %w", err)
	}
	if err := mapper.PatchRefs(ctx, schema, tgt); err != nil {
		return fmt.Errorf("engine: phase 2 (reference patching): %w", err)
	}
	return nil
}
