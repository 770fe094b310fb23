package warehouse

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Stage names, in execution order.
const (
	StageStaging    = "staging"
	StageDimensions = "dimensions"
	StageEntities   = "entities"
	StageFacts      = "facts"
)

// Stage is one step of the pipeline. Requires lists the stages that must
// have completed first; the orchestrator refuses to run a stage whose
// prerequisites have not run (or been explicitly assumed via from=).
type Stage struct {
	Name     string
	Requires []string
	Run      func(ctx context.Context) error
}

// Pipeline runs the extract-to-warehouse load: stage all four extracts,
// build dimensions, project entities, load facts. Strictly sequential,
// single writer; each stage commits before the next begins and stages
// already committed stay committed on failure.
type Pipeline struct {
	pool     *pgxpool.Pool
	log      zerolog.Logger
	dataDir  string
	policies Policies
	stages   []Stage

	// Staged row counts by source name, filled by the staging stage.
	StagedRows map[string]int64
}

// NewPipeline builds a pipeline reading extracts from dataDir.
func NewPipeline(pool *pgxpool.Pool, dataDir string, policies Policies, log zerolog.Logger) *Pipeline {
	p := &Pipeline{
		pool:       pool,
		log:        log,
		dataDir:    dataDir,
		policies:   policies,
		StagedRows: make(map[string]int64),
	}
	p.stages = []Stage{
		{Name: StageStaging, Run: p.runStaging},
		{Name: StageDimensions, Requires: []string{StageStaging}, Run: p.runDimensions},
		{Name: StageEntities, Requires: []string{StageStaging, StageDimensions}, Run: p.runEntities},
		{Name: StageFacts, Requires: []string{StageStaging, StageDimensions, StageEntities}, Run: p.runFacts},
	}
	return p
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes the pipeline from the named stage onward ("" means from the
// beginning). Stages before from are assumed committed by an earlier run;
// that is the operator's resume path after a mid-run failure.
func (p *Pipeline) Run(ctx context.Context, from string) error {
	start := time.Now()

	skip := from != ""
	done := make(map[string]bool)
	for _, s := range p.stages {
		if skip {
			if s.Name != from {
				done[s.Name] = true
				p.log.Info().Str("stage", s.Name).Msg("skipping stage, assumed complete")
				continue
			}
			skip = false
		}
		for _, req := range s.Requires {
			if !done[req] {
				return fmt.Errorf("stage %s requires %s to have completed", s.Name, req)
			}
		}

		p.log.Info().Str("stage", s.Name).Msg("stage starting")
		stageStart := time.Now()
		if err := s.Run(ctx); err != nil {
			return err
		}
		done[s.Name] = true
		p.log.Info().
			Str("stage", s.Name).
			Dur("elapsed", time.Since(stageStart)).
			Msg("stage complete")
	}
	if skip {
		return fmt.Errorf("unknown stage %q (stages: %v)", from, p.StageNames())
	}

	p.log.Info().Dur("elapsed", time.Since(start)).Msg("pipeline complete")
	return nil
}

func (p *Pipeline) runStaging(ctx context.Context) error {
	for _, src := range Sources {
		path := filepath.Join(p.dataDir, src.File)
		n, err := StageExtract(ctx, p.pool, src, path, p.log)
		if err != nil {
			return err
		}
		p.StagedRows[src.Name] = n
	}
	return nil
}

func (p *Pipeline) runDimensions(ctx context.Context) error {
	return BuildDimensions(ctx, p.pool, p.policies.Dimensions, p.log)
}

func (p *Pipeline) runEntities(ctx context.Context) error {
	return BuildEntities(ctx, p.pool, p.policies, p.log)
}

func (p *Pipeline) runFacts(ctx context.Context) error {
	return BuildFacts(ctx, p.pool, p.policies, p.log)
}
