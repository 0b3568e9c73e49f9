// Package pipeline sequences one fitness evaluation: genome conversion,
// scenario export, simulation and result extraction.
//
// A Pipeline owns its run counter and live material set and is not safe for
// concurrent use. Parallel evaluation needs independent pipelines with
// distinct bot and output directories.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/fitness"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/materials"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/metrics"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/scenario"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/simulator"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/store"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/logger"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"github.com/google/uuid"
)

// DataDir is the output subdirectory holding per-run artifacts.
const DataDir = "simdata"

// ErrDescriptorSize is returned when the extractor yields a descriptor of
// the wrong length.
var ErrDescriptorSize = errors.New("descriptor size mismatch")

// Converter maps a genome onto material records.
type Converter interface {
	Convert(genome models.Genome) ([]models.Material, error)
	MaterialCount() int
	FeatureSpaceSize() int
}

// ScenarioWriter exports the material set to scenario files.
type ScenarioWriter interface {
	WriteVXA(mats []models.Material, paths ...string) error
}

// Invoker runs the simulator for one run index.
type Invoker interface {
	Run(ctx context.Context, runIndex int, botDir, outputDir string) (simulator.Report, error)
}

// Options holds the non-collaborator settings of a Pipeline.
type Options struct {
	BotDir    string
	OutputDir string
	// Store records every successful evaluation when set.
	Store store.Store
	// Metrics receives per-run series when set.
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Pipeline evaluates genomes one at a time.
type Pipeline struct {
	converter Converter
	writer    ScenarioWriter
	invoker   Invoker
	extractor fitness.Extractor
	store     store.Store
	metrics   *metrics.Collector
	log       *slog.Logger

	botDir  string
	dataDir string

	runCounter int
	materials  []models.Material
}

// New checks the bot and output directories and assembles a Pipeline. The
// simdata directory is created under the output directory when missing.
func New(opts Options, conv Converter, writer ScenarioWriter, inv Invoker, ext fitness.Extractor) (*Pipeline, error) {
	if conv == nil || writer == nil || inv == nil || ext == nil {
		return nil, config.Errorf("pipeline", "converter, writer, invoker and extractor are required")
	}
	if err := checkDir("bot_dir", opts.BotDir); err != nil {
		return nil, err
	}
	if err := checkDir("output_dir", opts.OutputDir); err != nil {
		return nil, err
	}
	dataDir := filepath.Join(opts.OutputDir, DataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, config.Errorf("output_dir", "cannot create %s: %v", dataDir, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default
	}

	return &Pipeline{
		converter: conv,
		writer:    writer,
		invoker:   inv,
		extractor: ext,
		store:     opts.Store,
		metrics:   opts.Metrics,
		log:       log,
		botDir:    opts.BotDir,
		dataDir:   dataDir,
	}, nil
}

func checkDir(field, dir string) error {
	if dir == "" {
		return config.Errorf(field, "cannot be empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return config.Errorf(field, "%s does not exist", dir)
	}
	if !info.IsDir() {
		return config.Errorf(field, "%s is not a directory", dir)
	}
	return nil
}

// Evaluate runs the full pipeline for genome and returns its fitness and
// descriptor.
func (p *Pipeline) Evaluate(ctx context.Context, genome models.Genome) (float64, []float64, error) {
	eval, err := p.EvaluateRecord(ctx, genome)
	if err != nil {
		return 0, nil, err
	}
	return eval.Fitness, eval.Descriptor, nil
}

// EvaluateRecord is Evaluate returning the full evaluation record. The run
// counter advances only after the result has been extracted.
func (p *Pipeline) EvaluateRecord(ctx context.Context, genome models.Genome) (models.Evaluation, error) {
	start := time.Now()
	run := p.runCounter

	mats, err := p.converter.Convert(genome)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("run %d: convert genome: %w", run, err)
	}
	if err := p.setMaterials(mats); err != nil {
		return models.Evaluation{}, fmt.Errorf("run %d: %w", run, err)
	}

	if err := p.writer.WriteVXA(p.materials, p.BaseScenarioPath(), p.ArchivePath(run)); err != nil {
		return models.Evaluation{}, fmt.Errorf("run %d: export scenario: %w", run, err)
	}

	rep, err := p.invoker.Run(ctx, run, p.botDir, p.dataDir)
	if err != nil {
		p.recordFailure(run)
		return models.Evaluation{}, err
	}

	fit, desc, err := p.extractor.Fitness(ctx, run)
	if err != nil {
		p.recordFailure(run)
		return models.Evaluation{}, fmt.Errorf("run %d: extract fitness: %w", run, err)
	}
	if want := p.extractor.DescriptorSize(); len(desc) != want {
		p.recordFailure(run)
		return models.Evaluation{}, fmt.Errorf("run %d: %w: got %d, want %d", run, ErrDescriptorSize, len(desc), want)
	}

	p.log.Info("fitness for experiment",
		"run", run,
		"fitness", fit,
		"descriptor", desc,
		"attempts", rep.Attempts,
	)
	p.runCounter++

	eval := models.Evaluation{
		ID:         uuid.NewString(),
		RunIndex:   run,
		Genome:     append([]float64(nil), genome...),
		Fitness:    fit,
		Descriptor: desc,
		Materials:  p.Materials(),
		Attempts:   rep.Attempts,
		Duration:   time.Since(start),
		CreatedAt:  time.Now().UTC(),
	}
	if p.metrics != nil {
		metrics.RecordEvaluation(p.metrics, eval)
	}
	if p.store != nil {
		if err := p.store.Save(ctx, eval); err != nil {
			p.log.Warn("failed to record evaluation", "run", run, "error", err)
		}
	}
	return eval, nil
}

func (p *Pipeline) recordFailure(run int) {
	if p.metrics != nil {
		metrics.RecordFailure(p.metrics, run)
	}
}

// setMaterials replaces the live material set.
func (p *Pipeline) setMaterials(mats []models.Material) error {
	if err := materials.CheckCount(mats, p.converter.MaterialCount()); err != nil {
		return err
	}
	p.materials = append(p.materials[:0:0], mats...)
	return nil
}

// Materials returns a copy of the live material set.
func (p *Pipeline) Materials() []models.Material {
	return append([]models.Material(nil), p.materials...)
}

// RunCounter returns the index the next evaluation will use.
func (p *Pipeline) RunCounter() int { return p.runCounter }

// DescriptorSize returns the descriptor length of the fitness extractor.
func (p *Pipeline) DescriptorSize() int { return p.extractor.DescriptorSize() }

// FeatureSpaceSize returns the genome length: materials times parameters.
func (p *Pipeline) FeatureSpaceSize() int { return p.converter.FeatureSpaceSize() }

// BaseScenarioPath is the scenario file the simulator reads, rewritten on
// every evaluation.
func (p *Pipeline) BaseScenarioPath() string {
	return filepath.Join(p.botDir, scenario.BaseFile)
}

// ArchivePath is the per-run copy of the scenario.
func (p *Pipeline) ArchivePath(run int) string {
	return filepath.Join(p.dataDir, fmt.Sprintf("sim_run%d.vxa", run))
}

// DataDir returns the directory holding per-run artifacts.
func (p *Pipeline) DataDir() string { return p.dataDir }

// Metrics returns the collector passed in Options, possibly nil.
func (p *Pipeline) Metrics() *metrics.Collector { return p.metrics }
