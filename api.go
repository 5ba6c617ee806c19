// Package mmlcd generates Local Call Determination tables for the Nortel
// Millennium payphone in the three formats its firmware generations read.
package mmlcd

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status is the aggregate outcome of a generation run.
type Status int

// run status
const (
	Success Status = iota
	PartialFailure
)

// String ...
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case PartialFailure:
		return "partial-failure"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// TierReport lists what one tier produced and which NPAs did not fit.
type TierReport struct {
	Tier    Tier
	Tables  []Assignment
	Dropped []int
}

// Overflow reports whether the tier ran out of table numbers.
func (r TierReport) Overflow() bool { return len(r.Dropped) > 0 }

// Report ...
type Report struct {
	Tiers  []TierReport
	Status Status
}

// Tables counts the tables assigned across all tiers.
func (r Report) Tables() (n int) {
	for _, t := range r.Tiers {
		n += len(t.Tables)
	}
	return n
}

// ErrNoSink ...
var ErrNoSink = errors.New("mmlcd: no table sink configured")

// Generator drives the encoder over every tier and hands tables to a Sink.
type Generator struct {
	Sink    Sink        // table storage
	Log     *zap.Logger // nil logs nothing
	Workers int         // parallel encode+persist, <= 0 uses NumCPU
	Tiers   []Tier      // nil generates all tiers
}

// Option ...
type Option func(*Generator)

// WithLogger ...
func WithLogger(l *zap.Logger) Option { return func(g *Generator) { g.Log = l } }

// WithWorkers ...
func WithWorkers(n int) Option { return func(g *Generator) { g.Workers = n } }

// WithTiers restricts generation to the given tiers.
func WithTiers(t ...Tier) Option { return func(g *Generator) { g.Tiers = t } }

// NewGenerator ...
func NewGenerator(sink Sink, opts ...Option) *Generator {
	g := &Generator{Sink: sink}
	for _, o := range opts {
		o(g)
	}
	return g
}

// GenerateAll generates every tier with a default Generator.
func GenerateAll(ctx context.Context, m ClassificationMap, npas []int, sink Sink) (Report, error) {
	return NewGenerator(sink).GenerateAll(ctx, m, npas)
}

// GenerateAll allocates table numbers for npas in every tier, then encodes
// and persists the tables in parallel. A tier running out of table numbers
// yields PartialFailure in the report, never an error. The first error
// returned by the Sink is passed through unmodified; the remaining tables
// are still written.
func (g *Generator) GenerateAll(ctx context.Context, m ClassificationMap, npas []int) (Report, error) {
	// setup
	t0 := time.Now()
	log := logger(g.Log)
	if g.Sink == nil {
		return Report{}, ErrNoSink
	}
	tiers := g.Tiers
	if len(tiers) == 0 {
		tiers = Tiers()
	}

	// allocate, sequential by nature
	report := Report{Status: Success}
	var jobs []Assignment
	for _, t := range tiers {
		assigned, dropped := Allocate(t, npas)
		report.Tiers = append(report.Tiers, TierReport{Tier: t, Tables: assigned, Dropped: dropped})
		jobs = append(jobs, assigned...)
		if len(dropped) > 0 {
			report.Status = PartialFailure
		}
	}

	// encode + persist
	err := g.persist(ctx, log, m, jobs)

	// report
	for _, tr := range report.Tiers {
		if tr.Overflow() {
			log.Warn("lcd table limit reached, npa(s) not covered",
				zap.String("tier", tr.Tier.Name),
				zap.String("firmware", tr.Tier.Firmware),
				zap.Int("max", tr.Tier.Capacity),
				zap.Ints("dropped", tr.Dropped))
			continue
		}
		log.Info("lcd tables generated",
			zap.String("tier", tr.Tier.Name),
			zap.String("firmware", tr.Tier.Firmware),
			zap.Int("tables", len(tr.Tables)))
	}
	log.Info("lcd generation finished",
		zap.Stringer("status", report.Status),
		zap.Int("tables", report.Tables()),
		zap.Duration("took", time.Since(t0)))
	return report, err
}

func (g *Generator) persist(ctx context.Context, log *zap.Logger, m ClassificationMap, jobs []Assignment) error {
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for _, job := range jobs {
		job := job
		eg.Go(func() error {
			data := Encode(job.Tier, job.NPA, m)
			if err := g.Sink.Persist(ctx, job.ID, data); err != nil {
				log.Error("unable to persist lcd table",
					zap.Int("table", job.ID),
					zap.Int("npa", job.NPA),
					zap.Error(err))
				return err
			}
			log.Debug("lcd table",
				zap.String("tier", job.Tier.Name),
				zap.Int("table", job.ID),
				zap.String("hex", hexID(job.ID)),
				zap.Int("npa", job.NPA),
				zap.Int("bytes", len(data)))
			return nil
		})
	}
	return eg.Wait()
}
