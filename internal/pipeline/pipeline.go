package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/tehKaiN/gdunsharp/internal/config"
	"github.com/tehKaiN/gdunsharp/internal/crawler"
	"github.com/tehKaiN/gdunsharp/internal/discovery"
	"github.com/tehKaiN/gdunsharp/internal/generator"
	"github.com/tehKaiN/gdunsharp/internal/graph"
	"github.com/tehKaiN/gdunsharp/internal/parser"
	"github.com/tehKaiN/gdunsharp/internal/report"
	"github.com/tehKaiN/gdunsharp/internal/resolver"
)

// Stats summarizes one completed run.
type Stats struct {
	Files       int
	Namespaces  int
	Types       int
	Fields      int
	Headers     int
	Diagnostics int
	Duration    time.Duration
}

// Pipeline wires the passes together: crawl and parse, discover, resolve,
// emit. Each pass completes fully before the next starts; resolution needs
// the whole-program shell set because declarations may reference types that
// appear later in scan order.
type Pipeline struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

// New creates a pipeline for the given configuration.
func New(cfg *config.Config, log *zap.SugaredLogger) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes one full pipeline pass and reports its statistics. Nothing is
// written before discovery and resolution both succeed, so a fatal error
// leaves no output files.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	rep := report.New(p.log)
	g := graph.NewGraph()

	// 1. Crawl and parse every .cs file under the project root
	var files []*parser.File
	c := crawler.NewCrawler(parser.NewParser(), rep)
	if err := c.ScanProject(ctx, p.cfg.Project.Root, func(f *parser.File) {
		files = append(files, f)
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", p.cfg.Project.Root)
	}
	p.log.Debugw("scan finished", "root", p.cfg.Project.Root, "files", len(files))

	// 2. Discovery: namespaces and type shells
	disc := discovery.NewPass(g, rep)
	for _, f := range files {
		if err := disc.Run(f); err != nil {
			return nil, err
		}
	}

	// 3. Resolution: members, base lists, imports
	if err := resolver.New(g, rep).Run(); err != nil {
		return nil, err
	}

	// 4. Emission: header tree under the output root
	headers, err := generator.NewEmitter(g, p.cfg.Output.Dir, rep).Emit()
	if err != nil {
		return nil, err
	}

	stats := p.collectStats(g, len(files), headers, rep, start)
	p.log.Infow("pipeline finished",
		"files", stats.Files,
		"namespaces", stats.Namespaces,
		"types", stats.Types,
		"headers", stats.Headers,
		"diagnostics", stats.Diagnostics,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (p *Pipeline) collectStats(g *graph.Graph, files, headers int, rep *report.Reporter, start time.Time) *Stats {
	stats := &Stats{
		Files:       files,
		Headers:     headers,
		Diagnostics: rep.Len(),
		Duration:    time.Since(start),
	}
	for _, id := range g.NamespaceIDs() {
		if id != g.Root() {
			stats.Namespaces++
		}
	}
	for _, id := range g.TypeIDs() {
		t := g.Type(id)
		if !t.Emittable() {
			continue
		}
		stats.Types++
		if t.ClassLike() {
			stats.Fields += t.Fields.Len()
		}
	}
	return stats
}
