// Package pipeline runs the ordered transform sequence over one email:
// parse → transforms → render.
//
// The order is load-bearing. Classes are cleaned before CSS is pruned so
// both see the same editor markup, and tables are simplified only after
// attribute cleanup has removed what could disqualify a wrapper.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/css"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
	"github.com/gaurav-prasanna/mailscrub/core/transform"
)

// Step is one pipeline entry. Enabled is nil for steps that always run.
type Step struct {
	Transform core.Transform
	Enabled   func(core.Options) bool
}

// Result is the cleaned markup together with per-transform statistics in
// execution order.
type Result struct {
	HTML  string      `json:"-"`
	Stats []core.Stat `json:"stats"`
}

// Pipeline holds a fixed list of steps. It keeps no per-document state, so
// one Pipeline may clean several documents concurrently.
type Pipeline struct {
	steps []Step
	log   *zap.Logger
}

// New builds the default pipeline using the built-in editor patterns.
func New(log *zap.Logger) *Pipeline {
	return NewWithClassifier(css.DefaultClassifier(), log)
}

// NewWithClassifier builds the default pipeline around a custom selector
// classifier.
func NewWithClassifier(classifier *css.Classifier, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return NewWithSteps(log,
		Step{Transform: transform.RemoveDataAttrs{}},
		Step{Transform: transform.RemoveEmptyTags{}},
		Step{Transform: transform.RemoveGoogleFonts{}},
		Step{Transform: transform.DefaultCleanClasses()},
		Step{
			Transform: transform.NewCleanCSS(css.NewPruner(classifier, log)),
			Enabled:   func(o core.Options) bool { return o.CSSClean },
		},
		Step{Transform: transform.NewSimplifyTables(log)},
		Step{
			Transform: transform.AddMsoWrappers{},
			Enabled:   func(o core.Options) bool { return o.MsoWrappers },
		},
		Step{
			Transform: transform.FixPreheader{},
			Enabled:   func(o core.Options) bool { return o.PreheaderFix },
		},
	)
}

// NewWithSteps builds a pipeline from an explicit step list.
func NewWithSteps(log *zap.Logger, steps ...Step) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{steps: steps, log: log.Named("pipeline")}
}

// Steps returns the names of the steps that run for opts, in order.
func (p *Pipeline) Steps(opts core.Options) []string {
	var names []string
	for _, s := range p.steps {
		if s.Enabled == nil || s.Enabled(opts) {
			names = append(names, s.Transform.Name())
		}
	}
	return names
}

// Run applies every enabled step to doc, one after another, and collects
// their statistics. A step reporting no effect does not stop the run.
func (p *Pipeline) Run(doc *dom.Document, opts core.Options) []core.Stat {
	stats := make([]core.Stat, 0, len(p.steps))
	for _, s := range p.steps {
		if s.Enabled != nil && !s.Enabled(opts) {
			p.log.Debug("Skipping transform", zap.String("transform", s.Transform.Name()))
			continue
		}
		stat := s.Transform.Apply(doc, opts)
		p.log.Debug("Applied transform", append([]zap.Field{zap.String("transform", stat.Name)}, stat.Fields()...)...)
		stats = append(stats, stat)
	}
	return stats
}

// Clean parses src, runs the pipeline and renders the result.
func (p *Pipeline) Clean(src string, opts core.Options) (*Result, error) {
	doc, err := dom.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	stats := p.Run(doc, opts)

	out, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Result{HTML: out, Stats: stats}, nil
}
