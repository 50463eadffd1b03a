package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/extract"
	"github.com/gaurav-prasanna/mailscrub/core/fetch"
	"github.com/gaurav-prasanna/mailscrub/core/output"
	"github.com/gaurav-prasanna/mailscrub/core/pipeline"
	"github.com/gaurav-prasanna/mailscrub/core/report"
)

// Stdout as an output path writes the cleaned HTML to the processor's
// standard output instead of a file.
const Stdout = "-"

// Settings controls what a Processor produces for each input.
type Settings struct {
	Options core.Options
	// Output overrides the derived output path. Only valid for one input.
	Output string
	// Text also writes a plain-text alternative next to the HTML output.
	Text bool
	// Jobs bounds concurrent inputs; values below 1 mean one.
	Jobs int
}

// Processor runs inputs through fetch or read, the cleaning pipeline and the
// writers. It is safe for concurrent use.
type Processor struct {
	pipeline   *pipeline.Pipeline
	fetcher    core.Fetcher
	normalizer core.Normalizer
	extractor  *extract.HTMLExtractor
	writer     *output.Writer
	settings   Settings
	stdout     io.Writer
	log        *zap.Logger
}

// NewProcessor wires a processor. A nil fetcher disables URL inputs.
func NewProcessor(p *pipeline.Pipeline, fetcher core.Fetcher, normalizer core.Normalizer,
	writer *output.Writer, settings Settings, stdout io.Writer, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Processor{
		pipeline:   p,
		fetcher:    fetcher,
		normalizer: normalizer,
		extractor:  extract.New(),
		writer:     writer,
		settings:   settings,
		stdout:     stdout,
		log:        log.Named("batch"),
	}
}

// Process cleans one input and writes its outputs.
func (p *Processor) Process(ctx context.Context, input string) (report.Summary, error) {
	src, err := Read(ctx, p.fetcher, input)
	if err != nil {
		return report.Summary{}, err
	}

	res, err := p.pipeline.Clean(src, p.settings.Options)
	if err != nil {
		return report.Summary{}, fmt.Errorf("cleaning %s: %w", input, err)
	}

	path := p.settings.Output
	if path == "" {
		path = p.writer.Path(input)
	}
	if path == Stdout {
		if _, err := io.WriteString(p.stdout, res.HTML); err != nil {
			return report.Summary{}, fmt.Errorf("writing %s to stdout: %w", input, err)
		}
	} else if err := p.writer.Write(path, []byte(res.HTML)); err != nil {
		return report.Summary{}, err
	}

	if p.settings.Text && path != Stdout {
		if err := p.writeText(path, res.HTML); err != nil {
			return report.Summary{}, fmt.Errorf("text alternative for %s: %w", input, err)
		}
	}

	summary := report.NewSummary(input, path, src, res.HTML, res.Stats)
	p.log.Info("Cleaned",
		zap.String("input", input),
		zap.String("output", path),
		zap.Int("size", summary.CleanedSize),
		zap.Int("reduction", summary.SizeReduction()))
	return summary, nil
}

// Read loads an input from disk, or through fetcher when it is a URL.
func Read(ctx context.Context, fetcher core.Fetcher, input string) (string, error) {
	if fetch.IsURL(input) {
		if fetcher == nil {
			return "", fmt.Errorf("cannot fetch %s: URL inputs are disabled", input)
		}
		res, err := fetcher.Fetch(ctx, input)
		if err != nil {
			return "", fmt.Errorf("fetch: %w", err)
		}
		return res.HTML, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func (p *Processor) writeText(htmlPath, cleaned string) error {
	_, text, err := PlainText(p.extractor, p.normalizer, cleaned)
	if err != nil {
		return err
	}
	return p.writer.Write(output.TextPath(htmlPath), []byte(text))
}

// PlainText builds the text alternative of a cleaned email. It also returns
// the title, which doubles as the subject line.
func PlainText(ex *extract.HTMLExtractor, n core.Normalizer, cleaned string) (title, text string, err error) {
	content, err := ex.Extract(cleaned)
	if err != nil {
		return "", "", fmt.Errorf("extract: %w", err)
	}
	if text, err = n.Normalize(content.Body); err != nil {
		return "", "", fmt.Errorf("normalize: %w", err)
	}
	if content.Title != "" {
		text = content.Title + "\n\n" + text
	}
	return content.Title, text, nil
}

// Run processes every input with at most Settings.Jobs running at once.
// A failing input does not stop the others; all failures are returned
// together. Summaries of successful inputs keep input order.
func (p *Processor) Run(ctx context.Context, inputs []string) ([]report.Summary, error) {
	if p.settings.Output != "" && len(inputs) > 1 {
		return nil, fmt.Errorf("an explicit output path needs exactly one input, got %d", len(inputs))
	}

	jobs := max(p.settings.Jobs, 1)
	results := make([]*report.Summary, len(inputs))

	var (
		mu   sync.Mutex
		errs error
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, input := range inputs {
		g.Go(func() error {
			summary, err := p.Process(ctx, input)
			if err != nil {
				p.log.Error("Unable to clean input", zap.String("input", input), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", input, err))
				mu.Unlock()
				return nil
			}
			results[i] = &summary
			return nil
		})
	}
	_ = g.Wait()

	summaries := make([]report.Summary, 0, len(inputs))
	for _, s := range results {
		if s != nil {
			summaries = append(summaries, *s)
		}
	}
	return summaries, errs
}
