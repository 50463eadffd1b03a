package css

import (
	"go.uber.org/zap"
)

// PruneResult describes one pruning run.
type PruneResult struct {
	CSS          string
	OriginalSize int
	CleanedSize  int
	RulesDropped int
	MediaDropped int
}

// Removed is the number of bytes saved.
func (r PruneResult) Removed() int {
	return r.OriginalSize - r.CleanedSize
}

// Pruner drops editor-only rules from style sheets.
type Pruner struct {
	classifier *Classifier
	log        *zap.Logger
}

// NewPruner creates a Pruner. A nil classifier means DefaultClassifier.
func NewPruner(classifier *Classifier, log *zap.Logger) *Pruner {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{classifier: classifier, log: log.Named("css-pruner")}
}

// Prune parses css, filters its blocks and serializes what is left.
func (p *Pruner) Prune(css string) PruneResult {
	res := PruneResult{OriginalSize: len(css)}

	var kept []Block
	for _, b := range ParseBlocks(css) {
		switch b.Kind {
		case RuleBlock:
			if p.classifier.IsEditorOnly(b.Selector) {
				p.log.Debug("Dropping rule", zap.String("selector", b.Selector))
				res.RulesDropped++
				continue
			}
			kept = append(kept, b)

		case MediaBlock:
			rules, dropped := p.filterRules(b.Rules)
			res.RulesDropped += dropped
			if len(rules) == 0 {
				p.log.Debug("Dropping empty @media block", zap.String("query", b.Query))
				res.MediaDropped++
				continue
			}
			b.Rules = rules
			kept = append(kept, b)

		default:
			kept = append(kept, b)
		}
	}

	res.CSS = Serialize(kept)
	res.CleanedSize = len(res.CSS)
	return res
}

func (p *Pruner) filterRules(rules []Block) ([]Block, int) {
	var (
		kept    []Block
		dropped int
	)
	for _, r := range rules {
		if r.Kind == RuleBlock && p.classifier.IsEditorOnly(r.Selector) {
			p.log.Debug("Dropping rule in @media", zap.String("selector", r.Selector))
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
