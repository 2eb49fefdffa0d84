package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/devdiag/pkg/catalog"
	"github.com/helmcode/devdiag/pkg/metrics"
	"github.com/helmcode/devdiag/pkg/model"
	"github.com/helmcode/devdiag/pkg/similarity"
)

// ErrNoText is returned by ValidateText for empty or whitespace-only input.
var ErrNoText = errors.New(`missing "text"`)

// Strategy selects how issue keywords are matched against the input.
type Strategy string

const (
	// StrategyExact returns every issue whose keyword occurs as a whole word.
	StrategyExact Strategy = "exact"
	// StrategyFuzzy returns the single issue whose keyword is closest to the text.
	StrategyFuzzy Strategy = "fuzzy"
)

// ParseStrategy converts a config or query value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyExact, "":
		return StrategyExact, nil
	case StrategyFuzzy:
		return StrategyFuzzy, nil
	default:
		return "", fmt.Errorf("unsupported strategy: %s (supported: exact, fuzzy)", s)
	}
}

// DefaultNetworkLabel replaces the missing component of network-class
// devices in fuzzy results.
const DefaultNetworkLabel = "network"

// IssueTypeSource resolves issue keywords to an issue type label. Sources may
// fetch remotely, so a failure only drops the enrichment.
type IssueTypeSource interface {
	IssueTypes(ctx context.Context) (map[string]string, error)
}

// Analyzer classifies text against a compiled catalog. It holds no
// per-request state and is safe for concurrent use.
type Analyzer struct {
	catalog        *catalog.Catalog
	policy         FilterPolicy
	threshold      float64
	networkDevices map[string]bool
	networkLabel   string
	issueTypes     IssueTypeSource
	logger         *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFilterPolicy sets the candidate policy used when only a device is
// detected. Defaults to FilterIncludeComponents.
func WithFilterPolicy(p FilterPolicy) Option {
	return func(a *Analyzer) { a.policy = p }
}

// WithFuzzyThreshold sets the maximum similarity score a fuzzy match may
// have. Defaults to similarity.DefaultThreshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(a *Analyzer) { a.threshold = threshold }
}

// WithNetworkDevices sets which componentless devices get label as their
// component in fuzzy results.
func WithNetworkDevices(label string, devices ...string) Option {
	return func(a *Analyzer) {
		a.networkLabel = label
		a.networkDevices = make(map[string]bool, len(devices))
		for _, d := range devices {
			a.networkDevices[strings.ToLower(strings.TrimSpace(d))] = true
		}
	}
}

// WithIssueTypes enables issue type enrichment of matches.
func WithIssueTypes(src IssueTypeSource) Option {
	return func(a *Analyzer) { a.issueTypes = src }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// New builds an Analyzer over a compiled catalog. The catalog is only read.
func New(c *catalog.Catalog, opts ...Option) *Analyzer {
	a := &Analyzer{
		catalog:   c,
		policy:    FilterIncludeComponents,
		threshold: similarity.DefaultThreshold,
		logger:    zap.NewNop(),
	}
	WithNetworkDevices(DefaultNetworkLabel, "wifi", "bluetooth")(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog returns the catalog the analyzer classifies against.
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// ValidateText trims raw input and rejects it when nothing is left. Boundary
// layers call it before classification.
func ValidateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Result is the outcome of Classify for either strategy.
type Result struct {
	Strategy Strategy
	Input    string
	Matches  []model.Match
	// EnrichmentErr is set when issue types could not be resolved; the
	// matches are still valid.
	EnrichmentErr error

	network map[string]bool
}

// IsNetwork reports whether m belongs to one of the analyzer's configured
// network-class devices.
func (r Result) IsNetwork(m model.Match) bool {
	return r.network[m.Device]
}

// Response shapes the result the way HTTP and JSON callers expect it.
func (r Result) Response() any {
	if r.Strategy == StrategyFuzzy {
		out := model.FuzzyResult{Input: r.Input}
		if len(r.Matches) > 0 {
			m := r.Matches[0]
			out.Match = &m
		}
		return out
	}
	return model.ExactResult{Input: r.Input, Matches: r.Matches}
}

// Classify runs the chosen strategy and, when an issue type source is
// configured, annotates the matches with their issue type.
func (a *Analyzer) Classify(ctx context.Context, raw string, strategy Strategy) Result {
	start := time.Now()
	res := Result{Strategy: strategy, network: a.networkDevices}

	switch strategy {
	case StrategyFuzzy:
		fr := a.ClassifyFuzzy(raw)
		res.Input = fr.Input
		res.Matches = fr.Matches()
	default:
		res.Strategy = StrategyExact
		er := a.ClassifyExact(raw)
		res.Input = er.Input
		res.Matches = er.Matches
	}

	if len(res.Matches) > 0 && a.issueTypes != nil {
		res.EnrichmentErr = a.enrich(ctx, res.Matches)
	}

	metrics.ObserveClassification(string(res.Strategy), len(res.Matches), time.Since(start))
	a.logger.Debug("classified",
		zap.String("strategy", string(res.Strategy)),
		zap.Int("matches", len(res.Matches)))
	return res
}

// ClassifyExact returns every candidate issue whose keyword occurs in the
// text as a whole word.
func (a *Analyzer) ClassifyExact(raw string) model.ExactResult {
	input := strings.TrimSpace(raw)
	text := strings.ToLower(input)

	candidates := Filter(a.Detect(text), a.catalog.Patterns(), a.policy)
	matches := make([]model.Match, 0)
	for _, p := range MatchExact(text, candidates) {
		matches = append(matches, assemble(p))
	}
	return model.ExactResult{Input: input, Matches: matches}
}

// ClassifyFuzzy returns the candidate issue closest to the text, if any is
// within the similarity threshold.
func (a *Analyzer) ClassifyFuzzy(raw string) model.FuzzyResult {
	input := strings.TrimSpace(raw)
	text := strings.ToLower(input)

	candidates := Filter(a.Detect(text), a.catalog.Patterns(), a.policy)
	best, ok := MatchFuzzy(text, candidates, a.threshold)
	if !ok {
		return model.FuzzyResult{Input: input}
	}

	m := assemble(best)
	if m.Component == nil && a.networkDevices[best.Device] {
		label := a.networkLabel
		m.Component = &label
	}
	return model.FuzzyResult{Input: input, Match: &m}
}

func (a *Analyzer) enrich(ctx context.Context, matches []model.Match) error {
	types, err := a.issueTypes.IssueTypes(ctx)
	if err != nil {
		metrics.EnrichmentFailed()
		a.logger.Warn("issue types unavailable, returning matches without issue_type", zap.Error(err))
		return err
	}
	for i := range matches {
		matches[i].IssueType = types[matches[i].Issue]
	}
	return nil
}

// assemble reshapes a compiled pattern into the external match record.
func assemble(p catalog.Pattern) model.Match {
	m := model.Match{
		Device:      p.Device,
		Issue:       p.Issue,
		Description: p.Description,
		Solution:    p.Solution,
	}
	if p.HasComponent() {
		comp := p.Component
		m.Component = &comp
	}
	return m
}
