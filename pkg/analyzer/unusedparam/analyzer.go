package unusedparam

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/panbanda/paramlint/internal/cache"
	"github.com/panbanda/paramlint/internal/fileproc"
	"github.com/panbanda/paramlint/pkg/analyzer"
	"github.com/panbanda/paramlint/pkg/ast"
	"github.com/panbanda/paramlint/pkg/ast/treesitter"
	"github.com/panbanda/paramlint/pkg/models"
	"github.com/panbanda/paramlint/pkg/scope"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*models.UnusedParameterAnalysis, *models.FileUnusedParameters] = (*Analyzer)(nil)

// Analyzer checks Java files for unused parameters.
type Analyzer struct {
	rule        *Rule
	ignore      *regexp.Regexp
	maxFileSize int64
	workers     int
	cache       *cache.Cache
	progress    analyzer.ProgressFunc
	logger      *slog.Logger

	mu       sync.Mutex // guards provider
	provider *treesitter.Provider
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithConfig sets the rule configuration.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) {
		a.rule = NewRule(cfg)
	}
}

// WithIgnorePattern suppresses violations for parameter names matching re.
func WithIgnorePattern(re *regexp.Regexp) Option {
	return func(a *Analyzer) {
		a.ignore = re
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithCache reuses results for files whose contents have not changed.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithWorkers caps the number of files processed concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithProgress reports each processed file. A tracker already present in
// the context passed to Analyze takes precedence.
func WithProgress(fn analyzer.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates a new unused parameter analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		rule:     NewRule(DefaultConfig()),
		logger:   slog.Default(),
		provider: treesitter.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the rule configuration in use.
func (a *Analyzer) Config() Config {
	return a.rule.Config()
}

// AnalyzeFile checks a single file. AnalyzeFile and AnalyzeSource share one
// parser, so concurrent calls are serialized; Analyze gives every worker
// its own.
func (a *Analyzer) AnalyzeFile(path string) (*models.FileUnusedParameters, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	result, err := a.analyzeFile(a.provider, path)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeSource checks in-memory source attributed to path. The cache is
// not consulted.
func (a *Analyzer) AnalyzeSource(source []byte, path string) (*models.FileUnusedParameters, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	result, err := a.check(a.provider, source, path)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Analyze checks all files in parallel. Files that cannot be read or parsed
// are logged and counted as skipped; they never fail the run. The returned
// error is non-nil only when ctx was cancelled.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*models.UnusedParameterAnalysis, error) {
	if a.progress != nil && analyzer.TrackerFromContext(ctx) == nil {
		ctx = analyzer.WithTracker(ctx, analyzer.NewTracker(a.progress))
	}

	opts := fileproc.Options{Workers: a.workers, MaxFileSize: a.maxFileSize}
	results, errs := fileproc.MapFilesN(ctx, files, opts, a.analyzeFile)

	skipped := errs.Len()
	if errs.HasErrors() {
		for _, pe := range errs.Errors {
			a.logger.Warn("skipping file", "path", pe.Path, "error", pe.Err)
		}
	}

	analysis := models.NewUnusedParameterAnalysis(results, skipped)
	if err := ctx.Err(); err != nil {
		return analysis, err
	}
	return analysis, nil
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.provider.Close()
}

func (a *Analyzer) analyzeFile(p ast.Provider, path string) (models.FileUnusedParameters, error) {
	key := a.cacheKey(path)
	source, err := os.ReadFile(path)
	if err != nil {
		a.dropCached(key, path)
		return models.FileUnusedParameters{}, err
	}

	hash := cache.HashBytes(source)
	var cached models.FileUnusedParameters
	if a.cache.Load(key, hash, &cached) {
		a.logger.Debug("cache hit", "path", path)
		cached.Cached = true
		return cached, nil
	}

	result, err := a.check(p, source, path)
	if err != nil {
		a.dropCached(key, path)
		return models.FileUnusedParameters{}, err
	}
	result.Hash = hash
	if err := a.cache.Store(key, hash, result); err != nil {
		a.logger.Debug("cache write failed", "path", path, "error", err)
	}
	return result, nil
}

// dropCached removes the entry of a file that can no longer be checked.
func (a *Analyzer) dropCached(key, path string) {
	if err := a.cache.Invalidate(key); err != nil {
		a.logger.Debug("cache invalidate failed", "path", path, "error", err)
	}
}

// cacheKey separates cached results produced under different settings.
func (a *Analyzer) cacheKey(path string) string {
	pattern := ""
	if a.ignore != nil {
		pattern = a.ignore.String()
	}
	return path + "\x00" + strconv.FormatBool(a.rule.Config().IgnoreCatchParameters) + "\x00" + pattern
}

func (a *Analyzer) check(p ast.Provider, source []byte, path string) (models.FileUnusedParameters, error) {
	tree, err := p.ParseSource(source, path)
	if err != nil {
		return models.FileUnusedParameters{}, fmt.Errorf("parse %s: %w", path, err)
	}

	counter := scope.NewCounter(tree)
	params := tree.FindAll(ast.KindParameter)
	result := models.FileUnusedParameters{
		Path:           path,
		ParameterCount: len(params),
		Violations:     []models.UnusedParameter{},
	}
	sites := newSiteIndex()
	debug := a.logger.Enabled(context.Background(), slog.LevelDebug)

	for _, decl := range params {
		owner := enclosingMember(decl)
		overload, occurrence := sites.add(owner, decl)

		if !a.rule.MustCheck(decl) {
			continue
		}
		result.CheckedCount++

		v, ok := a.rule.Evaluate(decl, counter)
		if !ok {
			if debug {
				a.logReferences(counter, decl)
			}
			continue
		}
		if a.ignore != nil && a.ignore.MatchString(v.Name) {
			continue
		}
		unused := toModel(decl, v, owner)
		unused.Overload = overload
		unused.Occurrence = occurrence
		unused.ID = unused.Fingerprint()
		result.Violations = append(result.Violations, unused)
	}
	return result, nil
}

// logReferences lists where a checked parameter is used.
func (a *Analyzer) logReferences(counter *scope.Counter, decl ast.Node) {
	refs, err := counter.References(decl)
	if err != nil || len(refs) == 0 {
		return
	}
	name, _ := decl.DeclaredName()
	sites := make([]string, len(refs))
	for i, r := range refs {
		sites[i] = strconv.Itoa(r.Pos().Line) + ":" + strconv.Itoa(r.Pos().Column)
	}
	a.logger.Debug("parameter used",
		"path", name.Pos().File,
		"name", name.Text(),
		"references", strings.Join(sites, ","))
}

func toModel(decl ast.Node, v Violation, owner ast.Node) models.UnusedParameter {
	return models.UnusedParameter{
		Key:     v.Key,
		Name:    v.Name,
		File:    v.Pos.File,
		Line:    v.Pos.Line,
		Column:  v.Pos.Column,
		Kind:    parameterKind(decl),
		Owner:   memberName(owner),
		Message: v.Message(),
	}
}

func parameterKind(decl ast.Node) models.ParameterKind {
	owner, err := scope.Owner(decl)
	if err != nil {
		return models.ParameterMethod
	}
	switch owner.Kind() {
	case ast.KindConstructor:
		return models.ParameterConstructor
	case ast.KindCatchClause:
		return models.ParameterCatch
	default:
		return models.ParameterMethod
	}
}

// enclosingMember returns the nearest enclosing method or constructor, or
// the zero Node when there is none.
func enclosingMember(decl ast.Node) ast.Node {
	for cur, ok := decl.Parent(); ok; cur, ok = cur.Parent() {
		switch cur.Kind() {
		case ast.KindMethod, ast.KindConstructor:
			return cur
		}
	}
	return ast.Node{}
}

func memberName(member ast.Node) string {
	if name, ok := member.DeclaredName(); ok {
		return name.Text()
	}
	return ""
}

type siteKey struct {
	owner ast.NodeID
	name  string
}

// siteIndex numbers parameters that share a file, owner name and parameter
// name: overloads and methods of different anonymous classes get distinct
// owner ordinals, and repeated catch parameters in one member get distinct
// occurrences. Parameters must be added in source order.
type siteIndex struct {
	byName      map[string]int
	owners      map[ast.NodeID]int
	occurrences map[siteKey]int
}

func newSiteIndex() *siteIndex {
	return &siteIndex{
		byName:      make(map[string]int),
		owners:      make(map[ast.NodeID]int),
		occurrences: make(map[siteKey]int),
	}
}

func (s *siteIndex) add(owner, decl ast.Node) (overload, occurrence int) {
	if !owner.IsZero() {
		var ok bool
		overload, ok = s.owners[owner.ID()]
		if !ok {
			name := memberName(owner)
			overload = s.byName[name]
			s.byName[name]++
			s.owners[owner.ID()] = overload
		}
	}
	if name, ok := decl.DeclaredName(); ok {
		key := siteKey{owner: owner.ID(), name: name.Text()}
		occurrence = s.occurrences[key]
		s.occurrences[key]++
	}
	return overload, occurrence
}
