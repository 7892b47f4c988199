// Package rewrite replaces transform declarations of a parsed stylesheet
// with their matrix3d() equivalents.
package rewrite

import (
	"strings"

	"go.uber.org/zap"

	"css3d/css"
	"css3d/transform"
)

const (
	transformProperty = "transform"
	normalizedMarker  = "matrix3d"
)

// Options controls which declarations are rewritten.
type Options struct {
	// SelectorFilter limits conversion to rules whose selector text contains
	// it. Empty filter matches every rule.
	SelectorFilter string
	// SkipNormalized leaves values already containing matrix3d() untouched.
	SkipNormalized bool
}

// Stats counts what happened during a single Rewrite.
type Stats struct {
	RulesProcessed      int `json:"rulesProcessed"`
	TransformsConverted int `json:"transformsConverted"`
	TransformsFailed    int `json:"transformsFailed"`
	TransformsSkipped   int `json:"transformsSkipped"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.RulesProcessed += other.RulesProcessed
	s.TransformsConverted += other.TransformsConverted
	s.TransformsFailed += other.TransformsFailed
	s.TransformsSkipped += other.TransformsSkipped
}

// LogEntry describes one converted declaration.
type LogEntry struct {
	Selector   string   `json:"selector"`
	Original   string   `json:"original"`
	Operations []string `json:"operations"`
	Converted  string   `json:"converted"`
}

// Result is the outcome of rewriting a stylesheet.
type Result struct {
	Stats       Stats                  `json:"stats"`
	Entries     []LogEntry             `json:"entries"`
	Diagnostics []transform.Diagnostic `json:"diagnostics"`
}

// Rewriter walks stylesheets and converts transform declarations in place.
type Rewriter struct {
	conv *transform.Converter
	opts Options
	log  *zap.Logger
}

// New creates rewriter using conv for conversions. When conv is nil a fresh
// converter is created.
func New(conv *transform.Converter, opts Options, log *zap.Logger) *Rewriter {
	if log == nil {
		log = zap.NewNop()
	}
	if conv == nil {
		conv = transform.NewConverter(log)
	}
	return &Rewriter{conv: conv, opts: opts, log: log.Named("rewrite")}
}

// Rewrite modifies sheet in place and returns statistics, trace of converted
// declarations and diagnostics. Failures to convert a single declaration are
// never fatal: value is kept and a warning diagnostic is recorded.
func (r *Rewriter) Rewrite(sheet *css.Stylesheet) Result {
	res := Result{
		Entries:     make([]LogEntry, 0),
		Diagnostics: make([]transform.Diagnostic, 0),
	}
	if sheet == nil {
		return res
	}

	sheet.WalkRules(func(rule *css.Rule) {
		res.Stats.RulesProcessed++

		if r.opts.SelectorFilter != "" && !strings.Contains(rule.Selector, r.opts.SelectorFilter) {
			return
		}
		for _, decl := range rule.Declarations() {
			if decl.Property != transformProperty {
				continue
			}
			r.declaration(rule.Selector, decl, &res)
		}
	})

	r.log.Debug("Stylesheet rewritten",
		zap.Int("rules", res.Stats.RulesProcessed),
		zap.Int("converted", res.Stats.TransformsConverted),
		zap.Int("failed", res.Stats.TransformsFailed),
		zap.Int("skipped", res.Stats.TransformsSkipped))
	return res
}

func (r *Rewriter) declaration(selector string, decl *css.Declaration, res *Result) {
	if r.opts.SkipNormalized && strings.Contains(decl.Value, normalizedMarker) {
		res.Stats.TransformsSkipped++
		return
	}

	conv, err := r.conv.Convert(decl.Value, selector)
	if err != nil {
		res.Stats.TransformsFailed++
		res.Diagnostics = append(res.Diagnostics, transform.Diagnostic{
			Level:   transform.LevelWarn,
			Kind:    transform.KindMalformedOperation,
			Message: "keeping original value: " + err.Error(),
			Context: selector,
		})
		r.log.Debug("Unable to convert transform", zap.String("selector", selector), zap.String("value", decl.Value), zap.Error(err))
		return
	}
	res.Diagnostics = append(res.Diagnostics, conv.Diagnostics...)

	if conv.Empty() {
		res.Stats.TransformsSkipped++
		return
	}

	res.Entries = append(res.Entries, LogEntry{
		Selector:   selector,
		Original:   decl.Value,
		Operations: conv.Operations,
		Converted:  conv.Matrix3D,
	})
	decl.Value = conv.Matrix3D
	res.Stats.TransformsConverted++
}
