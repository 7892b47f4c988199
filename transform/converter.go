package transform

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ConversionResult holds normalized value for a single declaration.
type ConversionResult struct {
	Matrix3D    string       // matrix3d(...) replacement value
	Operations  []string     // applied operations in order, "name(params)"
	Diagnostics []Diagnostic // non fatal problems found while parsing
}

// Empty reports that no operation has been applied, so the declaration
// should be left as is.
func (r ConversionResult) Empty() bool {
	return len(r.Operations) == 0
}

type cacheKey struct {
	selector string
	value    string
}

// Converter resolves transform values into matrix3d() strings. Results are
// cached by (selector, value) for the lifetime of the converter, so a new
// converter should be used for every processed stylesheet. Converter is safe
// for concurrent use.
type Converter struct {
	log *zap.Logger

	mu    sync.RWMutex
	cache map[cacheKey]ConversionResult

	hits, misses int
}

// NewConverter creates converter with empty cache.
func NewConverter(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		log:   log.Named("transform"),
		cache: make(map[cacheKey]ConversionResult),
	}
}

// Convert resolves raw transform value found in rule with given selector.
// Parsing errors are returned as is and are never cached.
func (c *Converter) Convert(raw, selector string) (ConversionResult, error) {
	key := cacheKey{selector: selector, value: raw}

	c.mu.RLock()
	res, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return res, nil
	}

	res, err := Resolve(raw, selector)
	if err != nil {
		return ConversionResult{}, err
	}

	c.mu.Lock()
	c.misses++
	c.cache[key] = res
	c.mu.Unlock()

	c.log.Debug("Transform resolved",
		zap.String("selector", selector),
		zap.String("value", raw),
		zap.Strings("operations", res.Operations),
		zap.String("result", res.Matrix3D))
	return res, nil
}

// CacheStats returns number of cache hits and misses so far.
func (c *Converter) CacheStats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Resolve does the actual work of Convert without caching: parses value,
// composes operation matrices in declaration order and renders result.
func Resolve(raw, selector string) (ConversionResult, error) {
	ops, diags, err := Parse(raw, selector)
	if err != nil {
		return ConversionResult{}, err
	}

	acc := Identity()
	trace := make([]string, 0, len(ops))
	for _, op := range ops {
		spec, _ := Lookup(op.Name)
		acc = Multiply(acc, spec.Matrix(op.Params))
		if !acc.finite() {
			return ConversionResult{}, &MalformedOperationError{
				Operation: op.Name,
				Selector:  selector,
				Args:      strings.Join(op.RawParams, ", "),
				Err:       ErrNotFinite,
			}
		}
		trace = append(trace, op.String())
	}

	if len(ops) == 0 {
		diags = append(diags, Diagnostic{
			Level:   LevelDebug,
			Kind:    KindEmptyTransformList,
			Message: "no transform operations to compose",
			Context: selector,
		})
	}

	return ConversionResult{
		Matrix3D:    acc.String(),
		Operations:  trace,
		Diagnostics: diags,
	}, nil
}
