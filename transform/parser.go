package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Operation is a single transform function found in declaration value.
type Operation struct {
	Name      string
	RawParams []string
	Params    []float64
}

// String returns operation trace in form "name(p1, p2, ...)".
func (op Operation) String() string {
	parts := make([]string, len(op.Params))
	for i, p := range op.Params {
		parts[i] = strconv.FormatFloat(p, 'f', -1, 64)
	}
	return op.Name + "(" + strings.Join(parts, ", ") + ")"
}

// functionPattern matches "name(args)", name is case insensitive, args must
// not be empty and must not contain closing parenthesis.
var functionPattern = regexp.MustCompile(`(?i)([a-z0-9-]+)\(([^)]+)\)`)

// numberPattern splits argument into CSS number and optional unit.
var numberPattern = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)([a-zA-Z%]*)$`)

// angle units to degrees
var angleUnits = map[string]float64{
	"":     1,
	"deg":  1,
	"rad":  180 / math.Pi,
	"grad": 0.9,
	"turn": 360,
}

// Parse extracts transform operations from raw declaration value. The
// context is only used in diagnostics and errors.
//
// Unknown functions are skipped and reported as diagnostics. Wrong arity or
// bad numbers stop parsing with *MalformedOperationError.
func Parse(raw, context string) ([]Operation, []Diagnostic, error) {
	var (
		ops   []Operation
		diags []Diagnostic
	)

	for _, match := range functionPattern.FindAllStringSubmatch(raw, -1) {
		name, args := match[1], match[2]

		spec, ok := Lookup(name)
		if !ok {
			diags = append(diags, Diagnostic{
				Level:   LevelWarn,
				Kind:    KindUnsupportedOperation,
				Message: fmt.Sprintf("unsupported transform operation %q", name),
				Context: context,
			})
			continue
		}

		tokens := strings.Split(args, ",")
		for i := range tokens {
			tokens[i] = strings.TrimSpace(tokens[i])
		}
		if len(tokens) < spec.Required {
			return nil, diags, &MalformedOperationError{
				Operation: name,
				Selector:  context,
				Args:      args,
				Required:  spec.Required,
			}
		}
		if len(tokens) > spec.Arity() {
			diags = append(diags, Diagnostic{
				Level:   LevelWarn,
				Kind:    KindExtraArguments,
				Message: fmt.Sprintf("%s accepts %d argument(s), ignoring %q", name, spec.Arity(), strings.Join(tokens[spec.Arity():], ", ")),
				Context: context,
			})
			tokens = tokens[:spec.Arity()]
		}

		params := make([]float64, 0, len(tokens))
		for _, tok := range tokens {
			v, err := parseNumber(tok, spec.Angles)
			if err != nil {
				return nil, diags, &MalformedOperationError{
					Operation: name,
					Selector:  context,
					Args:      args,
					Token:     tok,
					Required:  spec.Required,
					Err:       err,
				}
			}
			params = append(params, v)
		}

		ops = append(ops, Operation{
			Name:      name,
			RawParams: tokens,
			Params:    spec.complete(params),
		})
	}
	return ops, diags, nil
}

// parseNumber parses single argument stripping trailing unit. When angle is
// set known angle units are converted to degrees, anything else is taken as
// degrees already.
func parseNumber(tok string, angle bool) (float64, error) {
	m := numberPattern.FindStringSubmatch(tok)
	// "1e" is a dangling exponent, not a unit
	if m == nil || strings.EqualFold(m[2], "e") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: tok, Err: strconv.ErrSyntax}
	}
	num, unit := m[1], strings.ToLower(m[2])

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", tok)
	}
	if angle {
		if factor, ok := angleUnits[unit]; ok {
			v *= factor
		}
	}
	return v, nil
}
