package transform

import (
	"errors"
	"slices"
	"testing"
)

func TestParse_Operations(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		names  []string
		params [][]float64
	}{
		{"single", "translateX(10px)", []string{"translateX"}, [][]float64{{10}}},
		{"two functions", "translateX(10px) rotate(45deg)", []string{"translateX", "rotate"}, [][]float64{{10}, {45}}},
		{"translate", "translate(1px, 2px)", []string{"translate"}, [][]float64{{1, 2}}},
		{"scale mirrors x", "scale(2)", []string{"scale"}, [][]float64{{2, 2}}},
		{"scale explicit", "scale(2, 3)", []string{"scale"}, [][]float64{{2, 3}}},
		{"skew default y", "skew(10deg)", []string{"skew"}, [][]float64{{10, 0}}},
		{"spaces around arguments", "translate3d( 1px ,2px,  3px )", []string{"translate3d"}, [][]float64{{1, 2, 3}}},
		{"no whitespace between functions", "scaleX(2)scaleY(3)", []string{"scaleX", "scaleY"}, [][]float64{{2}, {3}}},
		{"turn to degrees", "rotate(0.5turn)", []string{"rotate"}, [][]float64{{180}}},
		{"grad to degrees", "rotateX(100grad)", []string{"rotateX"}, [][]float64{{90}}},
		{"percent stripped", "translateY(50%)", []string{"translateY"}, [][]float64{{50}}},
		{"exponent", "translateZ(1e2px)", []string{"translateZ"}, [][]float64{{100}}},
		{"unit starting with e", "translateX(2em)", []string{"translateX"}, [][]float64{{2}}},
		{"leading dot and sign", "translateX(-.5px)", []string{"translateX"}, [][]float64{{-0.5}}},
		{"negative exponent", "translateY(+25e-1px)", []string{"translateY"}, [][]float64{{2.5}}},
		{"none keyword", "none", nil, nil},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, _, err := Parse(tt.input, ".test")
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if len(ops) != len(tt.names) {
				t.Fatalf("Parse(%q) returned %d operations, want %d", tt.input, len(ops), len(tt.names))
			}
			for i, op := range ops {
				if op.Name != tt.names[i] {
					t.Errorf("op[%d].Name = %q, want %q", i, op.Name, tt.names[i])
				}
				if len(op.Params) != len(tt.params[i]) {
					t.Fatalf("op[%d].Params = %v, want %v", i, op.Params, tt.params[i])
				}
				for j := range op.Params {
					if d := op.Params[j] - tt.params[i][j]; d > 1e-9 || d < -1e-9 {
						t.Errorf("op[%d].Params = %v, want %v", i, op.Params, tt.params[i])
						break
					}
				}
			}
		})
	}
}

func TestParse_ParamsMatchArity(t *testing.T) {
	inputs := []string{
		"translate(1, 2)", "translateX(1)", "translate3d(1, 2, 3)", "scale(1)",
		"scale3d(1, 2, 3)", "rotate(1)", "rotateZ(1)", "skew(1)", "skewY(1)",
		"matrix(1, 0, 0, 1, 0, 0)",
		"matrix3d(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1)",
	}
	for _, in := range inputs {
		ops, _, err := Parse(in, "")
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		if len(ops) != 1 {
			t.Fatalf("Parse(%q) returned %d operations, want 1", in, len(ops))
		}
		spec, _ := Lookup(ops[0].Name)
		if len(ops[0].Params) != spec.Arity() {
			t.Errorf("Parse(%q) params = %d, want %d", in, len(ops[0].Params), spec.Arity())
		}
	}
}

func TestParse_UnsupportedOperationSkipped(t *testing.T) {
	ops, diags, err := Parse("foo(1) translateX(5)", ".card")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Name != "translateX" {
		t.Fatalf("Parse() = %v, want only translateX", ops)
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Kind != KindUnsupportedOperation || d.Level != LevelWarn || d.Context != ".card" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestParse_NamesAreCaseSensitive(t *testing.T) {
	ops, diags, err := Parse("TRANSLATEX(5px)", ".a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("expected no operations, got %v", ops)
	}
	if len(diags) != 1 || diags[0].Kind != KindUnsupportedOperation {
		t.Errorf("expected unsupported operation diagnostic, got %+v", diags)
	}
}

func TestParse_ExtraArgumentsDropped(t *testing.T) {
	ops, diags, err := Parse("translateX(1px, 2px)", ".a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 1 || !slices.Equal(ops[0].Params, []float64{1}) {
		t.Fatalf("Parse() = %v, want translateX(1)", ops)
	}
	if len(diags) != 1 || diags[0].Kind != KindExtraArguments {
		t.Errorf("expected extra arguments diagnostic, got %+v", diags)
	}
}

func TestParse_TranslateIgnoresZ(t *testing.T) {
	ops, diags, err := Parse("translate(1px, 2px, 3px)", ".a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 1 || !slices.Equal(ops[0].Params, []float64{1, 2}) {
		t.Fatalf("Parse() = %v, want translate(1, 2)", ops)
	}
	if len(diags) != 1 || diags[0].Kind != KindExtraArguments {
		t.Errorf("expected extra arguments diagnostic, got %+v", diags)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		operation string
		token     string
	}{
		{"missing required", "translate3d(1, 2)", "translate3d", ""},
		{"translate single argument", "translate(5px)", "translate", ""},
		{"matrix short", "matrix(1, 0, 0, 1)", "matrix", ""},
		{"not a number", "rotate(abc)", "rotate", "abc"},
		{"empty argument", "translate(1px, )", "translate", ""},
		{"infinity", "scale(1e999)", "scale", "1e999"},
		{"second fails", "translateX(1px) scaleY(x2)", "scaleY", "x2"},
		{"dangling exponent", "rotate(1e)", "rotate", "1e"},
		{"unit only", "translateX(px)", "translateX", "px"},
		{"sign only", "scale(-)", "scale", "-"},
		{"inner garbage", "translateX(1x2px)", "translateX", "1x2px"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input, ".broken")
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.input)
			}
			var merr *MalformedOperationError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *MalformedOperationError, got %T", err)
			}
			if merr.Operation != tt.operation {
				t.Errorf("Operation = %q, want %q", merr.Operation, tt.operation)
			}
			if merr.Token != tt.token {
				t.Errorf("Token = %q, want %q", merr.Token, tt.token)
			}
			if merr.Selector != ".broken" {
				t.Errorf("Selector = %q, want .broken", merr.Selector)
			}
		})
	}
}

func TestOperation_String(t *testing.T) {
	op := Operation{Name: "translate", Params: []float64{10, -2.5}}
	if got, want := op.String(), "translate(10, -2.5)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 19 {
		t.Errorf("expected 19 operations, got %d: %v", len(names), names)
	}
	if !slices.IsSorted(names) {
		t.Error("Names() must be sorted")
	}
	if _, ok := Lookup("rotateZ"); !ok {
		t.Error("rotateZ must be registered")
	}
}
