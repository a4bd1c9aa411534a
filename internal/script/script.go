// Package script compiles user slider formulas. A formula is an expr
// expression evaluated against the slider value and a small set of
// functions that write to the node the slider is bound to.
package script

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/linuxmatters/jivedeck/internal/clock"
	"github.com/linuxmatters/jivedeck/internal/graph"
)

// ErrNotNumber is returned when a formula evaluates to something other
// than a number or nil.
var ErrNotNumber = errors.New("formula result is not a number")

// SliderTransform turns a slider value into a parameter value. The bool
// result is false when the transform produced no value.
type SliderTransform interface {
	Transform(value float64, deckID, sliderID string, ctx clock.Source, node graph.Node) (float64, bool, error)
}

// Formula is a compiled slider expression. It is safe for concurrent use.
type Formula struct {
	source  string
	program *vm.Program
}

// Compile type-checks src against the formula environment.
func Compile(src string) (*Formula, error) {
	program, err := expr.Compile(src, expr.Env(newEnv(0, "", "", 0, nil)))
	if err != nil {
		return nil, fmt.Errorf("compile formula: %w", err)
	}
	return &Formula{source: src, program: program}, nil
}

// Source returns the formula text.
func (f *Formula) Source() string { return f.source }

// Eval runs the formula and returns its raw result.
func (f *Formula) Eval(value float64, deckID, sliderID string, ctx clock.Source, node graph.Node) (any, error) {
	var now float64
	if ctx != nil {
		now = ctx.Now()
	}
	out, err := expr.Run(f.program, newEnv(value, deckID, sliderID, now, node))
	if err != nil {
		return nil, fmt.Errorf("run formula: %w", err)
	}
	return out, nil
}

// Transform implements SliderTransform.
func (f *Formula) Transform(value float64, deckID, sliderID string, ctx clock.Source, node graph.Node) (float64, bool, error) {
	out, err := f.Eval(value, deckID, sliderID, ctx, node)
	if err != nil {
		return 0, false, err
	}
	return toNumber(out)
}

func toNumber(v any) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	}
	return 0, false, fmt.Errorf("%w: got %T", ErrNotNumber, v)
}

// newEnv builds the variables and functions visible to a formula. The
// setters write to node when it has the named parameter and return their
// argument.
func newEnv(value float64, deckID, sliderID string, now float64, node graph.Node) map[string]any {
	setter := func(name string) func(float64) float64 {
		return func(v float64) float64 {
			if node != nil {
				if p := node.Param(name); p != nil {
					p.Set(v)
				}
			}
			return v
		}
	}
	return map[string]any{
		"value":        value,
		"deckId":       deckID,
		"sliderId":     sliderID,
		"currentTime":  now,
		"setFrequency": setter("frequency"),
		"setGain":      setter("gain"),
		"setQ":         setter("Q"),
	}
}
