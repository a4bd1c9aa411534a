package script

import "github.com/linuxmatters/jivedeck/internal/graph"

// TestResult is the outcome of a dry run of a formula.
type TestResult struct {
	Input  float64
	Output any
	Params map[string]float64 // parameters the formula wrote
}

// mockNode records writes without touching a real graph.
type mockNode struct {
	params map[string]*graph.Param
}

func newMockNode() *mockNode {
	return &mockNode{params: map[string]*graph.Param{
		"frequency": graph.NewParam("frequency", 1000, 10, 24000),
		"gain":      graph.NewParam("gain", 0, -40, 40),
		"Q":         graph.NewParam("Q", 1, 0.0001, 1000),
	}}
}

func (m *mockNode) Param(name string) *graph.Param { return m.params[name] }

func (m *mockNode) written() map[string]float64 {
	out := make(map[string]float64)
	for name, p := range m.params {
		if p.Version() > 0 {
			out[name] = p.Value()
		}
	}
	return out
}

// Test compiles and runs src for deck A against a mock node.
func Test(src string, value float64, sliderID string) (TestResult, error) {
	f, err := Compile(src)
	if err != nil {
		return TestResult{Input: value}, err
	}
	node := newMockNode()
	out, err := f.Eval(value, "A", sliderID, nil, node)
	if err != nil {
		return TestResult{Input: value}, err
	}
	return TestResult{Input: value, Output: out, Params: node.written()}, nil
}
