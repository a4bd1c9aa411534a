package graph

import (
	"math/rand/v2"

	"github.com/linuxmatters/jivedeck/internal/config"
)

// Graph owns every deck chain plus the shared master gain and analyser.
type Graph struct {
	sampleRate int
	rng        *rand.Rand

	decks map[string]*DeckGraph
	order []string

	master   *Gain
	analyser *Analyser
	mix      [][]float64
}

// New creates an empty graph. A nil rng seeds impulse noise randomly.
func New(sampleRate int, rng *rand.Rand) *Graph {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Graph{
		sampleRate: sampleRate,
		rng:        rng,
		decks:      make(map[string]*DeckGraph),
		master:     NewGain(1),
		analyser: NewAnalyser(config.AnalyserSize, config.AnalyserSmoothing,
			config.AnalyserMinDB, config.AnalyserMaxDB),
	}
}

// SampleRate returns the rendering rate in Hz.
func (g *Graph) SampleRate() int { return g.sampleRate }

// BuildDeck builds the chain for id once. Later calls return the existing
// chain untouched.
func (g *Graph) BuildDeck(id string) (*DeckGraph, error) {
	if d, ok := g.decks[id]; ok {
		return d, nil
	}

	ir := GenerateImpulse(g.rng, g.sampleRate, config.ImpulseSeconds, config.ImpulseDecayPower, config.Channels)
	d, err := newDeckGraph(id, g.sampleRate, ir)
	if err != nil {
		return nil, err
	}
	g.decks[id] = d
	g.order = append(g.order, id)
	return d, nil
}

// Deck returns the chain for id or nil if it was never built.
func (g *Graph) Deck(id string) *DeckGraph {
	return g.decks[id]
}

// Master returns the master gain node.
func (g *Graph) Master() *Gain { return g.master }

// Analyser returns the master analyser.
func (g *Graph) Analyser() *Analyser { return g.analyser }

// Render overwrites the first n frames of out with the master mix.
func (g *Graph) Render(out [][]float64, n int) {
	if len(g.mix) == 0 || len(g.mix[0]) < n {
		g.mix = newBuffer(config.Channels, n)
	}
	zero(g.mix, n)

	for _, id := range g.order {
		g.decks[id].RenderInto(g.mix, n)
	}

	g.master.Process(g.mix, n)
	g.analyser.Process(g.mix, n)

	for ch := range out {
		copy(out[ch][:n], g.mix[ch%len(g.mix)][:n])
	}
}
