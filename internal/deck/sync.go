package deck

import (
	"errors"
	"log"
)

// ErrNoBPM is returned by AutoSync when either deck has no detected tempo.
var ErrNoBPM = errors.New("both decks need a detected BPM")

// AutoSync matches both decks to the faster BPM by adjusting tempo. Phase is
// not aligned.
func AutoSync(a, b *Deck) error {
	if a.bpm == 0 || b.bpm == 0 {
		log.Printf("auto-sync: %v", ErrNoBPM)
		return ErrNoBPM
	}

	target := max(a.bpm, b.bpm)
	for _, d := range []*Deck{a, b} {
		if d.bpm != target {
			if err := d.SetTempo(float64(target) / float64(d.bpm)); err != nil {
				return err
			}
		}
	}
	log.Printf("auto-sync: decks matched at %d BPM", target)
	return nil
}
