package candidate

import (
	"math/rand"
	"strings"

	"github.com/snow-ghost/guesser/core"
)

// Factory produces random candidate strings over core.Alphabet.
type Factory struct {
	rng *rand.Rand
}

func NewFactory(rng *rand.Rand) *Factory { return &Factory{rng: rng} }

// Letter returns a uniformly random alphabet character.
func (f *Factory) Letter() byte {
	return core.Alphabet[f.rng.Intn(len(core.Alphabet))]
}

// Create returns a uniformly random string of the given length.
func (f *Factory) Create(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(f.Letter())
	}
	return sb.String()
}

// RandomLength returns a uniform integer in [minLen, maxLen].
func (f *Factory) RandomLength(minLen, maxLen int) int {
	return minLen + f.rng.Intn(maxLen-minLen+1)
}
