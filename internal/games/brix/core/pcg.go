package core

import "math/bits"

const pcgMultiplier = 6364136223846793005

// pcg32 is a PCG-XSH-RR generator: 64 bits of state, 32 bits of output.
// It is a plain value so that pits can be cloned together with their color
// stream.
type pcg32 struct {
	state uint64
	inc   uint64
}

// newPCG32 follows the reference seeding: prime with the stream increment,
// add the seed, step once more.
func newPCG32(seed uint64) pcg32 {
	g := pcg32{inc: 1<<1 | 1}
	g.next()
	g.state += seed
	g.next()
	return g
}

func (g *pcg32) next() uint32 {
	old := g.state
	g.state = old*pcgMultiplier + g.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

// below returns an unbiased value in [0, bound).
func (g *pcg32) below(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		v := g.next()
		if v >= threshold {
			return v % bound
		}
	}
}
