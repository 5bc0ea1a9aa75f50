package replay

import (
	"golang.org/x/exp/rand"
)

// Sample is one training position: the encoded state, the search's move
// probabilities over every cell and the final outcome for the player to move.
type Sample struct {
	State   []float32
	Probs   []float32
	Outcome float32
}

// Buffer keeps the most recent samples up to a fixed capacity, evicting
// the oldest first.
type Buffer struct {
	samples []Sample
	next    int // slot overwritten by the next Add once full
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		panic("capacity must be positive")
	}
	return &Buffer{samples: make([]Sample, 0, capacity)}
}

func (b *Buffer) Add(samples ...Sample) {
	for _, s := range samples {
		if len(b.samples) < cap(b.samples) {
			b.samples = append(b.samples, s)
			continue
		}
		b.samples[b.next] = s
		b.next = (b.next + 1) % cap(b.samples)
	}
}

func (b *Buffer) Len() int {
	return len(b.samples)
}

func (b *Buffer) Cap() int {
	return cap(b.samples)
}

// Sample draws n distinct samples uniformly at random, or all of them in
// random order when fewer than n are stored.
func (b *Buffer) Sample(rng *rand.Rand, n int) []Sample {
	if n > len(b.samples) {
		n = len(b.samples)
	}
	batch := make([]Sample, n)
	for i, j := range rng.Perm(len(b.samples))[:n] {
		batch[i] = b.samples[j]
	}
	return batch
}

// Snapshot returns the stored samples from oldest to newest.
func (b *Buffer) Snapshot() []Sample {
	out := make([]Sample, 0, len(b.samples))
	out = append(out, b.samples[b.next:]...)
	return append(out, b.samples[:b.next]...)
}
