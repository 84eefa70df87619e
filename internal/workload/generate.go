package workload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
)

const hexDigits = "0123456789abcdef"

// Generator produces fixtures from a validated config. Each Generator owns
// its PRNG; two generators built from the same config and seed produce
// byte-identical fixtures.
type Generator struct {
	cfg  Config
	seed uint64
	rng  *rand.Rand
}

// NewGenerator validates cfg and constructs a generator. When cfg.Seed is
// nil a random seed is drawn once so the run is still reproducible after
// the fact via Seed().
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	return &Generator{
		cfg:  cfg,
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}, nil
}

// Seed returns the seed this generator was built with.
func (g *Generator) Seed() uint64 { return g.seed }

// Config returns the generator's config.
func (g *Generator) Config() Config { return g.cfg }

// Fixture generates one complete workload. Draw order is fixed: pools
// first, then transactions, then blocks. Reordering the draws changes the
// byte output for existing seeds, so treat the sequence as frozen.
func (g *Generator) Fixture() *Fixture {
	cfg := g.cfg

	addresses := g.addresses(cfg.TransactionCount + cfg.BlockCount)
	timestamps := g.draws(cfg.TimestampRange, cfg.BlockCount)
	gasPrices := g.draws(cfg.GasPriceRange, cfg.TransactionCount)
	values := g.draws(cfg.ValueRange, cfg.TransactionCount)
	gasLimits := g.draws(cfg.GasLimitRange, cfg.TransactionCount)
	payloads := g.payloads(cfg.TransactionCount)

	transactions := make([]Transaction, cfg.TransactionCount)
	for i := range transactions {
		transactions[i] = Transaction{
			Nonce:     uint64(i),
			Value:     values[i],
			GasPrice:  gasPrices[i],
			GasLimit:  gasLimits[i],
			ToAddress: addresses[i],
			Data:      payloads[i],
			// Fewer timestamps than transactions: reuse the block pool cyclically.
			Timestamp: timestamps[i%len(timestamps)],
		}
	}

	blocks := make([]Block, cfg.BlockCount)
	for i := range blocks {
		blocks[i] = Block{
			FromAddress:      addresses[cfg.TransactionCount+i],
			PreviousHash:     blockLabelDigest(i),
			Timestamp:        timestamps[i],
			TransactionCount: g.drawIn(Range{Min: 1, Max: 100}),
			GasUsed:          g.drawIn(Range{Min: 1_000_000, Max: 10_000_000}),
		}
	}

	return &Fixture{
		Transactions: transactions,
		Blocks:       blocks,
		Addresses:    addresses,
		Timestamps:   timestamps,
		GasPrices:    gasPrices,
		Values:       values,
		GasLimits:    gasLimits,
		DataPayloads: payloads,
	}
}

// addresses generates count prefixed lowercase hex addresses.
func (g *Generator) addresses(count int) []string {
	out := make([]string, count)
	buf := make([]byte, g.cfg.AddressHexLen)
	for i := range out {
		for j := range buf {
			buf[j] = hexDigits[g.rng.IntN(len(hexDigits))]
		}
		out[i] = g.cfg.AddressPrefix + string(buf)
	}
	return out
}

// draws generates count uniform values from r.
func (g *Generator) draws(r Range, count int) []uint64 {
	out := make([]uint64, count)
	for i := range out {
		out[i] = g.drawIn(r)
	}
	return out
}

// drawIn draws one value uniformly from the inclusive range r.
func (g *Generator) drawIn(r Range) uint64 {
	span := r.Max - r.Min + 1
	if span == 0 {
		return g.rng.Uint64()
	}
	return r.Min + g.rng.Uint64N(span)
}

// payloads generates count random byte strings, hex-encoded, with lengths
// uniform in the configured size range.
func (g *Generator) payloads(count int) []string {
	out := make([]string, count)
	for i := range out {
		size := g.drawIn(g.cfg.PayloadSizeRange)
		raw := make([]byte, size)
		for j := range raw {
			raw[j] = byte(g.rng.Uint64N(256))
		}
		out[i] = hex.EncodeToString(raw)
	}
	return out
}

// blockLabelDigest derives the stable per-index block identity: the hex
// SHA-256 of the label "block_<i>". Implementations under test receive it
// as previous_hash and must treat it as opaque.
func blockLabelDigest(index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("block_%d", index)))
	return hex.EncodeToString(sum[:])
}
