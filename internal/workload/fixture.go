package workload

// Transaction is one synthetic transaction record. Payload bytes are
// carried hex-encoded so the fixture is directly comparable and
// serializable without a binary side channel.
type Transaction struct {
	Nonce     uint64 `json:"nonce"`
	Value     uint64 `json:"value"`
	GasPrice  uint64 `json:"gas_price"`
	GasLimit  uint64 `json:"gas_limit"`
	ToAddress string `json:"to_address"`
	Data      string `json:"data"`
	Timestamp uint64 `json:"timestamp"`
}

// Block is one synthetic block record. PreviousHash is a stable digest
// derived from the block index, not a real chain link: it gives each block
// a reproducible identity without requiring sequential hashing.
type Block struct {
	FromAddress      string `json:"from_address"`
	PreviousHash     string `json:"previous_hash"`
	Timestamp        uint64 `json:"timestamp"`
	TransactionCount uint64 `json:"transaction_count"`
	GasUsed          uint64 `json:"gas_used"`
}

// Fixture is one generated workload: the transaction and block sequences
// plus the raw pools they were built from. The pools are part of the
// interchange document so implementations under test can run raw-material
// benchmarks (hashing, signing) without re-deriving inputs.
//
// A Fixture is created once per differential run and read-only afterward.
type Fixture struct {
	Transactions []Transaction `json:"transactions"`
	Blocks       []Block       `json:"blocks"`
	Addresses    []string      `json:"addresses"`
	Timestamps   []uint64      `json:"timestamps"`
	GasPrices    []uint64      `json:"gas_prices"`
	Values       []uint64      `json:"values"`
	GasLimits    []uint64      `json:"gas_limits"`
	DataPayloads []string      `json:"data_payloads"`
}

// WireMap converts the fixture to the key/value form expected by the
// canonical interchange serializer. Key names are the wire contract shared
// with the executables under test; changing them is a protocol break.
func (f *Fixture) WireMap() map[string]any {
	txs := make([]any, len(f.Transactions))
	for i, tx := range f.Transactions {
		txs[i] = map[string]any{
			"nonce":      tx.Nonce,
			"value":      tx.Value,
			"gas_price":  tx.GasPrice,
			"gas_limit":  tx.GasLimit,
			"to_address": tx.ToAddress,
			"data":       tx.Data,
			"timestamp":  tx.Timestamp,
		}
	}

	blocks := make([]any, len(f.Blocks))
	for i, b := range f.Blocks {
		blocks[i] = map[string]any{
			"from_address":      b.FromAddress,
			"previous_hash":     b.PreviousHash,
			"timestamp":         b.Timestamp,
			"transaction_count": b.TransactionCount,
			"gas_used":          b.GasUsed,
		}
	}

	return map[string]any{
		"transactions":  txs,
		"blocks":        blocks,
		"addresses":     toAnySlice(f.Addresses),
		"timestamps":    toAnySlice(f.Timestamps),
		"gas_prices":    toAnySlice(f.GasPrices),
		"values":        toAnySlice(f.Values),
		"gas_limits":    toAnySlice(f.GasLimits),
		"data_payloads": toAnySlice(f.DataPayloads),
	}
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
