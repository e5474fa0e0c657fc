package model

// PoolSnapshot is the full state needed to quote a pool at one block.
type PoolSnapshot struct {
	ChainID     uint64 `json:"chain_id"`
	Pool        string `json:"pool"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
	PoolMeta
	LPSupply             string      `json:"lp_supply"`
	Tokens               []TokenMeta `json:"tokens"`
	Balances             []string    `json:"balances"`
	PrecisionMultipliers []string    `json:"precision_multipliers"`
	FetchedAt            string      `json:"fetched_at"`
}

// TokenAddresses returns the pooled token addresses in index order.
func (s PoolSnapshot) TokenAddresses() []string {
	out := make([]string, len(s.Tokens))
	for i, token := range s.Tokens {
		out[i] = token.Address
	}
	return out
}

// PoolRecord derives the pool registry row for this snapshot.
func (s PoolSnapshot) PoolRecord() Pool {
	return Pool{
		ChainID:        s.ChainID,
		Address:        s.Pool,
		LPToken:        s.LPToken,
		Tokens:         s.TokenAddresses(),
		FirstSeenBlock: s.BlockNumber,
	}
}
