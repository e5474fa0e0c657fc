package model

// Pool represents a StableSwap pool record for storage.
type Pool struct {
	ChainID        uint64   `json:"chain_id"`
	Address        string   `json:"address"`
	LPToken        string   `json:"lp_token"`
	Tokens         []string `json:"tokens"`
	FirstSeenBlock uint64   `json:"first_seen_block"`
}
