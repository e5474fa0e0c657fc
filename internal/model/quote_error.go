package model

// QuoteError records a failed quote for one sampled block.
type QuoteError struct {
	ChainID     uint64 `json:"chain_id"`
	Pool        string `json:"pool"`
	BlockNumber uint64 `json:"block_number"`
	From        int    `json:"from"`
	To          int    `json:"to"`
	AmountIn    string `json:"amount_in"`
	Error       string `json:"error"`
}
