package model

// QuoteRecord is one simulated swap against a pool snapshot.
type QuoteRecord struct {
	ChainID      uint64 `json:"chain_id"`
	Pool         string `json:"pool"`
	BlockNumber  uint64 `json:"block_number"`
	Timestamp    uint64 `json:"timestamp"`
	QuoteTime    uint64 `json:"quote_time"`
	From         int    `json:"from"`
	To           int    `json:"to"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	AmountIn     string `json:"amount_in"`
	AmountOut    string `json:"amount_out"`
	SwapFee      string `json:"swap_fee"`
	AdminFee     string `json:"admin_fee"`
	A            string `json:"a"`
	VirtualPrice string `json:"virtual_price,omitempty"`
	QuotedAt     string `json:"quoted_at"`
}
