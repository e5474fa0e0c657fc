package model

// PoolMeta captures the swap storage parameters of a pool. Amounts are
// decimal strings to keep 256-bit values intact in JSON.
type PoolMeta struct {
	InitialA     string `json:"initial_a"`
	FutureA      string `json:"future_a"`
	InitialATime uint64 `json:"initial_a_time"`
	FutureATime  uint64 `json:"future_a_time"`
	SwapFee      string `json:"swap_fee"`
	AdminFee     string `json:"admin_fee"`
	LPToken      string `json:"lp_token"`
}
