package rpc

// Qubic RPC endpoint paths.
const (
	tickInfoPath = "/v1/tick-info"
	balancesPath = "/v1/balances/"
)
