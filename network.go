package hsminer

// network holds the tag string exposed via GetNetwork. It defaults to
// "main" and is overridden at process start by cmd/hsminer from its
// config file, via SetNetwork, before any job is submitted.
var network = "main"

// Known network tags. Handshake mining only needs to distinguish the
// production chain from its test networks at the PoW layer; chain
// selection and validation happen elsewhere.
const (
	NetworkMain    = "main"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
	NetworkSimnet  = "simnet"
)

// GetNetwork returns the network tag this process was configured for.
func GetNetwork() string {
	return network
}

// SetNetwork overrides the network tag. Intended to be called once at
// startup from configuration, not concurrently with mining.
func SetNetwork(n string) {
	network = n
}
