package domain

// Chain identifies a blockchain tracked by the discovery provider.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainEthereum Chain = "ethereum"
	ChainBSC      Chain = "bsc"
)

// AllChains returns the default set of chains scanned when no filter pins one.
func AllChains() []Chain {
	return []Chain{ChainSolana, ChainEthereum, ChainBSC}
}

// Valid reports whether c is a known chain identifier.
func (c Chain) Valid() bool {
	switch c {
	case ChainSolana, ChainEthereum, ChainBSC:
		return true
	}
	return false
}
