package model

// TokenMeta is the ERC20 metadata needed to scale prices.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}
