package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParseAddresses converts string addresses into common.Address, skipping
// blanks and duplicates.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	seen := make(map[common.Address]struct{}, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		address := common.HexToAddress(input)
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// Fingerprint identifies a pool set independent of its order.
func Fingerprint(pools []common.Address) string {
	sorted := make([]common.Address, len(pools))
	copy(sorted, pools)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Cmp(sorted[j]) < 0
	})

	data := make([]byte, 0, len(sorted)*common.AddressLength)
	for _, pool := range sorted {
		data = append(data, pool.Bytes()...)
	}
	return crypto.Keccak256Hash(data).Hex()
}
