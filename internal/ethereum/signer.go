package ethereum

import (
	"context"
	"math/big"
	"strings"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChainIDReader reports the network's chain id.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// NewSigner builds transaction options from a hex private key. A chainID of
// zero is looked up from the node.
func NewSigner(ctx context.Context, hexKey string, chainID int64, node ChainIDReader) (*bind.TransactOpts, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, &errors.EthereumError{Operation: "load private key", Err: err}
	}

	id := big.NewInt(chainID)
	if chainID == 0 {
		id, err = node.ChainID(ctx)
		if err != nil {
			return nil, &errors.EthereumError{Operation: "read chain id", Err: err}
		}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, id)
	if err != nil {
		return nil, &errors.EthereumError{Operation: "create transactor", Err: err}
	}
	opts.Context = ctx
	return opts, nil
}
