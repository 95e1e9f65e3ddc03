package ethereum

import (
	"context"
	"math/big"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthereumClient is the subset of an RPC client the contract façade and the
// balance synchronizer need. *ethclient.Client satisfies it.
type EthereumClient interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

type ClientCreator func(url string) (EthereumClient, error)

func defaultClientCreator(url string) (EthereumClient, error) {
	return ethclient.Dial(url)
}

// Dial connects to the RPC endpoint using creator, or ethclient when creator is nil.
func Dial(url string, creator ClientCreator) (EthereumClient, error) {
	if creator == nil {
		creator = defaultClientCreator
	}
	client, err := creator(url)
	if err != nil {
		return nil, &errors.EthereumError{Operation: "connect to the Ethereum client", Err: err}
	}
	logger.Info("Successfully connected to Ethereum client at %s", url)
	return client, nil
}
