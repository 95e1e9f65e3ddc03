package ethereum

import (
	"math/big"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// marketIDFromReceipt extracts the id from the MarketCreated log emitted by
// this contract. marketId is the first indexed topic.
func (c *Contract) marketIDFromReceipt(receipt *ethtypes.Receipt) (uint64, bool) {
	event, ok := contractABI.Events["MarketCreated"]
	if !ok || receipt == nil {
		return 0, false
	}
	for _, vLog := range receipt.Logs {
		if vLog == nil || vLog.Address != c.address {
			continue
		}
		if len(vLog.Topics) < 2 || vLog.Topics[0] != event.ID {
			continue
		}
		return new(big.Int).SetBytes(vLog.Topics[1].Bytes()).Uint64(), true
	}
	return 0, false
}

// MarketResolvedEvent is a decoded MarketResolved log.
type MarketResolvedEvent struct {
	MarketID uint64
	Outcome  bool
	TxHash   string
}

// ParseMarketResolved decodes a MarketResolved log, reporting false for any other log.
func ParseMarketResolved(vLog ethtypes.Log) (*MarketResolvedEvent, bool) {
	event, ok := contractABI.Events["MarketResolved"]
	if !ok || len(vLog.Topics) < 2 || vLog.Topics[0] != event.ID {
		return nil, false
	}
	values, err := event.Inputs.NonIndexed().Unpack(vLog.Data)
	if err != nil || len(values) != 1 {
		return nil, false
	}
	outcome, ok := values[0].(bool)
	if !ok {
		return nil, false
	}
	return &MarketResolvedEvent{
		MarketID: new(big.Int).SetBytes(vLog.Topics[1].Bytes()).Uint64(),
		Outcome:  outcome,
		TxHash:   vLog.TxHash.Hex(),
	}, true
}
