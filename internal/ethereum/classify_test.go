package ethereum

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assertError string

func (e assertError) Error() string { return string(e) }

// rpcDataError mimics the JSON-RPC errors returned by ethclient.
type rpcDataError struct {
	msg  string
	code int
	data interface{}
}

func (e *rpcDataError) Error() string          { return e.msg }
func (e *rpcDataError) ErrorCode() int         { return e.code }
func (e *rpcDataError) ErrorData() interface{} { return e.data }

func encodeRevert(t *testing.T, signature, typ string, value interface{}) string {
	t.Helper()
	abiType, err := abi.NewType(typ, "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: abiType}}.Pack(value)
	require.NoError(t, err)
	selector := crypto.Keccak256([]byte(signature))[:4]
	return hexutil.Encode(append(selector, packed...))
}

func TestClassifyPatterns(t *testing.T) {
	testCases := []struct {
		message string
		kind    errors.Kind
	}{
		{"execution reverted: Already bet", errors.KindAlreadyBet},
		{"execution reverted: Betting window not ended", errors.KindNotYetClosed},
		{"execution reverted: Market not yet closed", errors.KindNotYetClosed},
		{"execution reverted: Betting closed", errors.KindMarketClosed},
		{"execution reverted: Market already resolved", errors.KindMarketClosed},
		{"execution reverted: Only organizer", errors.KindUnauthorized},
		{"insufficient funds for gas * price + value", errors.KindInsufficientFunds},
		{"User rejected the request", errors.KindUserRejected},
		{"gas required exceeds allowance (30000000)", errors.KindReverted},
		{"execution reverted", errors.KindReverted},
		{"execution reverted: SomethingOdd", errors.KindReverted},
		{"connection refused", errors.KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.message, func(t *testing.T) {
			err := Classify("placeBet", assertError(tc.message))
			assert.Equal(t, tc.kind, errors.KindOf(err))
		})
	}
}

func TestClassifyPrefersExplicitReasonOverPayload(t *testing.T) {
	err := Classify("placeBet", &rpcDataError{
		msg:  "execution reverted: Already bet",
		code: 3,
		data: encodeRevert(t, "Error(string)", "string", "Betting closed"),
	})
	assert.Equal(t, errors.KindAlreadyBet, errors.KindOf(err))
}

func TestClassifyDecodesErrorPayload(t *testing.T) {
	err := Classify("placeBet", &rpcDataError{
		msg:  "execution reverted",
		code: 3,
		data: encodeRevert(t, "Error(string)", "string", "Betting closed"),
	})
	assert.Equal(t, errors.KindMarketClosed, errors.KindOf(err))
}

func TestClassifyDecodedButUnmatchedIsReverted(t *testing.T) {
	err := Classify("resolveMarket", &rpcDataError{
		msg:  "VM error",
		data: encodeRevert(t, "Error(string)", "string", "Invalid market"),
	})

	var ce *errors.ChainError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindReverted, ce.Kind)
	assert.Equal(t, "Transaction reverted by contract: Invalid market", ce.UserMessage())
}

func TestClassifyPanicPayload(t *testing.T) {
	err := Classify("getMarket", &rpcDataError{
		msg:  "execution reverted",
		data: encodeRevert(t, "Panic(uint256)", "uint256", big.NewInt(0x32)),
	})
	assert.Equal(t, errors.KindReverted, errors.KindOf(err))
}

func TestClassifyUsesRPCCode(t *testing.T) {
	err := Classify("placeBet", &rpcDataError{msg: "request denied", code: 4001})
	assert.Equal(t, errors.KindUserRejected, errors.KindOf(err))
}

func TestClassifyNeverExposesProviderText(t *testing.T) {
	err := Classify("placeBet", assertError("connection refused by 10.0.0.1"))

	var ce *errors.ChainError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindUnknown.DefaultMessage(), ce.UserMessage())
	assert.NotContains(t, ce.UserMessage(), "10.0.0.1")
}

func TestClassifyPassesThroughChainErrors(t *testing.T) {
	wrapped := fmt.Errorf("wrapped: %w", errors.NewValidationError("createMarket", "Question is required"))
	assert.Equal(t, wrapped, Classify("createMarket", wrapped))
	assert.Nil(t, Classify("x", nil))
}
