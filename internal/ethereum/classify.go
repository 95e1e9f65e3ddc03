package ethereum

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	revertPrefix = "execution reverted:"

	// JSON-RPC codes with a fixed meaning across providers.
	codeExecutionReverted = 3
	codeUserRejected      = 4001
)

// errorRecord is a provider failure reduced to the fields classification needs.
type errorRecord struct {
	reason  string
	data    []byte
	message string
	code    int
}

func normalizeError(err error) errorRecord {
	rec := errorRecord{message: err.Error()}

	var dataErr rpc.DataError
	if stderrors.As(err, &dataErr) {
		rec.data = revertData(dataErr.ErrorData())
	}
	var rpcErr rpc.Error
	if stderrors.As(err, &rpcErr) {
		rec.code = rpcErr.ErrorCode()
	}
	if i := strings.Index(strings.ToLower(rec.message), revertPrefix); i >= 0 {
		rec.reason = strings.TrimSpace(rec.message[i+len(revertPrefix):])
	}
	return rec
}

func revertData(v interface{}) []byte {
	switch d := v.(type) {
	case []byte:
		return d
	case string:
		if b, err := hexutil.Decode(d); err == nil {
			return b
		}
	}
	return nil
}

// text picks the most specific description available: the explicit revert
// reason, then the decoded payload, then the provider message. decoded is
// true when the text came from the contract itself.
func (r errorRecord) text() (text string, decoded bool) {
	if r.reason != "" {
		return r.reason, true
	}
	if reason, ok := decodeRevert(r.data); ok {
		return reason, true
	}
	if r.message != "" {
		return r.message, false
	}
	return "reverted", false
}

// decodeRevert decodes Error(string), Panic(uint256) or one of the contract's
// custom errors.
func decodeRevert(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason, true
	}
	for name, e := range contractABI.Errors {
		if bytes.Equal(data[:4], e.ID[:4]) {
			return name, true
		}
	}
	return "", false
}

type pattern struct {
	needles []string
	kind    errors.Kind
}

// Order matters: the first matching row wins.
var patterns = []pattern{
	{[]string{"already bet"}, errors.KindAlreadyBet},
	{[]string{"betting window not ended", "not yet closed"}, errors.KindNotYetClosed},
	{[]string{"betting closed", "market closed", "already resolved", "betting time has ended", "betting is closed"}, errors.KindMarketClosed},
	{[]string{"only organizer", "not organizer", "unauthorized"}, errors.KindUnauthorized},
	{[]string{"insufficient funds", "insufficient balance"}, errors.KindInsufficientFunds},
	{[]string{"user rejected", "user denied"}, errors.KindUserRejected},
	{[]string{"gas required exceeds", "cannot estimate gas", "unpredictable_gas_limit", "execution reverted"}, errors.KindReverted},
}

func matchKind(text string, decoded bool, code int) errors.Kind {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		for _, needle := range p.needles {
			if strings.Contains(lower, needle) {
				return p.kind
			}
		}
	}
	switch {
	case code == codeUserRejected:
		return errors.KindUserRejected
	case decoded, code == codeExecutionReverted:
		return errors.KindReverted
	}
	return errors.KindUnknown
}

// Classify maps any contract failure onto the error taxonomy. Errors that are
// already classified pass through unchanged.
func Classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	var ce *errors.ChainError
	if stderrors.As(err, &ce) {
		return err
	}

	rec := normalizeError(err)
	text, decoded := rec.text()
	kind := matchKind(text, decoded, rec.code)

	classified := &errors.ChainError{Kind: kind, Operation: operation, Reason: text, Err: err}
	if kind == errors.KindReverted && decoded {
		classified.Message = fmt.Sprintf("%s: %s", strings.TrimSuffix(kind.DefaultMessage(), "."), text)
	}
	return classified
}

// classifyRead is Classify for view calls, where an unrecognised failure is
// treated as a transient read error.
func classifyRead(operation string, err error) error {
	classified := Classify(operation, err)
	if errors.KindOf(classified) == errors.KindUnknown {
		var ce *errors.ChainError
		if stderrors.As(classified, &ce) {
			ce.Kind = errors.KindTransientRead
		}
	}
	return classified
}
