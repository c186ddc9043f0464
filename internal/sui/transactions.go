package sui

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const mistPerSui = 1_000_000_000

// Argument kinds understood by the wallet-facing transaction encoding.
const (
	ArgGasCoin = "gas_coin"
	ArgResult  = "result"
	ArgObject  = "object"
	ArgPure    = "pure"
)

// Command kinds.
const (
	CmdSplitCoins = "split_coins"
	CmdMoveCall   = "move_call"
)

// Argument is one input to a transaction command. Result arguments refer to
// the output of an earlier command in the same intent.
type Argument struct {
	Kind    string `json:"kind"`
	Value   string `json:"value,omitempty"`
	Command int    `json:"command,omitempty"`
	Index   int    `json:"index,omitempty"`
}

type SplitCoins struct {
	Coin    Argument `json:"coin"`
	Amounts []uint64 `json:"amounts"`
}

type MoveCall struct {
	Target    string     `json:"target"`
	Arguments []Argument `json:"arguments"`
}

type Command struct {
	Kind       string      `json:"kind"`
	SplitCoins *SplitCoins `json:"split_coins,omitempty"`
	MoveCall   *MoveCall   `json:"move_call,omitempty"`
}

// TransactionIntent is an unsigned transaction description. It is returned
// to the caller's wallet for signing, or executed by the service signer when
// it consists of a single move call.
type TransactionIntent struct {
	Commands []Command `json:"commands"`
}

// BuildPaymentTransaction splits the generation fee from gas and calls
// pay_for_generation with the split coin and the shared payment config.
func BuildPaymentTransaction(packageID, paymentConfigID string, amountMist uint64) *TransactionIntent {
	return &TransactionIntent{
		Commands: []Command{
			{
				Kind: CmdSplitCoins,
				SplitCoins: &SplitCoins{
					Coin:    Argument{Kind: ArgGasCoin},
					Amounts: []uint64{amountMist},
				},
			},
			{
				Kind: CmdMoveCall,
				MoveCall: &MoveCall{
					Target: fmt.Sprintf("%s::profile_nft::pay_for_generation", packageID),
					Arguments: []Argument{
						{Kind: ArgResult, Command: 0, Index: 0},
						{Kind: ArgObject, Value: paymentConfigID},
					},
				},
			},
		},
	}
}

// BuildMintTransaction builds the mint_nft call for a certified blob URL.
// The name must be non-empty; description and URL are passed through as-is.
func BuildMintTransaction(packageID, name, description, imageURL string) (*TransactionIntent, error) {
	if name == "" {
		return nil, fmt.Errorf("nft name is required")
	}

	return &TransactionIntent{
		Commands: []Command{
			{
				Kind: CmdMoveCall,
				MoveCall: &MoveCall{
					Target: fmt.Sprintf("%s::profile_nft::mint_nft", packageID),
					Arguments: []Argument{
						{Kind: ArgPure, Value: name},
						{Kind: ArgPure, Value: description},
						{Kind: ArgPure, Value: imageURL},
					},
				},
			},
		},
	}, nil
}

// BuildTransferTransaction builds the transfer_nft call.
func BuildTransferTransaction(packageID, nftID, recipient string) (*TransactionIntent, error) {
	if nftID == "" {
		return nil, fmt.Errorf("nft id is required")
	}
	if recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	return &TransactionIntent{
		Commands: []Command{
			{
				Kind: CmdMoveCall,
				MoveCall: &MoveCall{
					Target: fmt.Sprintf("%s::profile_nft::transfer_nft", packageID),
					Arguments: []Argument{
						{Kind: ArgObject, Value: nftID},
						{Kind: ArgPure, Value: recipient},
					},
				},
			},
		},
	}, nil
}

// SingleMoveCall returns the intent's move call when the intent consists of
// exactly one move-call command, which is the precondition for service-side
// execution.
func (t *TransactionIntent) SingleMoveCall() (*MoveCall, bool) {
	if len(t.Commands) != 1 || t.Commands[0].Kind != CmdMoveCall {
		return nil, false
	}
	return t.Commands[0].MoveCall, true
}

// MistToSui converts a MIST amount to SUI for display.
func MistToSui(mist uint64) decimal.Decimal {
	return decimal.NewFromUint64(mist).Div(decimal.NewFromInt(mistPerSui))
}
