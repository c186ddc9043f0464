package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrTransport marks network or RPC-level failures talking to the fullnode,
// as opposed to a transaction that executed and reported failure on-chain.
var ErrTransport = errors.New("ledger transport error")

// ErrExecutionFailed marks a transaction that was executed by the chain but
// did not report success status.
var ErrExecutionFailed = errors.New("transaction execution failed")

type Client struct {
	rpcURL     string
	httpClient *http.Client
}

func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: failed to read response body: %v", ErrTransport, method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d, body: %s", ErrTransport, method, resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%w: %s: failed to decode response: %v", ErrTransport, method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %s: rpc error %d: %s", ErrTransport, method, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: %s: failed to decode result: %v", ErrTransport, method, err)
		}
	}

	return nil
}

type EffectsStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Effects struct {
	Status EffectsStatus `json:"status"`
}

type Event struct {
	Type       string                 `json:"type"`
	ParsedJSON map[string]interface{} `json:"parsedJson,omitempty"`
}

type TransactionBlock struct {
	Digest  string   `json:"digest"`
	Effects *Effects `json:"effects,omitempty"`
	Events  []Event  `json:"events,omitempty"`
}

// GetTransactionBlock fetches a transaction with effects and events by digest.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string) (*TransactionBlock, error) {
	var result TransactionBlock
	err := c.call(ctx, "sui_getTransactionBlock", []interface{}{
		digest,
		map[string]bool{
			"showEffects": true,
			"showEvents":  true,
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type ObjectContent struct {
	DataType string                 `json:"dataType"`
	Type     string                 `json:"type"`
	Fields   map[string]interface{} `json:"fields"`
}

type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Type     string         `json:"type"`
	Content  *ObjectContent `json:"content,omitempty"`
}

type ownedObjectEntry struct {
	Data *ObjectData `json:"data"`
}

type ownedObjectsPage struct {
	Data        []ownedObjectEntry `json:"data"`
	NextCursor  *string            `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

// GetOwnedObjects returns all objects of the given struct type owned by the
// address, following pagination cursors until the page set is exhausted.
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string) ([]ObjectData, error) {
	query := map[string]interface{}{
		"filter": map[string]string{
			"StructType": structType,
		},
		"options": map[string]bool{
			"showContent": true,
			"showType":    true,
		},
	}

	var objects []ObjectData
	var cursor *string
	for {
		var page ownedObjectsPage
		err := c.call(ctx, "suix_getOwnedObjects", []interface{}{owner, query, cursor, nil}, &page)
		if err != nil {
			return nil, err
		}

		for _, entry := range page.Data {
			if entry.Data != nil {
				objects = append(objects, *entry.Data)
			}
		}

		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	return objects, nil
}

type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// GetBalance returns the owner's SUI balance.
func (c *Client) GetBalance(ctx context.Context, owner string) (*Balance, error) {
	var result Balance
	if err := c.call(ctx, "suix_getBalance", []interface{}{owner}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type txBytesResult struct {
	TxBytes string `json:"txBytes"`
}

// MoveCallTxBytes asks the fullnode to build transaction bytes for a single
// move call on behalf of the signer address.
func (c *Client) MoveCallTxBytes(ctx context.Context, signer string, call *MoveCall, gasBudget uint64) (string, error) {
	parts := strings.Split(call.Target, "::")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid move call target: %s", call.Target)
	}

	args := make([]interface{}, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		switch arg.Kind {
		case ArgObject, ArgPure:
			args = append(args, arg.Value)
		default:
			return "", fmt.Errorf("argument kind %q requires wallet-side building", arg.Kind)
		}
	}

	var result txBytesResult
	err := c.call(ctx, "unsafe_moveCall", []interface{}{
		signer,
		parts[0],
		parts[1],
		parts[2],
		[]string{},
		args,
		nil,
		fmt.Sprintf("%d", gasBudget),
	}, &result)
	if err != nil {
		return "", err
	}
	if result.TxBytes == "" {
		return "", fmt.Errorf("%w: unsafe_moveCall returned empty txBytes", ErrTransport)
	}

	return result.TxBytes, nil
}

// ExecuteTransactionBlock submits signed transaction bytes and waits for
// local execution, returning the digest on chain-reported success.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes string, signature string) (*TransactionBlock, error) {
	var result TransactionBlock
	err := c.call(ctx, "sui_executeTransactionBlock", []interface{}{
		txBytes,
		[]string{signature},
		map[string]bool{
			"showEffects": true,
			"showEvents":  true,
		},
		"WaitForLocalExecution",
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.Effects == nil || result.Effects.Status.Status != "success" {
		statusErr := ""
		if result.Effects != nil {
			statusErr = result.Effects.Status.Error
		}
		return nil, fmt.Errorf("%w: digest %s: %s", ErrExecutionFailed, result.Digest, statusErr)
	}

	return &result, nil
}
