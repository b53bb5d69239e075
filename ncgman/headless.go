// Headless is the client of a nine chronicles headless node.
package ncgman

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	graphql "github.com/hasura/go-graphql-client"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/agreement"
	bridgecommon "github.com/TEENet-io/ncg-bridge/common"
)

type Headless struct {
	client     *graphql.Client
	httpClient *http.Client
	httpRoot   string
}

func NewHeadless(cfg *Config) (*Headless, error) {
	if cfg.GraphQLEndpoint == "" {
		return nil, fmt.Errorf("%w: empty graphql endpoint", ErrInvalidEndpoint)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	return &Headless{
		client:     graphql.NewClient(cfg.GraphQLEndpoint, httpClient),
		httpClient: httpClient,
		httpRoot:   cfg.HTTPRootEndpoint,
	}, nil
}

// GetTipIndex returns the index of the tip block.
func (h *Headless) GetTipIndex(ctx context.Context) (uint64, error) {
	var q struct {
		NodeStatus struct {
			Tip struct {
				Index Long
			}
		}
	}
	if err := h.client.Query(ctx, &q, nil); err != nil {
		return 0, err
	}
	return uint64(q.NodeStatus.Tip.Index), nil
}

func (h *Headless) GetBlockHash(ctx context.Context, index uint64) (string, error) {
	var q struct {
		ChainQuery struct {
			BlockQuery struct {
				Block *struct {
					Hash string
				} `graphql:"block(index: $index)"`
			}
		}
	}
	vars := map[string]interface{}{
		"index": ID(strconv.FormatUint(index, 10)),
	}
	if err := h.client.Query(ctx, &q, vars); err != nil {
		return "", err
	}

	block := q.ChainQuery.BlockQuery.Block
	if block == nil || block.Hash == "" {
		return "", ErrBlockNotFoundAt(index)
	}
	return block.Hash, nil
}

// GetNCGTransferEvents returns the NCG transfers to recipient in the block.
func (h *Headless) GetNCGTransferEvents(ctx context.Context, index uint64, blockHash string, recipient common.Address) ([]*agreement.TransferEvent, error) {
	var q struct {
		TransferNCGHistories []TransferHistory `graphql:"transferNCGHistories(blockHash: $blockHash, recipient: $recipient)"`
	}
	vars := map[string]interface{}{
		"blockHash": ByteString(blockHash),
		"recipient": Address(recipient.Hex()),
	}
	if err := h.client.Query(ctx, &q, vars); err != nil {
		return nil, err
	}

	events := make([]*agreement.TransferEvent, 0, len(q.TransferNCGHistories))
	for _, history := range q.TransferNCGHistories {
		ev, err := toTransferEvent(index, &history)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func toTransferEvent(index uint64, history *TransferHistory) (*agreement.TransferEvent, error) {
	if history.TxId == "" {
		return nil, fmt.Errorf("%w: empty tx id at %d", ErrInvalidHistory, index)
	}
	if !common.IsHexAddress(history.Sender) || !common.IsHexAddress(history.Recipient) {
		return nil, fmt.Errorf("%w: bad address in %s", ErrInvalidHistory, history.TxId)
	}
	amount, err := bridgecommon.ParseNCGAmount(history.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidHistory, history.TxId, err)
	}

	var memo string
	if history.Memo != nil {
		memo = *history.Memo
	}

	return &agreement.TransferEvent{
		BlockIndex: index,
		BlockHash:  history.BlockHash,
		TxId:       history.TxId,
		Sender:     common.HexToAddress(history.Sender),
		Recipient:  common.HexToAddress(history.Recipient),
		Amount:     amount,
		RawAmount:  history.Amount,
		Memo:       memo,
	}, nil
}

func (h *Headless) GetNextTxNonce(ctx context.Context, address common.Address) (int64, error) {
	var q struct {
		Transaction struct {
			NextTxNonce Long `graphql:"nextTxNonce(address: $address)"`
		}
	}
	vars := map[string]interface{}{
		"address": Address(address.Hex()),
	}
	if err := h.client.Query(ctx, &q, vars); err != nil {
		return 0, err
	}
	return int64(q.Transaction.NextTxNonce), nil
}

// Transfer stages a NCG transfer signed by the node key and returns the tx id.
// amount is a decimal NCG string such as "12.34".
func (h *Headless) Transfer(ctx context.Context, recipient common.Address, amount string, txNonce int64, memo string) (string, error) {
	var m struct {
		Transfer TxId `graphql:"transfer(recipient: $recipient, amount: $amount, txNonce: $txNonce, memo: $memo)"`
	}
	vars := map[string]interface{}{
		"recipient": Address(recipient.Hex()),
		"amount":    String(amount),
		"txNonce":   Long(txNonce),
		"memo":      String(memo),
	}
	if err := h.client.Mutate(ctx, &m, vars); err != nil {
		return "", err
	}
	if m.Transfer == "" {
		return "", ErrEmptyTxId
	}

	logger.WithFields(logger.Fields{
		"tx":        string(m.Transfer),
		"recipient": recipient.Hex(),
		"amount":    amount,
		"nonce":     txNonce,
	}).Info("NCG transfer staged")

	return string(m.Transfer), nil
}
