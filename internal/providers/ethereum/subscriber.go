package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/messaging"
)

// backfillStep is the initial block span of a single eth_getLogs request
const backfillStep = uint64(50_000)

func (c *Client) filterQuery(fromBlock uint64, toBlock *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   toBlock,
		Addresses: []common.Address{c.contract},
		Topics:    [][]common.Hash{eventSignatures},
	}
}

// SubscribeEvents replays marketplace logs from fromBlock up to the head, then follows new logs until ctx is done
func (c *Client) SubscribeEvents(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
	head, err := c.GetLatestBlock(ctx)
	if err != nil {
		return err
	}

	if fromBlock <= head {
		if err := c.backfill(ctx, fromBlock, head, handler); err != nil {
			return fmt.Errorf("failed to backfill logs: %w", err)
		}
	}

	logs := make(chan types.Log)
	sub, err := c.client.SubscribeFilterLogs(ctx, c.filterQuery(head+1, nil), logs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to filter logs: %w", err)
	}
	defer func() {
		logger.InfoCtx(ctx, "Unsubscribing from marketplace logs")
		sub.Unsubscribe()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			if vLog.Removed {
				// reorged out; the replacement log arrives separately
				logger.WarnCtx(ctx, "Skipping removed log", zap.String("tx_hash", vLog.TxHash.Hex()))
				continue
			}
			c.dispatch(ctx, vLog, handler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, vLog types.Log, handler messaging.EventHandler) {
	event, err := c.ParseEventLog(ctx, vLog)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Error parsing log"))
		}
		return
	}
	if event == nil {
		return
	}

	if err := handler(event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Error handling event"), zap.String("tx_hash", event.TxHash))
	}
}

// backfill fetches historical logs in chunks, halving the chunk when the node reports too many results
func (c *Client) backfill(ctx context.Context, fromBlock, toBlock uint64, handler messaging.EventHandler) error {
	step := backfillStep
	current := fromBlock

	for current <= toBlock {
		end := current + step - 1
		if end > toBlock {
			end = toBlock
		}

		logs, err := c.client.FilterLogs(ctx, c.filterQuery(current, new(big.Int).SetUint64(end)))
		if err != nil {
			if !isTooManyResultsError(err) || step == 1 {
				return classifyError(err)
			}
			step /= 2
			logger.WarnCtx(ctx, "Too many results, reducing step size",
				zap.Uint64("newStepSize", step),
				zap.Uint64("fromBlock", current))
			continue
		}

		for _, vLog := range logs {
			c.dispatch(ctx, vLog, handler)
		}
		current = end + 1
	}

	return nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}

// GetLatestBlock returns the latest block number
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	head, err := c.blocks.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return head, nil
}
