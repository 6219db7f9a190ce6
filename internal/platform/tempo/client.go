// Package tempo acquires orderbook snapshots for the stablecoin DEX: a live
// on-chain client batching tick-level reads through Multicall3, and a
// deterministic mock generator for offline operation.
package tempo

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/engine"
)

// tokenDecimals scales raw liquidity figures to quote units (TIP-20 tokens
// carry 6 decimals).
const tokenDecimals = 1e6

// maxOrderCountEstimate caps the head/tail ID distance heuristic. Order IDs
// are monotonic but not contiguous, so the distance is only an upper bound.
const maxOrderCountEstimate = 100

const dexABIJSON = `[
	{"name":"getTickLevel","type":"function","stateMutability":"view",
	 "inputs":[{"name":"token","type":"address"},{"name":"tick","type":"int32"},{"name":"isBid","type":"bool"}],
	 "outputs":[{"name":"head","type":"uint256"},{"name":"tail","type":"uint256"},{"name":"totalLiquidity","type":"uint256"}]},
	{"name":"getOrder","type":"function","stateMutability":"view",
	 "inputs":[{"name":"orderId","type":"uint256"}],
	 "outputs":[{"name":"order","type":"tuple","components":[
		{"name":"amount","type":"uint256"},
		{"name":"isBid","type":"bool"},
		{"name":"isFlip","type":"bool"},
		{"name":"tick","type":"int32"},
		{"name":"remaining","type":"uint256"}]}]}
]`

const multicallABIJSON = `[
	{"name":"aggregate3","type":"function","stateMutability":"payable",
	 "inputs":[{"name":"calls","type":"tuple[]","components":[
		{"name":"target","type":"address"},
		{"name":"allowFailure","type":"bool"},
		{"name":"callData","type":"bytes"}]}],
	 "outputs":[{"name":"returnData","type":"tuple[]","components":[
		{"name":"success","type":"bool"},
		{"name":"returnData","type":"bytes"}]}]}
]`

// ClientConfig holds the chain endpoints and scan parameters.
type ClientConfig struct {
	RPCURL           string
	DexAddress       string
	MulticallAddress string
	TokenAddress     string
	ScanMinTick      int
	ScanMaxTick      int
	TickSpacing      int
	// FlipSampleSize bounds how many head orders are fetched per snapshot
	// for flip detection.
	FlipSampleSize int
	// RetryMax bounds RPC retry attempts per multicall.
	RetryMax uint64
}

// Client fetches live orderbook snapshots over JSON-RPC. One Multicall3
// aggregate reads every tick level on both sides; a second samples head
// orders for flip detection.
type Client struct {
	eth       *ethclient.Client
	log       *slog.Logger
	cfg       ClientConfig
	dexABI    abi.ABI
	mcABI     abi.ABI
	dex       common.Address
	multicall common.Address
	token     common.Address
}

var _ domain.BookSource = (*Client)(nil)

// NewClient dials the RPC endpoint and prepares the packed ABIs.
func NewClient(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("tempo: dial %s: %w", cfg.RPCURL, err)
	}
	dexABI, err := abi.JSON(strings.NewReader(dexABIJSON))
	if err != nil {
		return nil, fmt.Errorf("tempo: parse dex abi: %w", err)
	}
	mcABI, err := abi.JSON(strings.NewReader(multicallABIJSON))
	if err != nil {
		return nil, fmt.Errorf("tempo: parse multicall abi: %w", err)
	}
	return &Client{
		eth:       eth,
		log:       logger.With("component", "tempo_client"),
		cfg:       cfg,
		dexABI:    dexABI,
		mcABI:     mcABI,
		dex:       common.HexToAddress(cfg.DexAddress),
		multicall: common.HexToAddress(cfg.MulticallAddress),
		token:     common.HexToAddress(cfg.TokenAddress),
	}, nil
}

// Name implements domain.BookSource.
func (c *Client) Name() string { return "tempo" }

// Close releases the RPC connection.
func (c *Client) Close() { c.eth.Close() }

type mcCall struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type mcResult struct {
	Success    bool
	ReturnData []byte
}

// flipCandidate is a non-empty level whose head order will be sampled.
type flipCandidate struct {
	tick  int
	isBid bool
	head  *big.Int
}

// Fetch implements domain.BookSource. Errors wrap
// domain.ErrSourceUnavailable so the monitor can classify them.
func (c *Client) Fetch(ctx context.Context) (domain.OrderbookSnapshot, error) {
	ticks := c.scanTicks()

	calls := make([]mcCall, 0, len(ticks)*2)
	for _, tick := range ticks {
		for _, isBid := range []bool{true, false} {
			data, err := c.dexABI.Pack("getTickLevel", c.token, int32(tick), isBid)
			if err != nil {
				return domain.OrderbookSnapshot{}, fmt.Errorf("tempo: pack getTickLevel: %w", err)
			}
			calls = append(calls, mcCall{Target: c.dex, AllowFailure: true, CallData: data})
		}
	}

	results, err := c.aggregate(ctx, calls)
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("tempo: scan tick levels: %w: %w", domain.ErrSourceUnavailable, err)
	}
	if len(results) != len(calls) {
		return domain.OrderbookSnapshot{}, fmt.Errorf("tempo: scan tick levels: %w: got %d results for %d calls",
			domain.ErrSourceUnavailable, len(results), len(calls))
	}

	var bids, asks []domain.OrderbookLevel
	var candidates []flipCandidate

	for i, tick := range ticks {
		for j, isBid := range []bool{true, false} {
			res := results[i*2+j]
			if !res.Success {
				continue
			}
			head, tail, liquidity, err := c.decodeTickLevel(res.ReturnData)
			if err != nil {
				c.log.Warn("undecodable tick level", "tick", tick, "isBid", isBid, "err", err)
				continue
			}
			if liquidity.Sign() <= 0 {
				continue
			}
			side := domain.SideAsk
			if isBid {
				side = domain.SideBid
			}
			level := domain.OrderbookLevel{
				Tick:       tick,
				Price:      engine.TickToPrice(tick),
				Liquidity:  float64FromUnits(liquidity),
				Side:       side,
				OrderCount: estimateOrderCount(head, tail),
			}
			if isBid {
				bids = append(bids, level)
			} else {
				asks = append(asks, level)
			}
			if head.Sign() > 0 {
				candidates = append(candidates, flipCandidate{tick: tick, isBid: isBid, head: head})
			}
		}
	}

	if err := c.sampleFlipOrders(ctx, candidates, bids, asks); err != nil {
		// Flip flags are an enrichment; the snapshot is still usable.
		c.log.Warn("flip sampling failed", "err", err)
	}

	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	snap := domain.OrderbookSnapshot{
		Timestamp: time.Now().UTC(),
		Bids:      bids,
		Asks:      asks,
		PegPrice:  engine.PegPrice,
	}
	snap.BestBid = bestOrEmpty(bids, domain.SideBid, -c.cfg.TickSpacing)
	snap.BestAsk = bestOrEmpty(asks, domain.SideAsk, c.cfg.TickSpacing)
	snap.MidPrice = (snap.BestBid.Price + snap.BestAsk.Price) / 2
	return snap, nil
}

// sampleFlipOrders reads the head order of up to FlipSampleSize non-empty
// levels and marks the matching levels whose head order is a flip.
func (c *Client) sampleFlipOrders(ctx context.Context, candidates []flipCandidate, bids, asks []domain.OrderbookLevel) error {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) > c.cfg.FlipSampleSize {
		candidates = candidates[:c.cfg.FlipSampleSize]
	}

	calls := make([]mcCall, 0, len(candidates))
	for _, cand := range candidates {
		data, err := c.dexABI.Pack("getOrder", cand.head)
		if err != nil {
			return fmt.Errorf("pack getOrder: %w", err)
		}
		calls = append(calls, mcCall{Target: c.dex, AllowFailure: true, CallData: data})
	}

	results, err := c.aggregate(ctx, calls)
	if err != nil {
		return err
	}

	for i, cand := range candidates {
		if i >= len(results) || !results[i].Success {
			continue
		}
		isFlip, err := c.decodeOrderIsFlip(results[i].ReturnData)
		if err != nil || !isFlip {
			continue
		}
		levels := asks
		if cand.isBid {
			levels = bids
		}
		for li := range levels {
			if levels[li].Tick == cand.tick {
				levels[li].IsFlipOrder = true
				break
			}
		}
	}
	return nil
}

// aggregate executes one Multicall3 aggregate3 eth_call with bounded
// exponential retry.
func (c *Client) aggregate(ctx context.Context, calls []mcCall) ([]mcResult, error) {
	input, err := c.mcABI.Pack("aggregate3", calls)
	if err != nil {
		return nil, fmt.Errorf("pack aggregate3: %w", err)
	}

	msg := ethereum.CallMsg{To: &c.multicall, Data: input}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.RetryMax), ctx)
	raw, err := backoff.RetryWithData(func() ([]byte, error) {
		return c.eth.CallContract(ctx, msg, nil)
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("aggregate3 call: %w", err)
	}

	out, err := c.mcABI.Unpack("aggregate3", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack aggregate3: %w", err)
	}
	decoded, ok := out[0].([]struct {
		Success    bool   `json:"success"`
		ReturnData []byte `json:"returnData"`
	})
	if !ok {
		return nil, fmt.Errorf("aggregate3: unexpected result type %T", out[0])
	}
	results := make([]mcResult, len(decoded))
	for i, d := range decoded {
		results[i] = mcResult{Success: d.Success, ReturnData: d.ReturnData}
	}
	return results, nil
}

func (c *Client) decodeTickLevel(data []byte) (head, tail, liquidity *big.Int, err error) {
	out, err := c.dexABI.Unpack("getTickLevel", data)
	if err != nil {
		return nil, nil, nil, err
	}
	head, _ = out[0].(*big.Int)
	tail, _ = out[1].(*big.Int)
	liquidity, _ = out[2].(*big.Int)
	if head == nil || tail == nil || liquidity == nil {
		return nil, nil, nil, fmt.Errorf("getTickLevel: unexpected output shape")
	}
	return head, tail, liquidity, nil
}

func (c *Client) decodeOrderIsFlip(data []byte) (bool, error) {
	out, err := c.dexABI.Unpack("getOrder", data)
	if err != nil {
		return false, err
	}
	order, ok := out[0].(struct {
		Amount    *big.Int `json:"amount"`
		IsBid     bool     `json:"isBid"`
		IsFlip    bool     `json:"isFlip"`
		Tick      int32    `json:"tick"`
		Remaining *big.Int `json:"remaining"`
	})
	if !ok {
		return false, fmt.Errorf("getOrder: unexpected result type %T", out[0])
	}
	return order.IsFlip, nil
}

func (c *Client) scanTicks() []int {
	var ticks []int
	for t := c.cfg.ScanMinTick; t <= c.cfg.ScanMaxTick; t += c.cfg.TickSpacing {
		ticks = append(ticks, t)
	}
	return ticks
}

// estimateOrderCount derives a rough order count from the head/tail ID span.
// Zero head means an empty queue; equal head and tail mean a single order.
func estimateOrderCount(head, tail *big.Int) int {
	if head.Sign() == 0 {
		return 0
	}
	if head.Cmp(tail) == 0 {
		return 1
	}
	diff := new(big.Int).Sub(tail, head)
	if !diff.IsInt64() {
		return maxOrderCountEstimate
	}
	n := int(diff.Int64())
	if n < 1 {
		return 1
	}
	if n > maxOrderCountEstimate {
		return maxOrderCountEstimate
	}
	return n
}

func float64FromUnits(raw *big.Int) float64 {
	f, _ := new(big.Float).SetInt(raw).Float64()
	return f / tokenDecimals
}

// bestOrEmpty returns the first level of a sorted side, or a synthetic empty
// level one spacing off the peg when the side has no liquidity.
func bestOrEmpty(levels []domain.OrderbookLevel, side domain.Side, emptyTick int) domain.OrderbookLevel {
	if len(levels) > 0 {
		return levels[0]
	}
	return domain.OrderbookLevel{
		Tick:  emptyTick,
		Price: engine.TickToPrice(emptyTick),
		Side:  side,
	}
}
