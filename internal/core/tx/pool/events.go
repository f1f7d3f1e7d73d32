package pool

// PoolCreatedEvent is emitted when a pool is initialized.
type PoolCreatedEvent struct {
	AssetA     string `json:"asset_a"`
	AssetB     string `json:"asset_b"`
	ShareToken string `json:"share_token"`
	Authority  string `json:"authority"`

	// FeeRate is display-only. Pricing always uses the integer pair.
	FeeRate        float64 `json:"fee_rate"`
	FeeNumerator   uint64  `json:"fee_numerator"`
	FeeDenominator uint64  `json:"fee_denominator"`
}

// EventType returns the event name
func (PoolCreatedEvent) EventType() string { return "PoolCreated" }

// LiquidityAddedEvent is emitted after a successful deposit.
type LiquidityAddedEvent struct {
	AssetA       string `json:"asset_a"`
	AssetB       string `json:"asset_b"`
	Provider     string `json:"provider"`
	AmountA      uint64 `json:"amount_a"`
	AmountB      uint64 `json:"amount_b"`
	SharesMinted uint64 `json:"shares_minted"`

	// ReserveA and ReserveB are the post-transaction reserve balances.
	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`
}

// EventType returns the event name
func (LiquidityAddedEvent) EventType() string { return "LiquidityAdded" }

// SwapExecutedEvent is emitted after a successful swap.
type SwapExecutedEvent struct {
	AssetIn   string `json:"asset_in"`
	AssetOut  string `json:"asset_out"`
	Trader    string `json:"trader"`
	AmountIn  uint64 `json:"amount_in"`
	AmountOut uint64 `json:"amount_out"`
	Fee       uint64 `json:"fee"`
}

// EventType returns the event name
func (SwapExecutedEvent) EventType() string { return "SwapExecuted" }

// LiquidityRemovedEvent is emitted after a successful withdrawal.
type LiquidityRemovedEvent struct {
	AssetA       string `json:"asset_a"`
	AssetB       string `json:"asset_b"`
	Provider     string `json:"provider"`
	AmountA      uint64 `json:"amount_a"`
	AmountB      uint64 `json:"amount_b"`
	SharesBurned uint64 `json:"shares_burned"`

	// ReserveA and ReserveB are the post-transaction reserve balances.
	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`
}

// EventType returns the event name
func (LiquidityRemovedEvent) EventType() string { return "LiquidityRemoved" }
