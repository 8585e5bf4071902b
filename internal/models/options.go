package models

import "github.com/shopspring/decimal"

// OptionChainRaw is the upstream-shaped document returned by the exchange
// adapter, before any flattening or strike selection.
type OptionChainRaw struct {
	Records OptionChainRecords `json:"records"`
}

type OptionChainRecords struct {
	Data            []OptionChainRow `json:"data"`
	ExpiryDates     []string         `json:"expiryDates"`
	UnderlyingValue float64          `json:"underlyingValue"`
}

// OptionChainRow is one upstream data element: a strike/expiry pair with
// optionally nested CE and PE maps carrying whatever fields the exchange
// chose to include (openInterest, lastPrice, totalTradedVolume, ...).
type OptionChainRow struct {
	StrikePrice interface{}            `json:"strikePrice"`
	ExpiryDate  string                 `json:"expiryDate"`
	CE          map[string]interface{} `json:"CE,omitempty"`
	PE          map[string]interface{} `json:"PE,omitempty"`
}

// FlatRow is one row of a flattened chain: a single numeric strike within one
// expiry, with CE/PE hoisted to their own field maps (rendered as CE_*/PE_*
// columns on CSV export). Either map may be nil.
type FlatRow struct {
	StrikePrice decimal.Decimal
	ExpiryDate  string
	CE          map[string]interface{}
	PE          map[string]interface{}
}

// OptionChainFlat is a strike-ascending sequence of FlatRow, all sharing one
// expiry.
type OptionChainFlat []FlatRow

// SnapshotMeta is the metadata document written alongside every persisted
// snapshot CSV.
type SnapshotMeta struct {
	CreatedAtUTC         string   `json:"created_at_utc"`
	IndexName            string   `json:"index_name"`
	Expiry               string   `json:"expiry"`
	UnderlyingValue      float64  `json:"underlying_value"`
	ATMStrike            int64    `json:"atm_strike"`
	SelectedStrikesRange [2]int64 `json:"selected_strikes_range"`
	TotalStrikes         int      `json:"total_strikes"`
}

// OptionSnapshot is an immutable, persisted, point-in-time flattened option
// chain plus its metadata.
type OptionSnapshot struct {
	Meta SnapshotMeta    `json:"meta"`
	Rows OptionChainFlat `json:"rows"`
}

// AnalyticsResult is the pure, deterministic function of a chain snapshot
// that C7 computes.
type AnalyticsResult struct {
	PCRByOI           float64    `json:"pcr_by_oi"`
	PCRByVolume       float64    `json:"pcr_by_volume"`
	ResistanceStrikes []OIStrike `json:"resistance_strikes"`
	SupportStrikes    []OIStrike `json:"support_strikes"`
	MaxPainStrike     *int64     `json:"max_pain_strike"`
	MaxLossValue      int64      `json:"max_loss_value"`
}

// OIStrike is one entry of a top-open-interest ranking.
type OIStrike struct {
	StrikePrice  int64 `json:"strike_price"`
	OpenInterest int64 `json:"open_interest"`
}
