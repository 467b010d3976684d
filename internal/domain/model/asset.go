package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetKind is the closed set of asset classes a user can register.
type AssetKind string

const (
	KindJPStock   AssetKind = "jp_stock"
	KindUSStock   AssetKind = "us_stock"
	KindCash      AssetKind = "cash"
	KindGold      AssetKind = "gold"
	KindCrypto    AssetKind = "crypto"
	KindFund      AssetKind = "fund"
	KindInsurance AssetKind = "insurance"

	// KindFX is an internal pseudo-kind used to cache exchange rates.
	// It is not a registrable asset class.
	KindFX AssetKind = "fx"
)

// Kinds lists every registrable asset kind.
func Kinds() []AssetKind {
	return []AssetKind{
		KindJPStock, KindUSStock, KindCash, KindGold,
		KindCrypto, KindFund, KindInsurance,
	}
}

// ParseAssetKind validates a kind string coming from config or a request.
func ParseAssetKind(s string) (AssetKind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Fetchable reports whether the kind has an external price source.
// Cash and insurance carry manual values and never hit a source.
func (k AssetKind) Fetchable() bool {
	switch k {
	case KindJPStock, KindUSStock, KindGold, KindCrypto, KindFund:
		return true
	}
	return false
}

// PriceQuery identifies one priced asset. Comparable, used as the cache key.
type PriceQuery struct {
	Kind   AssetKind `json:"kind"`
	Symbol string    `json:"symbol"`
}

// Quote is a normalized price record from one source.
// PreviousClose is nil when the source does not expose one.
type Quote struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	PreviousClose *decimal.Decimal `json:"previous_close,omitempty"`
	FetchedAt     time.Time        `json:"fetched_at"`
	Source        string           `json:"source"`
}

// TrackedAsset is one row of the storage collaborator's asset listing.
type TrackedAsset struct {
	ID     int64
	UserID int64
	Kind   AssetKind
	Symbol string
}

// SnapshotRecord is one asset's priced entry in a daily snapshot run.
// RunID is shared by every record of the same run; TakenAt is the
// per-asset fetch time and may differ by seconds within a run.
type SnapshotRecord struct {
	AssetID int64
	Quote   Quote
	TakenAt time.Time
	RunID   string
}
