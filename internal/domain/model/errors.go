package model

import (
	"errors"
	"fmt"
)

// Fetch error taxonomy. Source adapters return these unwrapped; the price
// service owns retry policy and is the only place that produces the
// terminal PriceUnavailableError.
var (
	// ErrSourceUnreachable 网络或超时错误，可重试一次
	ErrSourceUnreachable = errors.New("price source unreachable")

	// ErrParseFailure 页面结构变化导致解析失败，不重试
	ErrParseFailure = errors.New("price response parse failure")

	// ErrUnsupportedAsset 该 adapter 不支持的标的，不重试
	ErrUnsupportedAsset = errors.New("unsupported asset")

	// ErrRunInProgress skip-if-running: 上一轮快照还没结束
	ErrRunInProgress = errors.New("snapshot run already in progress")
)

// PriceUnavailableError is returned once all fetch attempts for a query are
// exhausted. It wraps the last adapter error so errors.Is still identifies
// the root cause.
type PriceUnavailableError struct {
	Kind   AssetKind
	Symbol string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price unavailable for %s %s: %v", e.Kind, e.Symbol, e.Err)
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }
