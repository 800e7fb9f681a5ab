package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bpdash/pkg/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ErrEmptySeries is returned when a percentage is requested from a series
// whose values sum to zero.
var ErrEmptySeries = errors.New("series total is zero")

var hundred = decimal.NewFromInt(100)

// HoldingKind tells whether a slice came from a crypto or a fiat holding.
type HoldingKind string

const (
	KindCrypto HoldingKind = "crypto"
	KindFiat   HoldingKind = "fiat"
)

// Slice is one wedge of the proportional chart.
type Slice struct {
	Symbol string
	Label  string
	Name   string
	Kind   HoldingKind
	Value  decimal.Decimal
	Style
}

// Series is the ordered output of a projection. Order is rendering order.
type Series struct {
	Mode   ViewMode
	Slices []Slice
}

// Total returns the sum of all slice values.
func (s Series) Total() decimal.Decimal {
	return lo.Reduce(s.Slices, func(acc decimal.Decimal, sl Slice, _ int) decimal.Decimal {
		return acc.Add(sl.Value)
	}, decimal.Zero)
}

// Empty reports whether there is nothing to apportion: no slices, or a
// total that is not positive.
func (s Series) Empty() bool {
	return s.Total().Sign() <= 0
}

// Percent returns slice i as a percentage of this series' total.
// The value is derived on each call from the current slices.
func (s Series) Percent(i int) (decimal.Decimal, error) {
	if i < 0 || i >= len(s.Slices) {
		return decimal.Zero, fmt.Errorf("slice index %d out of range [0,%d)", i, len(s.Slices))
	}
	total := s.Total()
	if total.Sign() <= 0 {
		return decimal.Zero, ErrEmptySeries
	}
	return s.Slices[i].Value.Div(total).Mul(hundred), nil
}

// Projector turns a snapshot into chart series.
type Projector struct {
	ReferenceCurrency string
	Rate              RateFunc
	Logger            *slog.Logger
}

// NewProjector returns a projector using the approximate rate table.
func NewProjector(referenceCurrency string) *Projector {
	return &Projector{
		ReferenceCurrency: strings.ToUpper(referenceCurrency),
		Rate:              ApproximateRates(referenceCurrency),
	}
}

// Project builds the series for mode. A nil snapshot gives an empty series.
// Slices keep the input order, crypto before fiat, and are never filtered.
// Fiat is sized in the snapshot's reference currency when it carries one.
func (p *Projector) Project(snapshot *models.PortfolioSnapshot, mode ViewMode) Series {
	series := Series{Mode: mode}
	if snapshot == nil {
		return series
	}
	ref, rate := p.ratesFor(snapshot.ReferenceCurrency)

	if mode == ModeTotal || mode == ModeCryptoOnly {
		for _, h := range snapshot.CryptoHoldings {
			series.Slices = append(series.Slices, Slice{
				Symbol: h.Symbol,
				Label:  h.Symbol,
				Name:   h.DisplayName,
				Kind:   KindCrypto,
				Value:  h.Value,
				Style:  StyleFor(h.Symbol),
			})
		}
	}
	if mode == ModeTotal || mode == ModeFiatOnly {
		for _, h := range snapshot.FiatHoldings {
			series.Slices = append(series.Slices, Slice{
				Symbol: h.Symbol,
				Label:  h.Symbol,
				Name:   h.DisplayName,
				Kind:   KindFiat,
				Value:  p.fiatValue(h, ref, rate),
				Style:  StyleFor(h.Symbol),
			})
		}
	}
	return series
}

// ratesFor picks the reference currency and rate table for one projection.
// The configured table only applies while the snapshot agrees with the
// configured currency.
func (p *Projector) ratesFor(snapshotRef string) (string, RateFunc) {
	ref := strings.ToUpper(strings.TrimSpace(snapshotRef))
	if ref == "" {
		ref = p.ReferenceCurrency
	}
	if p.Rate != nil && strings.EqualFold(ref, p.ReferenceCurrency) {
		return ref, p.Rate
	}
	if !strings.EqualFold(ref, p.ReferenceCurrency) {
		p.logger().Debug("snapshot reference currency overrides configured one",
			"snapshot", ref, "configured", p.ReferenceCurrency)
	}
	return ref, ApproximateRates(ref)
}

// fiatValue sizes a fiat balance in ref. Non-reference balances use the
// approximate rate; an unknown rate leaves the balance as is.
func (p *Projector) fiatValue(h models.FiatHolding, ref string, rate RateFunc) decimal.Decimal {
	if strings.EqualFold(h.Symbol, ref) {
		return h.Balance
	}
	r, ok := rate(h.Symbol)
	if !ok {
		p.logger().Debug("no approximate rate for fiat symbol", "symbol", h.Symbol, "reference", ref)
		return h.Balance
	}
	return h.Balance.Mul(r)
}

func (p *Projector) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
