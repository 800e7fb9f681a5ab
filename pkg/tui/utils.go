package tui

import (
	"bpdash/pkg/utils"

	"github.com/shopspring/decimal"
)

func (m model) displayMoney(d decimal.Decimal, currency string) string {
	if m.privacyMode {
		return utils.MaskedValue
	}
	return utils.FormatMoney(d, currency)
}

func (m model) displayAmount(d decimal.Decimal, decimals int) string {
	if m.privacyMode {
		return utils.MaskedValue
	}
	return utils.FormatDecimal(d, decimals)
}

func (m model) maskString(s string) string {
	return utils.Mask(s, m.privacyMode)
}
