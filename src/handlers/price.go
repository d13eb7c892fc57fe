package handlers

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PriceCodec converts between decimal prices on the wire and the integer
// ticks the engine matches on. Scale 2 means one tick is 0.01.
type PriceCodec struct {
	scale int32
}

func NewPriceCodec(scale int32) PriceCodec {
	return PriceCodec{scale: scale}
}

func (pc PriceCodec) ToTicks(price decimal.Decimal) (int64, error) {
	shifted := price.Shift(pc.scale)
	// edge case: reject sub-tick precision instead of rounding
	if !shifted.IsInteger() {
		return 0, &ValidationError{Message: "Invalid order: price has more than " + strconv.Itoa(int(pc.scale)) + " decimal places"}
	}
	if !shifted.Equal(decimal.NewFromInt(shifted.IntPart())) {
		return 0, &ValidationError{Message: "Invalid order: price out of range"}
	}
	return shifted.IntPart(), nil
}

func (pc PriceCodec) Format(ticks int64) string {
	return decimal.New(ticks, -pc.scale).StringFixed(pc.scale)
}
