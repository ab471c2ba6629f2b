package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMASeries returns the simple moving average aligned with closes.
// Positions without a full window of history are NaN.
func SMASeries(closes []float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	out := make([]float64, len(closes))
	if len(closes) < length {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sma := talib.Sma(closes, length)
	for i := range out {
		// talib leaves the lookback period zero-filled
		if i < length-1 || i >= len(sma) {
			out[i] = math.NaN()
			continue
		}
		out[i] = sma[i]
	}
	return out
}
