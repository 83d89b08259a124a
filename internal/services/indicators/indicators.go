// Package indicators computes technical signals from daily price
// series. All functions take chronologically ascending data and return
// neutral defaults when the series is too short, so the scoring stage
// never has to branch on missing history.
package indicators

import (
	"math"

	"github.com/ternarybob/alphalens/internal/models"
)

const (
	rsiPeriod         = 14
	macdFastPeriod    = 12
	macdSlowPeriod    = 26
	macdSignalPeriod  = 9
	volumeShortPeriod = 10
	volumeLongPeriod  = 30
)

// SMA returns the simple moving average of the last period prices.
// The second return is false when the series is too short.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average over the full series,
// seeded with the SMA of the first period values.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	multiplier := 2.0 / float64(period+1)

	ema := 0.0
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)

	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
	}
	return ema, true
}

// RSI computes the relative strength index over the standard 14-day
// window. Short series and flat series report neutral 50; a series with
// gains and no losses reports 100.
func RSI(prices []float64) float64 {
	if len(prices) < rsiPeriod+1 {
		return 50.0
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	for _, g := range gains[len(gains)-rsiPeriod:] {
		avgGain += g
	}
	avgGain /= rsiPeriod

	avgLoss := 0.0
	for _, l := range losses[len(losses)-rsiPeriod:] {
		avgLoss += l
	}
	avgLoss /= rsiPeriod

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0
	}

	rs := avgGain / avgLoss
	return round2(100 - (100 / (1 + rs)))
}

// MACD computes the 12/26 MACD line, its 9-period signal line, and the
// histogram. The signal line is the EMA of MACD values computed over
// growing price prefixes. Series shorter than slow+signal periods
// report all zeros.
func MACD(prices []float64) (line, signal, histogram float64) {
	if len(prices) < macdSlowPeriod+macdSignalPeriod {
		return 0, 0, 0
	}

	fastEMA, _ := EMA(prices, macdFastPeriod)
	slowEMA, _ := EMA(prices, macdSlowPeriod)
	line = fastEMA - slowEMA

	macdValues := make([]float64, 0, len(prices)-macdSlowPeriod+1)
	for i := macdSlowPeriod; i <= len(prices); i++ {
		fast, fok := EMA(prices[:i], macdFastPeriod)
		slow, sok := EMA(prices[:i], macdSlowPeriod)
		if fok && sok {
			macdValues = append(macdValues, fast-slow)
		}
	}

	if sig, ok := EMA(macdValues, macdSignalPeriod); ok {
		signal = sig
	}
	histogram = line - signal

	return round4(line), round4(signal), round4(histogram)
}

// VolumeTrend returns the ratio of the 10-day to 30-day average volume.
// Greater than 1 means volume is picking up. Short or zero-volume
// series report neutral 1.0.
func VolumeTrend(volumes []int64) float64 {
	if len(volumes) < volumeLongPeriod {
		return 1.0
	}

	shortAvg := 0.0
	for _, v := range volumes[len(volumes)-volumeShortPeriod:] {
		shortAvg += float64(v)
	}
	shortAvg /= volumeShortPeriod

	longAvg := 0.0
	for _, v := range volumes[len(volumes)-volumeLongPeriod:] {
		longAvg += float64(v)
	}
	longAvg /= volumeLongPeriod

	if longAvg == 0 {
		return 1.0
	}
	return round3(shortAvg / longAvg)
}

// Compute derives the full indicator set for one price series. SMAs
// fall back to the latest close when the series is shorter than their
// window.
func Compute(series *models.PriceSeries) models.TechnicalIndicators {
	closes := series.Closes

	currentPrice := series.LatestClose()

	sma50, ok := SMA(closes, 50)
	if !ok {
		sma50 = currentPrice
	}
	sma200, ok := SMA(closes, 200)
	if !ok {
		sma200 = currentPrice
	}

	macd, macdSignal, macdHistogram := MACD(closes)

	return models.TechnicalIndicators{
		RSI:           RSI(closes),
		MACD:          macd,
		MACDSignal:    macdSignal,
		MACDHistogram: macdHistogram,
		SMA50:         round2(sma50),
		SMA200:        round2(sma200),
		CurrentPrice:  round2(currentPrice),
		VolumeTrend:   VolumeTrend(series.Volumes),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
