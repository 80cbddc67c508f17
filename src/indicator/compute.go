package indicator

import (
	"math"

	"github.com/pine1990/StockChartViewer/src/series"
)

// SMA computes a simple moving average with a sliding sum, O(n) regardless of
// period. Indices below period-1 are NaN.
func SMA(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 || period > len(values) {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the SMA of the first
// period values.
func EMA(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 || period > len(values) {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[period-1] = prev
	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		prev = prev + k*(values[i]-prev)
		out[i] = prev
	}
	return out
}

// bollinger returns the middle band (SMA) plus upper/lower bands at
// width*stddev, computed with sliding sums.
func bollinger(values []float64, period int, width float64) (mid, upper, lower []float64) {
	n := len(values)
	mid = SMA(values, period)
	upper = undefinedSeries(n)
	lower = undefinedSeries(n)
	if period <= 1 || period > n {
		return
	}
	sum, sumSq := 0.0, 0.0
	for i, v := range values {
		sum += v
		sumSq += v * v
		if i >= period {
			old := values[i-period]
			sum -= old
			sumSq -= old * old
		}
		if i >= period-1 {
			mean := sum / float64(period)
			variance := sumSq/float64(period) - mean*mean
			if variance < 0 {
				variance = 0 // float drift on flat windows
			}
			sd := math.Sqrt(variance)
			upper[i] = mean + width*sd
			lower[i] = mean - width*sd
		}
	}
	return
}

// rsi computes the Wilder-smoothed relative strength index. Values before
// index period are NaN (the first delta consumes one bar).
func rsi(closes []float64, period int) []float64 {
	out := undefinedSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macd computes the MACD line (EMA12-EMA26) and its EMA9 signal line.
func macd(closes []float64, fast, slow, signalPeriod int) (line, signal []float64) {
	n := len(closes)
	line = undefinedSeries(n)
	signal = undefinedSeries(n)
	fastE := EMA(closes, fast)
	slowE := EMA(closes, slow)
	for i := 0; i < n; i++ {
		if !math.IsNaN(fastE[i]) && !math.IsNaN(slowE[i]) {
			line[i] = fastE[i] - slowE[i]
		}
	}
	from := firstDefined(line)
	if from >= n || n-from < signalPeriod {
		return
	}
	sig := EMA(line[from:], signalPeriod)
	for i, v := range sig {
		signal[from+i] = v
	}
	return
}

// stochastic computes %K over kPeriod and its SMA-%D over dPeriod. The
// window min/max scan is bounded by kPeriod, which is small and fixed.
func stochastic(pts []series.PricePoint, kPeriod, dPeriod int) (kLine, dLine []float64) {
	n := len(pts)
	kLine = undefinedSeries(n)
	dLine = undefinedSeries(n)
	if kPeriod <= 0 || kPeriod > n {
		return
	}
	for i := kPeriod - 1; i < n; i++ {
		lo := math.MaxFloat64
		hi := -math.MaxFloat64
		for j := i - kPeriod + 1; j <= i; j++ {
			if pts[j].Low < lo {
				lo = pts[j].Low
			}
			if pts[j].High > hi {
				hi = pts[j].High
			}
		}
		if hi <= lo {
			kLine[i] = 50
			continue
		}
		kLine[i] = (pts[i].Close - lo) / (hi - lo) * 100
	}
	from := firstDefined(kLine)
	if n-from < dPeriod {
		return
	}
	d := SMA(kLine[from:], dPeriod)
	for i, v := range d {
		dLine[from+i] = v
	}
	return
}
