package indicator

const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

type MACDResult struct {
	Line   []float64
	Signal []float64
	Hist   []float64
}

// MACD требует минимум slow+signal точек.
func MACD(series []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(series) < slow+signal {
		return MACDResult{}, ErrInsufficientData
	}

	fastEMA, err := EMA(series, fast)
	if err != nil {
		return MACDResult{}, err
	}
	slowEMA, err := EMA(series, slow)
	if err != nil {
		return MACDResult{}, err
	}

	line := make([]float64, len(series))
	for i := range series {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	sig, err := EMA(line, signal)
	if err != nil {
		return MACDResult{}, err
	}

	hist := make([]float64, len(series))
	for i := range line {
		hist[i] = line[i] - sig[i]
	}

	return MACDResult{Line: line, Signal: sig, Hist: hist}, nil
}

// Last2 последние две точки ряда: предыдущая и текущая.
func Last2(series []float64) (prev, cur float64, ok bool) {
	if len(series) < 2 {
		return 0, 0, false
	}
	return series[len(series)-2], series[len(series)-1], true
}
