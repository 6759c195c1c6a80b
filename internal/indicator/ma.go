package indicator

import "errors"

var ErrInsufficientData = errors.New("insufficient data")

// SMA скользящая средняя по окну w. out[j] соответствует series[j+w-1],
// точки до w-1 не возвращаются.
func SMA(series []float64, w int) ([]float64, error) {
	if w <= 0 || len(series) < w {
		return nil, ErrInsufficientData
	}

	out := make([]float64, 0, len(series)-w+1)
	var sum float64
	for i, p := range series {
		sum += p
		if i >= w {
			sum -= series[i-w]
		}
		if i >= w-1 {
			out = append(out, sum/float64(w))
		}
	}
	return out, nil
}
