package indicator

type emaState struct {
	alpha  float64
	value  float64
	seeded bool
}

func newEMA(span int) emaState {
	if span <= 1 {
		span = 1
	}
	return emaState{
		alpha: 2.0 / (float64(span) + 1),
	}
}

func (e *emaState) Update(price float64) {
	if !e.seeded {
		e.value = price
		e.seeded = true
		return
	}
	e.value = e.alpha*price + (1-e.alpha)*e.value
}

func (e *emaState) Value() float64 { return e.value }

// EMA считает экспоненциальную среднюю по всему ряду, первая точка = первое значение.
func EMA(series []float64, span int) ([]float64, error) {
	if len(series) == 0 || span <= 0 {
		return nil, ErrInsufficientData
	}
	e := newEMA(span)
	out := make([]float64, len(series))
	for i, p := range series {
		e.Update(p)
		out[i] = e.Value()
	}
	return out, nil
}
