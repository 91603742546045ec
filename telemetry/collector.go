package telemetry

// Accumulator totals fitness increments for one population member over a
// generation. The evaluation loop only ever adds; totals are read once the
// generation finishes.
type Accumulator struct {
	total float64
}

// Add records a fitness increment (negative for penalties).
func (a *Accumulator) Add(delta float64) { a.total += delta }

// Total returns the accumulated fitness.
func (a *Accumulator) Total() float64 { return a.total }

// Reset clears the accumulator for reuse in the next generation.
func (a *Accumulator) Reset() { a.total = 0 }

// NewAccumulators allocates one accumulator per population member.
func NewAccumulators(n int) []*Accumulator {
	accs := make([]*Accumulator, n)
	for i := range accs {
		accs[i] = &Accumulator{}
	}
	return accs
}

// Totals extracts the fitness scores in member order.
func Totals(accs []*Accumulator) []float64 {
	out := make([]float64, len(accs))
	for i, a := range accs {
		out[i] = a.Total()
	}
	return out
}
