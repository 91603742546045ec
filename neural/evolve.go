package neural

import (
	"fmt"
	"math/rand"
	"sort"
)

// Policy is the control interface both network kinds satisfy.
type Policy interface {
	Activate(inputs []float64) ([]float64, error)
}

// Evolver breeds a fixed-size population between generations.
type Evolver interface {
	// Policies returns the current population in stable order. The slice
	// index is the member index fitness scores are reported against.
	Policies() []Policy
	// Next replaces the population using the fitness scores of the current
	// one. len(fitness) must equal the population size.
	Next(fitness []float64) error
	// Generation returns the number of completed Next calls.
	Generation() int
}

// MutationParams tunes the sparse FFNN mutation operator.
type MutationParams struct {
	Rate     float64 // per-weight mutation probability
	Sigma    float64 // standard perturbation sigma
	BigRate  float64 // probability a mutation is a large one
	BigSigma float64 // sigma for large mutations
}

// DefaultMutationParams returns the tuning the driving networks train with.
func DefaultMutationParams() MutationParams {
	return MutationParams{Rate: 0.05, Sigma: 0.08, BigRate: 0.01, BigSigma: 0.4}
}

// FFNNEvolver breeds feedforward networks by elitism plus truncation
// selection: the top of the population survives unchanged, everyone else is
// replaced by a mutated clone of a randomly chosen survivor.
type FFNNEvolver struct {
	rng        *rand.Rand
	pop        []*FFNN
	elite      int
	parentFrac float64
	mut        MutationParams
	generation int
}

// NewFFNNEvolver creates a random initial population.
func NewFFNNEvolver(rng *rand.Rand, popSize, numInputs, numHidden, elite int, mut MutationParams) *FFNNEvolver {
	if elite < 1 {
		elite = 1
	}
	if elite > popSize {
		elite = popSize
	}
	pop := make([]*FFNN, popSize)
	for i := range pop {
		pop[i] = NewFFNN(rng, numInputs, numHidden)
	}
	return &FFNNEvolver{
		rng:        rng,
		pop:        pop,
		elite:      elite,
		parentFrac: 0.25,
		mut:        mut,
	}
}

// Policies returns the current population.
func (e *FFNNEvolver) Policies() []Policy {
	out := make([]Policy, len(e.pop))
	for i, nn := range e.pop {
		out[i] = nn
	}
	return out
}

// Generation returns the number of completed generations.
func (e *FFNNEvolver) Generation() int { return e.generation }

// Next breeds the next generation from the given fitness scores.
func (e *FFNNEvolver) Next(fitness []float64) error {
	if len(fitness) != len(e.pop) {
		return fmt.Errorf("got %d fitness scores for population of %d", len(fitness), len(e.pop))
	}

	order := rankDesc(fitness)

	parents := int(float64(len(e.pop)) * e.parentFrac)
	if parents < e.elite {
		parents = e.elite
	}

	next := make([]*FFNN, len(e.pop))
	for i := 0; i < e.elite; i++ {
		next[i] = e.pop[order[i]]
	}
	for i := e.elite; i < len(next); i++ {
		parent := e.pop[order[e.rng.Intn(parents)]]
		child := parent.Clone()
		child.MutateSparse(e.rng, e.mut.Rate, e.mut.Sigma, e.mut.BigRate, e.mut.BigSigma)
		next[i] = child
	}

	e.pop = next
	e.generation++
	return nil
}

// Best returns the highest-scoring network for the given fitness scores.
func (e *FFNNEvolver) Best(fitness []float64) *FFNN {
	if len(fitness) != len(e.pop) || len(e.pop) == 0 {
		return nil
	}
	return e.pop[rankDesc(fitness)[0]]
}

// NEATEvolver breeds NEAT genomes with the same elitism plus truncation
// scheme. Only connection weights mutate; network topology is fixed by the
// seed genome.
type NEATEvolver struct {
	rng        *rand.Rand
	pop        []*GenomePolicy
	elite      int
	parentFrac float64
	power      float64 // weight mutation power
	nextID     int
	generation int
}

// NewNEATEvolver creates a population of mutated copies of a fresh seed
// genome.
func NewNEATEvolver(rng *rand.Rand, popSize, numInputs, elite int, power float64) (*NEATEvolver, error) {
	if elite < 1 {
		elite = 1
	}
	if elite > popSize {
		elite = popSize
	}

	e := &NEATEvolver{
		rng:        rng,
		pop:        make([]*GenomePolicy, popSize),
		elite:      elite,
		parentFrac: 0.25,
		power:      power,
		nextID:     1,
	}

	seed := CreateSeedGenome(e.takeID(), numInputs, rng)
	for i := range e.pop {
		genome := CloneGenome(seed, e.takeID())
		if i > 0 {
			MutateWeights(genome, power, rng)
		}
		policy, err := NewGenomePolicy(genome)
		if err != nil {
			return nil, fmt.Errorf("seeding genome %d: %w", i, err)
		}
		e.pop[i] = policy
	}
	return e, nil
}

// Policies returns the current population.
func (e *NEATEvolver) Policies() []Policy {
	out := make([]Policy, len(e.pop))
	for i, p := range e.pop {
		out[i] = p
	}
	return out
}

// Generation returns the number of completed generations.
func (e *NEATEvolver) Generation() int { return e.generation }

// Next breeds the next generation from the given fitness scores.
func (e *NEATEvolver) Next(fitness []float64) error {
	if len(fitness) != len(e.pop) {
		return fmt.Errorf("got %d fitness scores for population of %d", len(fitness), len(e.pop))
	}

	order := rankDesc(fitness)

	parents := int(float64(len(e.pop)) * e.parentFrac)
	if parents < e.elite {
		parents = e.elite
	}

	next := make([]*GenomePolicy, len(e.pop))
	for i := 0; i < e.elite; i++ {
		next[i] = e.pop[order[i]]
	}
	for i := e.elite; i < len(next); i++ {
		parent := e.pop[order[e.rng.Intn(parents)]]
		child := CloneGenome(parent.Genome, e.takeID())
		MutateWeights(child, e.power, e.rng)
		policy, err := NewGenomePolicy(child)
		if err != nil {
			return fmt.Errorf("breeding genome %d: %w", i, err)
		}
		next[i] = policy
	}

	e.pop = next
	e.generation++
	return nil
}

func (e *NEATEvolver) takeID() int {
	id := e.nextID
	e.nextID++
	return id
}

// rankDesc returns population indices sorted by fitness, best first.
func rankDesc(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return fitness[order[a]] > fitness[order[b]] })
	return order
}
