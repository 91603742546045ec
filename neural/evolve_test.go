package neural

import (
	"math/rand"
	"testing"
)

func TestRankDesc(t *testing.T) {
	order := rankDesc([]float64{10, 50, 30})
	want := []int{1, 2, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestFFNNEvolverKeepsElite(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := NewFFNNEvolver(rng, 10, 7, 8, 2, DefaultMutationParams())

	fitness := make([]float64, 10)
	fitness[4] = 100
	fitness[7] = 50
	best := e.pop[4]
	second := e.pop[7]

	if err := e.Next(fitness); err != nil {
		t.Fatal(err)
	}

	if e.pop[0] != best || e.pop[1] != second {
		t.Error("elites not carried over in fitness order")
	}
	if len(e.pop) != 10 {
		t.Errorf("population size drifted to %d", len(e.pop))
	}
	if e.Generation() != 1 {
		t.Errorf("generation = %d, want 1", e.Generation())
	}
}

func TestFFNNEvolverOffspringAreCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	e := NewFFNNEvolver(rng, 6, 4, 4, 1, DefaultMutationParams())

	fitness := []float64{5, 0, 0, 0, 0, 0}
	parents := map[*FFNN]bool{}
	for _, nn := range e.pop {
		parents[nn] = true
	}

	if err := e.Next(fitness); err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(e.pop); i++ {
		if parents[e.pop[i]] {
			t.Errorf("offspring %d shares storage with a parent", i)
		}
	}
}

func TestFFNNEvolverFitnessLengthMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	e := NewFFNNEvolver(rng, 5, 4, 4, 1, DefaultMutationParams())

	if err := e.Next([]float64{1, 2}); err == nil {
		t.Error("expected error for short fitness slice")
	}
}

func TestNEATEvolverBreeds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	e, err := NewNEATEvolver(rng, 8, 7, 2, 0.5)
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	if len(e.Policies()) != 8 {
		t.Fatalf("population = %d, want 8", len(e.Policies()))
	}

	fitness := make([]float64, 8)
	fitness[3] = 10
	best := e.pop[3]

	if err := e.Next(fitness); err != nil {
		t.Fatal(err)
	}

	if e.pop[0] != best {
		t.Error("best genome not carried over")
	}
	if len(e.pop) != 8 {
		t.Errorf("population size drifted to %d", len(e.pop))
	}
	if e.Generation() != 1 {
		t.Errorf("generation = %d, want 1", e.Generation())
	}

	// Offspring must evaluate.
	inputs := make([]float64, 7)
	for _, p := range e.Policies() {
		if _, err := p.Activate(inputs); err != nil {
			t.Fatalf("offspring activation failed: %v", err)
		}
	}
}

func TestNEATEvolverUniqueGenomeIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	e, err := NewNEATEvolver(rng, 6, 4, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Next(make([]float64, 6)); err != nil {
		t.Fatal(err)
	}

	seen := map[int]bool{}
	for _, p := range e.pop {
		if seen[p.Genome.Id] {
			t.Errorf("duplicate genome id %d", p.Genome.Id)
		}
		seen[p.Genome.Id] = true
	}
}
