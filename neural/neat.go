package neural

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// Weight mutation constants.
const (
	perturbProb         = 0.9 // probability of perturbing vs replacing a weight
	maxConnectionWeight = 8.0 // maximum absolute connection weight
)

// GenomePolicy wraps a NEAT genome and its phenotype network for runtime
// evaluation. The genome owns the weights; RebuildNetwork must be called
// after mutating it.
type GenomePolicy struct {
	Genome  *genetics.Genome
	network *network.Network
}

// NewGenomePolicy builds the phenotype network from a genome.
func NewGenomePolicy(genome *genetics.Genome) (*GenomePolicy, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome: %w", err)
	}
	return &GenomePolicy{Genome: genome, network: phenotype}, nil
}

// Activate processes one sensor frame and returns [steer, throttle].
func (p *GenomePolicy) Activate(inputs []float64) ([]float64, error) {
	if err := p.network.LoadSensors(inputs); err != nil {
		return nil, fmt.Errorf("failed to load sensors: %w", err)
	}

	// Activate with depth-based steps for proper signal propagation
	depth, err := p.network.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5
	}
	for i := 0; i < depth; i++ {
		if _, err := p.network.Activate(); err != nil {
			return nil, fmt.Errorf("activation failed: %w", err)
		}
	}

	outputs := p.network.ReadOutputs()

	// Flush network state for the next frame
	if _, err := p.network.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}

	return outputs, nil
}

// RebuildNetwork recreates the phenotype network from the genome.
// Call this after the genome has been mutated.
func (p *GenomePolicy) RebuildNetwork() error {
	phenotype, err := p.Genome.Genesis(p.Genome.Id)
	if err != nil {
		return fmt.Errorf("failed to rebuild network: %w", err)
	}
	p.network = phenotype
	return nil
}

// NodeCount returns the number of nodes in the network.
func (p *GenomePolicy) NodeCount() int { return p.network.NodeCount() }

// LinkCount returns the number of connections in the network.
func (p *GenomePolicy) LinkCount() int { return p.network.LinkCount() }

// CreateSeedGenome creates a fully connected input-to-output driving genome.
// Outputs use tanh so steering can go negative; sigmoid variants cannot
// express a left turn.
func CreateSeedGenome(id, numInputs int, rng *rand.Rand) *genetics.Genome {
	nodes := make([]*network.NNode, 0, numInputs+NumOutputs)

	// Input nodes (IDs 1 to numInputs)
	for i := 1; i <= numInputs; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	// Output nodes (IDs numInputs+1 to numInputs+NumOutputs)
	for i := 1; i <= NumOutputs; i++ {
		node := network.NewNNode(numInputs+i, network.OutputNeuron)
		node.ActivationType = neatmath.TanhActivation
		nodes = append(nodes, node)
	}

	genes := make([]*genetics.Gene, 0, numInputs*NumOutputs)
	innovNum := int64(1)

	for i := 0; i < numInputs; i++ {
		for j := 0; j < NumOutputs; j++ {
			weight := rng.Float64()*2 - 1 // [-1, 1]
			gene := genetics.NewGeneWithTrait(
				nil,
				weight,
				nodes[i],
				nodes[numInputs+j],
				false,
				innovNum,
				0,
			)
			genes = append(genes, gene)
			innovNum++
		}
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

// CloneGenome deep-copies a genome under a new ID.
func CloneGenome(g *genetics.Genome, newID int) *genetics.Genome {
	nodeMap := make(map[int]*network.NNode, len(g.Nodes))
	nodes := make([]*network.NNode, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		n := network.NewNNode(node.Id, node.NeuronType)
		n.ActivationType = node.ActivationType
		nodeMap[n.Id] = n
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Id < nodes[j].Id })

	genes := make([]*genetics.Gene, 0, len(g.Genes))
	for _, gene := range g.Genes {
		copied := genetics.NewGeneWithTrait(
			nil,
			gene.Link.ConnectionWeight,
			nodeMap[gene.Link.InNode.Id],
			nodeMap[gene.Link.OutNode.Id],
			gene.Link.IsRecurrent,
			gene.InnovationNum,
			gene.MutationNum,
		)
		copied.IsEnabled = gene.IsEnabled
		genes = append(genes, copied)
	}

	return genetics.NewGenome(newID, nil, nodes, genes)
}

// MutateWeights perturbs every connection weight in place. Most weights get
// a small nudge scaled by power; a minority are replaced outright.
func MutateWeights(g *genetics.Genome, power float64, rng *rand.Rand) {
	for _, gene := range g.Genes {
		if rng.Float64() < perturbProb {
			gene.Link.ConnectionWeight += (rng.Float64()*2 - 1) * power
		} else {
			gene.Link.ConnectionWeight = rng.Float64()*4 - 2
		}
		gene.Link.ConnectionWeight = clampWeight(gene.Link.ConnectionWeight)
	}
}

func clampWeight(w float64) float64 {
	if w > maxConnectionWeight {
		return maxConnectionWeight
	}
	if w < -maxConnectionWeight {
		return -maxConnectionWeight
	}
	return w
}
