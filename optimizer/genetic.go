package optimizer

import (
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cost"
	"github.com/InfedmixDBMS/queryopt/rules"
)

// GeneticParams holds the genetic search's tunables, all with the
// defaults of §4.3.2.
type GeneticParams struct {
	Population     int
	Generations    int
	MutationRate   float64
	TournamentSize int
	MinChromosome  int
	MaxChromosome  int
}

// DefaultGeneticParams returns the §4.3.2 defaults.
func DefaultGeneticParams() GeneticParams {
	return GeneticParams{
		Population:     10,
		Generations:    20,
		MutationRate:   0.30,
		TournamentSize: 3,
		MinChromosome:  4,
		MaxChromosome:  8,
	}
}

// GenerationStats is one generation's best and average fitness, recorded
// for the genetic generation trace (§4 Supplemented Features).
type GenerationStats struct {
	Best    float64
	Average float64
}

// GeneticReport carries the per-generation trace plus the best chromosome
// and cost found, so S7 ("best-found cost") can be checked without
// re-running the search.
type GeneticReport struct {
	Generations    []GenerationStats
	BestChromosome []rules.RuleID
	BestCost       float64
}

type individual struct {
	genes   []rules.RuleID
	fitness float64
}

// RunGeneticSearch implements §4.3.2's search: population/generations from
// params, elitism of the single best, tournament selection, single-point
// crossover on the shorter parent, de-duplication, and swap/delete/insert
// mutation. rng is caller-supplied so runs are reproducible (§5:
// "seed-injectable RNG"). The monotonic-cost contract (P3) is enforced the
// same way as the heuristic ensemble: if the best chromosome does not beat
// the input's own cost, n is returned unchanged.
func RunGeneticSearch(n algebra.Node, estimator *cost.Estimator, params GeneticParams, rng *rand.Rand, log logrus.FieldLogger) (algebra.Node, GeneticReport) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	baseline := estimator.Cost(n)
	memo := make(map[uint64]float64)
	pool := make([]individual, params.Population)
	for i := range pool {
		genes := randomChromosome(rng, params.MinChromosome, params.MaxChromosome)
		pool[i] = individual{genes: genes, fitness: evaluateChromosome(n, genes, estimator, memo, log)}
	}

	report := GeneticReport{Generations: make([]GenerationStats, 0, params.Generations)}
	best := pool[0]

	for g := 0; g < params.Generations; g++ {
		sort.Slice(pool, func(i, j int) bool { return pool[i].fitness < pool[j].fitness })

		sum := 0.0
		for _, ind := range pool {
			sum += ind.fitness
		}
		report.Generations = append(report.Generations, GenerationStats{
			Best:    pool[0].fitness,
			Average: sum / float64(len(pool)),
		})
		if pool[0].fitness < best.fitness {
			best = pool[0]
		}

		next := make([]individual, 0, params.Population)
		next = append(next, pool[0]) // elitism

		for len(next) < params.Population {
			parentA := tournamentSelect(pool, params.TournamentSize, rng)
			parentB := tournamentSelect(pool, params.TournamentSize, rng)
			child := crossover(parentA.genes, parentB.genes, rng)
			if rng.Float64() < params.MutationRate {
				child = mutate(child, rng)
			}
			next = append(next, individual{genes: child, fitness: evaluateChromosome(n, child, estimator, memo, log)})
		}
		pool = next
	}

	report.BestChromosome = best.genes
	report.BestCost = best.fitness

	if best.fitness >= baseline {
		return n, report
	}
	return applyRuleIDs(best.genes, n, log), report
}

// evaluateChromosome applies genes to n and costs the result, memoizing by
// the resulting tree's structural hash: distinct chromosomes frequently
// collapse to the same tree shape (e.g. after de-duplication, or when a
// rule is a no-op), and re-costing an identical shape wastes work across a
// population and its generations.
func evaluateChromosome(n algebra.Node, genes []rules.RuleID, estimator *cost.Estimator, memo map[uint64]float64, log logrus.FieldLogger) float64 {
	tree := applyRuleIDs(genes, n, log)
	hash, err := algebra.StructuralHash(tree)
	if err != nil {
		return estimator.Cost(tree)
	}
	if cached, ok := memo[hash]; ok {
		return cached
	}
	fitness := estimator.Cost(tree)
	memo[hash] = fitness
	return fitness
}

func applyRuleIDs(genes []rules.RuleID, n algebra.Node, log logrus.FieldLogger) algebra.Node {
	current := algebra.Clone(n)
	for _, id := range genes {
		next, _, err := rules.Apply(id, current)
		if err != nil {
			log.WithError(err).Warn("optimizer: rule application failed during genetic evaluation, skipping")
			continue
		}
		current = next
	}
	return current
}

// randomChromosome builds a random-length, duplicate-free sequence of rule
// IDs in random order (§4.3.2: "subset of rule IDs in some order, length
// 4-8, no duplicates").
func randomChromosome(rng *rand.Rand, minLen, maxLen int) []rules.RuleID {
	all := rules.All()
	perm := rng.Perm(len(all))
	length := minLen
	if maxLen > minLen {
		length += rng.Intn(maxLen - minLen + 1)
	}
	if length > len(all) {
		length = len(all)
	}
	out := make([]rules.RuleID, length)
	for i := 0; i < length; i++ {
		out[i] = all[perm[i]]
	}
	return out
}

// tournamentSelect picks size random individuals and returns the fittest.
func tournamentSelect(pool []individual, size int, rng *rand.Rand) individual {
	best := pool[rng.Intn(len(pool))]
	for i := 1; i < size; i++ {
		candidate := pool[rng.Intn(len(pool))]
		if candidate.fitness < best.fitness {
			best = candidate
		}
	}
	return best
}

// crossover performs single-point crossover at a cut within the shorter
// parent's length, then de-duplicates the child, preserving the first
// occurrence of each rule ID.
func crossover(a, b []rules.RuleID, rng *rand.Rand) []rules.RuleID {
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	if shorter == 0 {
		return dedupeRuleIDs(append(append([]rules.RuleID(nil), a...), b...))
	}
	cut := rng.Intn(shorter)
	child := append(append([]rules.RuleID(nil), a[:cut]...), b[cut:]...)
	return dedupeRuleIDs(child)
}

func dedupeRuleIDs(genes []rules.RuleID) []rules.RuleID {
	seen := map[rules.RuleID]struct{}{}
	out := make([]rules.RuleID, 0, len(genes))
	for _, id := range genes {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// mutate chooses uniformly among swap, delete, and insert (§4.3.2.4).
func mutate(genes []rules.RuleID, rng *rand.Rand) []rules.RuleID {
	out := append([]rules.RuleID(nil), genes...)
	if len(out) == 0 {
		return out
	}
	switch rng.Intn(3) {
	case 0: // swap two positions
		if len(out) < 2 {
			return out
		}
		i, j := rng.Intn(len(out)), rng.Intn(len(out))
		out[i], out[j] = out[j], out[i]
	case 1: // delete one
		if len(out) <= 1 {
			return out
		}
		i := rng.Intn(len(out))
		out = append(out[:i], out[i+1:]...)
	case 2: // insert a rule not currently present at a random position
		missing := missingRuleIDs(out)
		if len(missing) == 0 {
			return out
		}
		id := missing[rng.Intn(len(missing))]
		pos := rng.Intn(len(out) + 1)
		out = append(out[:pos], append([]rules.RuleID{id}, out[pos:]...)...)
	}
	return out
}

func missingRuleIDs(genes []rules.RuleID) []rules.RuleID {
	present := map[rules.RuleID]struct{}{}
	for _, id := range genes {
		present[id] = struct{}{}
	}
	var out []rules.RuleID
	for _, id := range rules.All() {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
