// Package rules implements the eight equivalence transformations of §4.1.
// Each rule is a pure function algebra tree -> algebra tree, built on
// package transform's TransformUp so that an untouched
// subtree is never rebuilt and a rule that matches nowhere returns the
// exact input node (TreeIdentity SameTree), never a cosmetic copy.
package rules

import (
	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/transform"
)

// Rule is a total function over a whole tree, matching §4.1's "Each rule
// is a total function tree -> tree."
type Rule func(n algebra.Node) (algebra.Node, transform.TreeIdentity, error)

// RuleID identifies one of the eight rules, used by the genetic search's
// chromosome representation (§4.3.2) and by the heuristic strategies
// (§4.3.1) to name a rule-application sequence.
type RuleID int

const (
	// R1 is Conjunctive Selection Decomposition.
	R1 RuleID = iota
	// R2 is Selection Commutativity (swap).
	R2
	// R3 is Combine Selections, the inverse of R1.
	R3
	// R4 is Cartesian + Selection => Join.
	R4
	// R5 is Join Commutativity (reorder).
	R5
	// R6 is Join Associativity.
	R6
	// R7 is Selection Distribution over Join.
	R7
	// R8 is Projection Distribution over Join.
	R8
)

// All lists every rule ID, in spec order. Used to seed the genetic
// search's random chromosomes (§4.3.2: "a subset of rule IDs... length
// 4-8, no duplicates").
func All() []RuleID { return []RuleID{R1, R2, R3, R4, R5, R6, R7, R8} }

// Name returns a short human-readable name for a rule ID. Nothing in this
// module calls it; log lines and GeneticReport.BestChromosome carry the
// numeric RuleID.
func Name(id RuleID) string {
	switch id {
	case R1:
		return "R1:DecomposeConjunctiveSelection"
	case R2:
		return "R2:SwapSelection"
	case R3:
		return "R3:CombineSelections"
	case R4:
		return "R4:CartesianToJoin"
	case R5:
		return "R5:JoinCommute"
	case R6:
		return "R6:JoinAssociate"
	case R7:
		return "R7:DistributeSelectionOverJoin"
	case R8:
		return "R8:DistributeProjectionOverJoin"
	default:
		return "R?:Unknown"
	}
}

// log is the package-level logger every rule writes its warnings to,
// including rules run through Apply. There is no per-call logger; SetLogger
// replaces this one for the whole package.
var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger overrides the package-level fallback logger.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		log = l
	}
}

// byID maps a RuleID to its implementation. Populated by each rule's
// init-time registration in its own file, so that adding a rule never
// requires touching this file.
var byID = map[RuleID]Rule{}

func register(id RuleID, r Rule) { byID[id] = r }

// Apply runs one rule against a tree using the package-level logger.
func Apply(id RuleID, n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	r, ok := byID[id]
	if !ok {
		return n, transform.SameTree, nil
	}
	return r(n)
}

// PushProjection is the standalone "push-π" step the enumerator's
// strategies reference alongside R1..R8 (§4.3.1's strategy tables list
// "push-π" as its own step, distinct from R8: push-π skips a projection
// through a chain of SELECTs down to a JOIN site, where R8 then splits it
// across the join's two sides). It is exposed here rather than as a
// numbered rule because the strategies invoke it independently of R8.
func PushProjection(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return pushProjection(n)
}

// Sequence applies a list of rule IDs in order, threading tree identity
// through the whole sequence: the result is NewTree iff any step changed
// the tree. It cannot include the push-π step, which has no RuleID; call
// PushProjection for that.
func Sequence(n algebra.Node, ids ...RuleID) (algebra.Node, transform.TreeIdentity, error) {
	overall := transform.SameTree
	current := n
	for _, id := range ids {
		next, same, err := Apply(id, current)
		if err != nil {
			return nil, transform.SameTree, err
		}
		current = next
		if same == transform.NewTree {
			overall = transform.NewTree
		}
	}
	return current, overall, nil
}
