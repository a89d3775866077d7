// Package optimizer implements the plan enumerator of §4.3: a fixed
// six-strategy heuristic ensemble and an optional genetic search, both
// built on package rules and scored by package cost. Neither mode mutates
// its input tree; every strategy and every chromosome evaluation runs
// against its own algebra.Clone, matching the teacher's preference for
// pure, side-effect-free rewrite passes (package transform).
package optimizer

import "github.com/InfedmixDBMS/queryopt/rules"

// step is one element of a strategy's rule-order sequence: either a
// numbered rule or the standalone push-π step, which rules.RuleID cannot
// represent on its own.
type step struct {
	id       rules.RuleID
	isPushPi bool
}

func rule(id rules.RuleID) step { return step{id: id} }

var pushPi = step{isPushPi: true}

// Strategy is a named, fixed sequence of rule applications (§4.3.1).
type Strategy struct {
	Name  string
	Steps []step
}

// Strategies lists the six fixed heuristic strategies, in the exact rule
// order of §4.3.1's table. "Swap-Optimized" is listed with the same order
// as "Selection-First" in the source table; both are kept verbatim.
var Strategies = []Strategy{
	{
		Name: "Selection-First",
		Steps: []step{
			rule(rules.R1), rule(rules.R2), rule(rules.R3), pushPi,
			rule(rules.R7), rule(rules.R8), rule(rules.R4), rule(rules.R5), rule(rules.R6),
		},
	},
	{
		Name: "Projection-First",
		Steps: []step{
			pushPi, rule(rules.R8), rule(rules.R1), rule(rules.R3),
			rule(rules.R7), rule(rules.R4), rule(rules.R5), rule(rules.R6),
		},
	},
	{
		Name: "Balanced",
		Steps: []step{
			rule(rules.R1), rule(rules.R2), pushPi, rule(rules.R7), rule(rules.R8),
			rule(rules.R3), rule(rules.R4), rule(rules.R5), rule(rules.R6),
		},
	},
	{
		Name: "Aggressive",
		Steps: []step{
			rule(rules.R1), pushPi, rule(rules.R3), rule(rules.R1), pushPi, rule(rules.R3),
			rule(rules.R7), rule(rules.R8), rule(rules.R4), rule(rules.R5), rule(rules.R6),
		},
	},
	{
		Name:  "Conservative",
		Steps: []step{rule(rules.R1), rule(rules.R3), rule(rules.R4)},
	},
	{
		Name: "Swap-Optimized",
		Steps: []step{
			rule(rules.R1), rule(rules.R2), rule(rules.R3), pushPi,
			rule(rules.R7), rule(rules.R8), rule(rules.R4), rule(rules.R5), rule(rules.R6),
		},
	},
}
