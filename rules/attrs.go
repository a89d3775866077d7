package rules

import (
	"regexp"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/errorkinds"
)

// qualifiedAttr matches a dotted "alias.name" or "relation.name" token
// inside a leaf's opaque comparison string, e.g. the two operands of
// "emp.salary > dept.budget". Bare (unqualified) identifiers are
// deliberately not matched here: per §4.1 R7, an unqualified reference is
// always ambiguous, so it contributes nothing to side resolution.
var qualifiedAttr = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\b`)

// leafAttrs extracts every qualified attribute reference in a single leaf
// condition string.
func leafAttrs(condition string) []algebra.AttrRef {
	matches := qualifiedAttr.FindAllStringSubmatch(condition, -1)
	out := make([]algebra.AttrRef, 0, len(matches))
	for _, m := range matches {
		out = append(out, algebra.AttrRef{Qualifier: m[1], Name: m[2]})
	}
	return out
}

// exprAttrs collects every qualified attribute reference anywhere in a
// condition subtree (a single atom may itself be an OR of leaves, since
// R1 does not split OR atoms).
func exprAttrs(e cond.Expr) []algebra.AttrRef {
	switch v := e.(type) {
	case cond.Leaf:
		return leafAttrs(v.Condition)
	case cond.Binary:
		return append(exprAttrs(v.Left), exprAttrs(v.Right)...)
	default:
		return nil
	}
}

// atomSide decides which side of a binary node an atom (a single element
// of an AND-flattened condition) belongs to, per §4.1 R7: entirely-left
// attributes push left, entirely-right push right, anything spanning both
// sides, referencing neither, or carrying no resolvable attribute at all
// stays put (SideBoth). This mirrors the source's "is_left = all(...);
// is_right = all(...)" check rather than a simple majority vote.
func atomSide(atom cond.Expr, left, right map[string]struct{}) algebra.Side {
	attrs := exprAttrs(atom)
	if len(attrs) == 0 {
		return algebra.SideBoth
	}
	allLeft, allRight := true, true
	for _, a := range attrs {
		switch algebra.AttributeSide(a, left, right) {
		case algebra.SideLeft:
			allRight = false
		case algebra.SideRight:
			allLeft = false
		default:
			allLeft, allRight = false, false
		}
	}
	switch {
	case allLeft:
		return algebra.SideLeft
	case allRight:
		return algebra.SideRight
	default:
		return algebra.SideBoth
	}
}

// conjoinOrNil folds a (possibly empty) slice of atoms into a single
// conjunction, returning nil for an empty slice instead of panicking,
// since R4/R7 routinely end up with zero atoms for one bucket.
func conjoinOrNil(atoms []cond.Expr) cond.Expr {
	if len(atoms) == 0 {
		return nil
	}
	return cond.ConjoinAll(atoms)
}

// logAmbiguousAttrs warns, once per unresolved reference, about every
// attribute inside atom that AttributeSide could not pin to exactly one
// side (§7 AmbiguousAttribute: "non-fatal... falls back to the documented
// default bucket").
func logAmbiguousAttrs(atom cond.Expr, left, right map[string]struct{}) {
	for _, a := range exprAttrs(atom) {
		switch algebra.AttributeSide(a, left, right) {
		case algebra.SideLeft, algebra.SideRight:
		default:
			log.WithField("attribute", a.String()).Warn(errorkinds.AmbiguousAttribute.New(a.String()))
		}
	}
}

// wrapSelect wraps child in a SELECT for condition, or returns child
// unchanged if condition is nil.
func wrapSelect(condition cond.Expr, child algebra.Node) algebra.Node {
	if condition == nil {
		return child
	}
	sel, err := algebra.NewSelect(condition, child)
	if err != nil {
		// child is never nil here; arity cannot fail.
		panic(err)
	}
	return sel
}
