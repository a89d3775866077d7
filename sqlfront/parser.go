package sqlfront

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/errorkinds"
)

// Parse lexes and parses sql into an algebra tree obeying §4.4's
// front-end contract: a PROJECT root, left-deep joins, and every alias
// reference already rewritten to its underlying relation name. It fails
// with errorkinds.InvalidSyntax when sql lacks SELECT/FROM or contains a
// malformed clause.
func Parse(sql string) (algebra.Node, error) {
	lexer := NewLexer(strings.NewReader(sql))
	if err := lexer.Run(); err != nil {
		return nil, errorkinds.InvalidSyntax.New(err.Error())
	}
	var tokens []*Token
	for tk := lexer.Next(); tk != nil; tk = lexer.Next() {
		if tk.Type == EOFToken {
			break
		}
		tokens = append(tokens, tk)
	}

	p := &parser{tokens: tokens, aliases: map[string]string{}}
	tree, err := p.parseSelect()
	if err != nil {
		return nil, errorkinds.InvalidSyntax.New(err.Error())
	}
	if err := algebra.Validate(tree); err != nil {
		return nil, errorkinds.Validation.New(err.Error())
	}
	return tree, nil
}

type parser struct {
	tokens  []*Token
	pos     int
	aliases map[string]string // alias (lowercase) -> relation
}

func (p *parser) peek() *Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return p.tokens[p.pos]
}

func (p *parser) next() *Token {
	tk := p.peek()
	if tk != nil {
		p.pos++
	}
	return tk
}

func (p *parser) isKeyword(word string) bool {
	tk := p.peek()
	return tk != nil && tk.Type == KeywordToken && strings.EqualFold(tk.Value, word)
}

func (p *parser) expectKeyword(word string) error {
	if !p.isKeyword(word) {
		return fmt.Errorf("expected %s", word)
	}
	p.next()
	return nil
}

func (p *parser) expectType(t TokenType, what string) (*Token, error) {
	tk := p.peek()
	if tk == nil || tk.Type != t {
		return nil, fmt.Errorf("expected %s", what)
	}
	p.next()
	return tk, nil
}

// parseSelect parses the whole statement: SELECT projList FROM fromClause
// [WHERE cond] [ORDER BY sortKeys] [LIMIT n] [;].
func (p *parser) parseSelect() (algebra.Node, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, fmt.Errorf("missing SELECT: %w", err)
	}
	rawProj, err := p.parseAttrList()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, fmt.Errorf("missing FROM: %w", err)
	}
	tree, err := p.parseFromClause()
	if err != nil {
		return nil, err
	}

	if p.isKeyword("WHERE") {
		p.next()
		whereCond, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		tree, err = algebra.NewSelect(whereCond, tree)
		if err != nil {
			return nil, err
		}
	}

	if p.isKeyword("ORDER") {
		p.next()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, fmt.Errorf("malformed ORDER BY: %w", err)
		}
		keys, err := p.parseSortKeys()
		if err != nil {
			return nil, err
		}
		tree, err = algebra.NewOrderBy(keys, tree)
		if err != nil {
			return nil, err
		}
	}

	if p.isKeyword("LIMIT") {
		p.next()
		tk, err := p.expectType(IntToken, "integer after LIMIT")
		if err != nil {
			return nil, err
		}
		n, err := cast.ToInt64E(tk.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed LIMIT value %q: %w", tk.Value, err)
		}
		tree, err = algebra.NewLimit(n, tree)
		if err != nil {
			return nil, err
		}
	}

	if tk := p.peek(); tk != nil && tk.Type == SemicolonToken {
		p.next()
	}
	if tk := p.peek(); tk != nil {
		return nil, fmt.Errorf("unexpected trailing token %q", tk.Value)
	}

	attrs := p.resolveAttrRefs(rawProj)
	return algebra.NewProject(attrs, tree)
}

// parseAttrList parses a comma-separated list of (possibly dotted)
// identifiers, as they appear verbatim in the query text, before alias
// resolution.
func (p *parser) parseAttrList() ([]string, error) {
	var out []string
	for {
		ref, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
		if tk := p.peek(); tk != nil && tk.Type == CommaToken {
			p.next()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseDottedIdent() (string, error) {
	first, err := p.expectType(IdentifierToken, "identifier")
	if err != nil {
		return "", err
	}
	name := first.Value
	if tk := p.peek(); tk != nil && tk.Type == DotToken {
		p.next()
		second, err := p.expectType(IdentifierToken, "identifier after '.'")
		if err != nil {
			return "", err
		}
		name += "." + second.Value
	}
	return name, nil
}

// parseFromClause parses the table list, building a left-deep tree: each
// comma-separated table is a CARTESIAN-PRODUCT with the running tree; each
// JOIN ... ON ... builds a JOIN, left-deep by default (§4.4).
func (p *parser) parseFromClause() (algebra.Node, error) {
	tree, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isKeyword("JOIN"):
			p.next()
			tree, err = p.continueJoin(tree)
		case p.isKeyword("INNER"):
			p.next()
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, fmt.Errorf("malformed INNER JOIN: %w", err)
			}
			tree, err = p.continueJoin(tree)
		case p.isKeyword("LEFT") || p.isKeyword("RIGHT") || p.isKeyword("OUTER"):
			p.next()
			if p.isKeyword("OUTER") {
				p.next()
			}
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, fmt.Errorf("malformed outer JOIN: %w", err)
			}
			tree, err = p.continueJoin(tree)
		default:
			if tk := p.peek(); tk != nil && tk.Type == CommaToken {
				p.next()
				rhs, terr := p.parseTableRef()
				if terr != nil {
					return nil, terr
				}
				cp, cerr := algebra.NewCartesianProduct(tree, rhs)
				if cerr != nil {
					return nil, cerr
				}
				tree = cp
				continue
			}
			return tree, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// continueJoin parses "table [AS alias] ON cond" and joins it to left,
// mapped to the JOIN tag regardless of which join keyword introduced it
// (§6: "all mapped to JOIN tag").
func (p *parser) continueJoin(left algebra.Node) (algebra.Node, error) {
	rhs, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, fmt.Errorf("JOIN without ON: %w", err)
	}
	onCond, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	return algebra.NewJoin(onCond, left, rhs)
}

// parseTableRef parses "relation [[AS] alias]" and records the alias.
func (p *parser) parseTableRef() (*algebra.TableNode, error) {
	relTk, err := p.expectType(IdentifierToken, "table name")
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.isKeyword("AS") {
		p.next()
		aliasTk, err := p.expectType(IdentifierToken, "alias after AS")
		if err != nil {
			return nil, err
		}
		alias = aliasTk.Value
	} else if tk := p.peek(); tk != nil && tk.Type == IdentifierToken {
		alias = tk.Value
		p.next()
	}
	if alias != "" {
		p.aliases[strings.ToLower(alias)] = relTk.Value
	}
	p.aliases[strings.ToLower(relTk.Value)] = relTk.Value
	return algebra.NewTable(relTk.Value, alias), nil
}

func (p *parser) parseSortKeys() ([]algebra.SortKey, error) {
	var keys []algebra.SortKey
	for {
		ref, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		dir := algebra.Asc
		if p.isKeyword("ASC") {
			p.next()
		} else if p.isKeyword("DESC") {
			p.next()
			dir = algebra.Desc
		}
		keys = append(keys, algebra.SortKey{Attr: p.resolveAttrRef(ref), Direction: dir})
		if tk := p.peek(); tk != nil && tk.Type == CommaToken {
			p.next()
			continue
		}
		break
	}
	return keys, nil
}

// parseOrExpr / parseAndExpr / parseAtom implement the predicate grammar
// of §6: comparison atoms joined by AND/OR, optionally parenthesised.
func (p *parser) parseOrExpr() (cond.Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("OR") {
		p.next()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = cond.NewOr(left, right)
	}
	return left, nil
}

func (p *parser) parseAndExpr() (cond.Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("AND") {
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = cond.NewAnd(left, right)
	}
	return left, nil
}

func (p *parser) parseAtom() (cond.Expr, error) {
	if tk := p.peek(); tk != nil && tk.Type == LeftParenToken {
		p.next()
		inner, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectType(RightParenToken, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

// parseComparison parses "operand op operand" and renders it back into a
// single opaque leaf string with every alias already resolved to its
// underlying relation name, per §4.4.
func (p *parser) parseComparison() (cond.Leaf, error) {
	left, err := p.parseOperand()
	if err != nil {
		return cond.Leaf{}, err
	}
	opTk, err := p.expectType(OpToken, "comparison operator")
	if err != nil {
		return cond.Leaf{}, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return cond.Leaf{}, err
	}
	return cond.NewLeaf(fmt.Sprintf("%s %s %s", left, opTk.Value, right)), nil
}

func (p *parser) parseOperand() (string, error) {
	tk := p.peek()
	if tk == nil {
		return "", fmt.Errorf("unexpected end of predicate")
	}
	switch tk.Type {
	case IdentifierToken:
		ref, err := p.parseDottedIdent()
		if err != nil {
			return "", err
		}
		return p.resolveAttrRef(ref).String(), nil
	case IntToken:
		p.next()
		n, err := cast.ToInt64E(tk.Value)
		if err != nil {
			return "", fmt.Errorf("malformed integer literal %q: %w", tk.Value, err)
		}
		return fmt.Sprintf("%d", n), nil
	case FloatToken:
		p.next()
		f, err := cast.ToFloat64E(tk.Value)
		if err != nil {
			return "", fmt.Errorf("malformed float literal %q: %w", tk.Value, err)
		}
		return fmt.Sprintf("%g", f), nil
	case StringToken:
		p.next()
		return tk.Value, nil
	default:
		return "", fmt.Errorf("unexpected token %q in predicate", tk.Value)
	}
}

// resolveAttrRef rewrites "alias.attr" to "relation.attr" using the alias
// table built while parsing FROM (§4.4: "every alias reference... has
// been rewritten to underlying_relation.attr"). An unqualified name, or
// one whose qualifier is not a known alias, passes through unchanged.
func (p *parser) resolveAttrRef(ref string) algebra.AttrRef {
	attr := algebra.ParseAttr(ref)
	if attr.Qualifier == "" {
		return attr
	}
	if rel, ok := p.aliases[strings.ToLower(attr.Qualifier)]; ok {
		attr.Qualifier = rel
	}
	return attr
}

func (p *parser) resolveAttrRefs(refs []string) []algebra.AttrRef {
	out := make([]algebra.AttrRef, len(refs))
	for i, r := range refs {
		out[i] = p.resolveAttrRef(r)
	}
	return out
}
