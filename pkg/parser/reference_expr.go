package parser

import (
	"strconv"
	"strings"

	"github.com/cairovm-core/cairovm/pkg/hints"
)

// ParseReferenceExpression parses a Cairo reference expression such as
// "[cast(fp + (-3), felt*)]" or "cast([fp + (-3)] + 2, felt)" into a
// HintReference, per the small grammar in §4.H/9 (cast, bracket, add,
// register, integer literal). ApTracking on the result is left zero;
// callers (ParseProgram) fill it in from the reference manager entry.
func ParseReferenceExpression(expr string) (*hints.HintReference, error) {
	p := &exprParser{src: expr}
	p.skipSpace()

	dereference := false
	if p.peek() == '[' {
		p.next()
		dereference = true
	}

	p.skipSpace()
	if !p.consumeWord("cast") {
		return nil, p.malformed("expected 'cast('")
	}
	p.skipSpace()
	if p.peek() != '(' {
		return nil, p.malformed("expected '(' after cast")
	}
	p.next()

	offset1, offset2, err := p.parseAdditiveExpr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.peek() != ',' {
		return nil, p.malformed("expected ',' before cairo type")
	}
	p.next()
	cairoType := strings.TrimSpace(p.parseUntil(')'))

	p.skipSpace()
	if p.peek() != ')' {
		return nil, p.malformed("expected ')' closing cast")
	}
	p.next()

	if dereference {
		p.skipSpace()
		if p.peek() != ']' {
			return nil, p.malformed("expected ']' closing outer dereference")
		}
		p.next()
	}

	ref := &hints.HintReference{
		Offset1:     offset1,
		Offset2:     offset2,
		Dereference: dereference,
		CairoType:   cairoType,
	}
	return ref, nil
}

type exprParser struct {
	src string
	pos int
}

// MalformedReferenceExpressionError reports the source string and the
// byte offset the parser gave up at, per the design note that this is
// the weakest point of the grammar and should carry position info.
func (p *exprParser) malformed(reason string) error {
	return &hints.MalformedReferenceExpressionError{Expression: p.src, Position: p.pos, Reason: reason}
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) next() byte {
	c := p.peek()
	p.pos++
	return c
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) consumeWord(word string) bool {
	if strings.HasPrefix(p.src[p.pos:], word) {
		p.pos += len(word)
		return true
	}
	return false
}

func (p *exprParser) parseUntil(stop byte) string {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' {
			depth++
		}
		if c == ')' {
			if depth == 0 && stop == ')' {
				break
			}
			depth--
		}
		if c == stop && depth == 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// parseAdditiveExpr parses "term" or "term + term" or "term - term",
// returning offset1 and (if present) offset2. A leading unary minus on
// the first term is folded into the parsed integer.
func (p *exprParser) parseAdditiveExpr() (hints.OffsetValue, *hints.OffsetValue, error) {
	first, err := p.parseTerm()
	if err != nil {
		return hints.OffsetValue{}, nil, err
	}
	p.skipSpace()
	if p.peek() != '+' && p.peek() != '-' {
		return first, nil, nil
	}
	sign := p.next()
	p.skipSpace()
	second, err := p.parseTerm()
	if err != nil {
		return hints.OffsetValue{}, nil, err
	}
	if sign == '-' {
		second = negateOffset(second)
	}
	return first, &second, nil
}

func negateOffset(ov hints.OffsetValue) hints.OffsetValue {
	if v, ok := ov.AsValue(); ok {
		return hints.ValueOffset(-v)
	}
	if f, ok := ov.AsImmediate(); ok {
		return hints.ImmediateOffset(f.Neg())
	}
	return ov
}

// parseTerm parses one of: a bracketed sub-term (dereference), a
// register-relative term ("ap", "fp", "fp + 3", "fp + (-3)"), or a bare
// integer literal.
func (p *exprParser) parseTerm() (hints.OffsetValue, error) {
	p.skipSpace()
	if p.peek() == '[' {
		p.next()
		inner, err := p.parseTerm()
		if err != nil {
			return hints.OffsetValue{}, err
		}
		p.skipSpace()
		if p.peek() != ']' {
			return hints.OffsetValue{}, p.malformed("expected ']' closing inner dereference")
		}
		p.next()
		if reg, off, ok := inner.AsReference(); ok {
			return hints.ReferenceOffset(reg, off, true), nil
		}
		return hints.OffsetValue{}, p.malformed("dereference of a non-reference term")
	}

	if p.consumeWord("ap") {
		return p.parseRegisterOffset(hints.RegisterAP)
	}
	if p.consumeWord("fp") {
		return p.parseRegisterOffset(hints.RegisterFP)
	}

	return p.parseIntegerLiteral()
}

func (p *exprParser) parseRegisterOffset(reg hints.Register) (hints.OffsetValue, error) {
	p.skipSpace()
	if p.peek() != '+' && p.peek() != '-' {
		return hints.ReferenceOffset(reg, 0, false), nil
	}
	sign := p.next()
	p.skipSpace()
	n, err := p.parseSignedInt()
	if err != nil {
		return hints.OffsetValue{}, err
	}
	if sign == '-' {
		n = -n
	}
	return hints.ReferenceOffset(reg, n, false), nil
}

// parseSignedInt parses an integer, optionally parenthesized, optionally
// negative, e.g. "3", "(-3)", "-3".
func (p *exprParser) parseSignedInt() (int64, error) {
	p.skipSpace()
	paren := false
	if p.peek() == '(' {
		paren = true
		p.next()
		p.skipSpace()
	}
	neg := false
	if p.peek() == '-' {
		neg = true
		p.next()
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.malformed("expected integer literal")
	}
	n, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		return 0, p.malformed("invalid integer literal")
	}
	if neg {
		n = -n
	}
	if paren {
		p.skipSpace()
		if p.peek() != ')' {
			return 0, p.malformed("expected ')' closing parenthesized integer")
		}
		p.next()
	}
	return n, nil
}

func (p *exprParser) parseIntegerLiteral() (hints.OffsetValue, error) {
	n, err := p.parseSignedInt()
	if err != nil {
		return hints.OffsetValue{}, err
	}
	return hints.ValueOffset(n), nil
}

