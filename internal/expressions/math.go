// Package expressions evaluates the two value-producing micro-languages
// embedded in template text: $MATH[...] arithmetic and $IF[...] conditional
// selection. Both are fail-soft: text that cannot be resolved is returned
// unchanged rather than aborting the build.
package expressions

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

var errBadExpression = errors.New("bad expression")

// mathParser is a recursive-descent parser over a single arithmetic
// expression. Operands are numeric literals or property references.
type mathParser struct {
	expr      string
	pos       int
	variables map[string]string
}

// EvaluateMath evaluates the expression inside a $MATH[...] wrapper and
// returns the result as a string. Exact-integer results render without a
// decimal point. On any parse error or division by zero the original
// expression text is returned verbatim.
func EvaluateMath(expr string, properties map[string]string) string {
	p := &mathParser{expr: strings.TrimSpace(expr), variables: properties}

	result, err := p.parseExpression()
	if err != nil {
		return expr
	}
	p.skipWhitespace()
	if p.pos < len(p.expr) {
		return expr
	}

	if result == float64(int64(result)) {
		return strconv.FormatInt(int64(result), 10)
	}
	return strconv.FormatFloat(result, 'g', -1, 64)
}

func (p *mathParser) skipWhitespace() {
	for p.pos < len(p.expr) {
		switch p.expr[p.pos] {
		case ' ', '\t', '\n', '\r':
		default:
			return
		}
		p.pos++
	}
}

// parseExpression handles addition and subtraction (lowest precedence).
func (p *mathParser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for p.pos < len(p.expr) {
		p.skipWhitespace()
		if p.pos >= len(p.expr) {
			break
		}

		switch p.expr[p.pos] {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}

	return left, nil
}

// parseTerm handles multiplication, division, floor division and modulo.
func (p *mathParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for p.pos < len(p.expr) {
		p.skipWhitespace()
		if p.pos >= len(p.expr) {
			break
		}

		switch {
		case strings.HasPrefix(p.expr[p.pos:], "//"):
			p.pos += 2
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if int64(right) == 0 {
				return 0, errBadExpression
			}
			left = floorDiv(int64(left), int64(right))
		case p.expr[p.pos] == '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.expr[p.pos] == '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, errBadExpression
			}
			left /= right
		case p.expr[p.pos] == '%':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if int64(right) == 0 {
				return 0, errBadExpression
			}
			left = float64(int64(left) % int64(right))
		default:
			return left, nil
		}
	}

	return left, nil
}

func floorDiv(a, b int64) float64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return float64(q)
}

func (p *mathParser) parseUnary() (float64, error) {
	p.skipWhitespace()

	if p.pos < len(p.expr) && p.expr[p.pos] == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	if p.pos < len(p.expr) && p.expr[p.pos] == '+' {
		p.pos++
		return p.parseUnary()
	}

	return p.parsePrimary()
}

func (p *mathParser) parsePrimary() (float64, error) {
	p.skipWhitespace()

	if p.pos >= len(p.expr) {
		return 0, errBadExpression
	}

	c := rune(p.expr[p.pos])
	switch {
	case c == '(':
		p.pos++
		result, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.skipWhitespace()
		if p.pos >= len(p.expr) || p.expr[p.pos] != ')' {
			return 0, errBadExpression
		}
		p.pos++
		return result, nil
	case unicode.IsDigit(c) || c == '.':
		return p.parseNumber()
	case unicode.IsLetter(c) || c == '_':
		return p.parseVariable()
	}

	return 0, errBadExpression
}

func (p *mathParser) parseNumber() (float64, error) {
	start := p.pos
	hasDot := false

	for p.pos < len(p.expr) {
		c := p.expr[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDot {
			hasDot = true
			p.pos++
		} else {
			break
		}
	}

	return strconv.ParseFloat(p.expr[start:p.pos], 64)
}

// parseVariable reads a property reference and coerces its value to a
// number. An unknown property fails the whole expression so the original
// text survives; a present but non-numeric value coerces to zero.
func (p *mathParser) parseVariable() (float64, error) {
	start := p.pos

	for p.pos < len(p.expr) {
		c := rune(p.expr[p.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.' {
			p.pos++
		} else {
			break
		}
	}

	value, ok := p.variables[p.expr[start:p.pos]]
	if !ok {
		return 0, errBadExpression
	}
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, nil
	}
	return parsed, nil
}
