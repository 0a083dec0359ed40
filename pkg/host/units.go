package host

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// The design database stores lengths in centimeters and angles in degrees.
// ToCentimeters converts a magnitude in the given linear unit.
func ToCentimeters(value float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "cm":
		return value, nil
	case "mm":
		return value / 10, nil
	case "m":
		return value * 100, nil
	case "in":
		return value * 2.54, nil
	case "ft":
		return value * 30.48, nil
	case "deg", "rad":
		// Angles are not lengths; callers pass them through unconverted.
		return value, nil
	default:
		return 0, fmt.Errorf("unknown unit: %s", unit)
	}
}

// EvalExpression resolves a parameter expression against the design's user
// parameters. Supported grammar: numbers with an optional unit suffix,
// parameter names, + - * /, and parentheses. The result is in database
// units (centimeters for lengths).
//
// "25 mm" → 2.5, "ball_diameter + clearance" → sum of the two parameters.
func (d *Design) EvalExpression(expr string) (float64, error) {
	p := &exprParser{design: d, input: expr}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected %q in expression", p.input[p.pos:])
	}
	return v, nil
}

type exprParser struct {
	design *Design
	input  string
	pos    int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return v, nil
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return v, nil
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	if p.input[p.pos] == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	if c := p.input[p.pos]; c == '-' || c == '.' || unicode.IsDigit(rune(c)) {
		return p.parseNumber()
	}
	return p.parseReference()
}

// parseNumber reads a literal with an optional unit suffix ("2.5 mm").
func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	if p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.input[start:p.pos])
	}

	// Optional unit suffix: letters immediately or after one space,
	// not followed by something that makes it a parameter reference.
	save := p.pos
	p.skipSpace()
	unitStart := p.pos
	for p.pos < len(p.input) && unicode.IsLetter(rune(p.input[p.pos])) {
		p.pos++
	}
	unit := p.input[unitStart:p.pos]
	if unit == "" {
		p.pos = save
		return v, nil
	}
	converted, err := ToCentimeters(v, unit)
	if err != nil {
		p.pos = save
		return v, nil
	}
	return converted, nil
}

func (p *exprParser) parseReference() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		p.pos++
	}
	name := p.input[start:p.pos]
	if name == "" {
		return 0, fmt.Errorf("unexpected %q in expression", p.input[p.pos:])
	}
	param := p.design.UserParameter(name)
	if param == nil {
		return 0, fmt.Errorf("unknown parameter: %s", name)
	}
	return param.Value, nil
}
