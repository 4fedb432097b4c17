// Package parser turns balanced-equation text into the structured Equation model.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
)

// Limits that keep every atom count well inside int range.
const (
	MaxCount = 1_000_000     // largest coefficient or subscript
	MaxAtoms = 1_000_000_000 // largest per-element total within one formula
)

var (
	arrows  = []string{"->", "=>", "→"}
	phaseRe = regexp.MustCompile(`\((g|l|s|aq)\)$`)
)

// Parse converts text of the form "a A + b B -> c C + d D" into an Equation.
// It checks syntax only; call Equation.CheckBalance for element conservation.
func Parse(text string) (*models.Equation, error) {
	at, width, err := findArrow(text)
	if err != nil {
		return nil, err
	}
	reactants, err := parseSide(text, 0, at, "reactant")
	if err != nil {
		return nil, err
	}
	products, err := parseSide(text, at+width, len(text), "product")
	if err != nil {
		return nil, err
	}
	return &models.Equation{Reactants: reactants, Products: products}, nil
}

// ParseFormula parses a bare formula such as "Ca(OH)2" into flat element counts.
func ParseFormula(text string) (models.Formula, error) {
	start, end := trimBounds(text, 0, len(text))
	if start == end {
		return nil, &apperr.ParseError{Pos: 0, Msg: "empty formula"}
	}
	return parseFormula(text, start, end)
}

func findArrow(text string) (int, int, error) {
	at, width := -1, 0
	for i := 0; i < len(text); {
		matched := false
		for _, a := range arrows {
			if strings.HasPrefix(text[i:], a) {
				if at >= 0 {
					return 0, 0, &apperr.ParseError{Pos: i, Token: a, Msg: "more than one reaction arrow"}
				}
				at, width = i, len(a)
				i += len(a)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	if at < 0 {
		return 0, 0, &apperr.ParseError{Pos: 0, Token: text, Msg: "missing reaction arrow '->'"}
	}
	return at, width, nil
}

func parseSide(text string, start, end int, side string) ([]models.Term, error) {
	if s, e := trimBounds(text, start, end); s == e {
		return nil, &apperr.ParseError{Pos: start, Msg: "empty " + side + " side"}
	}
	var terms []models.Term
	pieceStart := start
	for i := start; i <= end; i++ {
		if i < end && text[i] != '+' {
			continue
		}
		t, err := parseTerm(text, pieceStart, i)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
		pieceStart = i + 1
	}
	return terms, nil
}

func parseTerm(text string, start, end int) (models.Term, error) {
	s, e := trimBounds(text, start, end)
	if s == e {
		return models.Term{}, &apperr.ParseError{Pos: start, Token: "+", Msg: "empty term"}
	}

	coefficient := 1
	i := s
	for i < e && isDigit(text[i]) {
		i++
	}
	if i > s {
		tok := text[s:i]
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > MaxCount {
			return models.Term{}, &apperr.ParseError{Pos: s, Token: tok, Msg: "coefficient must be an integer between 1 and " + strconv.Itoa(MaxCount)}
		}
		coefficient = n
		for i < e && isSpace(text[i]) {
			i++
		}
		if i == e {
			return models.Term{}, &apperr.ParseError{Pos: s, Token: tok, Msg: "coefficient without formula"}
		}
	}

	formulaEnd := i
	for formulaEnd < e && !isSpace(text[formulaEnd]) {
		formulaEnd++
	}
	if formulaEnd < e {
		extra, _ := trimBounds(text, formulaEnd, e)
		return models.Term{}, &apperr.ParseError{Pos: extra, Token: word(text, extra, e), Msg: "unexpected token after formula"}
	}

	id := text[i:formulaEnd]
	phase := ""
	if m := phaseRe.FindStringSubmatch(id); m != nil && len(m[0]) < len(id) {
		phase = m[1]
		id = id[:len(id)-len(m[0])]
	}

	formula, err := parseFormula(text, i, i+len(id))
	if err != nil {
		return models.Term{}, err
	}
	return models.Term{
		Species:     models.Species{ID: id, Formula: formula, Phase: phase},
		Coefficient: coefficient,
	}, nil
}

// formulaScanner walks text[pos:end] with absolute offsets so errors point
// into the caller's original input.
type formulaScanner struct {
	text string
	pos  int
	end  int
}

func parseFormula(text string, start, end int) (models.Formula, error) {
	sc := &formulaScanner{text: text, pos: start, end: end}
	f, err := sc.sequence(0)
	if err != nil {
		return nil, err
	}
	if len(f) == 0 {
		return nil, &apperr.ParseError{Pos: start, Token: text[start:end], Msg: "empty formula"}
	}
	return f, nil
}

func (sc *formulaScanner) sequence(closer byte) (models.Formula, error) {
	f := models.Formula{}
	for sc.pos < sc.end {
		c := sc.text[sc.pos]
		switch {
		case isUpper(c):
			sym := sc.text[sc.pos : sc.pos+1]
			sc.pos++
			if sc.pos < sc.end && isLower(sc.text[sc.pos]) {
				sym = sc.text[sc.pos-1 : sc.pos+1]
				sc.pos++
			}
			at := sc.pos
			n, err := sc.count()
			if err != nil {
				return nil, err
			}
			f[sym] += n
			if f[sym] > MaxAtoms {
				return nil, sc.tooMany(at, sym)
			}

		case c == '(' || c == '[':
			open := sc.pos
			sc.pos++
			inner, err := sc.sequence(closing(c))
			if err != nil {
				return nil, err
			}
			if sc.pos >= sc.end {
				return nil, &apperr.ParseError{Pos: open, Token: string(c), Msg: "unbalanced parenthesis"}
			}
			if len(inner) == 0 {
				return nil, &apperr.ParseError{Pos: open, Token: sc.text[open : sc.pos+1], Msg: "empty group"}
			}
			sc.pos++
			at := sc.pos
			n, err := sc.count()
			if err != nil {
				return nil, err
			}
			for el, k := range inner {
				if k > (MaxAtoms-f[el])/n {
					return nil, sc.tooMany(at, sc.text[open:at])
				}
			}
			f.Add(inner, n)

		case c == ')' || c == ']':
			if c == closer {
				return f, nil
			}
			return nil, &apperr.ParseError{Pos: sc.pos, Token: string(c), Msg: "unbalanced parenthesis"}

		case isLower(c):
			return nil, &apperr.ParseError{Pos: sc.pos, Token: string(c), Msg: "element symbol must start with an uppercase letter"}

		case isDigit(c):
			return nil, &apperr.ParseError{Pos: sc.pos, Token: string(c), Msg: "count without element"}

		default:
			r, _ := utf8.DecodeRuneInString(sc.text[sc.pos:])
			return nil, &apperr.ParseError{Pos: sc.pos, Token: string(r), Msg: "invalid character in formula"}
		}
	}
	return f, nil
}

// count reads an optional trailing multiplier, defaulting to one.
func (sc *formulaScanner) count() (int, error) {
	start := sc.pos
	for sc.pos < sc.end && isDigit(sc.text[sc.pos]) {
		sc.pos++
	}
	if sc.pos == start {
		return 1, nil
	}
	tok := sc.text[start:sc.pos]
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > MaxCount {
		return 0, &apperr.ParseError{Pos: start, Token: tok, Msg: "count must be an integer between 1 and " + strconv.Itoa(MaxCount)}
	}
	return n, nil
}

// tooMany reports a multiplier at pos that pushes an element past MaxAtoms.
// An implicit multiplier of one points at what.
func (sc *formulaScanner) tooMany(pos int, what string) error {
	tok := sc.text[pos:sc.pos]
	if tok == "" {
		pos, tok = pos-len(what), what
	}
	return &apperr.ParseError{Pos: pos, Token: tok, Msg: "atom count exceeds " + strconv.Itoa(MaxAtoms)}
}

func closing(open byte) byte {
	if open == '[' {
		return ']'
	}
	return ')'
}

func trimBounds(text string, start, end int) (int, int) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return start, end
}

func word(text string, start, end int) string {
	i := start
	for i < end && !isSpace(text[i]) {
		i++
	}
	return text[start:i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
