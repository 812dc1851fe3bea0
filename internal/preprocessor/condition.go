package preprocessor

import (
	"strconv"
	"strings"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/lexer"
)

// evaluateCondition evaluates a #if/#elseif expression, per spec.md §4.4:
// a shunting-yard parse over a fixed operator table, with two's-complement
// 32-bit integer arithmetic. Macro identifiers are expanded in place
// (function-like macros consume their argument list from toks); `defined X`
// is evaluated without expanding X. An unresolved macro or a malformed
// expression is recovered: the offending sub-expression evaluates to 0 and
// a diagnostic is recorded, but the rest of the condition is still
// evaluated — per spec.md §9 Open Questions.
func evaluateCondition(table *Table, toks []lexer.Token) (bool, []diag.Diagnostic) {
	expanded, diags := expandConditionTokens(table, toks)
	value, evalDiags := shuntingYard(expanded)
	diags = append(diags, evalDiags...)
	return value != 0, diags
}

func expandConditionTokens(table *Table, toks []lexer.Token) ([]lexer.Token, []diag.Diagnostic) {
	cur := newCursor(toks)
	var diags []diag.Diagnostic
	var out []lexer.Token
	ex := &expander{table: table, diags: &diags}

	for {
		t, ok := cur.next()
		if !ok {
			break
		}
		switch {
		case t.Kind == lexer.KindDefined:
			hasParen := false
			if nt, ok2 := cur.peek(); ok2 && nt.Kind == lexer.KindLParen {
				cur.next()
				hasParen = true
			}
			nameTok, ok3 := cur.next()
			val := 0
			if ok3 && table.Defined(nameTok.Text) {
				val = 1
			}
			if hasParen {
				if rp, ok4 := cur.peek(); ok4 && rp.Kind == lexer.KindRParen {
					cur.next()
				}
			}
			out = append(out, intToken(val, t))
		case t.Kind == lexer.KindIdent && table.Defined(t.Text):
			ex.expandIdentifier(t, cur, &out)
		case t.Kind == lexer.KindIdent:
			diags = append(diags, diag.Diagnostic{
				Kind:    diag.UnresolvedMacro,
				Range:   diag.Range{Start: t.Range.Start, End: t.Range.End},
				Message: "unresolved macro in preprocessor condition",
				Name:    t.Text,
			})
			// spec.md §9 Open Questions: empty/unresolved expansion evaluates
			// to 0, with a diagnostic, rather than aborting the condition.
			out = append(out, intToken(0, t))
		default:
			out = append(out, t)
		}
	}
	return out, diags
}

func intToken(v int, at lexer.Token) lexer.Token {
	return lexer.Token{
		Kind:  lexer.KindIntLiteral,
		Text:  strconv.Itoa(v),
		Range: at.Range,
		Delta: at.Delta,
		Line:  at.Line,
		Col:   at.Col,
	}
}

type preOp struct {
	text  string
	unary bool
}

func (o preOp) priority() int {
	if o.unary {
		return 100
	}
	switch o.text {
	case "*", "/", "%":
		return 10
	case "+", "-":
		return 9
	case "<<", ">>", ">>>":
		return 8
	case "<", "<=", ">", ">=":
		return 7
	case "==", "!=":
		return 6
	case "&":
		return 5
	case "^":
		return 4
	case "|":
		return 3
	case "&&":
		return 2
	case "||":
		return 1
	default:
		return 0
	}
}

func isUnaryOperatorText(s string) bool {
	switch s {
	case "!", "~", "-", "+":
		return true
	default:
		return false
	}
}

// shuntingYard evaluates a fully macro-expanded, "defined"-resolved token
// stream as a 32-bit two's-complement integer expression, per spec.md §4.4.
func shuntingYard(toks []lexer.Token) (int32, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	var opStack []preOp
	var out []int32
	mayBeUnary := true

	applyTop := func() bool {
		if len(opStack) == 0 {
			return false
		}
		op := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if op.text == "(" {
			return true
		}
		if op.unary {
			if len(out) < 1 {
				return false
			}
			a := out[len(out)-1]
			out = out[:len(out)-1]
			out = append(out, applyUnary(op.text, a))
			return true
		}
		if len(out) < 2 {
			return false
		}
		b := out[len(out)-1]
		a := out[len(out)-2]
		out = out[:len(out)-2]
		out = append(out, applyBinary(op.text, a, b))
		return true
	}

	for _, t := range toks {
		switch t.Kind {
		case lexer.KindLParen:
			opStack = append(opStack, preOp{text: "("})
			mayBeUnary = true
		case lexer.KindRParen:
			for len(opStack) > 0 && opStack[len(opStack)-1].text != "(" {
				if !applyTop() {
					diags = append(diags, condErr(t, "malformed expression before )"))
					break
				}
			}
			if len(opStack) > 0 && opStack[len(opStack)-1].text == "(" {
				opStack = opStack[:len(opStack)-1]
			}
			mayBeUnary = false
		case lexer.KindTrue:
			out = append(out, 1)
			mayBeUnary = false
		case lexer.KindFalse:
			out = append(out, 0)
			mayBeUnary = false
		case lexer.KindIntLiteral:
			v, err := parseIntLiteral(t.Text)
			if err != nil {
				diags = append(diags, diag.Diagnostic{
					Kind:    diag.IntParseError,
					Range:   diag.Range{Start: t.Range.Start, End: t.Range.End},
					Message: "invalid integer literal in condition",
					Name:    t.Text,
				})
				v = 0
			}
			out = append(out, v)
			mayBeUnary = false
		case lexer.KindCharLiteral:
			out = append(out, parseCharLiteral(t.Text))
			mayBeUnary = false
		case lexer.KindOperator:
			opText := t.Text
			unary := mayBeUnary && isUnaryOperatorText(opText)
			cur := preOp{text: opText, unary: unary}
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				if top.text == "(" {
					break
				}
				if (!cur.unary && top.priority() <= cur.priority()) ||
					(cur.unary && top.priority() < cur.priority()) {
					if !applyTop() {
						break
					}
				} else {
					break
				}
			}
			opStack = append(opStack, cur)
			mayBeUnary = true
		default:
			// Comments and other non-evaluable tokens are ignored.
		}
	}

	for len(opStack) > 0 {
		if !applyTop() {
			diags = append(diags, diag.Diagnostic{
				Kind:    diag.ConditionEvalFailure,
				Message: "malformed preprocessor condition",
			})
			break
		}
	}

	if len(out) == 0 {
		diags = append(diags, diag.Diagnostic{
			Kind:    diag.ConditionEvalFailure,
			Message: "preprocessor condition produced no value",
		})
		return 0, diags
	}
	return out[len(out)-1], diags
}

func condErr(t lexer.Token, msg string) diag.Diagnostic {
	return diag.Diagnostic{
		Kind:    diag.ConditionEvalFailure,
		Range:   diag.Range{Start: t.Range.Start, End: t.Range.End},
		Message: msg,
	}
}

func applyUnary(op string, a int32) int32 {
	switch op {
	case "!":
		if a == 0 {
			return 1
		}
		return 0
	case "~":
		return ^a
	case "-":
		return -a
	case "+":
		return a
	}
	return a
}

func applyBinary(op string, a, b int32) int32 {
	switch op {
	case "*":
		return a * b
	case "/":
		if b == 0 {
			return 0
		}
		return a / b
	case "%":
		if b == 0 {
			return 0
		}
		return a % b
	case "+":
		return a + b
	case "-":
		return a - b
	case "<<":
		return a << uint32(b&31)
	case ">>":
		return a >> uint32(b&31)
	case ">>>":
		return int32(uint32(a) >> uint32(b&31))
	case "&":
		return a & b
	case "^":
		return a ^ b
	case "|":
		return a | b
	case "<":
		return boolToInt(a < b)
	case "<=":
		return boolToInt(a <= b)
	case ">":
		return boolToInt(a > b)
	case ">=":
		return boolToInt(a >= b)
	case "==":
		return boolToInt(a == b)
	case "!=":
		return boolToInt(a != b)
	case "&&":
		return boolToInt(a != 0 && b != 0)
	case "||":
		return boolToInt(a != 0 || b != 0)
	}
	return 0
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func parseIntLiteral(text string) (int32, error) {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseInt(lower[2:], 16, 64)
		return int32(v), err
	case strings.HasPrefix(lower, "0b"):
		v, err := strconv.ParseInt(lower[2:], 2, 64)
		return int32(v), err
	case len(lower) > 1 && lower[0] == '0':
		v, err := strconv.ParseInt(lower, 8, 64)
		return int32(v), err
	default:
		v, err := strconv.ParseInt(lower, 10, 64)
		return int32(v), err
	}
}

func parseCharLiteral(text string) int32 {
	s := strings.Trim(text, "'")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\\`, "\\")
	s = strings.ReplaceAll(s, `\'`, "'")
	if s == "" {
		return 0
	}
	var v int32
	for _, b := range []byte(s) {
		v = (v << 8) | int32(b)
	}
	return v
}
