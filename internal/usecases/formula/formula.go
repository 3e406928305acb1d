// Package formula compila fórmulas de métricas customizadas em avaliadores
// sobre linhas normalizadas. A gramática é deliberadamente mínima: números,
// identificadores de campo, + - * / e parênteses. Nada de eval genérico.
package formula

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

// Evaluator avalia uma fórmula compilada contra uma linha. O resultado pode
// ser NaN ou Inf (divisão por zero em tempo de execução); quem exibe decide
// o que fazer com valores não finitos.
type Evaluator interface {
	Eval(row *domain.NormalizedRow) float64
	Fields() []string
}

type compiled struct {
	root   node
	fields []string
}

func (c *compiled) Eval(row *domain.NormalizedRow) float64 { return c.root.eval(row) }

// Fields retorna os campos referenciados pela fórmula, em ordem de aparição.
func (c *compiled) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// Compile analisa a fórmula e valida cada identificador contra o conjunto de
// campos permitidos. Erro de sintaxe ou campo desconhecido resulta em
// avaliador nulo e erro.
func Compile(formula string, fields []string) (Evaluator, error) {
	tokens, err := tokenize(formula)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("formula is empty")
	}

	permitted := make(map[string]bool, len(fields))
	for _, f := range fields {
		permitted[f] = true
	}

	p := &parser{tokens: tokens, permitted: permitted}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, errors.Errorf("unexpected token %q", p.tokens[p.pos].text)
	}

	return &compiled{root: root, fields: p.referenced}, nil
}

// Validate compila a fórmula e a avalia contra uma linha de amostra com todos
// os campos permitidos em 1. Fórmulas que nem com tudo em 1 produzem número
// finito são rejeitadas na criação; divisão por um campo que pode zerar em
// produção ainda valida, porque a amostra nunca zera.
func Validate(formula string, fields []string) error {
	ev, err := Compile(formula, fields)
	if err != nil {
		return err
	}

	sample := &domain.NormalizedRow{Extra: domain.NewFieldBag()}
	sample.Impressions, sample.Clicks, sample.Spend = 1, 1, 1
	sample.Results, sample.Value = 1, 1
	sample.CTR, sample.CPM, sample.CPC, sample.CostPerResult, sample.ROAS = 1, 1, 1, 1, 1
	for _, field := range fields {
		sample.Extra.Set(field, 1)
	}

	result := ev.Eval(sample)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return errors.New("formula does not produce a finite number")
	}
	return nil
}

type node interface {
	eval(row *domain.NormalizedRow) float64
}

type numberNode float64

func (n numberNode) eval(*domain.NormalizedRow) float64 { return float64(n) }

type fieldNode string

func (n fieldNode) eval(row *domain.NormalizedRow) float64 {
	if row == nil {
		return 0
	}
	if v, ok := row.Lookup(string(n)); ok {
		return v
	}
	if row.Raw != nil {
		if raw, ok := row.Raw[string(n)]; ok {
			switch v := raw.(type) {
			case float64:
				return v
			case string:
				if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
					return parsed
				}
			}
		}
	}
	return 0
}

type unaryNode struct {
	operand node
}

func (n unaryNode) eval(row *domain.NormalizedRow) float64 { return -n.operand.eval(row) }

type binaryNode struct {
	op          rune
	left, right node
}

func (n binaryNode) eval(row *domain.NormalizedRow) float64 {
	left, right := n.left.eval(row), n.right.eval(row)
	switch n.op {
	case '+':
		return left + right
	case '-':
		return left - right
	case '*':
		return left * right
	default:
		return left / right
	}
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(formula string) ([]token, error) {
	var tokens []token
	runes := []rune(formula)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			tokens = append(tokens, token{tokenOp, string(r)})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, errors.Errorf("invalid number %q", text)
			}
			tokens = append(tokens, token{tokenNumber, text})
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[start:i])})
		default:
			return nil, errors.Errorf("invalid character %q in formula", string(r))
		}
	}

	return tokens, nil
}

type parser struct {
	tokens     []token
	pos        int
	permitted  map[string]bool
	referenced []string
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// parseExpr trata + e -, o nível de menor precedência.
func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.pos++

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: rune(tok.text[0]), left: left, right: right}
	}
}

// parseTerm trata * e /.
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.pos++

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: rune(tok.text[0]), left: left, right: right}
	}
}

// parseFactor trata menos unário, parênteses, números e identificadores.
func (p *parser) parseFactor() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, errors.New("unexpected end of formula")
	}

	switch {
	case tok.kind == tokenOp && tok.text == "-":
		p.pos++
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return unaryNode{operand: operand}, nil

	case tok.kind == tokenLParen:
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		next, ok := p.peek()
		if !ok || next.kind != tokenRParen {
			return nil, errors.New("missing closing parenthesis")
		}
		p.pos++
		return inner, nil

	case tok.kind == tokenNumber:
		p.pos++
		value, _ := strconv.ParseFloat(tok.text, 64)
		return numberNode(value), nil

	case tok.kind == tokenIdent:
		p.pos++
		if !p.permitted[tok.text] {
			return nil, errors.Errorf("unknown field %q", tok.text)
		}
		p.track(tok.text)
		return fieldNode(tok.text), nil

	default:
		return nil, errors.Errorf("unexpected token %q", tok.text)
	}
}

func (p *parser) track(field string) {
	for _, f := range p.referenced {
		if f == field {
			return
		}
	}
	p.referenced = append(p.referenced, field)
}

var slugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduz um nome de métrica a um id estável: minúsculas, sequências
// não alfanuméricas viram "_".
func Slugify(name string) string {
	slug := slugRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "metric"
	}
	return slug
}

// UniqueID deriva um id a partir do nome e resolve colisões com sufixo
// numérico crescente (roas_real, roas_real_2, roas_real_3, ...).
func UniqueID(name string, taken map[string]bool) string {
	base := Slugify(name)
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
