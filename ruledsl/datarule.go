package ruledsl

import (
	"fmt"

	"github.com/renyuneyun/dr.aid/types"
)

// dataRuleParser walks the token stream produced by tokenize against the
// data-rule grammar:
//
//	data_rule        := "begin" data_rule_stmt* "end"
//	data_rule_stmt    := obligation_decl | attribute_decl
//	obligation_decl   := "obligation" "(" action_ref attribute_reference*
//	                      "," "[" (attribute_reference ("," attribute_reference)*)? "]"
//	                      "," ( "null" | AC_TARGET OPERATOR ac_value ) ")" "."
//	attribute_decl    := "attribute" "(" identifier "," attribute_value_field ")" "."
//	attribute_value_field := attribute_value_expr | "[" attribute_value_expr ("," attribute_value_expr)* "]"
//	attribute_value_expr  := attribute_type attribute_value
type dataRuleParser struct {
	toks []token
	pos  int
	src  string
}

// ParseDataRule parses a "begin ... end" data-rule block into a
// DataRuleContainer.
func ParseDataRule(src string) (*types.DataRuleContainer, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, &types.IllFormedError{Text: src, Err: err}
	}
	p := &dataRuleParser{toks: toks, src: src}
	c, err := p.parseDataRule()
	if err != nil {
		return nil, &types.IllFormedError{Text: src, Err: err}
	}
	return c, nil
}

func (p *dataRuleParser) cur() token  { return p.toks[p.pos] }
func (p *dataRuleParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *dataRuleParser) expectIdent(text string) error {
	t := p.cur()
	if t.kind != tokIdent || t.text != text {
		return fmt.Errorf("expected %q at offset %d, got %q", text, t.pos, t.text)
	}
	p.advance()
	return nil
}

func (p *dataRuleParser) expectSym(text string) error {
	t := p.cur()
	if t.kind != tokSym || t.text != text {
		return fmt.Errorf("expected %q at offset %d, got %q", text, t.pos, t.text)
	}
	p.advance()
	return nil
}

func (p *dataRuleParser) atSym(text string) bool {
	t := p.cur()
	return t.kind == tokSym && t.text == text
}

func (p *dataRuleParser) parseDataRule() (*types.DataRuleContainer, error) {
	if err := p.expectIdent("begin"); err != nil {
		return nil, err
	}
	c := types.NewDataRuleContainer()
	for !(p.cur().kind == tokIdent && p.cur().text == "end") {
		if p.cur().kind == tokEOF {
			return nil, fmt.Errorf("unexpected end of input, expected \"end\"")
		}
		switch {
		case p.cur().kind == tokIdent && p.cur().text == "obligation":
			ob, err := p.parseObligation()
			if err != nil {
				return nil, err
			}
			c.Obligation = append(c.Obligation, ob)
		case p.cur().kind == tokIdent && p.cur().text == "attribute":
			cap, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			c.Capsules = append(c.Capsules, cap)
		default:
			return nil, fmt.Errorf("expected \"obligation\" or \"attribute\" at offset %d, got %q", p.cur().pos, p.cur().text)
		}
	}
	p.advance() // "end"
	return c, nil
}

func (p *dataRuleParser) parseActionRef() (string, error) {
	t := p.cur()
	switch t.kind {
	case tokIdent:
		p.advance()
		return t.text, nil
	case tokString:
		p.advance()
		return t.text, nil
	default:
		return "", fmt.Errorf("expected action reference at offset %d, got %q", t.pos, t.text)
	}
}

func (p *dataRuleParser) parseAttributeReference() (types.AttributeReference, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return types.AttributeReference{}, fmt.Errorf("expected attribute reference at offset %d, got %q", t.pos, t.text)
	}
	p.advance()
	ref := types.AttributeReference{Name: t.text, Index: 0}
	if p.atSym("[") {
		p.advance()
		idxTok := p.cur()
		if idxTok.kind != tokInt {
			return ref, fmt.Errorf("expected integer index at offset %d", idxTok.pos)
		}
		p.advance()
		ref.Index = int(idxTok.ival)
		if err := p.expectSym("]"); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

func (p *dataRuleParser) parseObligation() (types.ObligationDeclaration, error) {
	var ob types.ObligationDeclaration
	p.advance() // "obligation"
	if err := p.expectSym("("); err != nil {
		return ob, err
	}
	action, err := p.parseActionRef()
	if err != nil {
		return ob, err
	}
	ob.Action = action
	for p.cur().kind == tokIdent {
		ref, err := p.parseAttributeReference()
		if err != nil {
			return ob, err
		}
		ob.Args = append(ob.Args, ref)
	}
	if err := p.expectSym(","); err != nil {
		return ob, err
	}
	bindings, err := p.parseRefList()
	if err != nil {
		return ob, err
	}
	ob.Bindings = bindings
	if err := p.expectSym(","); err != nil {
		return ob, err
	}
	cond, err := p.parseActivationCondition()
	if err != nil {
		return ob, err
	}
	ob.Condition = cond
	if err := p.expectSym(")"); err != nil {
		return ob, err
	}
	if err := p.expectSym("."); err != nil {
		return ob, err
	}
	return ob, nil
}

func (p *dataRuleParser) parseRefList() ([]types.AttributeReference, error) {
	if err := p.expectSym("["); err != nil {
		return nil, err
	}
	var refs []types.AttributeReference
	if p.atSym("]") {
		p.advance()
		return refs, nil
	}
	for {
		ref, err := p.parseAttributeReference()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
		if p.atSym(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSym("]"); err != nil {
		return nil, err
	}
	return refs, nil
}

// parseActivationCondition accepts any identifier as the condition target:
// the grammar sketch names "action"|"stage"|"user"|"date"|"processId"|
// "purpose" but also allows "other", any key looked up in the contextual
// info map at evaluation time (§4.2).
func (p *dataRuleParser) parseActivationCondition() (types.ActivationCondition, error) {
	if p.cur().kind == tokIdent && p.cur().text == "null" {
		p.advance()
		return types.NeverCondition{}, nil
	}
	t := p.cur()
	if t.kind != tokIdent {
		return nil, fmt.Errorf("expected activation-condition target at offset %d, got %q", t.pos, t.text)
	}
	slot := t.text
	p.advance()
	opTok := p.cur()
	var negated bool
	switch {
	case opTok.kind == tokSym && opTok.text == "=":
		negated = false
	case opTok.kind == tokSym && opTok.text == "!=":
		negated = true
	default:
		return nil, fmt.Errorf("expected \"=\" or \"!=\" at offset %d, got %q", opTok.pos, opTok.text)
	}
	p.advance()
	value, err := p.parseACValue()
	if err != nil {
		return nil, err
	}
	if negated {
		return types.NotEqualCondition{Slot: slot, Value: value}, nil
	}
	return types.EqualCondition{Slot: slot, Value: value}, nil
}

func (p *dataRuleParser) parseACValue() (*string, error) {
	if p.atSym("*") {
		p.advance()
		return nil, nil
	}
	v, err := p.parseScalar()
	if err != nil {
		return nil, err
	}
	s := fmt.Sprintf("%v", v)
	return &s, nil
}

func (p *dataRuleParser) parseScalar() (any, error) {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		return t.ival, nil
	case tokFloat:
		p.advance()
		return t.fval, nil
	case tokString:
		p.advance()
		return t.text, nil
	default:
		return nil, fmt.Errorf("expected a value at offset %d, got %q", t.pos, t.text)
	}
}

func (p *dataRuleParser) parseAttribute() (*types.AttributeCapsule, error) {
	p.advance() // "attribute"
	if err := p.expectSym("("); err != nil {
		return nil, err
	}
	nameTok := p.cur()
	if nameTok.kind != tokIdent {
		return nil, fmt.Errorf("expected attribute name at offset %d", nameTok.pos)
	}
	p.advance()
	cap := &types.AttributeCapsule{Name: nameTok.text}
	if err := p.expectSym(","); err != nil {
		return nil, err
	}
	if p.atSym("[") {
		p.advance()
		if !p.atSym("]") {
			for {
				attr, err := p.parseAttributeValueExpr(nameTok.text)
				if err != nil {
					return nil, err
				}
				cap.Attrs = append(cap.Attrs, attr)
				if p.atSym(",") {
					p.advance()
					continue
				}
				break
			}
		}
		if err := p.expectSym("]"); err != nil {
			return nil, err
		}
	} else {
		attr, err := p.parseAttributeValueExpr(nameTok.text)
		if err != nil {
			return nil, err
		}
		cap.Attrs = append(cap.Attrs, attr)
	}
	if err := p.expectSym(")"); err != nil {
		return nil, err
	}
	if err := p.expectSym("."); err != nil {
		return nil, err
	}
	return cap, nil
}

func (p *dataRuleParser) parseAttributeValueExpr(name string) (types.Attribute, error) {
	typTok := p.cur()
	var typ string
	switch typTok.kind {
	case tokIdent:
		typ = typTok.text
		p.advance()
	case tokString:
		typ = typTok.text
		p.advance()
	default:
		return types.Attribute{}, fmt.Errorf("expected attribute type at offset %d, got %q", typTok.pos, typTok.text)
	}
	val, err := p.parseScalar()
	if err != nil {
		return types.Attribute{}, err
	}
	return types.Attribute{Name: name, Type: typ, Value: val}, nil
}
