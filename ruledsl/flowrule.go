package ruledsl

import (
	"fmt"

	"github.com/renyuneyun/dr.aid/types"
)

// flowRuleParser walks the token stream against the flow-rule grammar:
//
//	flow_rule      := flow_rule_stmt*
//	flow_rule_stmt := propagate_stmt | edit_stmt | delete_stmt
//	propagate_stmt := port "->" port ("," port)*
//	edit_stmt      := "edit" "(" port_may "," port_may "," attr_name_may ","
//	                   attr_type_may "," attr_value_may "," attr_type "," attr_value ")"
//	delete_stmt    := "delete" "(" port_may "," port_may "," attr_name_may ","
//	                   attr_type_may "," attr_value_may ")"
//	port_may       := identifier | STRING | "*"
type flowRuleParser struct {
	toks []token
	pos  int
}

// ParseFlowRule parses a sequence of propagate/edit/delete statements into
// a FlowRule.
func ParseFlowRule(src string) (types.FlowRule, error) {
	toks, err := tokenize(src)
	if err != nil {
		return types.FlowRule{}, &types.IllFormedError{Text: src, Err: err}
	}
	p := &flowRuleParser{toks: toks}
	fr, err := p.parseFlowRule()
	if err != nil {
		return types.FlowRule{}, &types.IllFormedError{Text: src, Err: err}
	}
	return fr, nil
}

func (p *flowRuleParser) cur() token { return p.toks[p.pos] }
func (p *flowRuleParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *flowRuleParser) atSym(s string) bool {
	t := p.cur()
	return t.kind == tokSym && t.text == s
}

func (p *flowRuleParser) atKeyword(s string) bool {
	t := p.cur()
	return t.kind == tokIdent && t.text == s
}

func (p *flowRuleParser) expectSym(s string) error {
	t := p.cur()
	if t.kind != tokSym || t.text != s {
		return fmt.Errorf("expected %q at offset %d, got %q", s, t.pos, t.text)
	}
	p.advance()
	return nil
}

func (p *flowRuleParser) parseFlowRule() (types.FlowRule, error) {
	var fr types.FlowRule
	for p.cur().kind != tokEOF {
		switch {
		case p.atKeyword("edit"):
			a, err := p.parseEdit()
			if err != nil {
				return fr, err
			}
			fr.Actions = append(fr.Actions, a)
		case p.atKeyword("delete"):
			a, err := p.parseDelete()
			if err != nil {
				return fr, err
			}
			fr.Actions = append(fr.Actions, a)
		default:
			a, err := p.parsePropagate()
			if err != nil {
				return fr, err
			}
			fr.Actions = append(fr.Actions, a)
		}
	}
	return fr, nil
}

func (p *flowRuleParser) parsePort() (string, error) {
	t := p.cur()
	switch t.kind {
	case tokIdent, tokString:
		p.advance()
		return t.text, nil
	default:
		return "", fmt.Errorf("expected a port name at offset %d, got %q", t.pos, t.text)
	}
}

func (p *flowRuleParser) parsePropagate() (types.PropagateAction, error) {
	var a types.PropagateAction
	in, err := p.parsePort()
	if err != nil {
		return a, err
	}
	a.InputPort = in
	if err := p.expectSym("->"); err != nil {
		return a, err
	}
	for {
		out, err := p.parsePort()
		if err != nil {
			return a, err
		}
		a.OutputPorts = append(a.OutputPorts, out)
		if p.atSym(",") {
			p.advance()
			continue
		}
		break
	}
	return a, nil
}

// parsePortMay parses a "may" port: an identifier/string port name, or "*"
// meaning "every port" (nil).
func (p *flowRuleParser) parsePortMay() (*string, error) {
	if p.atSym("*") {
		p.advance()
		return nil, nil
	}
	s, err := p.parsePort()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *flowRuleParser) parseNameMay() (*string, error) {
	if p.atSym("*") {
		p.advance()
		return nil, nil
	}
	t := p.cur()
	if t.kind != tokIdent {
		return nil, fmt.Errorf("expected an attribute name at offset %d, got %q", t.pos, t.text)
	}
	p.advance()
	s := t.text
	return &s, nil
}

func (p *flowRuleParser) parseScalarMay() (*string, error) {
	if p.atSym("*") {
		p.advance()
		return nil, nil
	}
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		s := fmt.Sprintf("%d", t.ival)
		return &s, nil
	case tokFloat:
		p.advance()
		s := fmt.Sprintf("%v", t.fval)
		return &s, nil
	case tokString:
		p.advance()
		s := t.text
		return &s, nil
	default:
		return nil, fmt.Errorf("expected a value at offset %d, got %q", t.pos, t.text)
	}
}

func (p *flowRuleParser) parseScalar() (string, any, error) {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		return "", t.ival, nil
	case tokFloat:
		p.advance()
		return "", t.fval, nil
	case tokString:
		p.advance()
		return "", t.text, nil
	default:
		return "", nil, fmt.Errorf("expected a value at offset %d, got %q", t.pos, t.text)
	}
}

func (p *flowRuleParser) parseAttrMatcher() (types.AttrMatcher, error) {
	var m types.AttrMatcher
	name, err := p.parseNameMay()
	if err != nil {
		return m, err
	}
	m.Name = name
	if err := p.expectSym(","); err != nil {
		return m, err
	}
	typ, err := p.parseNameMay()
	if err != nil {
		return m, err
	}
	m.Type = typ
	if err := p.expectSym(","); err != nil {
		return m, err
	}
	val, err := p.parseScalarMay()
	if err != nil {
		return m, err
	}
	m.Value = val
	return m, nil
}

func (p *flowRuleParser) parseEdit() (types.EditAction, error) {
	var a types.EditAction
	p.advance() // "edit"
	if err := p.expectSym("("); err != nil {
		return a, err
	}
	in, err := p.parsePortMay()
	if err != nil {
		return a, err
	}
	a.InputPort = in
	if err := p.expectSym(","); err != nil {
		return a, err
	}
	out, err := p.parsePortMay()
	if err != nil {
		return a, err
	}
	a.OutputPort = out
	if err := p.expectSym(","); err != nil {
		return a, err
	}
	m, err := p.parseAttrMatcher()
	if err != nil {
		return a, err
	}
	a.Match = m
	if err := p.expectSym(","); err != nil {
		return a, err
	}
	typTok := p.cur()
	if typTok.kind != tokString && typTok.kind != tokIdent {
		return a, fmt.Errorf("expected new attribute type at offset %d, got %q", typTok.pos, typTok.text)
	}
	p.advance()
	a.NewType = typTok.text
	if err := p.expectSym(","); err != nil {
		return a, err
	}
	_, val, err := p.parseScalar()
	if err != nil {
		return a, err
	}
	a.NewValue = val
	if err := p.expectSym(")"); err != nil {
		return a, err
	}
	return a, nil
}

func (p *flowRuleParser) parseDelete() (types.DeleteAction, error) {
	var a types.DeleteAction
	p.advance() // "delete"
	if err := p.expectSym("("); err != nil {
		return a, err
	}
	in, err := p.parsePortMay()
	if err != nil {
		return a, err
	}
	a.InputPort = in
	if err := p.expectSym(","); err != nil {
		return a, err
	}
	out, err := p.parsePortMay()
	if err != nil {
		return a, err
	}
	a.OutputPort = out
	if err := p.expectSym(","); err != nil {
		return a, err
	}
	m, err := p.parseAttrMatcher()
	if err != nil {
		return a, err
	}
	a.Match = m
	if err := p.expectSym(")"); err != nil {
		return a, err
	}
	return a, nil
}
