package cypher

import "strconv"

// Parser is a recursive-descent parser over a Lexer's token stream.
type Parser struct {
	lexer   *Lexer
	current Token
	peeked  *Token
}

// NewParser returns a Parser over source.
func NewParser(source string) *Parser {
	return &Parser{lexer: NewLexer(source)}
}

// Parse parses source (via a fresh Lexer/Parser pair) into a Query.
func Parse(source string) (*Query, error) {
	return NewParser(source).ParseQuery()
}

func (p *Parser) advance() error {
	if p.peeked != nil {
		p.current = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) peek() (Token, error) {
	if p.peeked != nil {
		return *p.peeked, nil
	}
	tok, err := p.lexer.NextToken()
	if err != nil {
		return Token{}, err
	}
	p.peeked = &tok
	return tok, nil
}

func (p *Parser) expect(t TokenType) (Token, error) {
	if p.current.Type != t {
		return Token{}, &ParseError{Pos: p.current.Pos, Msg: "expected " + t.String() + ", got " + p.current.Type.String()}
	}
	tok := p.current
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// ParseQuery parses `MATCH patterns [WHERE expr] RETURN items [ORDER BY ...]`.
func (p *Parser) ParseQuery() (*Query, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenMatch); err != nil {
		return nil, err
	}

	patterns, err := p.parsePatterns()
	if err != nil {
		return nil, err
	}

	q := &Query{Patterns: patterns}

	if p.current.Type == TokenWhere {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Where = expr
	}

	if _, err := p.expect(TokenReturn); err != nil {
		return nil, err
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, err
	}
	q.Return = items

	if p.current.Type == TokenOrder {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		order, err := p.parseOrderItems()
		if err != nil {
			return nil, err
		}
		q.OrderBy = order
	}

	if p.current.Type != TokenEOF {
		return nil, &ParseError{Pos: p.current.Pos, Msg: "unexpected trailing token " + p.current.Type.String()}
	}

	return q, nil
}

func (p *Parser) parsePatterns() ([]Pattern, error) {
	var patterns []Pattern
	for {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pat)
		if p.current.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return patterns, nil
}

func (p *Parser) parsePattern() (Pattern, error) {
	left, err := p.parseNode()
	if err != nil {
		return Pattern{}, err
	}

	if p.current.Type != TokenMinus && p.current.Type != TokenArrowLeft {
		return Pattern{Left: left}, nil
	}

	rel, err := p.parseRelation()
	if err != nil {
		return Pattern{}, err
	}
	right, err := p.parseNode()
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Left: left, Rel: rel, Right: &right}, nil
}

// parseNode parses `'(' [var] [':' label] ['{' prop_map '}'] ')'`.
func (p *Parser) parseNode() (NodePattern, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return NodePattern{}, err
	}

	var n NodePattern
	if p.current.Type == TokenIdent {
		n.Var = p.current.Value
		if err := p.advance(); err != nil {
			return NodePattern{}, err
		}
	}
	if p.current.Type == TokenColon {
		if err := p.advance(); err != nil {
			return NodePattern{}, err
		}
		label, err := p.expect(TokenIdent)
		if err != nil {
			return NodePattern{}, err
		}
		n.Label = label.Value
	}
	if p.current.Type == TokenLBrace {
		props, err := p.parsePropMap()
		if err != nil {
			return NodePattern{}, err
		}
		n.Props = props
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return NodePattern{}, err
	}
	return n, nil
}

func (p *Parser) parsePropMap() (map[string]any, error) {
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	props := map[string]any{}
	for p.current.Type != TokenRBrace {
		key, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		props[key.Value] = val
		if p.current.Type == TokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return props, nil
}

// parseRelation parses `-[:TYPE]->` or `<-[:TYPE]-`.
func (p *Parser) parseRelation() (*RelPattern, error) {
	dir := DirOutgoing
	switch p.current.Type {
	case TokenMinus:
		dir = DirOutgoing
	case TokenArrowLeft:
		dir = DirIncoming
	default:
		return nil, &ParseError{Pos: p.current.Pos, Msg: "expected '-' or '<-'"}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBracket); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	typeTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}

	if dir == DirOutgoing {
		if _, err := p.expect(TokenArrowRight); err != nil {
			return nil, err
		}
	} else {
		if _, err := p.expect(TokenMinus); err != nil {
			return nil, err
		}
	}

	return &RelPattern{Type: typeTok.Value, Dir: dir}, nil
}

func (p *Parser) parseValue() (any, error) {
	tok := p.current
	switch tok.Type {
	case TokenInt:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Msg: "invalid integer literal " + tok.Value}
		}
		return n, p.advance()
	case TokenString:
		return tok.Value, p.advance()
	case TokenTrue:
		return true, p.advance()
	case TokenFalse:
		return false, p.advance()
	case TokenNull:
		return nil, p.advance()
	default:
		return nil, &ParseError{Pos: tok.Pos, Msg: "expected a value, got " + tok.Type.String()}
	}
}

// parseExpr parses `comparison ((AND|OR) comparison)*`, left-associative,
// AND and OR at equal precedence left to right: the grammar makes no
// precedence distinction between them.
func (p *Parser) parseExpr() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenAnd || p.current.Type == TokenOr {
		op := p.current.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if op == TokenAnd {
			left = &And{Left: left, Right: right}
		} else {
			left = &Or{Left: left, Right: right}
		}
	}
	return left, nil
}

// parseComparison parses `var '.' prop op value`.
func (p *Parser) parseComparison() (Expr, error) {
	if p.current.Type == TokenEOF {
		return nil, &ParseError{Pos: p.current.Pos, Msg: "empty expression"}
	}

	varTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDot); err != nil {
		return nil, err
	}
	propTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	var op CompareOp
	switch p.current.Type {
	case TokenEq:
		op = OpEq
	case TokenNeq:
		op = OpNeq
	case TokenLt:
		op = OpLt
	case TokenLe:
		op = OpLe
	case TokenGt:
		op = OpGt
	case TokenGe:
		op = OpGe
	default:
		return nil, &ParseError{Pos: p.current.Pos, Msg: "expected a comparison operator"}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &Comparison{Var: varTok.Value, Prop: propTok.Value, Op: op, Value: val}, nil
}

func (p *Parser) parseReturnItems() ([]ReturnItem, error) {
	var items []ReturnItem
	for {
		item, err := p.parseReturnItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.current.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Parser) parseReturnItem() (ReturnItem, error) {
	varTok, err := p.expect(TokenIdent)
	if err != nil {
		return ReturnItem{}, err
	}
	item := ReturnItem{Var: varTok.Value}
	if p.current.Type == TokenDot {
		if err := p.advance(); err != nil {
			return ReturnItem{}, err
		}
		propTok, err := p.expect(TokenIdent)
		if err != nil {
			return ReturnItem{}, err
		}
		item.Prop = propTok.Value
	}
	return item, nil
}

func (p *Parser) parseOrderItems() ([]OrderItem, error) {
	var items []OrderItem
	for {
		item, err := p.parseOrderItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.current.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Parser) parseOrderItem() (OrderItem, error) {
	varTok, err := p.expect(TokenIdent)
	if err != nil {
		return OrderItem{}, err
	}
	if _, err := p.expect(TokenDot); err != nil {
		return OrderItem{}, err
	}
	propTok, err := p.expect(TokenIdent)
	if err != nil {
		return OrderItem{}, err
	}
	item := OrderItem{Var: varTok.Value, Prop: propTok.Value}
	switch p.current.Type {
	case TokenAsc:
		if err := p.advance(); err != nil {
			return OrderItem{}, err
		}
	case TokenDesc:
		item.Desc = true
		if err := p.advance(); err != nil {
			return OrderItem{}, err
		}
	}
	return item, nil
}
