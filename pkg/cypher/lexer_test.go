package cypher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenTypes(t *testing.T, source string) []TokenType {
	t.Helper()
	lex := NewLexer(source)
	var types []TokenType
	for {
		tok, err := lex.NextToken()
		require.NoError(t, err)
		types = append(types, tok.Type)
		if tok.Type == TokenEOF {
			break
		}
	}
	return types
}

func TestLexerKeywordsAndSymbols(t *testing.T) {
	got := tokenTypes(t, "MATCH (a:User)-[:FRIEND]->(b) WHERE a.age >= 20 RETURN a.name ORDER BY a.name DESC")
	require.Contains(t, got, TokenMatch)
	require.Contains(t, got, TokenWhere)
	require.Contains(t, got, TokenReturn)
	require.Contains(t, got, TokenOrder)
	require.Contains(t, got, TokenBy)
	require.Contains(t, got, TokenDesc)
	require.Contains(t, got, TokenArrowRight)
	require.Contains(t, got, TokenGe)
}

func TestLexerTwoCharOperators(t *testing.T) {
	got := tokenTypes(t, "a.x != b.y <= c.z >= 1")
	require.Contains(t, got, TokenNeq)
	require.Contains(t, got, TokenLe)
	require.Contains(t, got, TokenGe)
}

func TestLexerIncomingRelation(t *testing.T) {
	got := tokenTypes(t, "<-[:KNOWS]-")
	require.Equal(t, []TokenType{TokenArrowLeft, TokenLBracket, TokenColon, TokenIdent, TokenRBracket, TokenMinus, TokenEOF}, got)
}

func TestLexerString(t *testing.T) {
	lex := NewLexer(`"Alice"`)
	tok, err := lex.NextToken()
	require.NoError(t, err)
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, "Alice", tok.Value)
}

func TestLexerInteger(t *testing.T) {
	lex := NewLexer("30")
	tok, err := lex.NextToken()
	require.NoError(t, err)
	require.Equal(t, TokenInt, tok.Type)
	require.Equal(t, "30", tok.Value)
}

func TestLexerUnknownCharacter(t *testing.T) {
	lex := NewLexer("@")
	_, err := lex.NextToken()
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := NewLexer(`"unterminated`)
	_, err := lex.NextToken()
	require.Error(t, err)
}

func TestLexerBareMinusIsNotArrow(t *testing.T) {
	got := tokenTypes(t, "-[:X]-")
	require.Equal(t, []TokenType{TokenMinus, TokenLBracket, TokenColon, TokenIdent, TokenRBracket, TokenMinus, TokenEOF}, got)
}
