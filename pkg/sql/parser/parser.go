// pkg/sql/parser/parser.go
package parser

import (
	"fmt"
	"strconv"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/lexer"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// Parser is a recursive descent SQL parser with one token of lookahead
type Parser struct {
	lexer *lexer.Lexer
	cur   lexer.Token
	peek  lexer.Token
}

// New creates a new Parser for the given SQL input
func New(input string) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	// Read two tokens to initialize cur and peek
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// expectPeek advances when the next token matches the expected type
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// syntaxError builds a SyntaxError at the given token
func syntaxError(tok lexer.Token, format string, args ...interface{}) error {
	return &schema.SyntaxError{
		Message:  fmt.Sprintf(format, args...),
		Position: tok.Pos,
	}
}

// describe renders a token for error messages
func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// peekError reports that the next token was not what the grammar needs
func (p *Parser) peekError(what string) error {
	return syntaxError(p.peek, "expected %s, got %s", what, describe(p.peek))
}

// Parse parses a single statement. An optional trailing semicolon is
// consumed; anything after it is an error.
func (p *Parser) Parse() (Statement, error) {
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	if !p.peekIs(lexer.EOF) {
		return nil, p.peekError("end of statement")
	}
	return stmt, nil
}

// ParseStatements parses a semicolon-separated script. The first syntax
// error aborts the whole parse.
func (p *Parser) ParseStatements() ([]Statement, error) {
	var stmts []Statement
	for p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	for !p.curIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		} else if !p.curIs(lexer.EOF) {
			return nil, syntaxError(p.cur, "expected ';' between statements, got %s", describe(p.cur))
		}
		for p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	return stmts, nil
}

// parseStatement dispatches on the statement's leading keyword and
// leaves cur on the statement's last token.
func (p *Parser) parseStatement() (Statement, error) {
	switch p.cur.Type {
	case lexer.CREATE:
		return p.parseCreateTable()
	case lexer.ALTER:
		return p.parseAlterTable()
	case lexer.DROP:
		return p.parseDropTable()
	case lexer.INSERT:
		return p.parseInsert()
	case lexer.SELECT:
		return p.parseSelect()
	case lexer.UPDATE:
		return p.parseUpdate()
	case lexer.DELETE:
		return p.parseDelete()
	case lexer.SHOW:
		return p.parseShowTables()
	case lexer.DESCRIBE:
		return p.parseDescribe()
	case lexer.BEGIN:
		return &BeginStmt{}, nil
	case lexer.COMMIT:
		return &CommitStmt{}, nil
	case lexer.ROLLBACK:
		return &RollbackStmt{}, nil
	default:
		return nil, syntaxError(p.cur, "unexpected token %s", describe(p.cur))
	}
}

// parseCreateTable parses: CREATE TABLE [IF NOT EXISTS] name (column_def, ...)
func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	stmt := &CreateTableStmt{}

	if !p.expectPeek(lexer.TABLE) {
		return nil, p.peekError("TABLE after CREATE")
	}

	if p.peekIs(lexer.IF) {
		p.nextToken()
		if !p.expectPeek(lexer.NOT) {
			return nil, p.peekError("NOT after IF")
		}
		if !p.expectPeek(lexer.EXISTS) {
			return nil, p.peekError("EXISTS after IF NOT")
		}
		stmt.IfNotExists = true
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return nil, p.peekError("'('")
	}

	for {
		p.nextToken()
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)

		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, p.peekError("')'")
	}
	return stmt, nil
}

// parseColumnDef parses "name TYPE [flags...]" with cur on the name.
// Flags may appear in any order.
func (p *Parser) parseColumnDef() (ColumnDef, error) {
	var col ColumnDef

	if !p.curIs(lexer.IDENT) {
		return col, syntaxError(p.cur, "expected column name, got %s", describe(p.cur))
	}
	col.Name = p.cur.Literal

	if !lexer.IsTypeKeyword(p.peek.Type) {
		return col, p.peekError("column type")
	}
	p.nextToken()
	col.Type = typeForKeyword(p.cur.Type)

	for {
		switch p.peek.Type {
		case lexer.PRIMARY:
			p.nextToken()
			if !p.expectPeek(lexer.KEY) {
				return col, p.peekError("KEY after PRIMARY")
			}
			col.PrimaryKey = true
		case lexer.UNIQUE:
			p.nextToken()
			col.Unique = true
		case lexer.NOT:
			p.nextToken()
			if !p.expectPeek(lexer.NULL_KW) {
				return col, p.peekError("NULL after NOT")
			}
			col.NotNull = true
		case lexer.AUTO_INCREMENT:
			p.nextToken()
			col.AutoIncrement = true
		default:
			return col, nil
		}
	}
}

// typeForKeyword maps a type keyword token to its value type
func typeForKeyword(t lexer.TokenType) types.ValueType {
	switch t {
	case lexer.INTEGER_TYPE:
		return types.TypeInteger
	case lexer.TEXT_TYPE:
		return types.TypeText
	case lexer.BOOLEAN_TYPE:
		return types.TypeBoolean
	case lexer.REAL_TYPE:
		return types.TypeReal
	case lexer.DATE_TYPE:
		return types.TypeDate
	default:
		return types.TypeNull
	}
}

// parseAlterTable parses the four ALTER TABLE actions
func (p *Parser) parseAlterTable() (*AlterTableStmt, error) {
	stmt := &AlterTableStmt{}

	if !p.expectPeek(lexer.TABLE) {
		return nil, p.peekError("TABLE after ALTER")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal

	p.nextToken()
	switch p.cur.Type {
	case lexer.ADD:
		stmt.Action = AlterAddColumn
		if p.peekIs(lexer.COLUMN) {
			p.nextToken()
		}
		p.nextToken()
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Column = &col
		stmt.ColumnName = col.Name
	case lexer.DROP:
		stmt.Action = AlterDropColumn
		if p.peekIs(lexer.COLUMN) {
			p.nextToken()
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, p.peekError("column name")
		}
		stmt.ColumnName = p.cur.Literal
	case lexer.RENAME:
		stmt.Action = AlterRenameColumn
		if p.peekIs(lexer.COLUMN) {
			p.nextToken()
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, p.peekError("column name")
		}
		stmt.ColumnName = p.cur.Literal
		if !p.expectPeek(lexer.TO) {
			return nil, p.peekError("TO")
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, p.peekError("new column name")
		}
		stmt.NewName = p.cur.Literal
	case lexer.MODIFY:
		stmt.Action = AlterModifyColumn
		if p.peekIs(lexer.COLUMN) {
			p.nextToken()
		}
		p.nextToken()
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Column = &col
		stmt.ColumnName = col.Name
	default:
		return nil, syntaxError(p.cur, "expected ADD, DROP, RENAME, or MODIFY, got %s", describe(p.cur))
	}

	return stmt, nil
}

// parseDropTable parses: DROP TABLE [IF EXISTS] name
func (p *Parser) parseDropTable() (*DropTableStmt, error) {
	stmt := &DropTableStmt{}

	if !p.expectPeek(lexer.TABLE) {
		return nil, p.peekError("TABLE after DROP")
	}
	if p.peekIs(lexer.IF) {
		p.nextToken()
		if !p.expectPeek(lexer.EXISTS) {
			return nil, p.peekError("EXISTS after IF")
		}
		stmt.IfExists = true
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal
	return stmt, nil
}

// parseInsert parses: INSERT INTO name [(cols)] VALUES (vals) [, (vals)...]
func (p *Parser) parseInsert() (*InsertStmt, error) {
	stmt := &InsertStmt{}

	if !p.expectPeek(lexer.INTO) {
		return nil, p.peekError("INTO after INSERT")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal

	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		for {
			if !p.expectPeek(lexer.IDENT) {
				return nil, p.peekError("column name")
			}
			stmt.Columns = append(stmt.Columns, p.cur.Literal)
			if p.peekIs(lexer.COMMA) {
				p.nextToken()
			} else {
				break
			}
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil, p.peekError("')'")
		}
	}

	if !p.expectPeek(lexer.VALUES) {
		return nil, p.peekError("VALUES")
	}

	for {
		if !p.expectPeek(lexer.LPAREN) {
			return nil, p.peekError("'('")
		}
		row, err := p.parseValueRow()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, row)

		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}

	return stmt, nil
}

// parseValueRow parses a parenthesized value list with cur on '('
func (p *Parser) parseValueRow() ([]types.Value, error) {
	var row []types.Value
	for {
		p.nextToken()
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		row = append(row, v)
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil, p.peekError("')'")
	}
	return row, nil
}

// parseLiteral converts the current token to a value
func (p *Parser) parseLiteral() (types.Value, error) {
	switch p.cur.Type {
	case lexer.INT:
		i, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			return types.Value{}, syntaxError(p.cur, "invalid integer literal %s", describe(p.cur))
		}
		return types.NewInteger(i), nil
	case lexer.FLOAT:
		f, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			return types.Value{}, syntaxError(p.cur, "invalid numeric literal %s", describe(p.cur))
		}
		return types.NewReal(f), nil
	case lexer.STRING:
		return types.NewText(p.cur.Literal), nil
	case lexer.TRUE_KW:
		return types.NewBoolean(true), nil
	case lexer.FALSE_KW:
		return types.NewBoolean(false), nil
	case lexer.NULL_KW:
		return types.NewNull(), nil
	default:
		return types.Value{}, syntaxError(p.cur, "expected value, got %s", describe(p.cur))
	}
}

// parseSelect parses: SELECT list FROM name [join] [WHERE] [ORDER BY] [LIMIT]
func (p *Parser) parseSelect() (*SelectStmt, error) {
	stmt := &SelectStmt{}

	p.nextToken()
	if p.curIs(lexer.STAR) {
		stmt.Columns = nil
	} else {
		for {
			name, err := p.parseColumnName()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, name)
			if p.peekIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
			} else {
				break
			}
		}
	}

	if !p.expectPeek(lexer.FROM) {
		return nil, p.peekError("FROM")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal

	if p.peekIs(lexer.INNER) || p.peekIs(lexer.LEFT) || p.peekIs(lexer.RIGHT) || p.peekIs(lexer.JOIN) {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		stmt.Join = join
	}

	if p.peekIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.peekIs(lexer.ORDER) {
		p.nextToken()
		if !p.expectPeek(lexer.BY) {
			return nil, p.peekError("BY after ORDER")
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, p.peekError("column name")
		}
		name, err := p.parseColumnName()
		if err != nil {
			return nil, err
		}
		orderBy := &OrderByClause{Column: name}
		if p.peekIs(lexer.ASC) {
			p.nextToken()
		} else if p.peekIs(lexer.DESC) {
			p.nextToken()
			orderBy.Desc = true
		}
		stmt.OrderBy = orderBy
	}

	if p.peekIs(lexer.LIMIT) {
		p.nextToken()
		if !p.expectPeek(lexer.INT) {
			return nil, p.peekError("row count after LIMIT")
		}
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil || n < 0 {
			return nil, syntaxError(p.cur, "invalid LIMIT %s", describe(p.cur))
		}
		stmt.Limit = &n
	}

	return stmt, nil
}

// parseColumnName parses an identifier with an optional table
// qualifier; only the column part is kept. cur is on the first
// identifier.
func (p *Parser) parseColumnName() (string, error) {
	if !p.curIs(lexer.IDENT) {
		return "", syntaxError(p.cur, "expected column name, got %s", describe(p.cur))
	}
	name := p.cur.Literal
	if p.peekIs(lexer.DOT) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return "", p.peekError("column name after '.'")
		}
		name = p.cur.Literal
	}
	return name, nil
}

// parseJoin parses "[INNER|LEFT|RIGHT] JOIN table ON left = right"
func (p *Parser) parseJoin() (*JoinClause, error) {
	join := &JoinClause{Type: JoinInner}

	switch p.peek.Type {
	case lexer.INNER:
		p.nextToken()
	case lexer.LEFT:
		p.nextToken()
		join.Type = JoinLeft
	case lexer.RIGHT:
		p.nextToken()
		join.Type = JoinRight
	}

	if !p.expectPeek(lexer.JOIN) {
		return nil, p.peekError("JOIN")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	join.TableName = p.cur.Literal

	if !p.expectPeek(lexer.ON) {
		return nil, p.peekError("ON")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("column name")
	}
	join.LeftColumn = p.cur.Literal
	if !p.expectPeek(lexer.EQ) {
		return nil, p.peekError("'='")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("column name")
	}
	join.RightColumn = p.cur.Literal

	return join, nil
}

// parseCondition parses a WHERE condition tree: comparisons chained
// left-associatively by AND/OR. Both operators share one precedence
// level, so "a=1 OR b=1 AND c=0" groups as "((a=1 OR b=1) AND c=0)".
func (p *Parser) parseCondition() (Expression, error) {
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.peekIs(lexer.AND) || p.peekIs(lexer.OR) {
		p.nextToken()
		op := p.cur.Type
		p.nextToken()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

// parseComparison parses one "column OP value" leaf with cur on the
// column identifier.
func (p *Parser) parseComparison() (Expression, error) {
	column, err := p.parseColumnName()
	if err != nil {
		return nil, err
	}

	p.nextToken()
	op := p.cur.Type
	switch op {
	case lexer.EQ, lexer.NEQ, lexer.GT, lexer.LT, lexer.GTE, lexer.LTE, lexer.LIKE_KW:
	default:
		return nil, syntaxError(p.cur, "expected comparison operator, got %s", describe(p.cur))
	}

	p.nextToken()
	value, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return &ComparisonExpr{Column: column, Op: op, Value: value}, nil
}

// parseUpdate parses: UPDATE name SET col = val [, ...] [WHERE ...]
func (p *Parser) parseUpdate() (*UpdateStmt, error) {
	stmt := &UpdateStmt{}

	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal

	if !p.expectPeek(lexer.SET) {
		return nil, p.peekError("SET")
	}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, p.peekError("column name")
		}
		column := p.cur.Literal
		if !p.expectPeek(lexer.EQ) {
			return nil, p.peekError("'='")
		}
		p.nextToken()
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{Column: column, Value: value})

		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}

	if p.peekIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

// parseDelete parses: DELETE FROM name [WHERE ...]
func (p *Parser) parseDelete() (*DeleteStmt, error) {
	stmt := &DeleteStmt{}

	if !p.expectPeek(lexer.FROM) {
		return nil, p.peekError("FROM after DELETE")
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	stmt.TableName = p.cur.Literal

	if p.peekIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

// parseShowTables parses: SHOW TABLES
func (p *Parser) parseShowTables() (*ShowTablesStmt, error) {
	if !p.expectPeek(lexer.TABLES) {
		return nil, p.peekError("TABLES after SHOW")
	}
	return &ShowTablesStmt{}, nil
}

// parseDescribe parses: DESCRIBE name
func (p *Parser) parseDescribe() (*DescribeStmt, error) {
	if !p.expectPeek(lexer.IDENT) {
		return nil, p.peekError("table name")
	}
	return &DescribeStmt{TableName: p.cur.Literal}, nil
}
