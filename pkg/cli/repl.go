// pkg/cli/repl.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Bernard065/mini-rdbms/pkg/minidb"
	"github.com/Bernard065/mini-rdbms/pkg/sql/executor"
)

// REPL provides a read-eval-print loop over one session.
type REPL struct {
	// session executes statements
	session *minidb.Session

	// shell handles input and statement accumulation
	shell *Shell

	// output is where results are written
	output io.Writer

	// errOutput is where errors are written
	errOutput io.Writer

	// exitRequested indicates that .exit was called
	exitRequested bool
}

// NewREPL creates a REPL reading from stdin
func NewREPL(session *minidb.Session, output, errOutput io.Writer) *REPL {
	return NewREPLWithInput(session, os.Stdin, output, errOutput)
}

// NewREPLWithInput creates a REPL with custom streams, useful for
// testing or scripted operation.
func NewREPLWithInput(session *minidb.Session, input io.Reader, output, errOutput io.Writer) *REPL {
	if errOutput == nil {
		errOutput = output
	}
	return &REPL{
		session:   session,
		shell:     NewShell(input, output),
		output:    output,
		errOutput: errOutput,
	}
}

// Run reads and executes statements until EOF or .exit
func (r *REPL) Run() {
	fmt.Fprintln(r.output, "minidb - in-memory SQL engine")
	fmt.Fprintln(r.output, "Enter SQL statements terminated by ';' or .help for commands.")

	for {
		text, eof := r.shell.ReadStatement()
		text = strings.TrimSpace(text)

		if text != "" {
			if strings.HasPrefix(text, ".") {
				r.handleDotCommand(text)
			} else {
				r.ExecuteScript(text)
			}
		}

		if eof || r.exitRequested {
			break
		}
	}
}

// ExecuteScript runs a semicolon-separated script and displays every
// result.
func (r *REPL) ExecuteScript(text string) {
	for _, res := range r.session.ExecuteAll(text) {
		r.displayResult(res)
	}
}

// displayResult renders one result
func (r *REPL) displayResult(res *executor.QueryResult) {
	if res == nil {
		return
	}

	switch res.Kind {
	case executor.KindError:
		fmt.Fprintf(r.errOutput, "Error: %v\n", res.Err)
	case executor.KindSelect:
		r.displayTable(res.Columns, res)
		fmt.Fprintf(r.output, "%d row(s) (%.3f ms)\n", res.RowCount, res.ExecutionTime)
	case executor.KindInsert:
		if res.LastInsertID != nil {
			fmt.Fprintf(r.output, "Rows affected: %d, last insert id: %d\n", res.RowsAffected, *res.LastInsertID)
		} else {
			fmt.Fprintf(r.output, "Rows affected: %d\n", res.RowsAffected)
		}
	case executor.KindUpdate, executor.KindDelete:
		fmt.Fprintf(r.output, "Rows affected: %d\n", res.RowsAffected)
	case executor.KindCreateTable:
		fmt.Fprintf(r.output, "Table %s created\n", res.TableName)
	case executor.KindDropTable:
		fmt.Fprintf(r.output, "Table %s dropped\n", res.TableName)
	case executor.KindShowTables:
		for _, name := range res.TableNames {
			fmt.Fprintln(r.output, name)
		}
		fmt.Fprintf(r.output, "%d table(s)\n", len(res.TableNames))
	case executor.KindDescribe:
		r.displaySchema(res)
	default:
		fmt.Fprintln(r.output, "OK")
	}
}

// displayTable renders SELECT rows as an ASCII table
func (r *REPL) displayTable(columns []string, res *executor.QueryResult) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}

	cells := make([][]string, len(res.Rows))
	for ri, row := range res.Rows {
		cells[ri] = make([]string, len(columns))
		for ci, col := range columns {
			v, ok := row[col]
			s := "NULL"
			if ok && !v.IsNull() {
				s = v.String()
			}
			cells[ri][ci] = s
			if len(s) > widths[ci] {
				widths[ci] = len(s)
			}
		}
	}

	r.printSeparator(widths)
	r.printRow(columns, widths)
	r.printSeparator(widths)
	for _, row := range cells {
		r.printRow(row, widths)
	}
	r.printSeparator(widths)
}

// displaySchema renders a DESCRIBE result
func (r *REPL) displaySchema(res *executor.QueryResult) {
	if res.Schema == nil {
		return
	}
	fmt.Fprintf(r.output, "Table %s:\n", res.Schema.Name)
	for _, col := range res.Schema.Columns {
		var flags []string
		if col.PrimaryKey {
			flags = append(flags, "PRIMARY KEY")
		}
		if col.AutoIncrement {
			flags = append(flags, "AUTO_INCREMENT")
		}
		if col.Unique && !col.PrimaryKey {
			flags = append(flags, "UNIQUE")
		}
		if col.NotNull && !col.PrimaryKey {
			flags = append(flags, "NOT NULL")
		}
		fmt.Fprintf(r.output, "  %s %s %s\n", col.Name, col.Type, strings.Join(flags, " "))
	}
}

// printSeparator prints a horizontal line separator
func (r *REPL) printSeparator(widths []int) {
	fmt.Fprint(r.output, "+")
	for _, w := range widths {
		fmt.Fprint(r.output, strings.Repeat("-", w+2))
		fmt.Fprint(r.output, "+")
	}
	fmt.Fprintln(r.output)
}

// printRow prints one aligned row
func (r *REPL) printRow(values []string, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range values {
		fmt.Fprintf(r.output, " %-*s |", widths[i], val)
	}
	fmt.Fprintln(r.output)
}

// handleDotCommand processes shell commands
func (r *REPL) handleDotCommand(cmd string) {
	parts := strings.Fields(cmd)
	switch parts[0] {
	case ".help":
		fmt.Fprintln(r.output, ".help            show this help")
		fmt.Fprintln(r.output, ".tables          list tables")
		fmt.Fprintln(r.output, ".schema <table>  describe a table")
		fmt.Fprintln(r.output, ".stats           session statistics")
		fmt.Fprintln(r.output, ".reset           clear the database")
		fmt.Fprintln(r.output, ".exit            leave the shell")
	case ".tables":
		for _, name := range r.session.TableNames() {
			fmt.Fprintln(r.output, name)
		}
	case ".schema":
		if len(parts) < 2 {
			fmt.Fprintln(r.errOutput, "usage: .schema <table>")
			return
		}
		r.displayResult(r.session.Execute("DESCRIBE " + parts[1]))
	case ".stats":
		st := r.session.Stats()
		fmt.Fprintf(r.output, "tables: %d  rows: %d  statements: %d  in transaction: %v\n",
			st.Tables, st.Rows, st.Statements, st.InTransaction)
		if st.MemoryBytes > 0 {
			fmt.Fprintf(r.output, "memory: %.1f MiB\n", float64(st.MemoryBytes)/(1<<20))
		}
	case ".reset":
		r.session.Reset()
		fmt.Fprintln(r.output, "database cleared")
	case ".exit", ".quit":
		r.exitRequested = true
	default:
		fmt.Fprintf(r.errOutput, "unknown command: %s (try .help)\n", parts[0])
	}
}
