package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const historySize = 5

type historyEntry struct {
	Question string
	SQL      string
	Rows     int
}

// Session is the interactive ask loop: read a question, generate SQL, let
// the user review (run, edit, or skip), render results, keep a short
// history.
type Session struct {
	gen     *Generator
	pool    *pgxpool.Pool
	in      *bufio.Scanner
	out     io.Writer
	history []historyEntry
}

func NewSession(gen *Generator, pool *pgxpool.Pool, in io.Reader, out io.Writer) *Session {
	return &Session{
		gen:  gen,
		pool: pool,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run loops until EOF or an exit command. Generation or execution errors
// are printed and the loop continues; only I/O failure ends the session
// with an error.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Ask questions about the warehouse in plain English.")
	fmt.Fprintln(s.out, "Commands: history, exit")
	for {
		fmt.Fprint(s.out, "\nquestion> ")
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "history":
			s.printHistory()
			continue
		}

		sql, err := s.gen.GenerateSQL(ctx, line)
		if err != nil {
			fmt.Fprintf(s.out, "error generating SQL: %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "\nGenerated SQL:\n%s\n", sql)

		sql, run := s.review(sql)
		if !run {
			continue
		}

		res, err := RunQuery(ctx, s.pool, sql)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "\n%d rows\n", len(res.Rows))
		if err := res.Render(s.out); err != nil {
			return err
		}
		s.remember(historyEntry{Question: line, SQL: sql, Rows: len(res.Rows)})
	}
}

// review lets the user run the generated query as-is, replace it, or skip.
func (s *Session) review(sql string) (string, bool) {
	for {
		fmt.Fprint(s.out, "[r]un, [e]dit, [s]kip? ")
		choice, ok := s.readLine()
		if !ok {
			return "", false
		}
		switch strings.ToLower(choice) {
		case "r", "run", "":
			return sql, true
		case "e", "edit":
			fmt.Fprint(s.out, "sql> ")
			edited, ok := s.readLine()
			if !ok {
				return "", false
			}
			if strings.TrimSpace(edited) != "" {
				sql = edited
			}
			return sql, true
		case "s", "skip":
			return "", false
		}
	}
}

func (s *Session) remember(e historyEntry) {
	s.history = append(s.history, e)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

func (s *Session) printHistory() {
	if len(s.history) == 0 {
		fmt.Fprintln(s.out, "no queries yet")
		return
	}
	for i, e := range s.history {
		fmt.Fprintf(s.out, "%d. %s\n   %s\n   (%d rows)\n", i+1, e.Question, e.SQL, e.Rows)
	}
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}
