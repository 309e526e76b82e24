package history

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nadzzz/polyglot/internal/session"
)

type execCall struct {
	sql  string
	args []any
}

type mockDB struct {
	calls []execCall
	tag   pgconn.CommandTag
	err   error
}

func (m *mockDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.calls = append(m.calls, execCall{sql: sql, args: args})
	return m.tag, m.err
}

var rec = session.Record{
	Time:       time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC),
	Source:     "Bonjour, comment vas-tu?",
	Translated: "Hello, how are you?",
	SourceCode: "fra_Latn",
	TargetCode: "eng_Latn",
}

func TestRecord(t *testing.T) {
	db := &mockDB{tag: pgconn.NewCommandTag("INSERT 0 1")}
	sink := NewPostgresSink(db)

	if err := sink.Record(context.Background(), "sess-1", rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(db.calls) != 1 {
		t.Fatalf("calls = %d", len(db.calls))
	}
	call := db.calls[0]
	if !strings.Contains(call.sql, "INSERT INTO translations") {
		t.Errorf("sql = %q", call.sql)
	}
	want := []any{"sess-1", rec.Time, rec.Source, rec.Translated, "fra_Latn", "eng_Latn"}
	if len(call.args) != len(want) {
		t.Fatalf("args = %v", call.args)
	}
	for i := range want {
		if call.args[i] != want[i] {
			t.Errorf("arg %d = %v, want %v", i, call.args[i], want[i])
		}
	}
}

func TestRecord_Errors(t *testing.T) {
	boom := errors.New("connection reset")
	if err := NewPostgresSink(&mockDB{err: boom}).Record(context.Background(), "s", rec); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	err := NewPostgresSink(&mockDB{tag: pgconn.NewCommandTag("INSERT 0 0")}).Record(context.Background(), "s", rec)
	if err == nil || !strings.Contains(err.Error(), "0 rows") {
		t.Errorf("err = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := &mockDB{}
	if err := NewPostgresSink(db).Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if db.calls[0].sql != Schema {
		t.Error("Migrate did not execute Schema")
	}
}

func TestPostgresSink_Live(t *testing.T) {
	dsn := os.Getenv("POLYGLOT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POLYGLOT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	sink := NewPostgresSink(pool)
	if err := sink.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	id := "test-" + time.Now().Format("150405.000000")
	if err := sink.Record(ctx, id, rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	t.Cleanup(func() { pool.Exec(ctx, "DELETE FROM translations WHERE session_id = $1", id) })

	var got string
	if err := pool.QueryRow(ctx, "SELECT translation FROM translations WHERE session_id = $1", id).Scan(&got); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != rec.Translated {
		t.Errorf("translation = %q", got)
	}
}
