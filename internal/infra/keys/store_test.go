package keys

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"genconsole/internal/domain"
)

type stubExecutor struct {
	keys     []string
	execTag  pgconn.CommandTag
	execErr  error
	lastArgs []any
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.lastArgs = args
	return s.execTag, s.execErr
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return nil
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return &stubRows{keys: s.keys, idx: -1}, nil
}

type stubRows struct {
	keys []string
	idx  int
}

func (r *stubRows) Next() bool {
	r.idx++
	return r.idx < len(r.keys)
}

func (r *stubRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.keys[r.idx]
	return nil
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func TestListPreservesOrder(t *testing.T) {
	store := NewStore(&stubExecutor{keys: []string{" k1 ", "k2"}})
	got, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0] != "k1" || got[1] != "k2" {
		t.Fatalf("List = %v", got)
	}
}

func TestAddRejectsEmpty(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.Add(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	exec := &stubExecutor{execTag: pgconn.NewCommandTag("INSERT 0 0")}
	store := NewStore(exec)
	err := store.Add(context.Background(), "secret")
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestAddTrimsValue(t *testing.T) {
	exec := &stubExecutor{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	store := NewStore(exec)
	if err := store.Add(context.Background(), " secret "); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if len(exec.lastArgs) != 1 || exec.lastArgs[0] != "secret" {
		t.Fatalf("args = %v, want trimmed key", exec.lastArgs)
	}
}
