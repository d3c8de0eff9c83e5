package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseQueryContent_SingleQuery(t *testing.T) {
	content := `-- name: GetUserByID :one
SELECT id, email, name FROM users WHERE id = @user_id;`

	queries, err := parseQueryContent(content, "test.sql")
	if err != nil {
		t.Fatalf("parseQueryContent() error = %v", err)
	}

	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}

	q := queries[0]
	if q.Name != "GetUserByID" {
		t.Errorf("query name = %q, want %q", q.Name, "GetUserByID")
	}
	if q.Kind != KindOne {
		t.Errorf("kind = %q, want %q", q.Kind, KindOne)
	}
	if q.SQL != "SELECT id, email, name FROM users WHERE id = @user_id;" {
		t.Errorf("SQL = %q", q.SQL)
	}
	if q.LineNumber != 1 {
		t.Errorf("line number = %d, want 1", q.LineNumber)
	}
}

func TestParseQueryContent_MultipleQueries(t *testing.T) {
	content := `-- name: GetUserByID :one
SELECT * FROM users WHERE id = @user_id;

-- name: ListUsers :many
SELECT * FROM users ORDER BY created_at DESC;

-- name: CreateUser :exec
INSERT INTO users (email, name) VALUES (@email, @name);

-- name: DeleteUser :execrows
DELETE FROM users WHERE id = @user_id;`

	queries, err := parseQueryContent(content, "test.sql")
	if err != nil {
		t.Fatalf("parseQueryContent() error = %v", err)
	}

	if len(queries) != 4 {
		t.Fatalf("expected 4 queries, got %d", len(queries))
	}

	expected := []struct {
		name string
		kind Kind
	}{
		{"GetUserByID", KindOne},
		{"ListUsers", KindMany},
		{"CreateUser", KindExec},
		{"DeleteUser", KindExecRows},
	}

	for i, exp := range expected {
		if queries[i].Name != exp.name {
			t.Errorf("query %d name = %q, want %q", i, queries[i].Name, exp.name)
		}
		if queries[i].Kind != exp.kind {
			t.Errorf("query %d kind = %q, want %q", i, queries[i].Kind, exp.kind)
		}
	}
}

func TestParseQueryContent_DocComment(t *testing.T) {
	content := `-- name: GetUser :one
-- GetUser fetches a single user row.
-- Deleted users are excluded.
SELECT * FROM users WHERE id = @id AND deleted_at IS NULL;`

	queries, err := parseQueryContent(content, "test.sql")
	if err != nil {
		t.Fatalf("parseQueryContent() error = %v", err)
	}

	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}

	want := "GetUser fetches a single user row.\nDeleted users are excluded."
	if queries[0].Comment != want {
		t.Errorf("comment = %q, want %q", queries[0].Comment, want)
	}
}

func TestParseQueryContent_CommentInsideBodyStaysInSQL(t *testing.T) {
	content := `-- name: ListUsers :many
SELECT *
-- only the active ones
FROM users WHERE active;`

	queries, err := parseQueryContent(content, "test.sql")
	if err != nil {
		t.Fatalf("parseQueryContent() error = %v", err)
	}

	q := queries[0]
	if q.Comment != "" {
		t.Errorf("comment = %q, want empty", q.Comment)
	}
	if q.SQL != "SELECT *\n-- only the active ones\nFROM users WHERE active;" {
		t.Errorf("SQL = %q", q.SQL)
	}
}

func TestParseQueryContent_KindOptional(t *testing.T) {
	content := `-- name: Cleanup
DELETE FROM sessions WHERE expires_at < now();`

	queries, err := parseQueryContent(content, "test.sql")
	if err != nil {
		t.Fatalf("parseQueryContent() error = %v", err)
	}

	if queries[0].Kind != "" {
		t.Errorf("kind = %q, want empty", queries[0].Kind)
	}
}

func TestParseQueryContent_UnknownKind(t *testing.T) {
	content := `-- name: GetUser :single
SELECT * FROM users;`

	_, err := parseQueryContent(content, "test.sql")
	if !errors.Is(err, ErrInvalidAnnotation) {
		t.Errorf("error = %v, want ErrInvalidAnnotation", err)
	}
}

func TestParseQueryContent_SQLBeforeAnnotation(t *testing.T) {
	content := `SELECT * FROM users;`

	_, err := parseQueryContent(content, "test.sql")
	if !errors.Is(err, ErrInvalidAnnotation) {
		t.Errorf("error = %v, want ErrInvalidAnnotation", err)
	}
}

func TestParseQueryContent_FileHeaderComment(t *testing.T) {
	content := `-- user queries

-- name: GetUser :one
SELECT * FROM users WHERE id = @id;`

	queries, err := parseQueryContent(content, "test.sql")
	if err != nil {
		t.Fatalf("parseQueryContent() error = %v", err)
	}
	if len(queries) != 1 {
		t.Errorf("expected 1 query, got %d", len(queries))
	}
}

func TestParseQueryFile(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "queries.sql")

	content := `-- name: GetUser :one
SELECT * FROM users WHERE id = @id;

-- name: ListUsers :many
SELECT * FROM users;`

	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	qf, err := ParseQueryFile(filePath)
	if err != nil {
		t.Fatalf("ParseQueryFile() error = %v", err)
	}

	if qf.Path != filePath {
		t.Errorf("path = %q, want %q", qf.Path, filePath)
	}
	if len(qf.Queries) != 2 {
		t.Errorf("query count = %d, want 2", len(qf.Queries))
	}
}

func TestParseQueryDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	files := []struct {
		name    string
		content string
	}{
		{"users.sql", "-- name: GetUser :one\nSELECT * FROM users WHERE id = @id;"},
		{"posts.sql", "-- name: GetPost :one\nSELECT * FROM posts WHERE id = @id;"},
		{"readme.md", "This is not a SQL file"},
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, f.name), []byte(f.content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", f.name, err)
		}
	}

	queryFiles, err := ParseQueryDirectory(tmpDir)
	if err != nil {
		t.Fatalf("ParseQueryDirectory() error = %v", err)
	}

	if len(queryFiles) != 2 {
		t.Errorf("query file count = %d, want 2 (should skip readme.md)", len(queryFiles))
	}
	if len(queryFiles) == 2 && queryFiles[0].Path > queryFiles[1].Path {
		t.Errorf("files not sorted: %q before %q", queryFiles[0].Path, queryFiles[1].Path)
	}
}

func TestParseQueries_AutoDetect(t *testing.T) {
	tmpDir := t.TempDir()

	singleFile := filepath.Join(tmpDir, "queries.sql")
	if err := os.WriteFile(singleFile, []byte("-- name: Test :one\nSELECT 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ParseQueries(singleFile)
	if err != nil {
		t.Fatalf("ParseQueries(file) error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d", len(files))
	}

	queryDir := filepath.Join(tmpDir, "queries")
	if err := os.MkdirAll(queryDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(queryDir, "test.sql"), []byte("-- name: Test2 :one\nSELECT 2;"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err = ParseQueries(queryDir)
	if err != nil {
		t.Fatalf("ParseQueries(dir) error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file from directory, got %d", len(files))
	}
}
