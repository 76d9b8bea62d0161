package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadScript(t *testing.T) {
	content := "CREATE TABLE T (Id INT)\r\nGO\r\nINSERT INTO T VALUES (1)"
	path := filepath.Join(t.TempDir(), "script.sql")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadScript(path, nil)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if got != content {
		t.Errorf("ReadScript() = %q; want %q", got, content)
	}

	got, err = ReadScript("-", strings.NewReader(content))
	if err != nil {
		t.Fatalf("ReadScript(stdin) failed: %v", err)
	}
	if got != content {
		t.Errorf("ReadScript(stdin) = %q; want %q", got, content)
	}
}

func TestReadScript_Errors(t *testing.T) {
	if _, err := ReadScript(filepath.Join(t.TempDir(), "missing.sql"), nil); err == nil {
		t.Error("ReadScript on a missing file succeeded")
	}
	if _, err := ReadScript("-", strings.NewReader("")); err == nil {
		t.Error("ReadScript on empty input succeeded")
	}
}

func TestReadScript_Includes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seed.sql"), []byte("INSERT INTO T VALUES (1)"), 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "main.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE T (Id INT)\r\nGO\r\n:r seed.sql\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadScript(path, nil)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	expected := "CREATE TABLE T (Id INT)\r\nGO\r\nINSERT INTO T VALUES (1)\r\n"
	if got != expected {
		t.Errorf("ReadScript() = %q; want %q", got, expected)
	}
}
