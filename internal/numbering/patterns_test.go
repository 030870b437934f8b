package numbering

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPatterns_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	content := `version: 1
prefix_words:
  - vraag
headers:
  - key: section
    regex: '^SECTION\s+(\d+(?:\.\d+)*)\s*'
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadPatterns(path)
	if err != nil {
		t.Fatalf("LoadPatterns: %v", err)
	}

	tok := m.Classify("Vraag 1.2 Beantwoord die vraag.")
	if !tok.Heading || tok.Path.String() != "1.2" {
		t.Fatalf("configured prefix word not recognized: %+v", tok)
	}
	tok = m.Classify("SECTION 3 Language")
	if !tok.Heading || tok.Path.String() != "3" {
		t.Fatalf("configured header not recognized: %+v", tok)
	}
}

func TestLoadPatterns_MissingFileYieldsDefaults(t *testing.T) {
	m, err := LoadPatterns(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if tok := m.Classify("1.1 Default shapes survive."); !tok.Heading {
		t.Error("default matcher not returned for missing file")
	}
}

func TestLoadPatterns_EmptyPathYieldsDefaults(t *testing.T) {
	m, err := LoadPatterns("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if tok := m.Classify("Question 2 Works."); !tok.Heading {
		t.Error("default matcher not returned for empty path")
	}
}

func TestLoadPatterns_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("headers: {not: [a, list"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPatterns(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
