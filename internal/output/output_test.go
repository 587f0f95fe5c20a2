package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type record struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, Format("csv")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSON_SingleRecord(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(record{Name: "quote", Value: 42}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var got record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a bare object: %v\n%s", err, buf.String())
	}
	if got.Name != "quote" || got.Value != 42 {
		t.Errorf("got %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Errorf("expected indented output, got %q", buf.String())
	}
}

func TestJSON_MultipleRecordsBecomeArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON, WithCompact())
	_ = w.Write(record{Name: "a", Value: 1})
	_ = w.Write(record{Name: "b", Value: 2})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var got []record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not an array: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Errorf("got %+v", got)
	}
	if lines := strings.Count(strings.TrimSpace(buf.String()), "\n"); lines != 0 {
		t.Errorf("compact output spans %d extra lines", lines)
	}
}

func TestJSON_EmptyWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestJSON_CloseIsIdempotent(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON, WithCompact())
	_ = w.Write(record{Name: "x", Value: 1})
	_ = w.Flush()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), `"x"`); n != 1 {
		t.Errorf("record emitted %d times", n)
	}
}

func TestJSONL_OneDocumentPerLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSONL)
	if err := w.WriteAll([]any{
		record{Name: "a", Value: 1},
		record{Name: "b", Value: 2},
		record{Name: "c", Value: 3},
	}); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var got record
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Errorf("line %d invalid: %v", i, err)
		}
	}
}

func TestYAML_SingleRecord(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	if err := w.Write(record{Name: "quote", Value: 7}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var got record
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "quote" || got.Value != 7 {
		t.Errorf("got %+v", got)
	}
}

func TestYAML_MultipleRecordsAreSeparateDocuments(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	_ = w.Write(record{Name: "a", Value: 1})
	_ = w.Write(record{Name: "b", Value: 2})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "---") {
		t.Fatalf("expected document separator, got %q", buf.String())
	}

	dec := yaml.NewDecoder(strings.NewReader(buf.String()))
	var count int
	for {
		var got record
		if err := dec.Decode(&got); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("decoded %d documents, want 2", count)
	}
}

func TestYAML_EmptyCloseIsSafe(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
