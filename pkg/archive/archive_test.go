package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestBuildSkipsEmptyAndDeduplicatesNames(t *testing.T) {
	data := Build([]Entry{
		{Filename: "a.png", Data: []byte("one")},
		{Filename: "a.png", Data: []byte("two")},
		{Filename: "empty.png"},
	})
	if len(data) == 0 {
		t.Fatal("empty archive")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["a.png"] || !names["a-2.png"] {
		t.Fatalf("names = %v", names)
	}
}
