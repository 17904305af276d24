package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Entry is one file to be packaged for download.
type Entry struct {
	Filename string
	MIME     string
	Data     []byte
}

// Build assembles a ZIP archive from the given entries. Entries without data
// are skipped; duplicate filenames are suffixed to keep every entry readable
// after extraction.
func Build(entries []Entry) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	used := make(map[string]int, len(entries))
	for _, entry := range entries {
		if len(entry.Data) == 0 {
			continue
		}
		name := uniqueName(used, entry.Filename)
		w, err := zw.Create(name)
		if err != nil {
			continue
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func uniqueName(used map[string]int, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "artifact"
	}
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := ""
	base := name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base, ext = name[:idx], name[idx:]
	}
	return fmt.Sprintf("%s-%d%s", base, n+1, ext)
}
