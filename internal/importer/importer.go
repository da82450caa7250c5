package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// processedDir is the subdirectory imported files are moved to.
const processedDir = "processed"

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the files in dir whose names end in suffix, compared
// case-insensitively. Subdirectories, including processed/, are skipped.
// A missing dir yields no files.
func Scan(dir, suffix string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	suffix = strings.ToLower(suffix)
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// NewReader returns a CSV reader that tolerates a UTF-8 byte order mark,
// rows of varying width, and stray quotes, all common in bank exports.
func NewReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// OpenSheet opens a scanned file as a Sheet. The sheet is named by the
// file's path with a lower-cased base name so that account rules can
// match on it. The caller closes the returned file.
func OpenSheet(f FileInfo) (Sheet, io.Closer, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return Sheet{}, nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	name := filepath.Join(filepath.Dir(f.Path), strings.ToLower(f.Name))
	return Sheet{Name: filepath.ToSlash(name), Rows: NewReader(fh)}, fh, nil
}

// MarkProcessed moves a file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
