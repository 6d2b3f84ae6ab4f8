// Package security screens source files before the model parses them.
// Large files are checked from their header only, so a binary or generated
// blob with a source extension is rejected without being read in full.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultThresholdKB is the size above which files are screened.
const DefaultThresholdKB = 256

// ErrBinaryContent is returned for files whose header is mostly control bytes.
var ErrBinaryContent = errors.New("file appears to be binary (source extension on binary file)")

// FileValidator screens files larger than ValidationThreshold.
type FileValidator struct {
	ValidationThreshold int64
	HeaderSize          int64
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	if thresholdKB <= 0 {
		thresholdKB = DefaultThresholdKB
	}
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024,
	}
}

// ValidateLargeFile reads the header of path and checks that it holds
// source text for its extension. size is the file size the caller already
// has from stat; files at or below the threshold pass unread.
func (fv *FileValidator) ValidateLargeFile(path string, size int64) error {
	if size <= fv.ValidationThreshold {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, fv.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	return fv.ValidateHeader(path, header[:n])
}

// ValidateHeader checks an already-read header.
func (fv *FileValidator) ValidateHeader(path string, header []byte) error {
	if isBinaryData(header) {
		return ErrBinaryContent
	}
	patterns, ok := sourcePatterns[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil
	}
	for _, p := range patterns.markers {
		if bytes.Contains(header, p) {
			return nil
		}
	}
	return fmt.Errorf("no %s patterns found", patterns.language)
}

// isBinaryData reports whether more than 30% of data is control bytes
// other than tab, LF, VT, FF and CR.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}

type markerSet struct {
	language string
	markers  [][]byte
}

func markers(language string, words ...string) markerSet {
	out := markerSet{language: language}
	for _, w := range words {
		out.markers = append(out.markers, []byte(w))
	}
	return out
}

var (
	javaMarkers = markers("Java", "class ", "interface ", "enum ", "package ", "import ",
		"public ", "private ", "protected ", "@interface")
	kotlinMarkers = markers("Kotlin", "fun ", "class ", "object ", "package ", "import ", "val ", "var ")
	pythonMarkers = markers("Python", "def ", "import ", "from ", "class ", "if __name__",
		"#!/usr/bin/", "self.", "None", "True", "False")
	jsMarkers = markers("JavaScript", "function", "const ", "let ", "var ", "=>", "import ",
		"export ", "class ", "require(", "module.exports")
	tsMarkers = markers("TypeScript", append([]string{"interface ", "type ", "enum ", "namespace ",
		"declare ", ": string", ": number", ": boolean", "<T>"}, words(jsMarkers)...)...)
)

func words(m markerSet) []string {
	out := make([]string, len(m.markers))
	for i, b := range m.markers {
		out[i] = string(b)
	}
	return out
}

var sourcePatterns = map[string]markerSet{
	".java": javaMarkers,
	".kt":   kotlinMarkers,
	".kts":  kotlinMarkers,
	".py":   pythonMarkers,
	".pyi":  pythonMarkers,
	".js":   jsMarkers,
	".jsx":  jsMarkers,
	".mjs":  jsMarkers,
	".cjs":  jsMarkers,
	".ts":   tsMarkers,
	".mts":  tsMarkers,
	".cts":  tsMarkers,
	".tsx":  tsMarkers,
}
