// Package pathutil converts between the absolute paths the source model
// keeps and the root-relative paths users type and read, and parses the
// FILE:OFFSET and FILE:LINE:COL locations the command line accepts.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/Main.java", "/home/user/project") → "src/Main.java"
//   - ToRelative("/other/location/app.py", "/home/user/project") → "/other/location/app.py" (outside root)
//   - ToRelative("src/index.ts", "/home/user/project") → "src/index.ts" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Different volumes on Windows
		return absPath
	}
	// Outside the root the absolute path is clearer
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// Location is a position inside a file. Either Offset is set, or Line and
// Column are (both 1-based) and Offset is -1.
type Location struct {
	File   string
	Offset int
	Line   int
	Column int
}

// HasLineColumn reports whether the location was given as LINE:COL.
func (l Location) HasLineColumn() bool {
	return l.Offset < 0 && l.Line > 0
}

func (l Location) String() string {
	if l.HasLineColumn() {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Offset)
}

// ParseLocation parses FILE:OFFSET or FILE:LINE:COL. The file part may
// itself contain colons (Windows drive letters); only trailing numeric
// fields are taken as the position. ok is false when s names no position.
func ParseLocation(s string) (loc Location, ok bool, err error) {
	var nums []int
	rest := s
	for len(nums) < 2 {
		i := strings.LastIndexByte(rest, ':')
		if i <= 0 {
			break
		}
		n, convErr := strconv.Atoi(rest[i+1:])
		if convErr != nil {
			break
		}
		nums = append(nums, n)
		rest = rest[:i]
	}

	switch len(nums) {
	case 0:
		return Location{}, false, nil
	case 1:
		if nums[0] < 0 {
			return Location{}, true, fmt.Errorf("negative offset in %q", s)
		}
		return Location{File: rest, Offset: nums[0]}, true, nil
	default:
		line, col := nums[1], nums[0]
		if line < 1 || col < 1 {
			return Location{}, true, fmt.Errorf("line and column are 1-based in %q", s)
		}
		return Location{File: rest, Offset: -1, Line: line, Column: col}, true, nil
	}
}
