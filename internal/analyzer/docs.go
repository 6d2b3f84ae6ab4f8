package analyzer

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
)

// DocParam is one documented parameter.
type DocParam struct {
	Name        string
	Description string
}

// DocInfo is documentation text split into its free-text description and
// the recognized tags.
type DocInfo struct {
	// Text is the cleaned comment with markers removed, tags included.
	Text               string
	Description        string
	Since              string
	See                []string
	Deprecated         bool
	DeprecationMessage string
	Params             []DocParam
	Throws             []string
	Returns            string
}

var (
	javadocTag   = regexp.MustCompile(`^@(\w+)\s*(.*)$`)
	sphinxField  = regexp.MustCompile(`^:(param|parameter|arg|argument|key|keyword|raises|raise|except|exception|returns|return)\s*([^:]*):\s*(.*)$`)
	rstDirective = regexp.MustCompile(`^\.\.\s+(deprecated|versionadded|seealso)::\s*(.*)$`)
	googleHeader = regexp.MustCompile(`^(Args|Arguments|Parameters|Params|Raises|Returns|Return|Yields|See Also|Deprecated):\s*$`)
	googleEntry  = regexp.MustCompile(`^\*{0,2}([\w.]+)\s*(?:\(([^)]*)\))?\s*:\s*(.*)$`)
	jsdocType    = regexp.MustCompile(`^\{([^}]*)\}\s*`)
)

// documentation collects the doc comments of decl.
func documentation(m sourcemodel.Model, decl *Node) *DocInfo {
	comments := m.AttachedComments(decl)
	if len(comments) == 0 {
		return nil
	}
	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		if text := cleanComment(c.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return parseDoc(strings.Join(parts, "\n"))
}

// cleanComment removes comment or string delimiters and the leading
// asterisks of block comment lines.
func cleanComment(raw string) string {
	s := strings.TrimSpace(raw)
	var lines []string
	switch {
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimPrefix(strings.TrimPrefix(s, "/**"), "/*")
		s = strings.TrimSuffix(s, "*/")
		for _, line := range strings.Split(s, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimPrefix(line, "*")
			lines = append(lines, strings.TrimPrefix(line, " "))
		}
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, "#"):
		for _, line := range strings.Split(s, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimLeft(line, "/#!")
			lines = append(lines, strings.TrimPrefix(line, " "))
		}
	default:
		lines = dedent(strings.Split(trimQuotes(s), "\n"))
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n ")
}

// dedent removes the common indentation of docstring lines after the
// first.
func dedent(lines []string) []string {
	indent := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	out[0] = strings.TrimSpace(lines[0])
	for i, line := range lines[1:] {
		if len(line) >= indent && indent > 0 {
			line = line[indent:]
		}
		out[i+1] = strings.TrimRight(line, " \t")
	}
	return out
}

// docSection is the tag a continuation line belongs to.
type docSection int

const (
	sectionDescription docSection = iota
	sectionParam
	sectionThrows
	sectionReturns
	sectionSince
	sectionSee
	sectionDeprecated
	sectionOther
)

// parseDoc splits cleaned documentation into description and tags.
// Javadoc/JSDoc @tags, Sphinx fields and Google style sections are
// recognized.
func parseDoc(text string) *DocInfo {
	doc := &DocInfo{Text: text}
	var desc []string
	section := sectionDescription
	google := sectionDescription

	appendTo := func(s docSection, line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		join := func(dst *string) {
			if *dst == "" {
				*dst = line
			} else {
				*dst += " " + line
			}
		}
		switch s {
		case sectionParam:
			if n := len(doc.Params); n > 0 {
				join(&doc.Params[n-1].Description)
			}
		case sectionReturns:
			join(&doc.Returns)
		case sectionDeprecated:
			join(&doc.DeprecationMessage)
		case sectionSee:
			doc.See = append(doc.See, line)
		}
	}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if section == sectionDescription {
				desc = append(desc, "")
			}
			google = sectionDescription
			continue
		}
		if i+1 < len(lines) && isUnderline(lines[i+1]) {
			if s, ok := sectionFor(line); ok {
				google, section = s, s
				continue
			}
		}
		if isUnderline(line) && google != sectionDescription {
			continue
		}

		if m := javadocTag.FindStringSubmatch(line); m != nil {
			section = doc.addTag(m[1], m[2])
			google = sectionDescription
			continue
		}
		if m := sphinxField.FindStringSubmatch(line); m != nil {
			section = doc.addSphinx(m[1], strings.TrimSpace(m[2]), m[3])
			google = sectionDescription
			continue
		}
		if m := rstDirective.FindStringSubmatch(line); m != nil {
			section = doc.addDirective(m[1], m[2])
			google = sectionDescription
			continue
		}
		if m := googleHeader.FindStringSubmatch(line); m != nil {
			google, _ = sectionFor(m[1])
			section = google
			if google == sectionDeprecated {
				doc.Deprecated = true
			}
			continue
		}
		if google != sectionDescription {
			if m := googleEntry.FindStringSubmatch(line); m != nil && google != sectionReturns && google != sectionDeprecated {
				switch google {
				case sectionParam:
					doc.Params = append(doc.Params, DocParam{Name: m[1], Description: strings.TrimSpace(m[3])})
				case sectionThrows:
					doc.Throws = appendUnique(doc.Throws, m[1])
				case sectionSee:
					doc.See = append(doc.See, m[1])
				}
				continue
			}
			appendTo(google, line)
			continue
		}
		if section == sectionDescription {
			desc = append(desc, line)
			continue
		}
		appendTo(section, line)
	}
	doc.Description = joinParagraphs(desc)
	return doc
}

func sectionFor(header string) (docSection, bool) {
	switch strings.TrimSuffix(header, ":") {
	case "Args", "Arguments", "Parameters", "Params":
		return sectionParam, true
	case "Raises":
		return sectionThrows, true
	case "Returns", "Return", "Yields":
		return sectionReturns, true
	case "See Also":
		return sectionSee, true
	case "Deprecated":
		return sectionDeprecated, true
	}
	return sectionDescription, false
}

func isUnderline(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 3 && strings.Trim(line, "-=") == ""
}

func (doc *DocInfo) addTag(tag, rest string) docSection {
	rest = strings.TrimSpace(rest)
	switch tag {
	case "since":
		doc.Since = rest
		return sectionSince
	case "see":
		if rest != "" {
			doc.See = append(doc.See, rest)
		}
		return sectionOther
	case "deprecated":
		doc.Deprecated = true
		doc.DeprecationMessage = rest
		return sectionDeprecated
	case "param", "arg", "argument":
		rest = jsdocType.ReplaceAllString(rest, "")
		name, desc, _ := strings.Cut(rest, " ")
		name = strings.Trim(name, "[]")
		if name != "" {
			doc.Params = append(doc.Params, DocParam{Name: name, Description: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(desc), "-"))})
		}
		return sectionParam
	case "throws", "exception", "raises":
		name := rest
		if m := jsdocType.FindStringSubmatch(rest); m != nil {
			name = m[1]
		} else {
			name, _, _ = strings.Cut(rest, " ")
		}
		if name != "" {
			doc.Throws = appendUnique(doc.Throws, name)
		}
		return sectionOther
	case "return", "returns":
		doc.Returns = strings.TrimSpace(jsdocType.ReplaceAllString(rest, ""))
		return sectionReturns
	}
	return sectionOther
}

func (doc *DocInfo) addSphinx(field, arg, rest string) docSection {
	switch field {
	case "raises", "raise", "except", "exception":
		if arg != "" {
			doc.Throws = appendUnique(doc.Throws, arg)
		}
		return sectionOther
	case "returns", "return":
		doc.Returns = strings.TrimSpace(rest)
		return sectionReturns
	}
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return sectionOther
	}
	doc.Params = append(doc.Params, DocParam{Name: fields[len(fields)-1], Description: strings.TrimSpace(rest)})
	return sectionParam
}

func (doc *DocInfo) addDirective(name, rest string) docSection {
	rest = strings.TrimSpace(rest)
	switch name {
	case "deprecated":
		doc.Deprecated = true
		version, msg, _ := strings.Cut(rest, " ")
		if msg == "" && !looksLikeVersion(version) {
			msg = rest
		}
		doc.DeprecationMessage = strings.TrimSpace(msg)
		return sectionDeprecated
	case "versionadded":
		version, _, _ := strings.Cut(rest, " ")
		doc.Since = version
		return sectionOther
	case "seealso":
		if rest != "" {
			doc.See = append(doc.See, rest)
		}
		return sectionSee
	}
	return sectionOther
}

func looksLikeVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// joinParagraphs joins description lines, keeping single blank lines
// between paragraphs.
func joinParagraphs(lines []string) string {
	var b strings.Builder
	blank := false
	for _, line := range lines {
		if line == "" {
			blank = b.Len() > 0
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		blank = false
		b.WriteString(line)
	}
	return b.String()
}
