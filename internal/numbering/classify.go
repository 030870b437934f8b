package numbering

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Token is the result of classifying a block's leading text: either a
// recognized numbered heading, or a continuation of the previous one.
type Token struct {
	Heading  bool
	Path     Path
	Residual string
}

// Continuation is the zero token: not a heading.
var Continuation = Token{}

// defaultPrefixes are the recognized words that may precede a numeric
// run, e.g. "Question 1.1" or "Q 2.3".
var defaultPrefixes = []string{"question", "q", "item"}

var (
	// numericRunRE matches a leading run of digit groups separated by
	// single dots. The trailing-context check happens separately so
	// that "1..2" and "1.1." fail open to Continuation.
	numericRunRE = regexp.MustCompile(`^(\d+(?:\.\d+)*)`)

	// inlineMarksRE finds a numeric value immediately preceding the word
	// mark/marks, e.g. "(10 marks)", "- 5 marks", "Total 125 Marks".
	// Spelled-out numbers ("ten marks") deliberately never match.
	inlineMarksRE = regexp.MustCompile(`(?i)(\d+)\s*marks?\b`)

	// bareMarksRE matches a line that is nothing but a mark expression,
	// with optional surrounding punctuation.
	bareMarksRE = regexp.MustCompile(`(?i)^[\s(\[\-–]*\d+\s*marks?[\s)\].]*$`)
)

// FindInlineMarks returns the first inline mark value in text, scanning
// left to right.
func FindInlineMarks(text string) (int, bool) {
	m := inlineMarksRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsBareMarks reports whether text consists solely of a mark expression
// such as "(10 marks)". Such lines belong to the preceding node and
// must never open a node of their own.
func IsBareMarks(text string) bool {
	return bareMarksRE.MatchString(text)
}

// Matcher classifies block text against the recognized heading shapes.
// The zero value is not usable; construct with NewMatcher.
type Matcher struct {
	prefixes []string
	extra    []headerPattern
}

// NewMatcher returns a Matcher with the built-in prefix words.
func NewMatcher() *Matcher {
	return &Matcher{prefixes: defaultPrefixes}
}

// Classify inspects the leading text of a block and decides whether it
// opens a new numbered heading. Anything unparsable fails open to
// Continuation: aggregation under the previous heading is always safer
// than inventing a node.
func (m *Matcher) Classify(text string) Token {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	if s == "" {
		return Continuation
	}

	// A line that is only a mark expression, numbered or not, belongs
	// to the previous node.
	if IsBareMarks(s) {
		return Continuation
	}

	for _, hp := range m.extra {
		if tok, ok := hp.classify(s); ok {
			return tok
		}
	}

	// Opening bracket before the number is tolerated: "(1.1 - Text".
	s = strings.TrimLeft(s, "([")
	s = m.stripPrefixWord(s)

	run := numericRunRE.FindString(s)
	if run == "" {
		return Continuation
	}
	rest := s[len(run):]
	// A dot immediately after the run means a trailing or doubled
	// separator ("1.", "1..2"); both fail open.
	if strings.HasPrefix(rest, ".") {
		return Continuation
	}
	// The run must be delimited from any residual text's leading
	// punctuation; ")", ":" and "-" after the number are discarded.
	residual := strings.TrimLeft(rest, ") :- \t")
	residual = strings.TrimSpace(residual)

	path, err := ParsePath(run)
	if err != nil {
		return Continuation
	}

	// A heading whose entire residual is a mark expression carries no
	// descriptive words; it is a marks annotation for the previous
	// node, not a new question.
	if residual != "" && IsBareMarks(residual) {
		return Continuation
	}

	return Token{Heading: true, Path: path, Residual: residual}
}

// stripPrefixWord removes a recognized case-insensitive prefix word
// followed by whitespace, e.g. "Question 1.1" -> "1.1".
func (m *Matcher) stripPrefixWord(s string) string {
	lower := strings.ToLower(s)
	for _, word := range m.prefixes {
		if !strings.HasPrefix(lower, word) {
			continue
		}
		rest := s[len(word):]
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		if trimmed == rest {
			// No whitespace after the word; not a prefix.
			continue
		}
		return trimmed
	}
	return s
}
