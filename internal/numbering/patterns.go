package numbering

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// PatternConfig is the optional YAML file of house-style heading shapes
// accumulated from past papers. Prefix words extend the built-in set;
// header patterns are tried before the built-in matcher and must capture
// the dotted numeric run in their first group.
type PatternConfig struct {
	Version     int            `yaml:"version"`
	PrefixWords []string       `yaml:"prefix_words"`
	Headers     []HeaderConfig `yaml:"headers"`
}

// HeaderConfig is one custom heading pattern.
type HeaderConfig struct {
	Key   string `yaml:"key"`
	Regex string `yaml:"regex"`
}

type headerPattern struct {
	key string
	re  *regexp.Regexp
}

func (hp headerPattern) classify(s string) (Token, bool) {
	m := hp.re.FindStringSubmatch(s)
	if len(m) < 2 {
		return Continuation, false
	}
	path, err := ParsePath(m[1])
	if err != nil {
		return Continuation, false
	}
	residual := s[len(m[0]):]
	if residual != "" && IsBareMarks(residual) {
		return Continuation, true
	}
	return Token{Heading: true, Path: path, Residual: residual}, true
}

// LoadPatterns reads a pattern config file and returns a Matcher that
// recognizes its shapes on top of the built-ins. A missing path yields
// the default matcher; a malformed file is an error so a bad deploy is
// noticed rather than silently ignored.
func LoadPatterns(path string) (*Matcher, error) {
	m := NewMatcher()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	cfg := PatternConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	return m.WithPatterns(cfg)
}

// WithPatterns extends the matcher with a parsed config.
func (m *Matcher) WithPatterns(cfg PatternConfig) (*Matcher, error) {
	out := &Matcher{
		prefixes: append([]string{}, m.prefixes...),
		extra:    append([]headerPattern{}, m.extra...),
	}
	for _, w := range cfg.PrefixWords {
		if w != "" {
			out.prefixes = append(out.prefixes, strings.ToLower(w))
		}
	}
	for i, h := range cfg.Headers {
		if h.Regex == "" {
			continue
		}
		re, err := regexp.Compile(h.Regex)
		if err != nil {
			return nil, fmt.Errorf("header pattern %d (%s): %w", i, h.Key, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("header pattern %d (%s): needs a capture group for the numeric run", i, h.Key)
		}
		out.extra = append(out.extra, headerPattern{key: h.Key, re: re})
	}
	return out, nil
}
