package phpdoc

import (
	"fmt"
	"strings"

	"github.com/maypok86/otter"
)

// DefaultCacheSize is the number of parsed blocks a Parser keeps by default.
const DefaultCacheSize = 4096

// Parser turns raw doc comment text into a DocBlock.
//
// A strict parser rejects the whole block when a tag name is malformed.
// A lenient parser keeps such tags as InvalidTag and carries on.
// Parsed blocks are cached by text; a Parser is safe for concurrent use.
type Parser struct {
	strict bool
	cache  *otter.Cache[string, *DocBlock]
}

// Option configures a Parser.
type Option func(*parserOptions)

type parserOptions struct {
	strict    bool
	cacheSize int
}

// WithStrict makes malformed tag names a parse error.
func WithStrict() Option {
	return func(o *parserOptions) { o.strict = true }
}

// WithCacheSize sets the block cache capacity. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(o *parserOptions) { o.cacheSize = n }
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	o := parserOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Parser{strict: o.strict}
	if o.cacheSize > 0 {
		cache, err := otter.MustBuilder[string, *DocBlock](o.cacheSize).Build()
		if err == nil {
			p.cache = &cache
		}
	}
	return p
}

// Parse parses a doc comment including its "/**" and "*/" delimiters.
func (p *Parser) Parse(text string) (*DocBlock, error) {
	if p.cache != nil {
		if block, ok := p.cache.Get(text); ok {
			return block, nil
		}
	}

	block, err := p.parse(text)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(text, block)
	}
	return block, nil
}

func (p *Parser) parse(text string) (*DocBlock, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/**") {
		return nil, &ParseError{Reason: "doc comment must start with /**"}
	}
	if len(trimmed) < len("/***/") || !strings.HasSuffix(trimmed, "*/") {
		return nil, &ParseError{Reason: "unterminated doc comment"}
	}

	inner := trimmed[3 : len(trimmed)-2]
	lines := strings.Split(inner, "\n")

	block := &DocBlock{}
	var prose []string
	var raws []rawTag

	for i, line := range lines {
		line = stripDecoration(line)
		if strings.HasPrefix(line, "@") {
			name, rest, ok := splitTagName(line[1:])
			if !ok && p.strict {
				return nil, &ParseError{Line: i + 1, Reason: fmt.Sprintf("malformed tag %q", line)}
			}
			raws = append(raws, rawTag{name: name, body: rest, valid: ok})
			continue
		}
		if len(raws) > 0 {
			current := &raws[len(raws)-1]
			if line = strings.TrimSpace(line); line != "" {
				if current.body != "" {
					current.body += "\n"
				}
				current.body += line
			}
			continue
		}
		prose = append(prose, line)
	}

	block.Summary, block.Description = splitSummary(prose)
	for _, raw := range raws {
		block.Tags = append(block.Tags, raw.build())
	}
	return block, nil
}

type rawTag struct {
	name  string
	body  string
	valid bool
}

func (r rawTag) build() Tag {
	if !r.valid {
		return &InvalidTag{name: r.name, body: r.body, Err: fmt.Errorf("malformed tag name %q", r.name)}
	}
	if r.name == "return" {
		token, desc := scanTypeToken(r.body)
		t, err := ParseType(token)
		if err != nil {
			return &InvalidTag{name: r.name, body: r.body, Err: err}
		}
		return &ReturnTag{body: r.body, Type: t, Description: desc}
	}
	return &GenericTag{name: r.name, body: r.body}
}

// stripDecoration removes the leading " * " of a comment line.
func stripDecoration(line string) string {
	line = strings.TrimRight(line, " \t\r")
	line = strings.TrimLeft(line, " \t")
	if strings.HasPrefix(line, "*") {
		line = line[1:]
		if strings.HasPrefix(line, " ") {
			line = line[1:]
		}
	}
	return line
}

// splitTagName splits "name rest" at the end of the tag name.
// ok is false when the name is empty or followed by an illegal character.
func splitTagName(s string) (name, rest string, ok bool) {
	i := 0
	for i < len(s) && isTagNameChar(s[i]) {
		i++
	}
	name = s[:i]
	if name == "" {
		return "", strings.TrimSpace(s), false
	}
	if i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '(' {
		return name, strings.TrimSpace(s[i:]), false
	}
	return name, strings.TrimSpace(s[i:]), true
}

func isTagNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '\\' || c == ':'
}

// splitSummary takes the first paragraph as the summary.
func splitSummary(lines []string) (string, string) {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			summary := strings.Join(lines[:i], " ")
			desc := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return strings.TrimSpace(summary), desc
		}
	}
	return strings.TrimSpace(strings.Join(lines, " ")), ""
}
