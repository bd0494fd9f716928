package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/value"
)

// SupportedMajor is the only header major version this parser accepts.
const SupportedMajor = "1"

var (
	headerRegex = regexp.MustCompile(`^#\s*BNDL\s+v(\d+)((?:\.\d+)*)$`)
	bom         = []byte("\ufeff")
)

// ctxCheckInterval is how many lines are parsed between context checks.
const ctxCheckInterval = 1024

// Parse reads a BNDL document from r.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*model.Document, error) {
	o := options{units: value.DefaultUnits()}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read BNDL input: %w", err)
	}
	src := norm.NFC.Bytes(bytes.TrimPrefix(raw, bom))

	p := &parser{units: o.units, b: model.NewBuilder()}
	doc, err := p.run(ctx, src)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Parse: document parsed",
		"version", doc.Version,
		"nodes", doc.Graph.NodeCount(),
		"groups", len(doc.Graph.Groups()),
		"overrides", doc.Overrides.Len(),
	)
	return doc, nil
}

// ParseString is Parse for in-memory text.
func ParseString(ctx context.Context, text string, opts ...Option) (*model.Document, error) {
	return Parse(ctx, strings.NewReader(text), opts...)
}

// setBlock is an open `Set … :` or `SetUser … :` header awaiting assignment lines.
type setBlock struct {
	node  model.Node
	layer model.Layer
}

type parser struct {
	units   *value.UnitTable
	b       *model.Builder
	version string
	line    int
	source  string
	block   *setBlock
}

func (p *parser) run(ctx context.Context, src []byte) (*model.Document, error) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		p.line++
		if p.line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		raw := strings.TrimSuffix(sc.Text(), "\r")
		if !utf8.ValidString(raw) {
			return nil, p.fail("", "invalid UTF-8")
		}
		p.source = strings.TrimSpace(raw)
		if err := p.parseLine(p.source); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, p.fail("", "failed to read line: %v", err)
	}

	if p.version == "" {
		p.line, p.source = 1, ""
		return nil, p.fail("# BNDL v1", "missing header")
	}
	if name, line, open := p.b.OpenGroup(); open {
		p.line, p.source = line, ""
		return nil, p.fail("END GROUP NAMED "+name, "group %q is never closed", name)
	}
	return p.b.Document(p.version)
}

func (p *parser) parseLine(text string) error {
	if text == "" {
		return nil
	}
	if p.version == "" {
		return p.parseHeader(text)
	}
	if strings.HasPrefix(text, "#") {
		return nil
	}
	if strings.HasPrefix(text, "§") {
		if p.block == nil {
			return p.fail("a Set or SetUser block header", "assignment outside a value block")
		}
		return p.parseAssignment(&cursor{s: text}, p.block.node, p.block.layer)
	}

	p.block = nil
	kw := leadingWord(text)
	c := &cursor{s: text, pos: len(kw)}
	switch kw {
	case kwCreate:
		return p.parseCreate(c)
	case kwConnect, kwConnectField:
		return p.parseConnect(c, kw == kwConnectField)
	case kwSet:
		return p.parseSet(c, model.LayerDefault)
	case kwSetUser:
		return p.parseSet(c, model.LayerUser)
	case kwRename:
		return p.parseRename(c)
	case kwPairZone:
		return p.parsePairZone(c)
	case kwBegin, kwStart:
		return p.parseBeginGroup(c)
	case kwEnd:
		return p.parseEndGroup(c)
	case kwDeclare:
		return p.parseDeclare(c)
	case kwExpose:
		return p.parseExpose(c)
	case kwAdjust:
		return p.parseAdjust(c)
	}

	if s := suggestKeyword(kw); s != "" {
		return p.fail("a statement keyword", "unknown keyword %q, did you mean %q?", kw, s)
	}
	return p.fail("a statement keyword", "unknown keyword %q", kw)
}

func (p *parser) parseHeader(text string) error {
	m := headerRegex.FindStringSubmatch(text)
	if m == nil {
		return p.fail("# BNDL v1", "missing header")
	}
	if m[1] != SupportedMajor {
		return p.fail("# BNDL v1", "unsupported format version v%s%s", m[1], m[2])
	}
	p.version = m[1] + m[2]
	return nil
}

// leadingWord returns the statement keyword: everything up to the first
// space or bracket.
func leadingWord(text string) string {
	if i := strings.IndexAny(text, " \t["); i >= 0 {
		return text[:i]
	}
	return text
}

// fail builds a ParseError for the current line.
func (p *parser) fail(expected, format string, args ...any) *ParseError {
	return &ParseError{
		Line:     p.line,
		Expected: expected,
		Msg:      fmt.Sprintf(format, args...),
		Source:   p.source,
	}
}

// wrap builds a ParseError for the current line around a lower-level error.
func (p *parser) wrap(expected string, err error) *ParseError {
	return &ParseError{
		Line:     p.line,
		Expected: expected,
		Msg:      err.Error(),
		Source:   p.source,
		Err:      err,
	}
}
