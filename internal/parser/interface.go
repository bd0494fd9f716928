package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/value"
)

const (
	kindInputs  = "Inputs"
	kindOutputs = "Outputs"

	// sockMeta introduces the host socket name of a declared port.
	sockMeta = "; sock=<"
)

var (
	glyphRegex = regexp.MustCompile(glyphInput + "|" + glyphOutput)
	// renameSocketRegex finds the end of a bare socket name in a Rename.
	renameSocketRegex = regexp.MustCompile(`^(.*?)\s+to\s+` + labelMark)
)

// Declare Inputs [X #1] : ⦿ A , ⦿ A[2] ; sock=<A>
func (p *parser) parseDeclare(c *cursor) error {
	c.skipSpace()
	var (
		dir   model.Direction
		glyph string
		kind  string
	)
	switch {
	case c.consumeWord(kindInputs):
		dir, glyph, kind = model.Input, glyphInput, kindInputs
	case c.consumeWord(kindOutputs):
		dir, glyph, kind = model.Output, glyphOutput, kindOutputs
	default:
		return p.fail(kindInputs+" or "+kindOutputs, "malformed Declare")
	}

	n, err := p.nodeRef(c)
	if err != nil {
		return err
	}
	c.skipSpace()
	if !c.consume(":") {
		return p.fail(":", "malformed Declare")
	}
	ports, err := p.portList(c.rest(), dir, glyph, kind)
	if err != nil {
		return err
	}
	if err := p.b.DeclarePorts(n.Addr, ports); err != nil {
		return p.wrap("distinct port names", err)
	}
	return nil
}

// portList splits `⦿ A , ⦿ B` into ports. Every port starts with the glyph
// of the declared direction.
func (p *parser) portList(text string, dir model.Direction, glyph, kind string) ([]model.Port, error) {
	marks := glyphRegex.FindAllStringIndex(text, -1)
	if len(marks) == 0 {
		return nil, p.fail(glyph+" port", "empty port list")
	}
	if lead := strings.TrimSpace(text[:marks[0][0]]); lead != "" {
		return nil, p.fail(glyph+" port", "unexpected text %q before the first port", lead)
	}

	ports := make([]model.Port, 0, len(marks))
	for i, m := range marks {
		if text[m[0]:m[1]] != glyph {
			return nil, p.fail(glyph+" port", "%s glyph in a Declare %s list", text[m[0]:m[1]], kind)
		}
		last := i == len(marks)-1
		end := len(text)
		if !last {
			end = marks[i+1][0]
		}
		seg := strings.TrimSpace(text[m[1]:end])
		if !last {
			var ok bool
			if seg, ok = strings.CutSuffix(seg, ","); !ok {
				return nil, p.fail(",", "ports must be separated by commas")
			}
			seg = strings.TrimSpace(seg)
		}

		port := model.Port{Direction: dir, Name: seg, Line: p.line}
		if at := strings.LastIndex(seg, sockMeta); at >= 0 && strings.HasSuffix(seg, ">") {
			port.Name = strings.TrimSpace(seg[:at])
			port.Socket = seg[at+len(sockMeta) : len(seg)-1]
		}
		if port.Name == "" {
			return nil, p.fail("port name", "empty port name")
		}
		ports = append(ports, port)
	}
	return ports, nil
}

// Expose [Group Input #1] ○ Geometry
func (p *parser) parseExpose(c *cursor) error {
	sock, err := p.socketRef(c, false)
	if err != nil {
		return err
	}
	if !c.atEnd() {
		return p.fail("end of line", "trailing text %q", strings.TrimSpace(c.rest()))
	}
	if err := p.b.Expose(sock); err != nil {
		return p.wrap("a declared node", err)
	}
	return nil
}

// Adjust [Index Switch #3] # Cases # to <4>
func (p *parser) parseAdjust(c *cursor) error {
	n, err := p.nodeRef(c)
	if err != nil {
		return err
	}
	c.skipSpace()
	if !c.consume("#") {
		return p.fail("# field #", "malformed Adjust")
	}
	field, ok := c.until("#")
	if !ok {
		return p.fail("#", "unterminated adjustment field")
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return p.fail("field name", "empty adjustment field")
	}
	c.skipSpace()
	if !c.consumeWord("to") {
		return p.fail("to", "malformed Adjust")
	}
	lit, err := value.ParseLiteral(c.rest(), p.units)
	if err != nil {
		return p.wrap("<count>", err)
	}
	count, ok := socketCount(lit)
	if !ok {
		return p.fail("<count>", "socket count must be a non-negative integer, got %s", lit)
	}
	if err := p.b.Adjust(n.Addr, model.Adjustment{Field: field, Count: count, Line: p.line}); err != nil {
		return p.wrap("a declared node", err)
	}
	return nil
}

func socketCount(l value.Literal) (int, bool) {
	if l.Kind != value.KindNumber || l.Number < 0 || l.Number > math.MaxInt32 || l.Number != math.Trunc(l.Number) {
		return 0, false
	}
	return int(l.Number), true
}

// Rename [Index Switch #3] ⦿ Case 1 to ~ Small ~
func (p *parser) parseRenameSocket(c *cursor, n model.Node) error {
	sock := model.Socket{Node: n.Addr}
	switch {
	case c.consume(glyphInput):
		sock.Direction = model.Input
	case c.consume(glyphOutput):
		sock.Direction = model.Output
	}

	c.skipSpace()
	if c.consume(fieldMark) {
		field, ok := c.until(fieldMark)
		if !ok {
			return p.fail(fieldMark, "unterminated socket name")
		}
		sock.Field = strings.TrimSpace(field)
	} else {
		m := renameSocketRegex.FindStringSubmatchIndex(c.rest())
		if m == nil {
			return p.fail("to ~ label ~", "malformed Rename")
		}
		sock.Field = strings.TrimSpace(c.rest()[:m[3]])
		c.pos += m[3]
	}
	if sock.Field == "" {
		return p.fail(fieldMark+" name "+fieldMark, "empty socket name")
	}

	label, err := p.renameLabel(c)
	if err != nil {
		return err
	}
	if err := p.b.RenameSocket(model.SocketLabel{Socket: sock, Label: label, Line: p.line}); err != nil {
		return p.wrap("a declared node", err)
	}
	return nil
}
