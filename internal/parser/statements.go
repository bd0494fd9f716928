package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/value"
)

const (
	glyphInput  = "⦿"
	glyphOutput = "○"
	fieldMark   = "§"
	labelMark   = "~"
)

// groupTypeSuffix marks type-ids of group-instance nodes in files that name
// the instantiated group inside the label.
const groupTypeSuffix = "NodeGroup"

// legacySourceRegex finds the end of a bare (unmarked) source socket name.
var legacySourceRegex = regexp.MustCompile(`^(.*?)\s+to\s+\[`)

// absent reports whether an optional declaration slot is empty.
func absent(slot string) bool {
	return slot == "" || slot == "—" || slot == "-"
}

// Create [ Type | Variant | Group ] ~ label ~ #N ; type=TypeID
func (p *parser) parseCreate(c *cursor) error {
	const expected = "[ type-name | variant | group ] ~ label ~ #N ; type=TypeID"

	c.skipSpace()
	if !c.consume("[") {
		return p.fail(expected, "malformed Create")
	}
	inside, ok := c.until("]")
	if !ok {
		return p.fail("]", "unterminated node declaration")
	}
	slots := strings.Split(inside, "|")
	if len(slots) != 3 {
		return p.fail(expected, "node declaration needs 3 slots, got %d", len(slots))
	}
	typeName := strings.TrimSpace(slots[0])
	if typeName == "" {
		return p.fail("type-name", "empty type-name")
	}
	variant := strings.TrimSpace(slots[1])
	if absent(variant) {
		variant = ""
	}
	group := strings.TrimSpace(slots[2])
	if absent(group) {
		group = ""
	}

	c.skipSpace()
	if !c.consume(labelMark) {
		return p.fail("~ label ~", "missing label")
	}
	label, ok := c.untilLast(labelMark)
	if !ok {
		return p.fail("~", "unterminated label")
	}
	label = strings.TrimSpace(label)

	c.skipSpace()
	if !c.consume("#") {
		return p.fail("#N", "missing node index")
	}
	index, ok := c.digits()
	if !ok {
		return p.fail("#N", "invalid node index")
	}
	c.skipSpace()
	if !c.consume(";") {
		return p.fail("; type=TypeID", "missing type-id")
	}
	c.skipSpace()
	if !c.consume("type=") {
		return p.fail("type=TypeID", "missing type-id")
	}
	typeID := strings.TrimSpace(c.rest())
	if typeID == "" || strings.ContainsAny(typeID, " \t") {
		return p.fail("type=TypeID", "invalid type-id %q", typeID)
	}

	if group == "" && label != "" && strings.HasSuffix(typeID, groupTypeSuffix) {
		group = label
	}

	_, err := p.b.AddNode(model.Node{
		Addr:     nodeid.Address{Index: index},
		TypeName: typeName,
		TypeID:   typeID,
		Variant:  variant,
		Label:    label,
		GroupRef: group,
		Line:     p.line,
	})
	if err != nil {
		return p.wrap("#"+strconv.Itoa(p.b.NextIndex()), err)
	}
	return nil
}

// nodeRef parses `[ Type #N ]` or `[#N]` and resolves it in the current scope.
func (p *parser) nodeRef(c *cursor) (model.Node, error) {
	c.skipSpace()
	if !c.consume("[") {
		return model.Node{}, p.fail("[ type-name #N ]", "missing node reference")
	}
	inside, ok := c.until("]")
	if !ok {
		return model.Node{}, p.fail("]", "unterminated node reference")
	}
	hash := strings.LastIndex(inside, "#")
	if hash < 0 {
		return model.Node{}, p.fail("[ type-name #N ]", "node reference without index")
	}
	ic := &cursor{s: strings.TrimSpace(inside[hash+1:])}
	index, ok := ic.digits()
	if !ok || !ic.atEnd() {
		return model.Node{}, p.fail("#N", "invalid node index %q", inside[hash:])
	}
	n, err := p.b.Resolve(index, strings.TrimSpace(inside[:hash]))
	if err != nil {
		return model.Node{}, p.wrap("a declared node", err)
	}
	return n, nil
}

// socketRef parses `[ Type #N ] ⦿ § Field §`. source selects how a bare
// legacy name without § marks is delimited.
func (p *parser) socketRef(c *cursor, source bool) (model.Socket, error) {
	n, err := p.nodeRef(c)
	if err != nil {
		return model.Socket{}, err
	}
	sock := model.Socket{Node: n.Addr}

	c.skipSpace()
	switch {
	case c.consume(glyphInput):
		sock.Direction = model.Input
	case c.consume(glyphOutput):
		sock.Direction = model.Output
	default:
		return model.Socket{}, p.fail(glyphOutput+" or "+glyphInput, "missing socket direction")
	}

	c.skipSpace()
	if c.consume(fieldMark) {
		field, ok := c.until(fieldMark)
		if !ok {
			return model.Socket{}, p.fail(fieldMark, "unterminated socket name")
		}
		sock.Field = strings.TrimSpace(field)
	} else if source {
		m := legacySourceRegex.FindStringSubmatchIndex(c.rest())
		if m == nil {
			return model.Socket{}, p.fail("to", "missing link sink")
		}
		sock.Field = strings.TrimSpace(c.rest()[:m[3]])
		c.pos += m[3]
	} else {
		sock.Field = strings.TrimSpace(c.rest())
		c.pos = len(c.s)
	}
	if sock.Field == "" {
		return model.Socket{}, p.fail(fieldMark+" name "+fieldMark, "empty socket name")
	}
	return sock, nil
}

// Connect [A #1] ○ § Out § to [B #2] ⦿ § In §
func (p *parser) parseConnect(c *cursor, fieldLink bool) error {
	from, err := p.socketRef(c, true)
	if err != nil {
		return err
	}
	c.skipSpace()
	if !c.consumeWord("to") {
		return p.fail("to", "malformed Connect")
	}
	to, err := p.socketRef(c, false)
	if err != nil {
		return err
	}
	if !c.atEnd() {
		return p.fail("end of line", "trailing text %q", strings.TrimSpace(c.rest()))
	}

	conn := model.Connection{From: from, To: to, FieldLink: fieldLink, Line: p.line}
	if err := p.b.Connect(conn); err != nil {
		return p.wrap(glyphOutput+" source and "+glyphInput+" sink", err)
	}
	return nil
}

// Set [X #1]: § Field § to <v>   or the block header   Set [X #1]:
func (p *parser) parseSet(c *cursor, layer model.Layer) error {
	n, err := p.nodeRef(c)
	if err != nil {
		return err
	}
	c.skipSpace()
	if !c.consume(":") {
		return p.fail(":", "malformed value statement")
	}
	c.skipSpace()
	if c.atEnd() {
		p.block = &setBlock{node: n, layer: layer}
		return nil
	}
	return p.parseAssignment(c, n, layer)
}

// § Field § to <literal>
func (p *parser) parseAssignment(c *cursor, n model.Node, layer model.Layer) error {
	if !c.consume(fieldMark) {
		return p.fail(fieldMark+" field "+fieldMark, "malformed assignment")
	}
	field, ok := c.until(fieldMark)
	if !ok {
		return p.fail(fieldMark, "unterminated field name")
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return p.fail("field name", "empty field name")
	}
	c.skipSpace()
	if !c.consumeWord("to") {
		return p.fail("to", "malformed assignment")
	}
	lit, err := value.ParseLiteral(c.rest(), p.units)
	if err != nil {
		return p.wrap("literal", err)
	}
	if err := p.b.Assign(n.Addr, field, lit, layer, p.line); err != nil {
		return p.wrap("a declared node", err)
	}
	return nil
}

// Rename [X #1] to ~ label ~
func (p *parser) parseRename(c *cursor) error {
	n, err := p.nodeRef(c)
	if err != nil {
		return err
	}
	c.skipSpace()
	if strings.HasPrefix(c.rest(), glyphInput) || strings.HasPrefix(c.rest(), glyphOutput) {
		return p.parseRenameSocket(c, n)
	}
	label, err := p.renameLabel(c)
	if err != nil {
		return err
	}
	if err := p.b.Rename(n.Addr, label); err != nil {
		return p.wrap("a declared node", err)
	}
	return nil
}

// renameLabel parses the `to ~ label ~` tail of a Rename.
func (p *parser) renameLabel(c *cursor) (string, error) {
	c.skipSpace()
	if !c.consumeWord("to") {
		return "", p.fail("to ~ label ~", "malformed Rename")
	}
	c.skipSpace()
	if !c.consume(labelMark) {
		return "", p.fail("~ label ~", "malformed Rename")
	}
	label, ok := c.untilLast(labelMark)
	if !ok {
		return "", p.fail("~", "unterminated label")
	}
	if !c.atEnd() {
		return "", p.fail("end of line", "trailing text %q", strings.TrimSpace(c.rest()))
	}
	return strings.TrimSpace(label), nil
}

// PairZone [Simulation Input #1] <-> [Simulation Output #2]
func (p *parser) parsePairZone(c *cursor) error {
	in, err := p.nodeRef(c)
	if err != nil {
		return err
	}
	c.skipSpace()
	if !c.consume("<->") {
		return p.fail("<->", "malformed PairZone")
	}
	out, err := p.nodeRef(c)
	if err != nil {
		return err
	}
	if !c.atEnd() {
		return p.fail("end of line", "trailing text %q", strings.TrimSpace(c.rest()))
	}
	if err := p.b.PairZone(model.ZonePair{Input: in.Addr, Output: out.Addr, Line: p.line}); err != nil {
		return p.wrap("two distinct nodes", err)
	}
	return nil
}

// groupName parses the `GROUP NAMED name` tail of a group delimiter.
func (p *parser) groupName(c *cursor) (string, error) {
	c.skipSpace()
	if !c.consumeWord("GROUP") {
		return "", p.fail("GROUP NAMED", "malformed group delimiter")
	}
	c.skipSpace()
	if !c.consumeWord("NAMED") {
		return "", p.fail("GROUP NAMED", "malformed group delimiter")
	}
	name := strings.TrimSpace(c.rest())
	if name == "" {
		return "", p.fail("group name", "empty group name")
	}
	return name, nil
}

func (p *parser) parseBeginGroup(c *cursor) error {
	name, err := p.groupName(c)
	if err != nil {
		return err
	}
	if err := p.b.BeginGroup(name, p.line); err != nil {
		return p.wrap("a unique group name", err)
	}
	return nil
}

func (p *parser) parseEndGroup(c *cursor) error {
	name, err := p.groupName(c)
	if err != nil {
		return err
	}
	open, line, ok := p.b.OpenGroup()
	if !ok {
		return p.fail("BEGIN GROUP NAMED "+name, "END without an open group")
	}
	if open != name {
		p.line, p.source = line, "BEGIN GROUP NAMED "+open
		return p.fail("END GROUP NAMED "+open, "group %q is closed by END GROUP NAMED %s", open, name)
	}
	if err := p.b.EndGroup(name); err != nil {
		return p.wrap("END GROUP NAMED "+open, err)
	}
	return nil
}
