package exporter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vk/bndl/internal/snapshot"
)

// nodeText holds the pre-rendered pieces of one node.
type nodeText struct {
	src      *snapshot.Node
	index    int
	typeName string
	inputs   []string
	outputs  []string
	// adjust holds the Adjust and case Rename lines that follow Create.
	adjust []string
	// ports holds the Declare and Expose lines.
	ports []string
}

func (n *nodeText) ref() string {
	return fmt.Sprintf("[ %s #%d ]", n.typeName, n.index)
}

type assignment struct {
	field string
	text  string
}

// treeWriter renders one tree after validating everything up front, so a
// tree is either written completely or not at all.
type treeWriter struct {
	name     string
	nodes    []*nodeText
	byKey    map[string]*nodeText
	creates  []string
	zones    []string
	links    []string
	defaults [][]assignment
	users    [][]assignment
}

func newTreeWriter(s *snapshot.Snapshot, name string, t *snapshot.Tree) (*treeWriter, error) {
	w := &treeWriter{name: name, byKey: make(map[string]*nodeText, len(t.Nodes))}
	fail := func(node, format string, args ...any) error {
		return &SerializeError{Tree: name, Node: node, Msg: fmt.Sprintf(format, args...)}
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		nt := &nodeText{src: n, index: i + 1}

		if strings.TrimSpace(n.TypeID) != n.TypeID || strings.ContainsAny(n.TypeID, " \t\r\n~") {
			return nil, fail(n.Key, "invalid type-id %q", n.TypeID)
		}
		nt.typeName = n.TypeName
		if nt.typeName == "" {
			nt.typeName = deriveTypeName(n.TypeID)
		}
		if nt.typeName == "" {
			return nil, fail(n.Key, "cannot derive a type-name from type-id %q", n.TypeID)
		}
		for _, slot := range [][2]string{{"type-name", nt.typeName}, {"variant", n.Variant}, {"group", n.Group}} {
			if err := checkSlot(slot[1]); err != nil {
				return nil, fail(n.Key, "%s: %v", slot[0], err)
			}
		}
		if err := checkLabel(n.Label); err != nil {
			return nil, fail(n.Key, "label: %v", err)
		}
		if n.Group != "" {
			if _, ok := s.Group(n.Group); !ok {
				return nil, fail(n.Key, "unknown group %q", n.Group)
			}
		} else if n.Label != "" && strings.HasSuffix(n.TypeID, groupTypeSuffix) {
			return nil, fail(n.Key, "group node %q has a label but no group", n.TypeID)
		}

		var err error
		if nt.inputs, err = displayNames(n.Inputs, "input"); err != nil {
			return nil, fail(n.Key, "inputs: %v", err)
		}
		if nt.outputs, err = displayNames(n.Outputs, "output"); err != nil {
			return nil, fail(n.Key, "outputs: %v", err)
		}

		var defaults, users []assignment
		for _, v := range n.Values {
			if err := checkField(v.Field); err != nil {
				return nil, fail(n.Key, "field: %v", err)
			}
			base := v.Live
			if v.Default != nil {
				base = *v.Default
			}
			text, err := base.Encode()
			if err != nil {
				return nil, fail(n.Key, "field %q: %v", v.Field, err)
			}
			defaults = append(defaults, assignment{field: v.Field, text: text})

			if v.Default != nil && !v.Live.Equal(*v.Default) {
				live, err := v.Live.Encode()
				if err != nil {
					return nil, fail(n.Key, "field %q: %v", v.Field, err)
				}
				users = append(users, assignment{field: v.Field, text: live})
			}
		}

		w.nodes = append(w.nodes, nt)
		w.byKey[n.Key] = nt
		w.defaults = append(w.defaults, defaults)
		w.users = append(w.users, users)
		if err := nt.renderInterface(); err != nil {
			return nil, fail(n.Key, "%v", err)
		}
		w.creates = append(w.creates, createLine(nt))
	}

	for _, z := range t.Zones {
		in, ok := w.byKey[z.Input]
		if !ok {
			return nil, fail(z.Input, "zone input is not a node of this tree")
		}
		out, ok := w.byKey[z.Output]
		if !ok {
			return nil, fail(z.Output, "zone output is not a node of this tree")
		}
		if in == out {
			return nil, fail(z.Input, "zone pairs a node with itself")
		}
		w.zones = append(w.zones, fmt.Sprintf("PairZone  %s <-> %s", in.ref(), out.ref()))
	}

	for _, l := range t.Links {
		from, ok := w.byKey[l.From]
		if !ok {
			return nil, fail(l.From, "link source is not a node of this tree")
		}
		to, ok := w.byKey[l.To]
		if !ok {
			return nil, fail(l.To, "link sink is not a node of this tree")
		}
		if l.FromSocket >= len(from.outputs) {
			return nil, fail(l.From, "output socket %d out of range (%d outputs)", l.FromSocket, len(from.outputs))
		}
		if l.ToSocket >= len(to.inputs) {
			return nil, fail(l.To, "input socket %d out of range (%d inputs)", l.ToSocket, len(to.inputs))
		}
		kw := "Connect"
		if l.FieldLink {
			kw = "Connect⋯"
		}
		w.links = append(w.links, fmt.Sprintf("%s  %s ○ § %s §  to  %s ⦿ § %s §",
			kw, from.ref(), from.outputs[l.FromSocket], to.ref(), to.inputs[l.ToSocket]))
	}
	return w, nil
}

func createLine(n *nodeText) string {
	variant := n.src.Variant
	if variant == "" {
		variant = "—"
	}
	slots := fmt.Sprintf("[ %s | %s |", n.typeName, variant)
	if n.src.Group != "" {
		slots += " " + n.src.Group
	}
	slots += " ]"

	label := "~ ~"
	if n.src.Label != "" {
		label = "~ " + n.src.Label + " ~"
	}
	return fmt.Sprintf("Create  %s %s #%d ; type=%s", slots, label, n.index, n.src.TypeID)
}

// renderInterface prepares the case count and port lines of n.
func (n *nodeText) renderInterface() error {
	if len(n.src.Cases) > 0 {
		n.adjust = append(n.adjust, fmt.Sprintf("Adjust  %s  # Cases # to <%d>", n.ref(), len(n.src.Cases)))
		for i, name := range n.src.Cases {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if err := checkLabel(name); err != nil {
				return fmt.Errorf("case %d: %v", i+1, err)
			}
			n.adjust = append(n.adjust, fmt.Sprintf("Rename  %s ⦿ Case %d to ~ %s ~", n.ref(), i+1, name))
		}
	}

	sides := []struct {
		kind, glyph string
		names       []string
		sockets     []snapshot.Socket
	}{
		{"Inputs ", "⦿", n.inputs, n.src.Inputs},
		{"Outputs", "○", n.outputs, n.src.Outputs},
	}
	var exposed []string
	for _, side := range sides {
		if len(side.names) == 0 {
			continue
		}
		parts := make([]string, len(side.names))
		for i, name := range side.names {
			if strings.ContainsAny(name, "⦿○") || strings.Contains(name, "; sock=<") {
				return fmt.Errorf("socket %q cannot be declared", name)
			}
			parts[i] = side.glyph + " " + name
			if side.sockets[i].Exposed {
				exposed = append(exposed, fmt.Sprintf("Expose  %s %s %s", n.ref(), side.glyph, name))
			}
		}
		n.ports = append(n.ports, fmt.Sprintf("Declare %s %s : %s", side.kind, n.ref(), strings.Join(parts, " , ")))
	}
	n.ports = append(n.ports, exposed...)
	return nil
}

// writeBody writes Create, Adjust, Declare, PairZone, Set and Connect lines.
func (w *treeWriter) writeBody(buf *bytes.Buffer) {
	for i, line := range w.creates {
		buf.WriteString(line + "\n")
		for _, adjust := range w.nodes[i].adjust {
			buf.WriteString(adjust + "\n")
		}
	}
	for _, n := range w.nodes {
		for _, line := range n.ports {
			buf.WriteString(line + "\n")
		}
	}
	for _, line := range w.zones {
		buf.WriteString(line + "\n")
	}
	w.writeBlocks(buf, "Set", w.defaults)
	for _, line := range w.links {
		buf.WriteString(line + "\n")
	}
}

func (w *treeWriter) hasOverrides() bool {
	for _, u := range w.users {
		if len(u) > 0 {
			return true
		}
	}
	return false
}

// writeOverrides writes SetUser blocks.
func (w *treeWriter) writeOverrides(buf *bytes.Buffer) {
	w.writeBlocks(buf, "SetUser", w.users)
}

func (w *treeWriter) writeBlocks(buf *bytes.Buffer, kw string, perNode [][]assignment) {
	for i, values := range perNode {
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(buf, "%s  %s:\n", kw, w.nodes[i].ref())
		for _, a := range values {
			fmt.Fprintf(buf, "§ %s § to %s\n", a.field, a.text)
		}
	}
}

// displayNames names sockets as they appear in link lines: blank names get
// the alias, repeats get an ordinal suffix.
func displayNames(sockets []snapshot.Socket, alias string) ([]string, error) {
	counts := make(map[string]int, len(sockets))
	out := make([]string, len(sockets))
	for i, s := range sockets {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = alias
		}
		if err := checkField(name); err != nil {
			return nil, err
		}
		counts[name]++
		if counts[name] > 1 {
			name = fmt.Sprintf("%s[%d]", name, counts[name])
		}
		out[i] = name
	}
	return out, nil
}

// checkSlot validates text that goes inside a `[ … | … | … ]` declaration.
func checkSlot(text string) error {
	if text != strings.TrimSpace(text) {
		return fmt.Errorf("%q has surrounding whitespace", text)
	}
	if strings.ContainsAny(text, "|[]\r\n") {
		return fmt.Errorf("%q contains a character that cannot be written", text)
	}
	if text == "—" || text == "-" {
		return fmt.Errorf("%q would read as an empty slot", text)
	}
	return nil
}

func checkLabel(text string) error {
	if text != strings.TrimSpace(text) {
		return fmt.Errorf("%q has surrounding whitespace", text)
	}
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("%q contains a line break", text)
	}
	return nil
}

func checkField(text string) error {
	if text == "" || text != strings.TrimSpace(text) {
		return fmt.Errorf("field %q is empty or has surrounding whitespace", text)
	}
	if strings.Contains(text, "§") || strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("field %q contains a character that cannot be written", text)
	}
	return nil
}
