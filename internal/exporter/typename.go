package exporter

import (
	"strings"
	"unicode"
)

// typeAliases maps type-ids whose readable name is not derivable by prefix
// stripping.
var typeAliases = map[string]string{
	"GeometryNodeGroupInput":  "Group Input",
	"GeometryNodeGroupOutput": "Group Output",
	"NodeGroupInput":          "Group Input",
	"NodeGroupOutput":         "Group Output",
	"GeometryNodeGroup":       "Group",
	"ShaderNodeGroup":         "Group",
	"NodeReroute":             "Reroute",
	"GeometryNodeReroute":     "Reroute",
	"NodeFrame":               "Frame",
}

var typePrefixes = []string{"GeometryNode", "FunctionNode", "ShaderNode", "CompositorNode", "Node"}

// deriveTypeName turns a type-id such as GeometryNodeSetPosition into a
// readable type-name such as "Set Position". It returns "" when nothing
// readable remains.
func deriveTypeName(typeID string) string {
	if alias, ok := typeAliases[typeID]; ok {
		return alias
	}
	rest := typeID
	for _, p := range typePrefixes {
		if strings.HasPrefix(rest, p) {
			rest = strings.TrimPrefix(rest, p)
			break
		}
	}
	return splitCamel(rest)
}

// splitCamel inserts spaces at lower-to-upper case boundaries.
func splitCamel(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
