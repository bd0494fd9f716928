package exporter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/snapshot"
)

const (
	header          = "# BNDL v1"
	sectionGroups   = "# === GROUP DEFINITIONS ==="
	sectionTop      = "# === TOP LEVEL ==="
	sectionOverride = "# === USER OVERRIDES ==="

	// groupTypeSuffix marks type-ids the parser may read as group instances.
	groupTypeSuffix = "NodeGroup"
)

// Export renders s as BNDL text.
func Export(ctx context.Context, s *snapshot.Snapshot) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)
	if err := snapshot.Validate(s); err != nil {
		return nil, &SerializeError{Msg: err.Error(), Err: err}
	}

	var buf bytes.Buffer
	buf.WriteString(header + "\n")
	buf.WriteString(sectionGroups + "\n")

	for i := range s.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := &s.Groups[i]
		if err := checkGroupName(g.Name); err != nil {
			return nil, &SerializeError{Tree: g.Name, Msg: err.Error()}
		}
		t, err := newTreeWriter(s, g.Name, &g.Tree)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "BEGIN GROUP NAMED %s\n", g.Name)
		t.writeBody(&buf)
		t.writeOverrides(&buf)
		fmt.Fprintf(&buf, "END GROUP NAMED %s\n\n", g.Name)
	}

	root, err := newTreeWriter(s, "", &s.Root)
	if err != nil {
		return nil, err
	}
	buf.WriteString(sectionTop + "\n")
	root.writeBody(&buf)
	if root.hasOverrides() {
		buf.WriteString("\n" + sectionOverride + "\n")
		root.writeOverrides(&buf)
	}

	logger.Debug("Export: snapshot serialized", "groups", len(s.Groups), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func checkGroupName(name string) error {
	if name == "" {
		return fmt.Errorf("empty group name")
	}
	return checkSlot(name)
}
