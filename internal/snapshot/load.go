package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes and validates a snapshot.
func Load(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("snapshot is empty")
		}
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile is Load for a file on disk.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the structural constraints of a snapshot.
func Validate(s *Snapshot) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid snapshot: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	for i := range s.Groups {
		if err := validateTree(s.Groups[i].Name, &s.Groups[i].Tree); err != nil {
			return err
		}
	}
	return validateTree("", &s.Root)
}

// validateTree checks that every value has a live literal.
func validateTree(name string, t *Tree) error {
	for _, n := range t.Nodes {
		for _, v := range n.Values {
			if v.Live.IsZero() {
				return fmt.Errorf("invalid snapshot: %s node %q field %q has no live value", treeLabel(name), n.Key, v.Field)
			}
		}
	}
	return nil
}

func treeLabel(name string) string {
	if name == "" {
		return "top level"
	}
	return fmt.Sprintf("group %q", name)
}
