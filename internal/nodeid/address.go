// internal/nodeid/address.go
package nodeid

import (
	"strconv"
)

// String serializes the Address into its canonical `Scope#Index` form.
func (a Address) String() string {
	return a.Scope + "#" + strconv.Itoa(a.Index)
}

// MarshalText implements encoding.TextMarshaler so addresses can key maps
// in JSON output.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
