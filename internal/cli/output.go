package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/vk/bndl/internal/app"
	"github.com/vk/bndl/internal/plan"
)

// planExtensions maps each plan output format to its file extension.
var planExtensions = map[string]string{
	"json":    ".json",
	"hcl":     ".plan.hcl",
	"msgpack": ".msgpack",
}

func encodePlan(p *plan.Plan, format string) ([]byte, error) {
	switch format {
	case "json":
		var buf bytes.Buffer
		if err := plan.EncodeJSON(&buf, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "hcl":
		var buf bytes.Buffer
		if err := plan.WriteHCL(&buf, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "msgpack":
		return plan.MarshalMsgpack(p)
	default:
		return nil, fmt.Errorf("unknown plan format %q", format)
	}
}

// planTarget returns where the plan compiled from src is written. An empty
// out means the command's output stream. With several sources out names a
// directory.
func planTarget(out, src, format string, several bool) string {
	if out == "" || !several {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(out, base+planExtensions[format])
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// emitPlans writes every compiled plan and reports the failures on errW.
// It returns the number of failed sources.
func emitPlans(outW, errW io.Writer, results []app.CompileResult, format, out string) (int, error) {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			PrintError(errW, res.Err)
			failed++
			continue
		}
		data, err := encodePlan(res.Plan, format)
		if err != nil {
			return failed, fmt.Errorf("%s: %w", res.Path, err)
		}
		if err := writeOutput(outW, planTarget(out, res.Path, format, len(results) > 1), data); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// reportCheck prints one line per source and returns the number of failures.
func reportCheck(outW, errW io.Writer, results []app.CompileResult) int {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			PrintError(errW, res.Err)
			failed++
			continue
		}
		fmt.Fprintf(outW, "%s %s (%d ops)\n", color.GreenString("ok"), res.Path, len(res.Plan.Ops))
	}
	return failed
}
