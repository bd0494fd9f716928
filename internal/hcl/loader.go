package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/bndl/internal/config"
	"github.com/vk/bndl/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// fileRoot decodes all top-level blocks of bndl.hcl.
type fileRoot struct {
	Log      *logBlock      `hcl:"log,block"`
	Cache    *cacheBlock    `hcl:"cache,block"`
	Compiler *compilerBlock `hcl:"compiler,block"`
	Serve    *serveBlock    `hcl:"serve,block"`
	Builder  *builderBlock  `hcl:"builder,block"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type cacheBlock struct {
	Enabled *bool   `hcl:"enabled,optional"`
	Dir     *string `hcl:"dir,optional"`
}

type compilerBlock struct {
	Workers     *int         `hcl:"workers,optional"`
	Passthrough []string     `hcl:"passthrough,optional"`
	Units       []*unitBlock `hcl:"unit,block"`
}

type unitBlock struct {
	Suffix    string  `hcl:"suffix,label"`
	Dimension string  `hcl:"dimension"`
	Factor    float64 `hcl:"factor"`
}

type serveBlock struct {
	Addr *string `hcl:"addr,optional"`
}

type builderBlock struct {
	Name      string  `hcl:"name,label"`
	URL       *string `hcl:"url,optional"`
	Namespace *string `hcl:"namespace,optional"`
	Timeout   *string `hcl:"timeout,optional"`
}

// Load parses the file at path and layers its settings over into.
func (l *Loader) Load(ctx context.Context, path string, into *config.Config) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	if err := decode(file, into); err != nil {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, err)
	}

	logger.Debug("Configuration file applied.", "path", path)
	return nil
}

// LoadBytes is Load for in-memory sources; filename is used in diagnostics.
func (l *Loader) LoadBytes(src []byte, filename string, into *config.Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	if err := decode(file, into); err != nil {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}
	return nil
}

func decode(file *hcl.File, into *config.Config) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return diags
	}

	if b := root.Log; b != nil {
		setString(&into.LogLevel, b.Level)
		setString(&into.LogFormat, b.Format)
	}
	if b := root.Cache; b != nil {
		if b.Enabled != nil {
			into.CacheEnabled = *b.Enabled
		}
		setString(&into.CacheDir, b.Dir)
	}
	if b := root.Compiler; b != nil {
		if b.Workers != nil {
			into.Workers = *b.Workers
		}
		if b.Passthrough != nil {
			into.Passthrough = b.Passthrough
		}
		for _, u := range b.Units {
			into.Units = append(into.Units, config.Unit{
				Suffix:    u.Suffix,
				Dimension: u.Dimension,
				Factor:    u.Factor,
			})
		}
	}
	if b := root.Serve; b != nil {
		setString(&into.ServeAddr, b.Addr)
	}
	if b := root.Builder; b != nil {
		into.Builder.Name = b.Name
		setString(&into.Builder.URL, b.URL)
		setString(&into.Builder.Namespace, b.Namespace)
		if b.Timeout != nil {
			d, err := time.ParseDuration(*b.Timeout)
			if err != nil {
				return fmt.Errorf("builder %q: invalid timeout: %w", b.Name, err)
			}
			into.Builder.Timeout = d
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
