package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/roles"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// RoleOps is the slice of roles.Service the CLI drives.
type RoleOps interface {
	Export(ctx context.Context) (roles.Export, error)
	Import(ctx context.Context, actor shared.Actor, raw []byte) (roles.ImportResult, error)
	RestoreDefaults(ctx context.Context, actor shared.Actor) error
	EnsureDefaults(ctx context.Context) ([]string, error)
}

// Output carries the command streams. Nil writers default to the process streams.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

func (o Output) normalize() Output {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	return o
}

// RolesCLI runs role maintenance commands as the system actor.
type RolesCLI struct {
	ops RoleOps
}

// NewRolesCLI constructs the helper.
func NewRolesCLI(ops RoleOps) (*RolesCLI, error) {
	if ops == nil {
		return nil, errors.New("roles cli: service not configured")
	}
	return &RolesCLI{ops: ops}, nil
}

// SeedCommand creates the canonical roles that are missing.
func (c *RolesCLI) SeedCommand(ctx context.Context, out Output) int {
	out = out.normalize()
	created, err := c.ops.EnsureDefaults(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "seed: %v\n", err)
		return 1
	}
	if len(created) == 0 {
		_, _ = fmt.Fprintln(out.Stdout, "seed: all default roles present")
		return 0
	}
	_, _ = fmt.Fprintf(out.Stdout, "seed: created %s\n", strings.Join(created, ", "))
	return 0
}

// ExportCommand writes the role export document to path, or stdout when path is empty or "-".
func (c *RolesCLI) ExportCommand(ctx context.Context, path string, out Output) int {
	out = out.normalize()
	doc, err := c.ops.Export(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "export: %v\n", err)
		return 1
	}
	w := out.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			_, _ = fmt.Fprintf(out.Stderr, "export: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "export: encode json: %v\n", err)
		return 1
	}
	return 0
}

// ImportCommand merges the document at path ("-" reads stdin) into the store.
func (c *RolesCLI) ImportCommand(ctx context.Context, path string, out Output) int {
	out = out.normalize()
	if strings.TrimSpace(path) == "" {
		_, _ = fmt.Fprintln(out.Stderr, "import: file argument is required")
		return 2
	}
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(out.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "import: %v\n", err)
		return 1
	}
	result, err := c.ops.Import(ctx, shared.SystemActor, raw)
	if err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "import: %v\n", err)
		if errors.Is(err, shared.ErrValidation) {
			return 2
		}
		return 1
	}
	_, _ = fmt.Fprintf(out.Stdout, "import: created=%d updated=%d\n", len(result.Created), len(result.Updated))
	return 0
}

// RestoreCommand resets the canonical roles to their default capabilities.
func (c *RolesCLI) RestoreCommand(ctx context.Context, out Output) int {
	out = out.normalize()
	if err := c.ops.RestoreDefaults(ctx, shared.SystemActor); err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "restore-defaults: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out.Stdout, "restore-defaults: done")
	return 0
}
