package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roleguard/internal/roles"
	"github.com/odyssey-erp/roleguard/internal/shared"
	"github.com/odyssey-erp/roleguard/jobs"
)

type stubRoleOps struct {
	export   roles.Export
	imported []byte
	actor    shared.Actor
	restored bool
	created  []string
	err      error
}

func (s *stubRoleOps) Export(context.Context) (roles.Export, error) { return s.export, s.err }

func (s *stubRoleOps) Import(_ context.Context, actor shared.Actor, raw []byte) (roles.ImportResult, error) {
	s.imported, s.actor = raw, actor
	if s.err != nil {
		return roles.ImportResult{}, s.err
	}
	return roles.ImportResult{Created: []string{"shop"}, Updated: []string{"editor"}}, nil
}

func (s *stubRoleOps) RestoreDefaults(_ context.Context, actor shared.Actor) error {
	s.restored, s.actor = true, actor
	return s.err
}

func (s *stubRoleOps) EnsureDefaults(context.Context) ([]string, error) { return s.created, s.err }

func buffers() (*bytes.Buffer, *bytes.Buffer, Output) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	return stdout, stderr, Output{Stdout: stdout, Stderr: stderr}
}

func TestExportCommandWritesJSON(t *testing.T) {
	ops := &stubRoleOps{export: roles.Export{"editor": {Name: "Editor", Capabilities: map[string]bool{"read": true}}}}
	cli, err := NewRolesCLI(ops)
	require.NoError(t, err)

	stdout, _, out := buffers()
	require.Equal(t, 0, cli.ExportCommand(context.Background(), "", out))
	var doc roles.Export
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Equal(t, ops.export, doc)

	path := filepath.Join(t.TempDir(), "roles.json")
	require.Equal(t, 0, cli.ExportCommand(context.Background(), path, out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Editor"`)
}

func TestImportCommand(t *testing.T) {
	ops := &stubRoleOps{}
	cli, _ := NewRolesCLI(ops)

	stdout, _, out := buffers()
	out.Stdin = strings.NewReader(`{"shop":{"name":"Shop","capabilities":{}}}`)
	require.Equal(t, 0, cli.ImportCommand(context.Background(), "-", out))
	assert.Equal(t, shared.SystemActor, ops.actor)
	assert.Contains(t, string(ops.imported), `"shop"`)
	assert.Equal(t, "import: created=1 updated=1\n", stdout.String())

	_, stderr, out := buffers()
	assert.Equal(t, 2, cli.ImportCommand(context.Background(), "", out))
	assert.Contains(t, stderr.String(), "file argument is required")

	ops.err = shared.NewValidationError("document", "must be an object")
	_, stderr, out = buffers()
	out.Stdin = strings.NewReader(`[]`)
	assert.Equal(t, 2, cli.ImportCommand(context.Background(), "-", out))
	assert.Contains(t, stderr.String(), "must be an object")

	assert.Equal(t, 1, cli.ImportCommand(context.Background(), filepath.Join(t.TempDir(), "missing.json"), out))
}

func TestSeedAndRestoreCommands(t *testing.T) {
	ops := &stubRoleOps{created: []string{"author", "contributor"}}
	cli, _ := NewRolesCLI(ops)

	stdout, _, out := buffers()
	require.Equal(t, 0, cli.SeedCommand(context.Background(), out))
	assert.Equal(t, "seed: created author, contributor\n", stdout.String())

	ops.created = nil
	stdout, _, out = buffers()
	require.Equal(t, 0, cli.SeedCommand(context.Background(), out))
	assert.Contains(t, stdout.String(), "all default roles present")

	require.Equal(t, 0, cli.RestoreCommand(context.Background(), out))
	assert.True(t, ops.restored)

	ops.err = errors.New("db down")
	_, stderr, out := buffers()
	assert.Equal(t, 1, cli.RestoreCommand(context.Background(), out))
	assert.Contains(t, stderr.String(), "db down")
}

type stubTrigger struct{ name string }

func (s *stubTrigger) Trigger(_ context.Context, name string) (*asynq.TaskInfo, error) {
	if name == "unknown" {
		return nil, errors.New("jobs: unsupported job unknown")
	}
	s.name = name
	return &asynq.TaskInfo{ID: "abc", Type: name, Queue: "default"}, nil
}

func TestTriggerCommand(t *testing.T) {
	trigger := &stubTrigger{}
	stdout, _, out := buffers()
	require.Equal(t, 0, TriggerCommand(context.Background(), trigger, "audit:purge", out))
	assert.Equal(t, "audit:purge", trigger.name)
	assert.Contains(t, stdout.String(), "id=abc")

	assert.Equal(t, 1, TriggerCommand(context.Background(), trigger, "unknown", out))
	assert.Equal(t, 2, TriggerCommand(context.Background(), trigger, "", out))
}

func TestNewRolesCLIRequiresService(t *testing.T) {
	_, err := NewRolesCLI(nil)
	require.Error(t, err)
}

type stubQueue struct {
	stats jobs.QueueStats
	err   error
}

func (s stubQueue) InspectQueue() (jobs.QueueStats, error) { return s.stats, s.err }

func TestStatsCommand(t *testing.T) {
	stdout, _, out := buffers()
	code := StatsCommand(stubQueue{stats: jobs.QueueStats{Queue: "default", Pending: 2, Retry: 1}}, out)
	require.Equal(t, 0, code)
	assert.Equal(t, "queue=default pending=2 active=0 scheduled=0 retry=1\n", stdout.String())

	assert.Equal(t, 1, StatsCommand(stubQueue{err: errors.New("redis down")}, out))
}
