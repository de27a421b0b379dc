package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/testutil"
)

type harness struct {
	t       *testing.T
	backend *testutil.Backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("ARBOR_API_BASE", "")
	t.Setenv("ARBOR_REQUEST_TIMEOUT", "")
	t.Setenv("ARBOR_EXPORT_SHEET", "")
	t.Setenv("ARBOR_PASSWORD", "")
	t.Setenv("ARBOR_TOKEN_FILE", filepath.Join(t.TempDir(), "token"))
	return &harness{t: t, backend: testutil.NewBackend(t, true)}
}

// run executes one arbor invocation and returns its output.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", h.backend.URL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func TestCLIWorkflow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("register", "-u", "ana", "-p", "pw")
	assert.Contains(t, out, "User registered successfully!")
	out = h.mustRun("login", "-u", "ana", "-p", "pw")
	assert.Contains(t, out, "Login successful")

	out = h.mustRun("add",
		"--set", "custom_id=TO-001", "--set", "city=Torino", "--set", "address=Via Roma 12",
		"--set", "species=Platanus", "--set", "condition=Good",
		"--set", "latitude=45.0677", "--set", "longitude=7.6824", "--set", "next_check=2025-04-01")
	assert.Contains(t, out, "Tree added successfully!")
	h.mustRun("add", "--set", "custom_id=TO-002", "--set", "city=Torino", "--set", "species=Tilia", "--set", "condition=Fair")

	out = h.mustRun("cities")
	assert.Equal(t, "Torino\n", out)
	out = h.mustRun("streets", "Torino")
	assert.Equal(t, "Via Roma 12\n", out)

	out = h.mustRun("list", "--city", "Torino", "--address", "roma")
	assert.Contains(t, out, "TO-001")
	assert.NotContains(t, out, "TO-002")

	out = h.mustRun("lookup", "TO-002")
	assert.Contains(t, out, "Species: Tilia")

	out = h.mustRun("show", "1")
	assert.Contains(t, out, "Platanus")
	assert.Contains(t, out, "2025-04-01")

	out = h.mustRun("edit", "2", "--set", "condition=Poor")
	assert.Contains(t, out, "Tree 2 updated successfully!")
	out = h.mustRun("edit", "2")
	assert.Contains(t, out, "Editing tree 2")
	assert.Contains(t, out, "Poor")

	out = h.mustRun("map", "--city", "Torino")
	assert.Contains(t, out, "[TO-001]")
	assert.NotContains(t, out, "[TO-002]")

	path := filepath.Join(t.TempDir(), "trees.xlsx")
	out = h.mustRun("export", "-o", path)
	assert.Contains(t, out, "Exported 2 trees")
	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	rows, err := wb.GetRows("Trees")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	require.NoError(t, wb.Close())

	out = h.mustRun("delete", "--yes", "1")
	assert.Contains(t, out, "Tree 1 deleted successfully!")
	out = h.mustRun("list")
	assert.NotContains(t, out, "TO-001")

	out = h.mustRun("logout")
	assert.Contains(t, out, "Logged out")
	out, err = h.run("", "delete", "--yes", "2")
	require.Error(t, err)
	assert.Contains(t, out, "Please log in first.")
}

func TestCLIDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("register", "-u", "ana", "-p", "pw")
	h.mustRun("login", "-u", "ana", "-p", "pw")
	h.mustRun("add", "--set", "custom_id=A", "--set", "city=Torino", "--set", "species=Acer", "--set", "condition=Good")

	out, err := h.run("n\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete this tree? [y/N]")
	assert.Contains(t, h.mustRun("list"), "Acer")

	out, err = h.run("y\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted successfully")
}

func TestCLIPromptsForCredentials(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("ana\npw\n", "register")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "User registered successfully!")
}

func TestCLIAddValidation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("register", "-u", "ana", "-p", "pw")
	h.mustRun("login", "-u", "ana", "-p", "pw")

	out, err := h.run("", "add", "--set", "city=Torino")
	require.Error(t, err)
	var reported *reportedError
	assert.ErrorAs(t, err, &reported)
	assert.Contains(t, out, "custom_id, species, condition")

	_, err = h.run("", "add", "--set", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")

	out, err = h.run("", "add", "--set", "colour=green")
	require.Error(t, err)
	assert.Contains(t, out, "unknown field(s): colour")
}

func TestParseTreeID(t *testing.T) {
	id, err := parseTreeID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseTreeID(bad)
		assert.Error(t, err, bad)
	}
}
