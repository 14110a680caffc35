package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
)

// workspace is a throwaway config file pointing at a throwaway SQLite database.
func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("CASETRIAGE_STORE", "")
	dir := t.TempDir()
	cfg := filepath.Join(dir, "casetriage.yaml")
	body := "store: sqlite\nsqlite-path: " + filepath.Join(dir, "cases.db") + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return cfg
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func report(t *testing.T, cfg string, args ...string) models.Case {
	t.Helper()
	out, err := run(t, cfg, append([]string{"report", "--json"}, args...)...)
	require.NoError(t, err)
	var c models.Case
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	return c
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, sub := range root.Commands() {
		assert.NotEmpty(t, sub.Short, sub.Name())
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"view", "score", "status", "report", "history", "viewer", "policy"})
}

func TestReportAndViewByScope(t *testing.T) {
	cfg := workspace(t)
	c := report(t, cfg, "--age", "4", "--location", "Centro bus terminal", "--jurisdiction", "San Isidro")
	assert.Equal(t, models.StatusMissing, c.Status)
	require.NotNil(t, c.SubjectAge)
	assert.Equal(t, 4, *c.SubjectAge)

	out, err := run(t, cfg, "view", "--scope", "SAN ISIDRO")
	require.NoError(t, err)
	assert.Contains(t, out, "[exact]")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, string(c.ID))
}

func TestStatusAndHistory(t *testing.T) {
	cfg := workspace(t)
	c := report(t, cfg, "--jurisdiction", "Tigre")

	out, err := run(t, cfg, "status", string(c.ID), "found", "--actor", "desk-2")
	require.NoError(t, err)
	assert.Contains(t, out, "status found")

	_, err = run(t, cfg, "status", string(c.ID), "found")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	_, err = run(t, cfg, "status", string(c.ID), "in_progress")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	out, err = run(t, cfg, "history", string(c.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "found")

	out, err = run(t, cfg, "view", "--scope", "Tigre")
	require.NoError(t, err)
	assert.Contains(t, out, "resolved 1")
	assert.NotContains(t, out, string(c.ID), "found cases are counted, not listed")

	out, err = run(t, cfg, "score", string(c.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "RESOLVED")
	assert.Contains(t, out, "score 0")
}

func TestViewerScopesTheView(t *testing.T) {
	cfg := workspace(t)
	tigre := report(t, cfg, "--jurisdiction", "Tigre", "--age", "70")
	report(t, cfg, "--jurisdiction", "Lujan", "--age", "30")

	out, err := run(t, cfg, "viewer", "desk-tigre", "--jurisdiction", "Tigre")
	require.NoError(t, err)
	assert.Contains(t, out, "viewer desk-tigre triages Tigre")

	out, err = run(t, cfg, "view", "--viewer", "desk-tigre", "--json")
	require.NoError(t, err)
	var view struct {
		Level   string `json:"level"`
		Entries []struct {
			Case struct {
				ID string `json:"id"`
			} `json:"case"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "exact", view.Level)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, string(tigre.ID), view.Entries[0].Case.ID)
}

func TestScoreUnknownCase(t *testing.T) {
	cfg := workspace(t)
	_, err := run(t, cfg, "score", "ghost")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestViewRequiresViewerOrScope(t *testing.T) {
	cfg := workspace(t)
	_, err := run(t, cfg, "view")
	assert.Error(t, err)

	_, err = run(t, cfg, "view", "--viewer", "a", "--scope", "b")
	assert.Error(t, err)
}

func TestReportRejectsNegativeAge(t *testing.T) {
	cfg := workspace(t)
	_, err := run(t, cfg, "report", "--age", "-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestPolicyPrintsEffectiveConfig(t *testing.T) {
	cfg := workspace(t)
	policyFile := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(policyFile, []byte("policy:\n  top_alerts: 7\n"), 0o600))

	out, err := run(t, cfg, "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "top_alerts: 3")
	assert.Contains(t, out, "within: 6h0m0s")

	out, err = run(t, cfg, "policy", "--policy-file", policyFile)
	require.NoError(t, err)
	assert.Contains(t, out, "top_alerts: 7")
}

func TestUnreadableConfigFails(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"), "policy")
	assert.Error(t, err)
}
