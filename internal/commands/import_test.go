package commands_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ccimport/internal/commands"
	"github.com/ledgerline/ccimport/internal/config"
	"github.com/ledgerline/ccimport/internal/model"
	"github.com/ledgerline/ccimport/internal/runlog"
	"github.com/ledgerline/ccimport/internal/store/csvstore"
)

type workspace struct {
	root      string
	cfgPath   string
	importDir string
	storeDir  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	t.Setenv(config.EnvDSN, "")
	root := t.TempDir()
	_, err := execute(t, "", "init", root, "--import-dir", "exports")
	require.NoError(t, err)

	w := workspace{
		root:      root,
		cfgPath:   filepath.Join(root, config.FileName),
		importDir: filepath.Join(root, "exports"),
		storeDir:  filepath.Join(root, "store"),
	}
	require.NoError(t, os.MkdirAll(w.importDir, 0o755))
	return w
}

func (w workspace) addFixture(t *testing.T, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	w.addFile(t, name, string(data))
}

func (w workspace) addFile(t *testing.T, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(w.importDir, name), []byte(data), 0o644))
}

func (w workspace) records(t *testing.T) []model.Record {
	t.Helper()
	recs, err := csvstore.New(w.storeDir).Records(context.Background())
	require.NoError(t, err)
	return recs
}

func (w workspace) runLog(t *testing.T) []runlog.Entry {
	t.Helper()
	entries, err := runlog.Read(filepath.Join(w.root, "logs", "import-log.csv"))
	require.NoError(t, err)
	return entries
}

func (w workspace) editConfig(t *testing.T, edit func(*config.Config)) {
	t.Helper()
	cfg, err := config.Load(w.cfgPath)
	require.NoError(t, err)
	edit(cfg)
	require.NoError(t, config.Save(w.cfgPath, cfg))
}

// execute runs the CLI in-process and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImport_Commits(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "chase9999_may.csv")

	out, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Committed 4 transaction(s)")

	recs := w.records(t)
	require.Len(t, recs, 4)
	for _, r := range recs {
		assert.Equal(t, 5, r.AccountID, "chase_hyatt")
	}

	entries := w.runLog(t)
	require.Len(t, entries, 1)
	assert.Equal(t, runlog.ActionCommitted, entries[0].Action)
	assert.Equal(t, 4, entries[0].Committed)
	assert.Equal(t, []string{"chase9999_may.csv"}, entries[0].Files)
}

func TestImport_DisplayOrder(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "chase9999_may.csv")

	out, err := execute(t, "", "--config", w.cfgPath, "import", "--dry-run")
	require.NoError(t, err)

	amazon := strings.Index(out, "AMAZON MKTPLACE PMTS")
	coffee := strings.Index(out, "Coffee Shop")
	payment := strings.Index(out, "Payment Thank You-Mobile")
	require.True(t, amazon >= 0 && coffee >= 0 && payment >= 0, out)
	assert.Less(t, amazon, coffee, "larger amount first")
	assert.Less(t, coffee, payment)
	assert.Contains(t, out, "chase_hyatt")
	assert.Contains(t, out, "2023-05-04")
}

func TestImport_DryRunCommitsNothing(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "chase9999_may.csv")

	out, err := execute(t, "", "--config", w.cfgPath, "import", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "4 new, 0 duplicate")
	assert.Empty(t, w.records(t))

	entries := w.runLog(t)
	require.Len(t, entries, 1)
	assert.Equal(t, runlog.ActionDryRun, entries[0].Action)
}

func TestImport_SkipsDuplicates(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "chase9999_may.csv")

	_, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)

	out, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing new to import (4 duplicate(s) skipped)")
	assert.Len(t, w.records(t), 4)

	entries := w.runLog(t)
	require.Len(t, entries, 2)
	assert.Equal(t, runlog.ActionEmpty, entries[1].Action)
}

func TestImport_DryRunWithNothingNew(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "chase9999_may.csv")

	_, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)

	out, err := execute(t, "", "--config", w.cfgPath, "import", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing new to import")

	entries := w.runLog(t)
	require.Len(t, entries, 2)
	assert.Equal(t, runlog.ActionDryRun, entries[1].Action)
	assert.Equal(t, 0, entries[1].Staged)
}

func TestImport_PromptAccepts(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "capitalone.csv")

	out, err := execute(t, "maybe\n\n", "--config", w.cfgPath, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "Commit 3 transaction(s)? [Y/n]")
	assert.Contains(t, out, "Please answer yes or no.")
	assert.Len(t, w.records(t), 3)
}

func TestImport_PromptDeclines(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "capitalone.csv")

	_, err := execute(t, "no\n", "--config", w.cfgPath, "import")
	require.ErrorIs(t, err, commands.ErrDeclined)
	assert.Empty(t, w.records(t))

	entries := w.runLog(t)
	require.Len(t, entries, 1)
	assert.Equal(t, runlog.ActionDeclined, entries[0].Action)
	assert.Equal(t, 3, entries[0].Staged)
}

func TestImport_PromptEOF(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "capitalone.csv")

	_, err := execute(t, "", "--config", w.cfgPath, "import")
	require.Error(t, err)
	assert.Empty(t, w.records(t))
}

func TestImport_UnclassifiedAbortsWholeRun(t *testing.T) {
	w := newWorkspace(t)
	w.addFixture(t, "chase9999_may.csv")
	w.addFile(t, "mystery_card.csv", "date,description,amount,memo\n05/01/2023,Thing,-1.00,\n")

	_, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_card.csv")
	assert.Empty(t, w.records(t), "no partial commit")
}

func TestImport_MultipleInstitutions(t *testing.T) {
	w := newWorkspace(t)
	for _, name := range []string{"boa_combined.csv", "capitalone.csv", "chase9999_may.csv", "export_20230531.csv"} {
		w.addFixture(t, name)
	}

	_, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)

	byAccount := map[int]int{}
	for _, r := range w.records(t) {
		byAccount[r.AccountID]++
	}
	assert.Equal(t, map[int]int{1: 1, 3: 1, 5: 4, 7: 3, 9: 2}, byAccount, "checking row skipped")
}

func TestImport_MoveProcessed(t *testing.T) {
	w := newWorkspace(t)
	w.editConfig(t, func(c *config.Config) { c.Import.MoveProcessed = true })
	w.addFixture(t, "capitalone.csv")

	_, err := execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(w.importDir, "processed", "capitalone.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(w.importDir, "capitalone.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestImport_NoFiles(t *testing.T) {
	w := newWorkspace(t)

	out, err := execute(t, "", "--config", w.cfgPath, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "No .csv files")
}

func TestImport_DirFlag(t *testing.T) {
	w := newWorkspace(t)
	other := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "capitalone.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(other, "capitalone.csv"), data, 0o644))

	_, err = execute(t, "", "--config", w.cfgPath, "import", "--yes", "--dir", other)
	require.NoError(t, err)
	assert.Len(t, w.records(t), 3)
}

func TestImport_MissingConfig(t *testing.T) {
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "import")
	require.Error(t, err)
}

func TestImport_BadLogLevel(t *testing.T) {
	w := newWorkspace(t)
	_, err := execute(t, "", "--config", w.cfgPath, "--log-level", "loud", "import")
	require.Error(t, err)
}

func TestImport_GitAutoCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv(config.EnvDSN, "")
	root := t.TempDir()
	_, err := execute(t, "", "init", root, "--import-dir", "exports", "--git")
	require.NoError(t, err)
	w := workspace{
		root:      root,
		cfgPath:   filepath.Join(root, config.FileName),
		importDir: filepath.Join(root, "exports"),
		storeDir:  filepath.Join(root, "store"),
	}
	require.NoError(t, os.MkdirAll(w.importDir, 0o755))
	w.addFixture(t, "capitalone.csv")

	_, err = execute(t, "", "--config", w.cfgPath, "import", "--yes")
	require.NoError(t, err)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = w.storeDir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "import: 3 transaction(s) from 1 file(s)", strings.TrimSpace(string(out)))
}
