package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/nav"
	"github.com/bundledoc/bundledoc/internal/pool"
	"github.com/bundledoc/bundledoc/internal/schema"
)

const vehicleJSON = `{"tag":"Class","name":"Vehicle","visibility":"public","bases":[{"name":"Entity","index":1}],` +
	`"fields":[{"tag":"Field","name":"speed","type":{"tag":"Type","kind":"Prim","name":"Float"},` +
	`"isNative":false,"isEdit":false,"isInline":false,"isConst":false,"isRep":false,"isPersistent":false}],` +
	`"methods":[],"isNative":false,"isAbstract":false,"isFinal":false,"isStruct":false}` + "\n"

const garageIndexJSON = `[{"name":"Entity","index":1},{"name":"Vehicle","index":2,"base":1},` +
	`{"name":"Truck","index":5,"base":2},{"name":"Spawn","index":6},{"name":"Mode","index":7},` +
	`{"name":"Broken","index":9}]` + "\n"

func TestGenerateWritesDocumentsAndIndex(t *testing.T) {
	poolPath := garagePool(t)
	outDir := filepath.Join(t.TempDir(), "out")

	genCmd := newGenerateCmdForTest()
	mustSetFlag(t, genCmd, "output", outDir)
	mustSetFlag(t, genCmd, "keep-going", "true")
	if err := RunGenerate(genCmd, []string{poolPath}); err != nil {
		t.Fatalf("RunGenerate failed: %v", err)
	}

	for _, name := range []string{"1.json", "2.json", "5.json", "6.json", "7.json", "index.json"} {
		assertExists(t, filepath.Join(outDir, name))
	}
	// Broken has a dangling field type; the float type and source file are not roots we export.
	assertNotExists(t, filepath.Join(outDir, "9.json"))
	assertNotExists(t, filepath.Join(outDir, "4.json"))
	assertNotExists(t, filepath.Join(outDir, "10.json"))

	if got := mustReadFile(t, filepath.Join(outDir, "2.json")); got != vehicleJSON {
		t.Fatalf("unexpected Vehicle document:\n%s", got)
	}
	if got := mustReadFile(t, filepath.Join(outDir, "index.json")); got != garageIndexJSON {
		t.Fatalf("unexpected index:\n%s", got)
	}
}

func TestGenerateJSONSummaryIsIdempotent(t *testing.T) {
	poolPath := garagePool(t)
	outDir := filepath.Join(t.TempDir(), "out")

	run := func() RunSummary {
		genCmd := newGenerateCmdForTest()
		mustSetFlag(t, genCmd, "output", outDir)
		mustSetFlag(t, genCmd, "keep-going", "true")
		mustSetFlag(t, genCmd, "json", "true")
		mustSetFlag(t, genCmd, "workers", "3")
		var stdout bytes.Buffer
		genCmd.SetOut(&stdout)
		if err := RunGenerate(genCmd, []string{poolPath}); err != nil {
			t.Fatalf("RunGenerate failed: %v", err)
		}
		var summary RunSummary
		if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
			t.Fatalf("failed to decode summary: %v\n%s", err, stdout.String())
		}
		return summary
	}

	first := run()
	if first.Roots != 6 || first.Documents != 5 || first.Failed != 1 || first.IndexEntries != 6 {
		t.Fatalf("unexpected counts: %+v", first)
	}
	if first.Files != 6 || first.Rewritten != 6 {
		t.Fatalf("expected 6 files written on first run, got files=%d rewritten=%d", first.Files, first.Rewritten)
	}
	if len(first.Failures) != 1 || first.Failures[0].Name != "Broken" || first.Failures[0].Index != 9 {
		t.Fatalf("unexpected failures: %+v", first.Failures)
	}
	if !strings.Contains(first.Failures[0].Reason, "definition 99") {
		t.Fatalf("expected failure reason to name the dangling index, got %q", first.Failures[0].Reason)
	}

	firstVehicle := mustReadFile(t, filepath.Join(outDir, "2.json"))
	second := run()
	if second.Rewritten != 0 || len(second.ChangedFiles) != 0 {
		t.Fatalf("expected no rewrites on second run, got %d (%v)", second.Rewritten, second.ChangedFiles)
	}
	if mustReadFile(t, filepath.Join(outDir, "2.json")) != firstVehicle {
		t.Fatalf("expected deterministic output between runs")
	}
}

func TestGenerateStrictModeFailsAfterWritingValidDocuments(t *testing.T) {
	poolPath := garagePool(t)
	outDir := filepath.Join(t.TempDir(), "out")

	genCmd := newGenerateCmdForTest()
	mustSetFlag(t, genCmd, "output", outDir)
	err := RunGenerate(genCmd, []string{poolPath})
	if !errors.Is(err, ErrDefinitionsFailed) {
		t.Fatalf("expected ErrDefinitionsFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 of 6") {
		t.Fatalf("expected failure count in error, got %q", err.Error())
	}

	assertExists(t, filepath.Join(outDir, "2.json"))
	assertExists(t, filepath.Join(outDir, "index.json"))
	assertNotExists(t, filepath.Join(outDir, "9.json"))
}

func TestGenerateCheckReportsStaleOutputWithoutWriting(t *testing.T) {
	poolPath := garagePool(t)
	outDir := filepath.Join(t.TempDir(), "out")

	genCmd := newGenerateCmdForTest()
	mustSetFlag(t, genCmd, "output", outDir)
	mustSetFlag(t, genCmd, "keep-going", "true")
	if err := RunGenerate(genCmd, []string{poolPath}); err != nil {
		t.Fatalf("RunGenerate failed: %v", err)
	}

	checkCmd := newGenerateCmdForTest()
	mustSetFlag(t, checkCmd, "output", outDir)
	mustSetFlag(t, checkCmd, "keep-going", "true")
	mustSetFlag(t, checkCmd, "check", "true")
	var clean bytes.Buffer
	checkCmd.SetOut(&clean)
	if err := RunGenerate(checkCmd, []string{poolPath}); err != nil {
		t.Fatalf("expected fresh output to pass --check: %v", err)
	}
	if !strings.Contains(clean.String(), "output is up to date") {
		t.Fatalf("expected up-to-date message, got:\n%s", clean.String())
	}

	vehiclePath := filepath.Join(outDir, "2.json")
	mustWriteFile(t, vehiclePath, "{}\n")
	if err := os.Remove(filepath.Join(outDir, "7.json")); err != nil {
		t.Fatalf("failed to remove 7.json: %v", err)
	}

	staleCmd := newGenerateCmdForTest()
	mustSetFlag(t, staleCmd, "output", outDir)
	mustSetFlag(t, staleCmd, "keep-going", "true")
	mustSetFlag(t, staleCmd, "check", "true")
	var stdout bytes.Buffer
	staleCmd.SetOut(&stdout)
	err := RunGenerate(staleCmd, []string{poolPath})
	if !errors.Is(err, ErrStaleOutput) {
		t.Fatalf("expected ErrStaleOutput, got %v", err)
	}

	text := stdout.String()
	for _, want := range []string{"--- a/2.json", "+++ b/2.json", "-{}", "+++ b/7.json", "stale files (2): 2.json, 7.json"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected check output to contain %q, got:\n%s", want, text)
		}
	}
	if got := mustReadFile(t, vehiclePath); got != "{}\n" {
		t.Fatalf("--check must not rewrite files, got %q", got)
	}
	assertNotExists(t, filepath.Join(outDir, "7.json"))
}

func TestGenerateRemovesDocumentOfRootThatStoppedEncoding(t *testing.T) {
	poolPath := garagePool(t)
	outDir := filepath.Join(t.TempDir(), "out")

	genCmd := newGenerateCmdForTest()
	mustSetFlag(t, genCmd, "output", outDir)
	mustSetFlag(t, genCmd, "keep-going", "true")
	if err := RunGenerate(genCmd, []string{poolPath}); err != nil {
		t.Fatalf("RunGenerate failed: %v", err)
	}

	// Broken encoded in an earlier run of an older pool; notes.txt is not ours.
	brokenPath := filepath.Join(outDir, "9.json")
	mustWriteFile(t, brokenPath, "{\"tag\":\"Class\",\"name\":\"Broken\"}\n")
	notesPath := filepath.Join(outDir, "notes.txt")
	mustWriteFile(t, notesPath, "keep\n")

	checkCmd := newGenerateCmdForTest()
	mustSetFlag(t, checkCmd, "output", outDir)
	mustSetFlag(t, checkCmd, "keep-going", "true")
	mustSetFlag(t, checkCmd, "check", "true")
	var checkOut bytes.Buffer
	checkCmd.SetOut(&checkOut)
	err := RunGenerate(checkCmd, []string{poolPath})
	if !errors.Is(err, ErrStaleOutput) {
		t.Fatalf("expected ErrStaleOutput for leftover 9.json, got %v", err)
	}
	for _, want := range []string{"--- a/9.json", "+++ /dev/null", "stale files (1): 9.json"} {
		if !strings.Contains(checkOut.String(), want) {
			t.Fatalf("expected check output to contain %q, got:\n%s", want, checkOut.String())
		}
	}
	assertExists(t, brokenPath)

	writeCmd := newGenerateCmdForTest()
	mustSetFlag(t, writeCmd, "output", outDir)
	mustSetFlag(t, writeCmd, "keep-going", "true")
	mustSetFlag(t, writeCmd, "json", "true")
	var writeOut bytes.Buffer
	writeCmd.SetOut(&writeOut)
	if err := RunGenerate(writeCmd, []string{poolPath}); err != nil {
		t.Fatalf("RunGenerate failed: %v", err)
	}
	var summary RunSummary
	if err := json.Unmarshal(writeOut.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode summary: %v\n%s", err, writeOut.String())
	}
	if summary.Removed != 1 || len(summary.RemovedFiles) != 1 || summary.RemovedFiles[0] != "9.json" {
		t.Fatalf("expected 9.json to be reported removed, got %+v", summary)
	}
	assertNotExists(t, brokenPath)
	assertExists(t, notesPath)

	recheckCmd := newGenerateCmdForTest()
	mustSetFlag(t, recheckCmd, "output", outDir)
	mustSetFlag(t, recheckCmd, "keep-going", "true")
	mustSetFlag(t, recheckCmd, "check", "true")
	recheckCmd.SetOut(&bytes.Buffer{})
	if err := RunGenerate(recheckCmd, []string{poolPath}); err != nil {
		t.Fatalf("expected cleaned output to pass --check: %v", err)
	}
}

func TestGenerateCombinedYAMLFeedsNavigation(t *testing.T) {
	poolPath := garagePool(t)
	outDir := filepath.Join(t.TempDir(), "out")

	genCmd := newGenerateCmdForTest()
	mustSetFlag(t, genCmd, "output", outDir)
	mustSetFlag(t, genCmd, "format", "yaml")
	mustSetFlag(t, genCmd, "layout", "combined")
	mustSetFlag(t, genCmd, "keep-going", "true")
	if err := RunGenerate(genCmd, []string{poolPath}); err != nil {
		t.Fatalf("RunGenerate failed: %v", err)
	}

	assertExists(t, filepath.Join(outDir, "bundle.yaml"))
	assertNotExists(t, filepath.Join(outDir, "index.yaml"))
	assertNotExists(t, filepath.Join(outDir, "2.yaml"))

	bundle := mustReadFile(t, filepath.Join(outDir, "bundle.yaml"))
	if !strings.HasPrefix(bundle, "definitions:\n  - index: 1\n    document:\n      tag: Class\n      name: Entity\n") {
		t.Fatalf("unexpected bundle layout:\n%s", bundle)
	}

	basesCmd := newBasesCmdForTest()
	mustSetFlag(t, basesCmd, "dir", outDir)
	var stdout bytes.Buffer
	basesCmd.SetOut(&stdout)
	if err := nav.RunBases(basesCmd, []string{"Truck"}); err != nil {
		t.Fatalf("RunBases failed: %v", err)
	}
	want := "bases of Truck [5] (2)\n- Vehicle [2]\n- Entity [1]\n"
	if stdout.String() != want {
		t.Fatalf("unexpected bases output:\n%s", stdout.String())
	}
}

func TestRootCommandAppliesConfigFile(t *testing.T) {
	poolPath := garagePool(t)
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".bundledoc.yaml"), `output:
  dir: docs
  format: yaml
strict: false
log:
  level: warn
`)

	withWorkingDir(t, root, func() {
		stdout, stderr, err := executeRoot(t, "generate", poolPath)
		if err != nil {
			t.Fatalf("generate failed: %v\nstderr:\n%s", err, stderr)
		}
		assertExists(t, filepath.Join(root, "docs", "2.yaml"))
		assertExists(t, filepath.Join(root, "docs", "index.yaml"))
		assertNotExists(t, filepath.Join(root, "out"))

		if !strings.Contains(stdout, "output: docs (yaml, split)") {
			t.Fatalf("expected summary to reflect config, got:\n%s", stdout)
		}
		if !strings.Contains(stderr, "skipping definition") || !strings.Contains(stderr, "Broken") {
			t.Fatalf("expected a warning for the skipped definition, got:\n%s", stderr)
		}

		stdout, _, err = executeRoot(t, "symbol", "Spawn;Vector4Float")
		if err != nil {
			t.Fatalf("symbol failed: %v", err)
		}
		if stdout != "symbol matches for \"Spawn;Vector4Float\" (1)\n- Spawn [6]\n" {
			t.Fatalf("unexpected symbol output:\n%s", stdout)
		}
	})
}

func TestRootCommandFlagsOverrideConfig(t *testing.T) {
	poolPath := garagePool(t)
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "custom.yaml"), "strict: true\noutput:\n  dir: from-config\n")

	withWorkingDir(t, root, func() {
		_, stderr, err := executeRoot(t, "--config", "custom.yaml", "--log-level", "error", "generate", "-o", "from-flag", "--keep-going", poolPath)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		assertExists(t, filepath.Join(root, "from-flag", "index.json"))
		assertNotExists(t, filepath.Join(root, "from-config"))
		if strings.Contains(stderr, "skipping definition") {
			t.Fatalf("expected warnings to be filtered at error level, got:\n%s", stderr)
		}
	})
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".bundledoc.yaml"), "outptu:\n  dir: docs\n")

	withWorkingDir(t, root, func() {
		_, _, err := executeRoot(t, "version")
		if err == nil || !strings.Contains(err.Error(), "parse config") {
			t.Fatalf("expected config parse error, got %v", err)
		}

		_, _, err = executeRoot(t, "--config", "missing.yaml", "version")
		if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
			t.Fatalf("expected missing explicit config to fail, got %v", err)
		}
	})
}

func TestEncodeCommandPrintsSingleDocument(t *testing.T) {
	poolPath := garagePool(t)

	encodeCmd := newEncodeCmdForTest()
	var stdout bytes.Buffer
	encodeCmd.SetOut(&stdout)
	if err := RunEncode(encodeCmd, []string{poolPath, "6"}); err != nil {
		t.Fatalf("RunEncode failed: %v", err)
	}
	want := `{"tag":"Function","name":"Spawn;Vector4Float","parameters":[{"tag":"Parameter","name":"at",` +
		`"type":{"tag":"Type","kind":"Prim","name":"Float"},"isOut":false,"isOptional":true}],` +
		`"returnType":{"tag":"Type","kind":"Prim","name":"Float"},"visibility":"public","isStatic":true,` +
		`"isFinal":false,"isExec":false,"isCallback":false,"isNative":false,"source":"scripts/garage.script"}` + "\n"
	if stdout.String() != want {
		t.Fatalf("unexpected Spawn document:\n%s", stdout.String())
	}

	stdout.Reset()
	if err := RunEncode(encodeCmd, []string{poolPath, "10"}); err != nil {
		t.Fatalf("RunEncode for source file failed: %v", err)
	}
	if stdout.String() != "\"scripts/garage.script\"\n" {
		t.Fatalf("expected source file to encode as its path, got %q", stdout.String())
	}

	yamlCmd := newEncodeCmdForTest()
	mustSetFlag(t, yamlCmd, "format", "yaml")
	stdout.Reset()
	yamlCmd.SetOut(&stdout)
	if err := RunEncode(yamlCmd, []string{poolPath, "7"}); err != nil {
		t.Fatalf("RunEncode yaml failed: %v", err)
	}
	wantYAML := "tag: Enum\nname: Mode\nmembers:\n  - tag: EnumValue\n    name: Idle\n    value: 0\n"
	if stdout.String() != wantYAML {
		t.Fatalf("unexpected Mode yaml:\n%s", stdout.String())
	}
}

func TestEncodeCommandReportsBadIndices(t *testing.T) {
	poolPath := garagePool(t)

	cases := []struct {
		index  string
		target error
		text   string
	}{
		{index: "0", text: "undefined index"},
		{index: "abc", text: "invalid pool index"},
		{index: "9", target: pool.ErrResolution},
		{index: "42", target: pool.ErrResolution},
		{index: "13", target: encode.ErrUnsupportedKind},
	}
	for _, tc := range cases {
		encodeCmd := newEncodeCmdForTest()
		var stdout bytes.Buffer
		encodeCmd.SetOut(&stdout)
		err := RunEncode(encodeCmd, []string{poolPath, tc.index})
		if err == nil {
			t.Fatalf("expected index %s to fail", tc.index)
		}
		if tc.target != nil && !errors.Is(err, tc.target) {
			t.Fatalf("index %s: expected %v, got %v", tc.index, tc.target, err)
		}
		if tc.text != "" && !strings.Contains(err.Error(), tc.text) {
			t.Fatalf("index %s: expected %q in %q", tc.index, tc.text, err.Error())
		}
		if stdout.Len() != 0 {
			t.Fatalf("index %s: expected no partial output, got %q", tc.index, stdout.String())
		}
	}
}

func TestIndexCommandPrintsYAML(t *testing.T) {
	poolPath := garagePool(t)

	indexCmd := newEncodeCmdForTest()
	mustSetFlag(t, indexCmd, "format", "yaml")
	var stdout bytes.Buffer
	indexCmd.SetOut(&stdout)
	if err := RunIndex(indexCmd, []string{poolPath}); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}
	want := `- name: Entity
  index: 1
- name: Vehicle
  index: 2
  base: 1
- name: Truck
  index: 5
  base: 2
- name: Spawn
  index: 6
- name: Mode
  index: 7
- name: Broken
  index: 9
`
	if stdout.String() != want {
		t.Fatalf("unexpected index yaml:\n%s", stdout.String())
	}
}

func TestSchemaAndVersionCommands(t *testing.T) {
	stdout, _, err := executeRoot(t, "schema")
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	for _, want := range []string{`"openapi": "3.0.3"`, `"version": "` + schema.Version + `"`, `"` + schema.NameDocument + `"`} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected schema output to contain %s", want)
		}
	}

	stdout, _, err = executeRoot(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if stdout != "bundledoc test ("+schema.Version+")\n" {
		t.Fatalf("unexpected version output %q", stdout)
	}
}

func TestPrintRunSummaryText(t *testing.T) {
	var out bytes.Buffer
	err := PrintRunSummary(&out, RunSummary{
		Mode:         "generate",
		Pool:         "game.pool.yaml",
		Format:       "json",
		Layout:       "split",
		OutputDir:    "out",
		Roots:        12345,
		Documents:    12344,
		Failed:       1,
		IndexEntries: 12345,
		Files:        12345,
		Rewritten:    2,
		Bytes:        1234,
		DurationMS:   7,
		Removed:      1,
		ChangedFiles: []string{"1.json", "index.json"},
		RemovedFiles: []string{"9.json"},
	}, false)
	if err != nil {
		t.Fatalf("PrintRunSummary failed: %v", err)
	}
	want := `generate complete in 7ms
pool: game.pool.yaml
output: out (json, split)
definitions: roots=12,345 encoded=12,344 failed=1 index=12,345
files: written=12345 rewritten=2 removed=1 size=1.2 kB
changed files (2): 1.json, index.json
removed files (1): 9.json
`
	if out.String() != want {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
}

func TestSummarizePathsTruncates(t *testing.T) {
	paths := []string{"1.json", "2.json", "3.json"}
	if got := SummarizePaths(paths, 3); got != "1.json, 2.json, 3.json" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := SummarizePaths(paths, 1); got != "1.json ... (+2 more)" {
		t.Fatalf("unexpected truncated summary %q", got)
	}
}

func newGenerateCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("output", "", "")
	cmd.Flags().String("format", "", "")
	cmd.Flags().String("layout", "", "")
	cmd.Flags().Bool("indent", false, "")
	cmd.Flags().Int("workers", 0, "")
	cmd.Flags().Bool("check", false, "")
	cmd.Flags().Bool("keep-going", false, "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func newEncodeCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("format", "", "")
	cmd.Flags().Bool("indent", false, "")
	return cmd
}

func newBasesCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("dir", "", "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	rootCmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func garagePool(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", "garage.yaml"))
	if err != nil {
		t.Fatalf("failed to resolve testdata path: %v", err)
	}
	return path
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s to not exist", path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent: %v", path, err)
	}
}

func mustSetFlag(t *testing.T, cmd *cobra.Command, key, value string) {
	t.Helper()
	if err := cmd.Flags().Set(key, value); err != nil {
		t.Fatalf("failed to set --%s=%s: %v", key, value, err)
	}
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}
