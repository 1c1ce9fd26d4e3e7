package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molnotation/internal/application/notation"
	"github.com/turtacn/molnotation/internal/config"
	"github.com/turtacn/molnotation/pkg/errors"
)

const ethanolJSON = `{
  "name": "ethanol",
  "atoms": [{"element": "C"}, {"element": "C"}, {"element": "O"}],
  "bonds": [
    {"begin": 0, "end": 1, "order": "single"},
    {"begin": 1, "end": 2, "order": "single"}
  ]
}`

const pseudoJSON = `{
  "atoms": [{"element": "C"}, {"kind": "pseudo", "label": "Ph"}],
  "bonds": [{"begin": 0, "end": 1, "order": "single"}]
}`

const twoDocsYAML = `name: ethanol
atoms:
  - element: C
  - element: C
  - element: O
bonds:
  - {begin: 0, end: 1, order: single}
  - {begin: 1, end: 2, order: single}
---
name: difluoroethene
atoms:
  - element: F
  - element: C
  - element: C
  - element: F
bonds:
  - {begin: 0, end: 1, order: single}
  - {begin: 1, end: 2, order: double}
  - {begin: 2, end: 3, order: single}
cis_trans:
  - bond: 1
    parity: trans
    substituents: [0, -1, 3, -1]
`

const queryJSON = `{
  "atoms": [{"kind": "query", "query": "#6"}, {"element": "C"}, {"element": "N"}],
  "bonds": [
    {"begin": 0, "end": 1, "order": "any"},
    {"begin": 1, "end": 2, "order": "single_or_double"}
  ]
}`

func TestSmiles_JSONFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)

	out, _, status := execute(t, "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "CCO\n", out)
}

func TestSmiles_YAMLStream(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "mols.yaml", twoDocsYAML)

	out, _, status := execute(t, "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "CCO\nF/C=C/F\n", out)
}

func TestSmiles_SniffsFormatWithoutExtension(t *testing.T) {
	dir := isolate(t)
	jsonPath := writeFile(t, dir, "ethanol", ethanolJSON)
	yamlPath := writeFile(t, dir, "mols", twoDocsYAML)

	out, _, status := execute(t, "smiles", jsonPath)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "CCO\n", out)

	out, _, status = execute(t, "smiles", yamlPath)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestSmiles_JSONArrayAndStream(t *testing.T) {
	dir := isolate(t)
	arr := writeFile(t, dir, "arr.json", "["+ethanolJSON+","+pseudoJSON+"]")
	stream := writeFile(t, dir, "stream.json", ethanolJSON+"\n"+pseudoJSON)

	for _, path := range []string{arr, stream} {
		out, _, status := execute(t, "smiles", path)
		require.Equal(t, errors.ExitOK, status, path)
		assert.Equal(t, "CCO\nC* |$;Ph$|\n", out, path)
	}
}

func TestSmiles_Stdin(t *testing.T) {
	isolate(t)
	cmd := NewRootCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&strings.Builder{})
	cmd.SetIn(strings.NewReader(ethanolJSON))
	cmd.SetArgs([]string{"smiles", "-"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "CCO\n", out.String())
}

func TestSmiles_JSONOutput(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)

	out, _, status := execute(t, "--output", "json", "smiles", path)
	require.Equal(t, errors.ExitOK, status)

	var resp notation.SerializeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "CCO", resp.Text)
	assert.Equal(t, "ethanol", resp.Name)
	assert.Equal(t, notation.NotationSMILES, resp.Notation)
	assert.Equal(t, []int{0, 1, 2}, resp.AtomOrder)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.Cached)
}

func TestSmiles_JSONOutputForSeveralDocuments(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "mols.yaml", twoDocsYAML)

	out, _, status := execute(t, "-o", "json", "smiles", path)
	require.Equal(t, errors.ExitOK, status)

	var resp []notation.SerializeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, []string{"/", "", "/"}, resp[1].Directions)
}

func TestSmiles_Flags(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "pseudo.json", pseudoJSON)

	out, _, status := execute(t, "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "C* |$;Ph$|\n", out)

	out, _, status = execute(t, "smiles", "--no-extension", path)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "C*\n", out)
}

func TestSmiles_Ranks(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)

	out, _, status := execute(t, "smiles", "--ranks", "2,1,0", path)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "OCC\n", out)

	multi := writeFile(t, dir, "mols.yaml", twoDocsYAML)
	_, stderr, status := execute(t, "smiles", "--ranks", "2,1,0", multi)
	assert.Equal(t, errors.ExitClientError, status)
	assert.Contains(t, stderr, "--ranks")
}

func TestNotationFlags_OnlyChangedFlagsOverride(t *testing.T) {
	cmd := NewSmilesCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--no-extension", "--sanitize-labels=false"}))

	f := flagsOf(t, cmd)
	o := f.overrides(cmd)
	require.NotNil(t, o.ExtensionBlock)
	assert.False(t, *o.ExtensionBlock)
	require.NotNil(t, o.SanitizePseudoLabels)
	assert.False(t, *o.SanitizePseudoLabels)
	assert.Nil(t, o.IgnoreHydrogens)
	assert.Nil(t, o.CanonizeChiralities)
	assert.Nil(t, o.IgnoreInvalidHCount)
	assert.Nil(t, o.DetachRSites)
}

// flagsOf rebuilds the flag set values of cmd into a notationFlags.
func flagsOf(t *testing.T, cmd *cobra.Command) *notationFlags {
	t.Helper()
	get := func(name string) bool {
		v, err := cmd.Flags().GetBool(name)
		require.NoError(t, err)
		return v
	}
	return &notationFlags{
		ignoreHydrogens:     get("ignore-hydrogens"),
		canonizeChiralities: get("canonize-chiralities"),
		noExtension:         get("no-extension"),
		ignoreInvalidHCount: get("ignore-invalid-hcount"),
		detachRSites:        get("detach-rsites"),
		sanitizeLabels:      get("sanitize-labels"),
	}
}

func TestSmarts_QueryDocument(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "query.json", queryJSON)

	out, _, status := execute(t, "smarts", path)
	require.Equal(t, errors.ExitOK, status)
	assert.True(t, strings.HasPrefix(out, "[#6]~"), out)

	_, stderr, status := execute(t, "smiles", path)
	assert.Equal(t, errors.ExitClientError, status)
	assert.Contains(t, stderr, "Error:")
}

func TestSmiles_InputErrors(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		content string
		file    string
	}{
		{"missing", "", "missing.json"},
		{"empty", "   \n", "empty.json"},
		{"malformed json", "{\"atoms\": [", "bad.json"},
		{"malformed yaml", "atoms: [\n  - : :", "bad.yaml"},
		{"no atoms", "{}", "none.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if tt.name != "missing" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			}
			out, stderr, status := execute(t, "smiles", path)
			assert.Equal(t, errors.ExitClientError, status)
			assert.Empty(t, out)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestSmiles_ArgumentCount(t *testing.T) {
	isolate(t)
	_, stderr, status := execute(t, "smiles")
	assert.Equal(t, errors.ExitClientError, status)
	assert.Contains(t, stderr, "exactly one FILE")
}

func TestSmiles_OperationLimitIsServerError(t *testing.T) {
	dir := isolate(t)
	t.Setenv("MOLNOTATION_NOTATION_OPERATION_LIMIT", "1")
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)

	_, _, status := execute(t, "smiles", path)
	assert.Equal(t, errors.ExitServerError, status)
}

func TestSmiles_RedisCache(t *testing.T) {
	dir := isolate(t)
	mr := miniredis.RunT(t)
	t.Setenv("MOLNOTATION_REDIS_ENABLED", "true")
	t.Setenv("MOLNOTATION_REDIS_ADDR", mr.Addr())
	t.Setenv("MOLNOTATION_NOTATION_CACHE_JITTER", "0")
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)

	var first, second notation.SerializeResponse
	out, _, status := execute(t, "-o", "json", "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	require.NoError(t, json.Unmarshal([]byte(out), &first))

	out, _, status = execute(t, "-o", "json", "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	require.NoError(t, json.Unmarshal([]byte(out), &second))

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	require.Len(t, mr.Keys(), 1)
	assert.Equal(t, config.DefaultCacheTTL, mr.TTL(mr.Keys()[0]))

	out, _, status = execute(t, "-o", "json", "--no-cache", "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	var third notation.SerializeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &third))
	assert.False(t, third.Cached)
}

func TestSmiles_RedisUnavailableFallsBack(t *testing.T) {
	dir := isolate(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("MOLNOTATION_REDIS_ENABLED", "true")
	t.Setenv("MOLNOTATION_REDIS_ADDR", addr)
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)

	out, stderr, status := execute(t, "smiles", path)
	require.Equal(t, errors.ExitOK, status)
	assert.Equal(t, "CCO\n", out)
	assert.Contains(t, stderr, "continuing without it")
}

func TestSmiles_MetricsFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "ethanol.json", ethanolJSON)
	metricsPath := filepath.Join(dir, "molnotation.prom")

	_, _, status := execute(t, "--metrics-file", metricsPath, "smiles", path)
	require.Equal(t, errors.ExitOK, status)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `molnotation_serializations_total{notation="smiles",status="ok"} 1`)
}
