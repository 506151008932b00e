package generator

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/kyle_anderson/quickerr/pkg/config"
	"gitlab.com/kyle_anderson/quickerr/pkg/dsl"
	"gitlab.com/kyle_anderson/quickerr/pkg/spec"
)

const casesDir = "testdata"

func TestIsGeneratedFile(t *testing.T) {
	type testCase struct {
		input    string
		expected bool
	}
	g := New(config.Default(), nil)
	for testNo, test := range []testCase{
		{"some.go", false},
		{"some.gen.go", true},
		{"some_test.go", false},
		{"some.gen_test.go", true},
		{"gen.go", false},
		{"some.generated.go", false},
	} {
		test := test // Capture
		t.Run(fmt.Sprint(`case `, testNo), func(t *testing.T) {
			t.Log("test: ", test)
			if received := g.isGeneratedFile(test.input); received != test.expected {
				t.Errorf(`expected: %v, received: %v`, test.expected, received)
			}
		})
	}
}

func TestDestName(t *testing.T) {
	cfg := config.Default()
	cfg.Suffix = "qerr"
	g := New(cfg, nil)
	assert.Equal(t, filepath.Join("a", "x.qerr.go"), g.destName(filepath.Join("a", "x.go")))
	assert.Equal(t, filepath.Join("a", "x.qerr_test.go"), g.destName(filepath.Join("a", "x_test.go")))
	assert.True(t, g.isGeneratedFile(g.destName("x_test.go")))
	assert.True(t, g.isGeneratedFile(g.destName("x.go")))
}

/* Copies the files of testdata/name into a temporary directory. */
func copyCase(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(filepath.Join(casesDir, name))
	require.NoError(t, err)
	for _, entry := range entries {
		content, err := os.ReadFile(filepath.Join(casesDir, name, entry.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, entry.Name()), content, 0o644))
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerate(t *testing.T) {
	dir := copyCase(t, "demo")
	g := New(config.Default(), zaptest.NewLogger(t))
	require.NoError(t, g.Generate(dir))

	output, err := os.ReadFile(filepath.Join(dir, "errors.gen.go"))
	require.NoError(t, err)
	generated := string(output)
	assert.True(t, strings.HasPrefix(generated, "// Code generated by quickerrgen. DO NOT EDIT.\n"))
	assert.Contains(t, generated, "package demo\n")
	assert.Contains(t, generated, `"io/fs"`)
	assert.Contains(t, generated, "// NotFound is returned when a lookup misses.\ntype NotFound struct{}")
	assert.Contains(t, generated, "type Lookup struct {")
	assert.Contains(t, generated, "func LookupFromPathError(err *fs.PathError) Lookup {")
	assert.Contains(t, generated, "type timeout struct{}")
	assert.Contains(t, generated, "return \"timed out {again}\"")
	assert.Less(t, strings.Index(generated, "type NotFound"), strings.Index(generated, "type Lookup"))
	assert.Less(t, strings.Index(generated, "type Lookup"), strings.Index(generated, "type timeout"))

	_, err = parser.ParseFile(token.NewFileSet(), "errors.gen.go", output, 0)
	require.NoError(t, err)

	t.Run(`regeneration is byte-identical`, func(t *testing.T) {
		require.NoError(t, g.Generate(dir))
		again, err := os.ReadFile(filepath.Join(dir, "errors.gen.go"))
		require.NoError(t, err)
		assert.Equal(t, generated, string(again))
	})

	t.Run(`check passes when up to date`, func(t *testing.T) {
		require.NoError(t, g.Check(dir))
	})
}

func TestGenerateTestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "demo.go", "package demo\n")
	writeFile(t, dir, "demo_test.go", "package demo_test\n\n// quickerr! { fixtureErr \"fixture broken\" }\n")
	require.NoError(t, New(config.Default(), zaptest.NewLogger(t)).Generate(dir))

	output, err := os.ReadFile(filepath.Join(dir, "demo.gen_test.go"))
	require.NoError(t, err)
	assert.Contains(t, string(output), "package demo_test\n")
	assert.Contains(t, string(output), "type fixtureErr struct{}")
	assert.NoFileExists(t, filepath.Join(dir, "demo.gen.go"))
}

func TestCheck(t *testing.T) {
	source := "package demo\n\n// quickerr! { pub Leaf \"boom\" }\n"

	t.Run(`missing output`, func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "leaf.go", source)
		err := New(config.Default(), zaptest.NewLogger(t)).Check(dir)
		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "leaf.gen.go"))
	})

	t.Run(`outdated output`, func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "leaf.go", source)
		g := New(config.Default(), zaptest.NewLogger(t))
		require.NoError(t, g.Generate(dir))
		writeFile(t, dir, "leaf.go", strings.Replace(source, "boom", "bang", 1))
		require.Error(t, g.Check(dir))

		output, err := os.ReadFile(filepath.Join(dir, "leaf.gen.go"))
		require.NoError(t, err)
		assert.Contains(t, string(output), `"boom"`, "check must not rewrite outputs")
	})
}

func TestStaleOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leaf.go", "package demo\n\n// quickerr! { pub Leaf \"boom\" }\n")
	g := New(config.Default(), zaptest.NewLogger(t))
	require.NoError(t, g.Generate(dir))
	require.FileExists(t, filepath.Join(dir, "leaf.gen.go"))

	handWritten := writeFile(t, dir, "other.gen.go", "package demo\n\nconst handWritten = true\n")
	writeFile(t, dir, "other.go", "package demo\n")
	writeFile(t, dir, "leaf.go", "package demo\n")

	require.Error(t, g.Check(dir))
	require.FileExists(t, filepath.Join(dir, "leaf.gen.go"))

	require.NoError(t, g.Generate(dir))
	assert.NoFileExists(t, filepath.Join(dir, "leaf.gen.go"))
	assert.FileExists(t, handWritten)
}

func TestGenerateFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "package demo\n\n// quickerr! { Wrap \"failed\" - a.Err - b.Err }\n")
	writeFile(t, dir, "good.go", "package demo\n\n// quickerr! { pub Leaf \"boom\" }\n")
	err := New(config.Default(), zaptest.NewLogger(t)).Generate(dir)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "bad.gen.go"))
	assert.FileExists(t, filepath.Join(dir, "good.gen.go"))
}

func TestGenerateNoPackage(t *testing.T) {
	require.Error(t, New(config.Default(), nil).Generate(t.TempDir()))
}

/* Parses src as x.go and runs a single file job on it in write mode within a temporary directory. */
func processSource(t *testing.T, src string) *ErrFileProcessing {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "x.go", src)
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	require.NoError(t, err)
	return New(config.Default(), zaptest.NewLogger(t)).processFile(fileProcessingJob{fset, file, path, modeWrite})
}

func TestProcessFileErrors(t *testing.T) {
	t.Run(`syntax error position`, func(t *testing.T) {
		err := processSource(t, "package demo\n\n// quickerr! {\n//     Broken\n// }\n")
		require.NotNil(t, err)
		var blockErr *ErrBlock
		require.ErrorAs(t, err, &blockErr)
		assert.Equal(t, 5, blockErr.Pos.Line)
		assert.Equal(t, 4, blockErr.Pos.Column)
		var syntaxErr *dsl.SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		assert.True(t, strings.HasSuffix(blockErr.Error(), "x.go:5:4: syntax error: unexpected end of input: missing message literal"), blockErr.Error())
		assert.True(t, strings.HasSuffix(err.InputFile(), "x.go"))
		assert.True(t, strings.HasSuffix(err.OutputFile(), "x.gen.go"))
	})

	t.Run(`token position inside block comment`, func(t *testing.T) {
		err := processSource(t, "package demo\n\n/*\n\tquickerr! {\n\t\tName \"msg\"\n\t\t- fs.\n\t}\n*/\n")
		require.NotNil(t, err)
		var blockErr *ErrBlock
		require.ErrorAs(t, err, &blockErr)
		assert.Equal(t, 6, blockErr.Pos.Line)
		assert.Equal(t, 5, blockErr.Pos.Column)
	})

	t.Run(`collision`, func(t *testing.T) {
		err := processSource(t, "package demo\n\n// quickerr! { Wrap \"failed\" - a.Err - b.Err }\n")
		require.NotNil(t, err)
		var collision *spec.NameCollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, []string{"Err"}, collision.Names())
	})

	t.Run(`unterminated block`, func(t *testing.T) {
		err := processSource(t, "package demo\n\n// quickerr! {\n// Name \"x\"\n")
		require.NotNil(t, err)
		assert.True(t, errors.Is(err, errUnterminatedBlock))
		var blockErr *ErrBlock
		require.ErrorAs(t, err, &blockErr)
		assert.Equal(t, 3, blockErr.Pos.Line)
		assert.Equal(t, 4, blockErr.Pos.Column)
	})

	t.Run(`all or nothing per file`, func(t *testing.T) {
		err := processSource(t, "package demo\n\n// quickerr! { pub Leaf \"boom\" }\n\n// quickerr! { pub Broken }\n")
		require.NotNil(t, err)
		assert.NoFileExists(t, err.OutputFile())
	})
}
