package casescript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosweep/types"
)

const journal = `; case MESH_NAME at Re VALUE_RE
/file/read-case MESH_FILE
/define/boundary-conditions/velocity-inlet inlet no no yes yes no VALUE_VELOCITY no 0
/solve/iterate VALUE_ITERS
/file/write-case-data MESH_NAME_ReVALUE_RE.cas.h5
/report/summary MESH_NAME
`

func testCase() types.CaseSpec {
	return types.CaseSpec{
		Mesh:          types.NewMeshSpec("meshes/pipe.msh"),
		Re:            50,
		Velocity:      2.848408e-3,
		MaxIterations: 1000,
	}
}

func TestRender(t *testing.T) {
	g := New([]byte(journal))
	out := string(g.Render(testCase()))
	assert.Equal(t, `; case pipe at Re 50
/file/read-case meshes/pipe.msh
/define/boundary-conditions/velocity-inlet inlet no no yes yes no 2.848408e-03 no 0
/solve/iterate 1000
/file/write-case-data pipe_Re50.cas.h5
/report/summary pipe
`, out)
	// Same case, same bytes
	assert.Equal(t, g.Render(testCase()), g.Render(testCase()))
}

func TestRenderAdjacentTokens(t *testing.T) {
	g := New([]byte("MESH_NAME_ReVALUE_RE.cas.h5\n"))
	assert.Equal(t, "pipe_Re50.cas.h5\n", string(g.Render(testCase())))
	g = New([]byte("VALUE_ITERSVALUE_RE (VALUE_RE) VALUE_RE VALUE_VELOCITY\n"))
	assert.Equal(t, "100050 (50) 50 2.848408e-03\n", string(g.Render(testCase())))
	// Fragments of a placeholder are not placeholders
	g = New([]byte("VALUE_R MESH_ VALUE_ITER\n"))
	assert.Equal(t, "VALUE_R MESH_ VALUE_ITER\n", string(g.Render(testCase())))
	g = New([]byte("no placeholders here\n"))
	assert.Equal(t, "no placeholders here\n", string(g.Render(testCase())))
}

func TestWrite(t *testing.T) {
	var (
		dir  = t.TempDir()
		tmpl = filepath.Join(dir, "template.jou")
	)
	require.NoError(t, os.WriteFile(tmpl, []byte(journal), 0644))
	g, err := Load(tmpl)
	require.NoError(t, err)
	assert.Equal(t, tmpl, g.TemplatePath)

	cs := testCase()
	assert.Equal(t, "run_pipe_Re50.jou", ScriptName(cs))
	path, err := g.Write(dir, cs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_pipe_Re50.jou"), path)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// Regeneration overwrites with identical content
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("stale journal line\n", 100)), 0644))
	_, err = g.Write(dir, cs)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = g.Write(filepath.Join(dir, "missing"), cs)
	assert.Error(t, err)
}

func TestTemplateMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jou"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplateMissing))
}
