package casescript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/gosweep/types"
)

var ErrTemplateMissing = errors.New("case template missing")

const (
	MeshFile      = "MESH_FILE"
	MeshName      = "MESH_NAME"
	ValueVelocity = "VALUE_VELOCITY"
	ValueRe       = "VALUE_RE"
	ValueIters    = "VALUE_ITERS"
)

// Longest first, so a placeholder is always replaced as a complete token
var Placeholders = []string{ValueVelocity, ValueIters, MeshFile, MeshName, ValueRe}

// Generator renders solver journals from a template read once at batch start
type Generator struct {
	TemplatePath string
	template     []byte
}

func Load(templatePath string) (g *Generator, err error) {
	var data []byte
	if data, err = os.ReadFile(templatePath); err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrTemplateMissing, templatePath, err)
		return
	}
	g = New(data)
	g.TemplatePath = templatePath
	return
}

func New(template []byte) *Generator {
	return &Generator{template: template}
}

func Values(cs types.CaseSpec) map[string]string {
	return map[string]string{
		MeshFile:      cs.Mesh.Path,
		MeshName:      cs.Mesh.Name,
		ValueVelocity: types.FormatVelocity(cs.Velocity),
		ValueRe:       types.FormatRe(cs.Re),
		ValueIters:    strconv.Itoa(cs.MaxIterations),
	}
}

/*
Render substitutes every occurrence of each placeholder. Tokens may touch other text,
MESH_NAME_ReVALUE_RE.cas.h5 renders as pipe_Re50.cas.h5.
*/
func (g *Generator) Render(cs types.CaseSpec) []byte {
	var (
		vals   = Values(cs)
		oldnew = make([]string, 0, 2*len(Placeholders))
	)
	for _, tok := range Placeholders {
		oldnew = append(oldnew, tok, vals[tok])
	}
	return []byte(strings.NewReplacer(oldnew...).Replace(string(g.template)))
}

// ScriptName is the journal file name for a case, run_<mesh>_Re<Re>.jou
func ScriptName(cs types.CaseSpec) string {
	return "run_" + cs.ID() + ".jou"
}

// Write renders the case journal into dir, overwriting an earlier copy
func (g *Generator) Write(dir string, cs types.CaseSpec) (path string, err error) {
	path = filepath.Join(dir, ScriptName(cs))
	if err = os.WriteFile(path, g.Render(cs), 0644); err != nil {
		err = fmt.Errorf("writing case script %s: %w", path, err)
	}
	return
}
