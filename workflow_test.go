/*
 * workflow_test.go, part of vaspinit.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package vasp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagSpec(t *testing.T) {
	f, err := ParseFlagSpec("TTT")
	require.NoError(t, err)
	assert.Equal(t, [3]bool{true, true, true}, *f)
	f, err = ParseFlagSpec("fft")
	require.NoError(t, err)
	assert.Equal(t, [3]bool{false, false, true}, *f)
	for _, bad := range []string{"", "TT", "TTTT", "ABC", "T T"} {
		_, err := ParseFlagSpec(bad)
		require.ErrorIs(t, err, ErrInvalidFlagSpec, "spec %q", bad)
	}
}

func TestFormatFlagSpec(t *testing.T) {
	assert.Equal(t, "FFT", FormatFlagSpec([3]bool{false, false, true}))
	assert.Equal(t, "TTT", FormatFlagSpec([3]bool{true, true, true}))
}

func TestPointsFromIndices(t *testing.T) {
	p := siFramework(t)
	a, b, err := PointsFromIndices(p, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, 0, 0}, a)
	assert.Equal(t, [3]float64{2.5, 2.5, 2.5}, b)
	_, _, err = PointsFromIndices(p, 1, 3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = PointsFromIndices(p, 0, 2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

//TestWorkflowChain runs the full pipeline through files: ions from the last
//PDB frame, then an NH3 between two points, reading back each intermediate.
func TestWorkflowChain(t *testing.T) {
	dir := t.TempDir()
	withIons := filepath.Join(dir, "POSCAR.ions")
	final := filepath.Join(dir, "POSCAR.final")
	wf := new(Workflow)

	err := wf.AddIonsFromPDB("test/POSCAR", "test/ions.pdb", withIons, -1, nil, nil, true)
	require.NoError(t, err)
	p, err := PoscarRead(withIons)
	require.NoError(t, err)
	assert.Equal(t, []string{"Si", "Na", "Cl"}, p.Symbols)
	assert.Equal(t, []int{2, 1, 1}, p.Counts)
	na, err := p.CartCoord(2)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, na[0], 1e-9)

	err = wf.AddAmmoniaBetween(withIons, "test/NH3.def", final,
		[3]float64{4, 5, 5}, [3]float64{6, 5, 5}, nil)
	require.NoError(t, err)
	p, err = PoscarRead(final)
	require.NoError(t, err)
	assert.Equal(t, []string{"Si", "Na", "Cl", "N", "H"}, p.Symbols)
	assert.Equal(t, []int{2, 1, 1, 1, 3}, p.Counts)
	assert.Len(t, p.FracCoords, 8)
	assert.Len(t, p.Flags, 8)
}

func TestPlanRun(t *testing.T) {
	dir := t.TempDir()
	withIons := filepath.Join(dir, "POSCAR.ions")
	final := filepath.Join(dir, "POSCAR.final")
	planText := fmt.Sprintf(`steps:
  - kind: add-ions
    poscar: test/POSCAR
    pdb: test/ions.pdb
    out: %s
    model: 0
    flags: TTT
  - kind: add-h2
    poscar: %s
    def: test/H2.def
    out: %s
    idx1: 1
    idx2: 2
    offset: 1.0
    direction: "-"
`, withIons, withIons, final)
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(planText), 0644))

	plan, err := PlanRead(planPath)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.NotNil(t, plan.Steps[0].Model)
	assert.Equal(t, 0, *plan.Steps[0].Model)

	wf := new(Workflow)
	require.NoError(t, wf.Run(plan))
	p, err := PoscarRead(final)
	require.NoError(t, err)
	assert.Equal(t, []string{"Si", "Na", "Cl", "H"}, p.Symbols)
	assert.Equal(t, []int{2, 1, 1, 2}, p.Counts)
}

func TestPlanUnknownStep(t *testing.T) {
	plan := &Plan{Steps: []PlanStep{{Kind: "add-water"}}}
	err := new(Workflow).Run(plan)
	require.ErrorIs(t, err, ErrUnknownStep)
}

func TestPlanRejectsUnknownFields(t *testing.T) {
	text := `steps:
  - kind: add-ions
    poscar: a
    pdb: b
    out: c
    modle: 3
`
	_, err := PlanParse(strings.NewReader(text))
	require.Error(t, err)
}

func TestPlanMissingPoints(t *testing.T) {
	plan := &Plan{Steps: []PlanStep{{
		Kind:   "add-h2",
		Poscar: "test/POSCAR",
		Def:    "test/H2.def",
		Out:    filepath.Join(t.TempDir(), "out"),
	}}}
	err := new(Workflow).Run(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "point1/point2")
}
