/*
 * geometric_test.go, part of vaspinit.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestDet3(t *testing.T) {
	m := [3][3]float64{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}
	assert.InDelta(t, 24.0, Det3(&m), 1e-12)
	m = [3][3]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 10}}
	assert.InDelta(t, -3.0, Det3(&m), 1e-12)
}

func TestInvert3(t *testing.T) {
	m := [3][3]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 10}}
	inv, err := Invert3(&m)
	require.NoError(t, err)
	//m*inv must be the identity
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			got := 0.0
			for k := 0; k < 3; k++ {
				got += m[i][k] * inv[k][j]
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			if !scalar.EqualWithinAbs(got, want, 1e-12) {
				t.Errorf("(m*inv)[%d][%d] = %g, want %g", i, j, got, want)
			}
		}
	}
}

func TestInvert3Singular(t *testing.T) {
	m := [3][3]float64{{1, 2, 3}, {2, 4, 6}, {7, 8, 10}} //row 2 = 2*row 1
	_, err := Invert3(&m)
	require.ErrorIs(t, err, ErrSingularMatrix)
}

func TestMatVec(t *testing.T) {
	m := [3][3]float64{{1, 0, 0}, {0, 2, 0}, {1, 1, 1}}
	got := MatVec(&m, [3]float64{1, 2, 3})
	assert.Equal(t, [3]float64{1, 4, 6}, got)
}

func TestWrapFrac(t *testing.T) {
	got := WrapFrac([3]float64{1.25, -0.25, 0.75})
	assert.InDelta(t, 0.25, got[0], 1e-12)
	assert.InDelta(t, 0.75, got[1], 1e-12)
	assert.InDelta(t, 0.75, got[2], 1e-12)
	//already inside the cell: unchanged
	assert.Equal(t, [3]float64{0, 0.5, 0.999}, WrapFrac([3]float64{0, 0.5, 0.999}))
}

func TestNormalizeElement(t *testing.T) {
	cases := map[string]string{
		"na":    "Na",
		"NA":    "Na",
		"CL-":   "Cl",
		"h":     "H",
		" Fe2+": "Fe",
		"1":     "X",
		"":      "X",
		"Si":    "Si",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeElement(in), "NormalizeElement(%q)", in)
	}
}
