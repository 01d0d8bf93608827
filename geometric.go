/*
 * geometric.go, part of vaspinit.
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
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//A lattice determinant smaller than this is considered zero.
const singularEps = 1e-14

func dense3(m *[3][3]float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

//Det3 returns the determinant of the 3x3 matrix m.
func Det3(m *[3][3]float64) float64 {
	return mat.Det(dense3(m))
}

//Invert3 returns the inverse of the 3x3 matrix m. It fails with
//ErrSingularMatrix if the determinant of m is smaller than 1e-14
//in absolute value.
func Invert3(m *[3][3]float64) (*[3][3]float64, error) {
	d := dense3(m)
	det := mat.Det(d)
	if math.Abs(det) < singularEps {
		return nil, fmt.Errorf("%w (det = %g)", ErrSingularMatrix, det)
	}
	var inv mat.Dense
	if err := inv.Inverse(d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	r := new([3][3]float64)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = inv.At(i, j)
		}
	}
	return r, nil
}

//MatVec returns the product of the 3x3 matrix m and the vector v,
//row-major: r[i] = sum_j m[i][j]*v[j].
func MatVec(m *[3][3]float64, v [3]float64) [3]float64 {
	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

//WrapFrac maps each component of the fractional coordinate f into [0,1).
func WrapFrac(f [3]float64) [3]float64 {
	for i := range f {
		f[i] = f[i] - math.Floor(f[i])
	}
	return f
}

//NormalizeElement turns an externally sourced species label into conventional
//element-symbol capitalization: non-alphabetic characters are stripped, a single
//remaining letter is upper-cased and longer labels become Titlecase ("na" -> "Na",
//"CL-" -> "Cl"). An empty result becomes the unknown-element sentinel "X".
//Every label read from a PDB or def file goes through here before it is
//compared or stored.
func NormalizeElement(raw string) string {
	s := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, raw)
	if s == "" {
		return "X"
	}
	if len(s) == 1 {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
