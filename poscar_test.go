/*
 * poscar_test.go, part of vaspinit.
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
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoscarRead(t *testing.T) {
	p, err := PoscarRead("test/POSCAR")
	require.NoError(t, err)
	assert.Equal(t, "Si framework", p.Comment)
	assert.Equal(t, 1.0, p.Scale)
	assert.Equal(t, [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}}, p.Lattice)
	assert.Equal(t, []string{"Si"}, p.Symbols)
	assert.Equal(t, []int{2}, p.Counts)
	assert.Equal(t, Direct, p.CoordType)
	assert.True(t, p.HasSelective)
	require.Len(t, p.FracCoords, 2)
	require.Len(t, p.Flags, 2)
	assert.Equal(t, [3]float64{0.25, 0.25, 0.25}, p.FracCoords[1])
	assert.Equal(t, [3]bool{false, false, false}, p.Flags[0])
	assert.Equal(t, [3]bool{true, true, true}, p.Flags[1])
}

func TestPoscarParseAnonymous(t *testing.T) {
	text := `anonymous cell
1.0
 5.0 0.0 0.0
 0.0 5.0 0.0
 0.0 0.0 5.0
2 1
Direct
 0.0 0.0 0.0
 0.5 0.5 0.5
 0.25 0.25 0.25
`
	p, err := PoscarParse(strings.NewReader(text))
	require.NoError(t, err)
	assert.Empty(t, p.Symbols)
	assert.Equal(t, []int{2, 1}, p.Counts)
	assert.False(t, p.HasSelective)
	assert.Nil(t, p.Flags)
	assert.Equal(t, 3, p.NAtoms())
}

func TestPoscarParseCartesian(t *testing.T) {
	text := `cartesian input
1.0
 10.0 0.0 0.0
 0.0 10.0 0.0
 0.0 0.0 10.0
O
1
Kartesisch
 2.5 5.0 7.5
`
	p, err := PoscarParse(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, Cartesian, p.CoordType)
	assert.InDelta(t, 0.25, p.FracCoords[0][0], 1e-12)
	assert.InDelta(t, 0.50, p.FracCoords[0][1], 1e-12)
	assert.InDelta(t, 0.75, p.FracCoords[0][2], 1e-12)
}

func TestPoscarParseSymbolsNormalized(t *testing.T) {
	text := `labels with charge decorations
1.0
 5.0 0.0 0.0
 0.0 5.0 0.0
 0.0 0.0 5.0
na+ CL-
1 1
Direct
 0.0 0.0 0.0
 0.5 0.5 0.5
`
	p, err := PoscarParse(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"Na", "Cl"}, p.Symbols)
}

func TestPoscarParseSymbolTruncation(t *testing.T) {
	//More symbols than counts: the extra trailing symbols are dropped.
	text := `too many symbols
1.0
 5.0 0.0 0.0
 0.0 5.0 0.0
 0.0 0.0 5.0
Si O H
1 1
Direct
 0.0 0.0 0.0
 0.5 0.5 0.5
`
	p, err := PoscarParse(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"Si", "O"}, p.Symbols)
	assert.Equal(t, []int{1, 1}, p.Counts)
}

func TestPoscarParseErrors(t *testing.T) {
	head := `cell
1.0
 5.0 0.0 0.0
 0.0 5.0 0.0
 0.0 0.0 5.0
`
	cases := []struct {
		name string
		text string
		want error
	}{
		{"truncated header", "only a comment\n1.0\n", ErrTruncatedFile},
		{"malformed lattice", "cell\n1.0\n 5.0 0.0\n 0.0 5.0 0.0\n 0.0 0.0 5.0\nSi \n1 \nDirect\n 0 0 0\n", ErrMalformedLattice},
		{"missing counts", head + "Si O \nnot numbers\nDirect\n 0 0 0\n", ErrMissingCounts},
		{"symbols shorter than counts", head + "Si \n1 1 \nDirect\n 0 0 0\n 1 1 1\n", ErrSymbolCountMismatch},
		{"unknown coordinate type", head + "Si \n1 \nFractional\n 0 0 0\n", ErrUnknownCoordType},
		{"truncated coordinates", head + "Si \n2 \nDirect\n 0 0 0\n", ErrTruncatedFile},
		{"singular lattice", "cell\n1.0\n 5.0 0.0 0.0\n 5.0 0.0 0.0\n 0.0 0.0 5.0\nSi \n1 \nDirect\n 0 0 0\n", ErrSingularMatrix},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := PoscarParse(strings.NewReader(c.text))
			require.ErrorIs(t, err, c.want)
		})
	}
}

func TestPoscarSelectiveShortLines(t *testing.T) {
	//Selective dynamics declared, but the coordinate lines carry no T/F
	//tokens: every atom defaults to (T,T,T).
	text := `short selective lines
1.0
 5.0 0.0 0.0
 0.0 5.0 0.0
 0.0 0.0 5.0
Si
2
Selective dynamics
Direct
 0.0 0.0 0.0
 0.5 0.5 0.5   F  F  T
`
	p, err := PoscarParse(strings.NewReader(text))
	require.NoError(t, err)
	require.True(t, p.HasSelective)
	assert.Equal(t, [3]bool{true, true, true}, p.Flags[0])
	assert.Equal(t, [3]bool{false, false, true}, p.Flags[1])
}

func TestPoscarRoundTrip(t *testing.T) {
	p, err := PoscarRead("test/POSCAR")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, PoscarSerialize(p, &buf))
	p2, err := PoscarParse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(p, p2, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("round trip changed the structure (-first +second):\n%s", diff)
	}
}

func TestPoscarWriteCartesianOverride(t *testing.T) {
	p, err := PoscarRead("test/POSCAR")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, PoscarSerialize(p, &buf, Cartesian))
	out := buf.String()
	assert.Contains(t, out, "Cartesian")
	p2, err := PoscarParse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Cartesian, p2.CoordType)
	//the stored fractional coordinates survive the conversion
	for i := range p.FracCoords {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, p.FracCoords[i][c], p2.FracCoords[i][c], 1e-9)
		}
	}
	assert.Equal(t, p.Flags, p2.Flags)
}

func TestLatticeCartVolumeMode(t *testing.T) {
	p := &Poscar{
		Scale:   -1000.0, //target volume 1000 A^3
		Lattice: [3][3]float64{{5, 0, 0}, {0, 5, 0}, {0, 0, 5}},
	}
	l, err := p.LatticeCart()
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, Det3(l), 1e-9)
	assert.InDelta(t, 10.0, l[0][0], 1e-9)
}

func TestLatticeCartInvalidVolume(t *testing.T) {
	p := &Poscar{
		Scale: -1000.0,
		//left-handed basis: negative volume
		Lattice: [3][3]float64{{0, 5, 0}, {5, 0, 0}, {0, 0, 5}},
	}
	_, err := p.LatticeCart()
	require.ErrorIs(t, err, ErrInvalidVolume)

	p = &Poscar{Scale: 0, Lattice: [3][3]float64{{5, 0, 0}, {0, 5, 0}, {0, 0, 5}}}
	_, err = p.LatticeCart()
	require.ErrorIs(t, err, ErrInvalidVolume)
}

func TestCartCoord(t *testing.T) {
	p, err := PoscarRead("test/POSCAR")
	require.NoError(t, err)
	c, err := p.CartCoord(1)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{2.5, 2.5, 2.5}, c)
	_, err = p.CartCoord(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMasses(t *testing.T) {
	p, err := PoscarRead("test/POSCAR")
	require.NoError(t, err)
	m, err := p.Masses()
	require.NoError(t, err)
	assert.Equal(t, []float64{28.09, 28.09}, m)

	anon := &Poscar{Counts: []int{1}, FracCoords: [][3]float64{{0, 0, 0}}}
	_, err = anon.Masses()
	require.Error(t, err)
}

func TestPoscarCopyNoAliasing(t *testing.T) {
	p, err := PoscarRead("test/POSCAR")
	require.NoError(t, err)
	q := p.Copy()
	q.FracCoords[0][0] = 0.9
	q.Flags[0][0] = true
	q.Counts[0] = 99
	q.Symbols[0] = "Ge"
	assert.Equal(t, 0.0, p.FracCoords[0][0])
	assert.False(t, p.Flags[0][0])
	assert.Equal(t, 2, p.Counts[0])
	assert.Equal(t, "Si", p.Symbols[0])
}
