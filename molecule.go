/*
 * molecule.go, part of vaspinit.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

//DefAtom is one row of a TraPPE-style .def geometry file: the site name and
//its position in Angstroms around the molecule's internal reference.
type DefAtom struct {
	Name string
	XYZ  [3]float64
}

//parseDef scans r for the "atomic positions" header, then reads consecutive
//"index name x y z ..." rows until a blank or comment line, keeping the atoms
//whose name starts with one of the given prefixes.
func parseDef(r io.Reader, prefixes ...string) ([]DefAtom, error) {
	sc := bufio.NewScanner(r)
	found := false
	for sc.Scan() {
		if strings.Contains(strings.ToLower(sc.Text()), "atomic positions") {
			found = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoPositionsHeader
	}
	var atoms []DefAtom
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			break
		}
		parts := strings.Fields(s)
		if len(parts) < 5 {
			continue
		}
		name := parts[1]
		var xyz [3]float64
		bad := false
		for c := 0; c < 3; c++ {
			v, err := strconv.ParseFloat(parts[2+c], 64)
			if err != nil {
				bad = true
				break
			}
			xyz[c] = v
		}
		if bad {
			continue
		}
		for _, pre := range prefixes {
			if strings.HasPrefix(name, pre) {
				atoms = append(atoms, DefAtom{Name: name, XYZ: xyz})
				break
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("%w (wanted prefixes %v)", ErrNoMatchingAtoms, prefixes)
	}
	return atoms, nil
}

func parseDefFile(path string, prefixes ...string) ([]DefAtom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	atoms, err := parseDef(f, prefixes...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return atoms, nil
}

//ParseAmmoniaDef reads a TraPPE-style ammonia .def file and returns its N_*
//and H_* sites.
func ParseAmmoniaDef(path string) ([]DefAtom, error) {
	return parseDefFile(path, "N_", "H_")
}

//ParseHydrogenDef reads a TraPPE-style H2 .def file and returns its H_* sites.
//Massless dummy sites (M_*) are dropped.
func ParseHydrogenDef(path string) ([]DefAtom, error) {
	return parseDefFile(path, "H_")
}

//Placement selects which of the two reference points anchors an inserted
//molecule.
type Placement int

const (
	PlaceMidpoint Placement = iota
	PlaceFirst
	PlaceSecond
)

func (pl Placement) String() string {
	switch pl {
	case PlaceFirst:
		return "first"
	case PlaceSecond:
		return "second"
	}
	return "midpoint"
}

//ParsePlacement parses one of "midpoint", "first", "second".
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "midpoint":
		return PlaceMidpoint, nil
	case "first":
		return PlaceFirst, nil
	case "second":
		return PlaceSecond, nil
	}
	return PlaceMidpoint, fmt.Errorf("%w, got %q", ErrInvalidPlacement, s)
}

//InsertOptions collects the optional knobs of the molecule-insertion
//functions. Zero values are not meaningful; build it with
//DefaultInsertOptions and adjust through the methods below.
type InsertOptions struct {
	place          Placement
	wrap           bool
	flags          *[3]bool
	frameworkFlags *[3]bool
	axisOffset     float64
	direction      string //"+", "plus", "-" or "minus"
	offset         [3]float64
}

//DefaultInsertOptions returns the defaults: placement at the midpoint,
//wrapping into the primary cell, no selective-dynamics flags and no offsets.
func DefaultInsertOptions() *InsertOptions {
	o := new(InsertOptions)
	o.place = PlaceMidpoint
	o.wrap = true
	o.direction = "+"
	return o
}

//Returns the placement mode, and sets it to a new value, if given.
func (O *InsertOptions) Place(p ...Placement) Placement {
	if len(p) > 0 {
		O.place = p[0]
	}
	return O.place
}

//Returns whether inserted atoms are wrapped into [0,1) fractional
//coordinates, and sets it to a new value, if given.
func (O *InsertOptions) Wrap(w ...bool) bool {
	if len(w) > 0 {
		O.wrap = w[0]
	}
	return O.wrap
}

//Returns the selective-dynamics flags for the inserted atoms,
//and sets them to a new value, if given. Giving any value
//(even nil, explicitly) is a set.
func (O *InsertOptions) Flags(f ...*[3]bool) *[3]bool {
	if len(f) > 0 {
		O.flags = f[0]
	}
	return O.flags
}

//Returns the selective-dynamics flags that will replace those of every
//pre-existing framework atom, and sets them to a new value, if given.
func (O *InsertOptions) FrameworkFlags(f ...*[3]bool) *[3]bool {
	if len(f) > 0 {
		O.frameworkFlags = f[0]
	}
	return O.frameworkFlags
}

//Returns the distance, in Angstroms, that the anchor moves from the midpoint
//along the line between the two reference points, and sets it to a new value,
//if given. Only meaningful with PlaceMidpoint.
func (O *InsertOptions) AxisOffset(d ...float64) float64 {
	if len(d) > 0 {
		O.axisOffset = d[0]
	}
	return O.axisOffset
}

//Returns the sign of the axis offset ("+"/"plus" toward the second point,
//"-"/"minus" toward the first), and sets it to a new value, if given.
func (O *InsertOptions) Direction(d ...string) string {
	if len(d) > 0 {
		O.direction = d[0]
	}
	return O.direction
}

//Returns the per-axis Cartesian offset added to the anchor after placement,
//and sets it to a new value, if given.
func (O *InsertOptions) Offset(v ...[3]float64) [3]float64 {
	if len(v) > 0 {
		O.offset = v[0]
	}
	return O.offset
}

func directionSign(d string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "+", "plus", "":
		return 1.0, nil
	case "-", "minus":
		return -1.0, nil
	}
	return 0, fmt.Errorf("%w, got %q", ErrInvalidDirection, d)
}

//placementAnchor computes the Cartesian point the molecule's reference site
//lands on. For PlaceMidpoint a non-zero axis offset moves the anchor along the
//unit vector from p1 to p2, which requires the segment to have non-zero
//length. The per-axis Cartesian offset is added in every mode, afterward.
func placementAnchor(p1, p2 [3]float64, o *InsertOptions) ([3]float64, error) {
	var c [3]float64
	switch o.place {
	case PlaceMidpoint:
		for i := 0; i < 3; i++ {
			c[i] = (p1[i] + p2[i]) / 2.0
		}
		if o.axisOffset != 0 {
			var v [3]float64
			for i := 0; i < 3; i++ {
				v[i] = p2[i] - p1[i]
			}
			norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
			if norm == 0 {
				return c, ErrDegenerateSegment
			}
			sign, err := directionSign(o.direction)
			if err != nil {
				return c, err
			}
			for i := 0; i < 3; i++ {
				c[i] += sign * o.axisOffset * v[i] / norm
			}
		}
	case PlaceFirst:
		c = p1
	case PlaceSecond:
		c = p2
	default:
		return c, fmt.Errorf("%w, got %d", ErrInvalidPlacement, int(o.place))
	}
	for i := 0; i < 3; i++ {
		c[i] += o.offset[i]
	}
	return c, nil
}

//insertTemplate places the rigid template described by syms/rels (relative
//Cartesian offsets from the molecule's reference site) with its reference at
//the placement anchor, converts to fractional coordinates and hands over to
//the shared bookkeeping.
func insertTemplate(p *Poscar, syms []string, rels [][3]float64, p1, p2 [3]float64, o *InsertOptions) (*Poscar, error) {
	if o == nil {
		o = DefaultInsertOptions()
	}
	anchor, err := placementAnchor(p1, p2, o)
	if err != nil {
		return nil, err
	}
	l, err := p.LatticeCart()
	if err != nil {
		return nil, err
	}
	linv, err := Invert3(l)
	if err != nil {
		return nil, err
	}
	fracs := make([][3]float64, len(rels))
	for i, d := range rels {
		xyz := [3]float64{anchor[0] + d[0], anchor[1] + d[1], anchor[2] + d[2]}
		f := MatVec(linv, xyz)
		if o.wrap {
			f = WrapFrac(f)
		}
		fracs[i] = f
	}
	return appendAtoms(p, syms, fracs, o.flags, o.frameworkFlags), nil
}

//Species symbol for a def-file site name: the part before the underscore,
//normalized ("N_nh3" -> "N").
func defSymbol(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		name = name[:i]
	}
	return NormalizeElement(name)
}

//InsertAmmonia adds a rigid NH3 molecule from the .def file at defPath to the
//structure p. The nitrogen lands on the anchor computed from the two Cartesian
//points p1 and p2 and the options (midpoint/first/second placement, axis and
//per-axis offsets); the hydrogens keep their positions relative to it.
//A nil opts means DefaultInsertOptions. Returns a new Poscar; p is untouched,
//and the result is valid input for further insertions.
func InsertAmmonia(p *Poscar, defPath string, p1, p2 [3]float64, opts *InsertOptions) (*Poscar, error) {
	atoms, err := ParseAmmoniaDef(defPath)
	if err != nil {
		return nil, err
	}
	var ref *[3]float64
	for i := range atoms {
		if strings.HasPrefix(atoms[i].Name, "N_") {
			ref = &atoms[i].XYZ
			break
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: no N atom in %s", ErrNoMatchingAtoms, defPath)
	}
	syms := make([]string, len(atoms))
	rels := make([][3]float64, len(atoms))
	for i, a := range atoms {
		syms[i] = defSymbol(a.Name)
		for c := 0; c < 3; c++ {
			rels[i][c] = a.XYZ[c] - ref[c]
		}
	}
	return insertTemplate(p, syms, rels, p1, p2, opts)
}

//InsertHydrogen adds a rigid H2 molecule from the .def file at defPath to the
//structure p. H2 has no distinguished anchor atom: the molecule is centered
//on the midpoint of its two H sites, which lands on the placement anchor.
//The def file must describe exactly two H_* sites. See InsertAmmonia for the
//placement rules.
func InsertHydrogen(p *Poscar, defPath string, p1, p2 [3]float64, opts *InsertOptions) (*Poscar, error) {
	atoms, err := ParseHydrogenDef(defPath)
	if err != nil {
		return nil, err
	}
	if len(atoms) != 2 {
		return nil, fmt.Errorf("%w: want 2 H atoms, got %d in %s", ErrAtomCount, len(atoms), defPath)
	}
	var center [3]float64
	for c := 0; c < 3; c++ {
		center[c] = (atoms[0].XYZ[c] + atoms[1].XYZ[c]) / 2.0
	}
	syms := make([]string, len(atoms))
	rels := make([][3]float64, len(atoms))
	for i, a := range atoms {
		syms[i] = defSymbol(a.Name)
		for c := 0; c < 3; c++ {
			rels[i][c] = a.XYZ[c] - center[c]
		}
	}
	return insertTemplate(p, syms, rels, p1, p2, opts)
}
