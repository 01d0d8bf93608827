/*
 * poscar.go, part of vaspinit.
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

//CoordType says whether per-atom coordinates in a POSCAR file are fractional
//(Direct) or absolute (Cartesian). In memory atoms are always fractional;
//conversion happens at the parse/serialize boundary only.
type CoordType int

const (
	Direct CoordType = iota
	Cartesian
)

func (c CoordType) String() string {
	if c == Cartesian {
		return "Cartesian"
	}
	return "Direct"
}

//ParseCoordType interprets a coordinate-type word the way VASP does: only the
//first character matters, d/D means Direct and c/C/k/K mean Cartesian.
func ParseCoordType(s string) (CoordType, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return Direct, fmt.Errorf("%w: empty line", ErrUnknownCoordType)
	}
	switch t[0] {
	case 'd', 'D':
		return Direct, nil
	case 'c', 'C', 'k', 'K':
		return Cartesian, nil
	}
	return Direct, fmt.Errorf("%w: %q", ErrUnknownCoordType, s)
}

//Poscar is the in-memory model of a VASP POSCAR/CONTCAR file: a periodic cell
//with species bookkeeping, fractional coordinates and optional per-atom
//selective-dynamics flags.
type Poscar struct {
	Comment string
	//Scale multiplies every lattice component when positive. When negative,
	//its absolute value is a target cell volume and the lattice is rescaled
	//isotropically to match it.
	Scale   float64
	Lattice [3][3]float64 //raw, unscaled basis; rows are lattice vectors
	//Symbols may be empty: POSCARs without a symbols line are legal, and then
	//species are anonymous, tracked only through Counts.
	Symbols      []string
	Counts       []int
	CoordType    CoordType
	FracCoords   [][3]float64
	HasSelective bool
	Flags        [][3]bool //nil unless HasSelective
}

//NAtoms returns the total number of atoms, the sum of Counts.
func (p *Poscar) NAtoms() int {
	n := 0
	for _, c := range p.Counts {
		n += c
	}
	return n
}

//LatticeCart returns the scaled lattice. With a positive Scale every component
//is multiplied by it; with a negative Scale the lattice is rescaled so that its
//volume equals |Scale|, failing with ErrInvalidVolume if the computed volume is
//not positive.
func (p *Poscar) LatticeCart() (*[3][3]float64, error) {
	l := p.Lattice
	if p.Scale > 0 {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				l[r][c] *= p.Scale
			}
		}
		return &l, nil
	}
	if p.Scale == 0 {
		return nil, fmt.Errorf("%w: scale is zero", ErrInvalidVolume)
	}
	vol := Det3(&l)
	if vol <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidVolume, vol)
	}
	factor := math.Cbrt(-p.Scale / vol)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			l[r][c] *= factor
		}
	}
	return &l, nil
}

//Copy returns a deep copy of the Poscar. No slice is shared with the original.
func (p *Poscar) Copy() *Poscar {
	n := new(Poscar)
	n.Comment = p.Comment
	n.Scale = p.Scale
	n.Lattice = p.Lattice
	n.Symbols = append([]string{}, p.Symbols...)
	n.Counts = append([]int{}, p.Counts...)
	n.CoordType = p.CoordType
	n.FracCoords = append([][3]float64{}, p.FracCoords...)
	n.HasSelective = p.HasSelective
	if p.Flags != nil {
		n.Flags = append([][3]bool{}, p.Flags...)
	}
	return n
}

//CartCoords returns the Cartesian positions of every atom.
func (p *Poscar) CartCoords() ([][3]float64, error) {
	l, err := p.LatticeCart()
	if err != nil {
		return nil, err
	}
	r := make([][3]float64, len(p.FracCoords))
	for i, f := range p.FracCoords {
		r[i] = MatVec(l, f)
	}
	return r, nil
}

//CartCoord returns the Cartesian position of atom i (0-based, in file order).
func (p *Poscar) CartCoord(i int) ([3]float64, error) {
	var zero [3]float64
	if i < 0 || i >= len(p.FracCoords) {
		return zero, fmt.Errorf("%w: %d (have %d atoms)", ErrIndexOutOfRange, i, len(p.FracCoords))
	}
	l, err := p.LatticeCart()
	if err != nil {
		return zero, err
	}
	return MatVec(l, p.FracCoords[i]), nil
}

type lineScanner struct {
	s *bufio.Scanner
	n int //lines consumed, for error messages
}

func (l *lineScanner) next() (string, error) {
	if !l.s.Scan() {
		if err := l.s.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w after line %d", ErrTruncatedFile, l.n)
	}
	l.n++
	return l.s.Text(), nil
}

func allIntTokens(toks []string) bool {
	for _, t := range toks {
		if _, err := strconv.Atoi(t); err != nil {
			return false
		}
	}
	return true
}

//PoscarRead reads and parses the POSCAR/CONTCAR file at path.
func PoscarRead(path string) (*Poscar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := PoscarParse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

//PoscarParse parses a POSCAR from r. Cartesian coordinates are converted to
//fractional on the spot, so the returned Poscar always holds fractional
//coordinates. The symbols line may be absent (anonymous species); a
//"Selective dynamics" line may or may not be present. A selective coordinate
//line carrying fewer than 6 tokens gets default (T,T,T) flags for that atom.
func PoscarParse(r io.Reader) (*Poscar, error) {
	sc := &lineScanner{s: bufio.NewScanner(r)}
	p := new(Poscar)

	line, err := sc.next()
	if err != nil {
		return nil, err
	}
	p.Comment = strings.TrimSpace(line)

	line, err = sc.next()
	if err != nil {
		return nil, err
	}
	p.Scale, err = strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return nil, fmt.Errorf("bad scale line %q: %v", line, err)
	}

	for r := 0; r < 3; r++ {
		line, err = sc.next()
		if err != nil {
			return nil, err
		}
		toks := strings.Fields(line)
		if len(toks) < 3 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLattice, line)
		}
		for c := 0; c < 3; c++ {
			p.Lattice[r][c], err = strconv.ParseFloat(toks[c], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrMalformedLattice, line)
			}
		}
	}

	//Either a symbols line followed by a counts line, or a counts line alone.
	line, err = sc.next()
	if err != nil {
		return nil, err
	}
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: blank line before counts", ErrMissingCounts)
	}
	if !allIntTokens(toks) {
		for _, t := range toks {
			p.Symbols = append(p.Symbols, NormalizeElement(t))
		}
		line, err = sc.next()
		if err != nil {
			return nil, err
		}
		toks = strings.Fields(line)
		if len(toks) == 0 || !allIntTokens(toks) {
			return nil, fmt.Errorf("%w, got %q", ErrMissingCounts, line)
		}
	}
	for _, t := range toks {
		c, _ := strconv.Atoi(t)
		p.Counts = append(p.Counts, c)
	}
	if len(p.Symbols) != 0 && len(p.Symbols) != len(p.Counts) {
		if len(p.Symbols) > len(p.Counts) {
			//extra trailing symbols are dropped, as VASP itself tolerates
			p.Symbols = p.Symbols[:len(p.Counts)]
		} else {
			return nil, fmt.Errorf("%w: %d symbols, %d counts", ErrSymbolCountMismatch, len(p.Symbols), len(p.Counts))
		}
	}

	line, err = sc.next()
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(line); t != "" && (t[0] == 's' || t[0] == 'S') {
		p.HasSelective = true
		line, err = sc.next()
		if err != nil {
			return nil, err
		}
	}
	p.CoordType, err = ParseCoordType(line)
	if err != nil {
		return nil, err
	}

	//The lattice is validated here even for Direct files: a cell that cannot
	//be inverted cannot be used by any later operation.
	l, err := p.LatticeCart()
	if err != nil {
		return nil, err
	}
	linv, err := Invert3(l)
	if err != nil {
		return nil, err
	}

	nat := p.NAtoms()
	p.FracCoords = make([][3]float64, 0, nat)
	if p.HasSelective {
		p.Flags = make([][3]bool, 0, nat)
	}
	for i := 0; i < nat; i++ {
		line, err = sc.next()
		if err != nil {
			return nil, err
		}
		toks = strings.Fields(line)
		if len(toks) < 3 {
			return nil, fmt.Errorf("coordinate line %d has fewer than 3 values: %q", sc.n, line)
		}
		var xyz [3]float64
		for c := 0; c < 3; c++ {
			xyz[c], err = strconv.ParseFloat(toks[c], 64)
			if err != nil {
				return nil, fmt.Errorf("bad coordinate on line %d: %v", sc.n, err)
			}
		}
		if p.CoordType == Cartesian {
			xyz = MatVec(linv, xyz)
		}
		p.FracCoords = append(p.FracCoords, xyz)
		if p.HasSelective {
			fl := [3]bool{true, true, true}
			if len(toks) >= 6 {
				for c := 0; c < 3; c++ {
					t := toks[3+c]
					fl[c] = t[0] == 'T' || t[0] == 't'
				}
			}
			p.Flags = append(p.Flags, fl)
		}
	}
	return p, nil
}

//PoscarWrite serializes p to the file at path. An optional CoordType argument
//overrides the coordinate type used for the atom lines; by default the
//structure's own CoordType is kept.
func PoscarWrite(p *Poscar, path string, outType ...CoordType) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := PoscarSerialize(p, w, outType...); err != nil {
		return err
	}
	return w.Flush()
}

//PoscarSerialize writes p to w in POSCAR format. Coordinates are converted to
//the requested type (or the structure's own, if none is given) at fixed
//16-digit precision. Symbols and "Selective dynamics" lines appear only when
//present in the model.
func PoscarSerialize(p *Poscar, w io.Writer, outType ...CoordType) error {
	ct := p.CoordType
	if len(outType) > 0 {
		ct = outType[0]
	}
	l, err := p.LatticeCart()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n%.16f\n", p.Comment, p.Scale); err != nil {
		return err
	}
	for r := 0; r < 3; r++ {
		if _, err := fmt.Fprintf(w, "  % .16f  % .16f  % .16f\n", l[r][0], l[r][1], l[r][2]); err != nil {
			return err
		}
	}
	if len(p.Symbols) > 0 {
		if _, err := fmt.Fprintf(w, "%s \n", strings.Join(p.Symbols, " ")); err != nil {
			return err
		}
	}
	counts := make([]string, len(p.Counts))
	for i, c := range p.Counts {
		counts[i] = strconv.Itoa(c)
	}
	if _, err := fmt.Fprintf(w, "%s \n", strings.Join(counts, " ")); err != nil {
		return err
	}
	if p.HasSelective {
		if _, err := fmt.Fprintln(w, "Selective dynamics"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ct.String()); err != nil {
		return err
	}
	tf := func(b bool) string {
		if b {
			return "T"
		}
		return "F"
	}
	for i, f := range p.FracCoords {
		c := f
		if ct == Cartesian {
			c = MatVec(l, f)
		}
		if p.HasSelective && i < len(p.Flags) {
			fl := p.Flags[i]
			_, err = fmt.Fprintf(w, "% .16f  % .16f  % .16f   %s  %s  %s\n", c[0], c[1], c[2], tf(fl[0]), tf(fl[1]), tf(fl[2]))
		} else {
			_, err = fmt.Fprintf(w, "% .16f  % .16f  % .16f\n", c[0], c[1], c[2])
		}
		if err != nil {
			return err
		}
	}
	return nil
}
