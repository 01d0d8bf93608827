/*
 * merge.go, part of vaspinit.
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

//appendAtoms does the species/count/coordinate/flag bookkeeping shared by the
//ion-merge and molecule-insertion engines. syms must already be normalized and
//index-aligned with fracs. It returns a new Poscar; p is untouched.
//
//Incoming atoms are grouped by species in first-seen order. A species already
//listed in the structure has its count incremented; a new one is appended to
//Symbols and Counts, except in anonymous-species structures where only a new
//count entry appears. Coordinates are appended species-major, grouped by the
//final symbol order.
//
//Selective dynamics are enabled in the output if the input had them or if
//either flag argument is given. frameworkFlags, when given, replaces the flags
//of every pre-existing atom; otherwise existing flags are kept verbatim, or
//synthesized as (T,T,T) when the input had none. Every appended atom gets
//addFlags, or (T,T,T) if addFlags is nil.
func appendAtoms(p *Poscar, syms []string, fracs [][3]float64, addFlags, frameworkFlags *[3]bool) *Poscar {
	bySym := make(map[string][][3]float64)
	var seen []string
	for i, s := range syms {
		if _, ok := bySym[s]; !ok {
			seen = append(seen, s)
		}
		bySym[s] = append(bySym[s], fracs[i])
	}

	out := p.Copy()
	for _, s := range seen {
		n := len(bySym[s])
		if len(out.Symbols) == 0 {
			out.Counts = append(out.Counts, n)
			continue
		}
		found := false
		for i, have := range out.Symbols {
			if have == s {
				out.Counts[i] += n
				found = true
				break
			}
		}
		if !found {
			out.Symbols = append(out.Symbols, s)
			out.Counts = append(out.Counts, n)
		}
	}

	order := seen
	if len(out.Symbols) > 0 {
		order = out.Symbols
	}
	for _, s := range order {
		out.FracCoords = append(out.FracCoords, bySym[s]...)
	}

	enable := p.HasSelective || addFlags != nil || frameworkFlags != nil
	if !enable {
		return out
	}
	nFramework := len(p.FracCoords)
	var flags [][3]bool
	switch {
	case frameworkFlags != nil:
		flags = make([][3]bool, nFramework)
		for i := range flags {
			flags[i] = *frameworkFlags
		}
	case p.HasSelective && p.Flags != nil:
		flags = append([][3]bool{}, p.Flags...)
	default:
		flags = make([][3]bool, nFramework)
		for i := range flags {
			flags[i] = [3]bool{true, true, true}
		}
	}
	added := [3]bool{true, true, true}
	if addFlags != nil {
		added = *addFlags
	}
	for len(flags) < len(out.FracCoords) {
		flags = append(flags, added)
	}
	out.HasSelective = true
	out.Flags = flags
	return out
}

//MergeIons combines externally supplied atoms (typically ions from a PDB
//snapshot) into the structure p. Positions are converted to fractional
//coordinates through the inverse lattice and, when wrap is true, mapped into
//the primary cell. Species, counts, coordinates and selective-dynamics flags
//follow the appendAtoms rules. An empty ion list returns p itself, unchanged;
//otherwise a new Poscar is returned and p is untouched.
func MergeIons(p *Poscar, ions []PDBAtom, wrap bool, ionFlags, frameworkFlags *[3]bool) (*Poscar, error) {
	if len(ions) == 0 {
		return p, nil
	}
	l, err := p.LatticeCart()
	if err != nil {
		return nil, err
	}
	linv, err := Invert3(l)
	if err != nil {
		return nil, err
	}
	syms := make([]string, len(ions))
	fracs := make([][3]float64, len(ions))
	for i, a := range ions {
		f := MatVec(linv, a.XYZ)
		if wrap {
			f = WrapFrac(f)
		}
		fracs[i] = f
		syms[i] = NormalizeElement(a.Element)
	}
	return appendAtoms(p, syms, fracs, ionFlags, frameworkFlags), nil
}
