/*
 * atomicdata.go, part of vaspinit.
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

import "fmt"

//Masses, in Daltons, for the elements likely to show up in the frameworks,
//ions and adsorbates this package handles. Not a full periodic table.
var symbolMass = map[string]float64{
	"H":  1.008,
	"He": 4.00,
	"Li": 6.94,
	"B":  10.81,
	"C":  12.01,
	"N":  14.01,
	"O":  16.00,
	"F":  19.00,
	"Na": 22.99,
	"Mg": 24.30,
	"Al": 26.98,
	"Si": 28.09,
	"P":  30.97,
	"S":  32.06,
	"Cl": 35.45,
	"K":  39.10,
	"Ca": 40.08,
	"Ti": 47.87,
	"Mn": 54.94,
	"Fe": 55.84,
	"Co": 58.93,
	"Ni": 58.69,
	"Cu": 63.55,
	"Zn": 65.38,
	"Ge": 72.63,
	"Br": 79.90,
	"Zr": 91.22,
	"Ag": 107.87,
	"I":  126.90,
	"Pt": 195.08,
	"Au": 196.97,
}

//Masses returns one mass per atom, index-aligned with FracCoords. It fails on
//anonymous-species structures and on species missing from the mass table.
func (p *Poscar) Masses() ([]float64, error) {
	if len(p.Symbols) == 0 {
		return nil, fmt.Errorf("cannot assign masses: structure has no symbols")
	}
	masses := make([]float64, 0, p.NAtoms())
	for i, sym := range p.Symbols {
		m, ok := symbolMass[sym]
		if !ok {
			return nil, fmt.Errorf("no mass known for element %q", sym)
		}
		for j := 0; j < p.Counts[i]; j++ {
			masses = append(masses, m)
		}
	}
	return masses, nil
}
