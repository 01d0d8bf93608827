/*
 * errors.go, part of vaspinit.
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

import "errors"

//The error kinds of the package. Functions wrap these with fmt.Errorf and the
//%w directive, adding the offending file section or value; callers discriminate
//with errors.Is.
var (
	//POSCAR parsing.
	ErrTruncatedFile       = errors.New("unexpected end of POSCAR")
	ErrMalformedLattice    = errors.New("malformed lattice line")
	ErrMissingCounts       = errors.New("expected counts line after symbols")
	ErrSymbolCountMismatch = errors.New("symbols and counts lengths mismatch")
	ErrUnknownCoordType    = errors.New("unknown coordinate type line")

	//Lattice algebra.
	ErrSingularMatrix = errors.New("singular lattice matrix")
	ErrInvalidVolume  = errors.New("invalid lattice volume")

	//PDB frame selection.
	ErrFrameOutOfRange = errors.New("MODEL index out of range")

	//Molecule definition files.
	ErrNoPositionsHeader = errors.New("no atomic positions header in def file")
	ErrNoMatchingAtoms   = errors.New("no matching atoms in def file")
	ErrAtomCount         = errors.New("unexpected atom count in def file")

	//Placement.
	ErrDegenerateSegment = errors.New("cannot offset from the midpoint of two identical points")
	ErrInvalidPlacement  = errors.New("placement must be one of: midpoint, first, second")
	ErrInvalidDirection  = errors.New("offset direction must be one of: +, -, plus, minus")

	//Caller-supplied specs.
	ErrInvalidFlagSpec = errors.New("flags must be a 3-char combination of T/F, like TTT or FFT")
	ErrIndexOutOfRange = errors.New("atom index out of range")

	//Workflow plans.
	ErrUnknownStep = errors.New("unknown plan step kind")
)
