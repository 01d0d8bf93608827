/*
 * doc.go, part of vaspinit.
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

//Package vasp prepares VASP structure files. It reads and writes POSCAR/CONTCAR
//files, merges externally generated ions (from PDB snapshots, e.g. RASPA output)
//into a periodic cell, and places rigid small molecules (NH3, H2) at geometrically
//specified positions, keeping species counts, coordinates and selective-dynamics
//flags consistent through every transformation.
//
//All operations on a Poscar return a new instance; the input is never mutated.
//The package itself never prints anything: errors are returned to the caller,
//and the cmd/vaspinit wrapper is in charge of user feedback.
package vasp
