/*
 * pdb.go, part of vaspinit.
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
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

//PDBAtom is one atom from a PDB snapshot: a normalized element symbol and an
//absolute Cartesian position in Angstroms.
type PDBAtom struct {
	Element string
	XYZ     [3]float64
}

//Element symbol from an ATOM/HETATM line: columns 77-78 when present and
//non-blank, otherwise derived from the atom-name field (columns 13-16).
//A two-letter symbol is recognized in the name by an alphabetic first letter
//followed by a lowercase second one ("Na1" -> "Na"); failing that, the first
//alphabetic character wins ("1H" -> "H").
func elementFromPDBLine(line string) string {
	if len(line) >= 78 {
		if elem := strings.TrimSpace(line[76:78]); elem != "" {
			return elem
		}
	}
	name := ""
	if len(line) >= 16 {
		name = strings.TrimSpace(line[12:16])
	} else if len(line) > 12 {
		name = strings.TrimSpace(line[12:])
	}
	if name == "" {
		return "X"
	}
	isAlpha := func(b byte) bool {
		return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
	}
	if len(name) >= 2 && isAlpha(name[0]) && name[1] >= 'a' && name[1] <= 'z' {
		return name[:2]
	}
	for i := 0; i < len(name); i++ {
		if isAlpha(name[i]) {
			return string(name[i])
		}
	}
	return string(name[0])
}

//Coordinates from an ATOM/HETATM line: fixed columns 31-54 when they parse,
//otherwise the first three numeric tokens of the line. The second value of the
//return reports whether anything usable was found.
func coordsFromPDBLine(line string) ([3]float64, bool) {
	var xyz [3]float64
	if len(line) >= 54 {
		var err [3]error
		xyz[0], err[0] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
		xyz[1], err[1] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
		xyz[2], err[2] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
		if err[0] == nil && err[1] == nil && err[2] == nil {
			return xyz, true
		}
	}
	n := 0
	for _, t := range strings.Fields(line) {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			continue
		}
		xyz[n] = v
		n++
		if n == 3 {
			return xyz, true
		}
	}
	return xyz, false
}

//PDBFrameRead reads the PDB file at path and returns the atoms of one MODEL.
//Files ending in .gz are decompressed transparently.
func PDBFrameRead(path string, model int) ([]PDBAtom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", path, err)
		}
		defer gz.Close()
		r = gz
	}
	atoms, err := PDBFrameParse(r, model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return atoms, nil
}

//PDBFrameParse reads ATOM/HETATM records from r, split into frames at
//MODEL/ENDMDL markers, and returns the atoms of the frame with the given
//index. A negative index counts from the end (-1 is the last frame). When the
//file carries no frame markers at all, the whole atom stream is one implicit
//frame. It fails with ErrFrameOutOfRange when the resolved index does not
//name an existing frame, and returns an empty list when the file holds
//neither frames nor atoms.
func PDBFrameParse(r io.Reader, model int) ([]PDBAtom, error) {
	var frames [][]PDBAtom
	var current []PDBAtom
	inModel := false
	haveModel := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		rec := line
		if len(rec) > 6 {
			rec = rec[:6]
		}
		rec = strings.ToUpper(strings.TrimSpace(rec))
		switch rec {
		case "MODEL":
			if inModel {
				frames = append(frames, current)
				current = nil
			}
			inModel = true
			haveModel = true
		case "ENDMDL":
			if inModel {
				frames = append(frames, current)
				current = nil
				inModel = false
			}
		case "ATOM", "HETATM":
			xyz, ok := coordsFromPDBLine(line)
			if !ok {
				continue
			}
			current = append(current, PDBAtom{
				Element: NormalizeElement(elementFromPDBLine(line)),
				XYZ:     xyz,
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if haveModel {
		if inModel {
			frames = append(frames, current)
		}
	} else if len(current) > 0 {
		frames = append(frames, current)
	}
	if len(frames) == 0 {
		return nil, nil
	}
	idx := model
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return nil, fmt.Errorf("%w: %d (have %d frames)", ErrFrameOutOfRange, model, len(frames))
	}
	return frames[idx], nil
}
