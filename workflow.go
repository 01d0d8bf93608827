/*
 * workflow.go, part of vaspinit.
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
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//ParseFlagSpec parses a 3-character selective-dynamics spec like "TTT" or
//"FFT" (case-insensitive) into per-axis mobility flags.
func ParseFlagSpec(s string) (*[3]bool, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if len(t) != 3 {
		return nil, fmt.Errorf("%w, got %q", ErrInvalidFlagSpec, s)
	}
	var f [3]bool
	for i := 0; i < 3; i++ {
		switch t[i] {
		case 'T':
			f[i] = true
		case 'F':
			f[i] = false
		default:
			return nil, fmt.Errorf("%w, got %q", ErrInvalidFlagSpec, s)
		}
	}
	return &f, nil
}

//FormatFlagSpec is the inverse of ParseFlagSpec.
func FormatFlagSpec(f [3]bool) string {
	b := []byte{'F', 'F', 'F'}
	for i, v := range f {
		if v {
			b[i] = 'T'
		}
	}
	return string(b)
}

//PointsFromIndices turns two 1-based atom indices (POSCAR file order) into
//Cartesian points, so a molecule can be placed relative to framework atoms
//instead of explicit coordinates.
func PointsFromIndices(p *Poscar, idx1, idx2 int) ([3]float64, [3]float64, error) {
	var a, b [3]float64
	n := len(p.FracCoords)
	for _, idx := range []int{idx1, idx2} {
		if idx < 1 || idx > n {
			return a, b, fmt.Errorf("%w: %d (1..%d)", ErrIndexOutOfRange, idx, n)
		}
	}
	a, err := p.CartCoord(idx1 - 1)
	if err != nil {
		return a, b, err
	}
	b, err = p.CartCoord(idx2 - 1)
	return a, b, err
}

//Workflow is the file-path facade consumed by the CLI layer. Every method
//reads a POSCAR, applies one engine operation and writes the result, so the
//output path of one call is valid input for the next.
type Workflow struct{}

//AddIonsFromPDB merges the atoms of one PDB MODEL into the POSCAR at
//poscarPath and writes the result to outPath. model selects the frame
//(negative counts from the end, -1 is the last). An optional CoordType
//forces the output coordinate type.
func (W *Workflow) AddIonsFromPDB(poscarPath, pdbPath, outPath string, model int, ionFlags, frameworkFlags *[3]bool, wrap bool, outType ...CoordType) error {
	p, err := PoscarRead(poscarPath)
	if err != nil {
		return err
	}
	ions, err := PDBFrameRead(pdbPath, model)
	if err != nil {
		return err
	}
	merged, err := MergeIons(p, ions, wrap, ionFlags, frameworkFlags)
	if err != nil {
		return err
	}
	return PoscarWrite(merged, outPath, outType...)
}

//AddAmmoniaBetween inserts a rigid NH3 between the Cartesian points p1 and p2
//into the POSCAR at poscarPath and writes the result to outPath.
func (W *Workflow) AddAmmoniaBetween(poscarPath, defPath, outPath string, p1, p2 [3]float64, opts *InsertOptions, outType ...CoordType) error {
	p, err := PoscarRead(poscarPath)
	if err != nil {
		return err
	}
	out, err := InsertAmmonia(p, defPath, p1, p2, opts)
	if err != nil {
		return err
	}
	return PoscarWrite(out, outPath, outType...)
}

//AddHydrogenBetween inserts a rigid H2 between the Cartesian points p1 and p2
//into the POSCAR at poscarPath and writes the result to outPath.
func (W *Workflow) AddHydrogenBetween(poscarPath, defPath, outPath string, p1, p2 [3]float64, opts *InsertOptions, outType ...CoordType) error {
	p, err := PoscarRead(poscarPath)
	if err != nil {
		return err
	}
	out, err := InsertHydrogen(p, defPath, p1, p2, opts)
	if err != nil {
		return err
	}
	return PoscarWrite(out, outPath, outType...)
}

//PlanStep is one operation of a YAML-described preparation sequence.
//Exactly the CLI surface, declaratively: paths, placement, offsets and flag
//specs. For the molecule kinds either point1/point2 or idx1/idx2 (1-based
//indices into the input POSCAR) select the two reference points.
type PlanStep struct {
	Kind           string      `yaml:"kind"` //add-ions, add-nh3 or add-h2
	Poscar         string      `yaml:"poscar"`
	Out            string      `yaml:"out"`
	PDB            string      `yaml:"pdb,omitempty"`
	Model          *int        `yaml:"model,omitempty"` //nil means -1, the last frame
	Def            string      `yaml:"def,omitempty"`
	Point1         *[3]float64 `yaml:"point1,omitempty"`
	Point2         *[3]float64 `yaml:"point2,omitempty"`
	Idx1           int         `yaml:"idx1,omitempty"`
	Idx2           int         `yaml:"idx2,omitempty"`
	Place          string      `yaml:"place,omitempty"`
	Offset         float64     `yaml:"offset,omitempty"`
	Direction      string      `yaml:"direction,omitempty"`
	OffsetXYZ      [3]float64  `yaml:"offset-xyz,omitempty"`
	Flags          string      `yaml:"flags,omitempty"`
	FrameworkFlags string      `yaml:"framework-flags,omitempty"`
	NoWrap         bool        `yaml:"no-wrap,omitempty"`
	OutCoords      string      `yaml:"out-coords,omitempty"`
}

//Plan is a sequence of steps, run in order. Chaining is explicit: each step
//names its own input and output paths.
type Plan struct {
	Steps []PlanStep `yaml:"steps"`
}

//PlanRead reads a YAML plan from the file at path.
func PlanRead(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	plan, err := PlanParse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

//PlanParse decodes a YAML plan. Unknown fields are rejected, so a typo in a
//step does not silently become a default.
func PlanParse(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	plan := new(Plan)
	if err := dec.Decode(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanStep) outType() ([]CoordType, error) {
	if s.OutCoords == "" {
		return nil, nil
	}
	ct, err := ParseCoordType(s.OutCoords)
	if err != nil {
		return nil, err
	}
	return []CoordType{ct}, nil
}

func (s *PlanStep) flagSpecs() (flags, framework *[3]bool, err error) {
	if s.Flags != "" {
		if flags, err = ParseFlagSpec(s.Flags); err != nil {
			return nil, nil, err
		}
	}
	if s.FrameworkFlags != "" {
		if framework, err = ParseFlagSpec(s.FrameworkFlags); err != nil {
			return nil, nil, err
		}
	}
	return flags, framework, nil
}

func (s *PlanStep) points() ([3]float64, [3]float64, error) {
	var a, b [3]float64
	if s.Idx1 != 0 || s.Idx2 != 0 {
		p, err := PoscarRead(s.Poscar)
		if err != nil {
			return a, b, err
		}
		return PointsFromIndices(p, s.Idx1, s.Idx2)
	}
	if s.Point1 == nil || s.Point2 == nil {
		return a, b, fmt.Errorf("step %q needs point1/point2 or idx1/idx2", s.Kind)
	}
	return *s.Point1, *s.Point2, nil
}

func (s *PlanStep) insertOptions() (*InsertOptions, error) {
	o := DefaultInsertOptions()
	if s.Place != "" {
		pl, err := ParsePlacement(s.Place)
		if err != nil {
			return nil, err
		}
		o.Place(pl)
	}
	o.Wrap(!s.NoWrap)
	o.AxisOffset(s.Offset)
	if s.Direction != "" {
		if _, err := directionSign(s.Direction); err != nil {
			return nil, err
		}
		o.Direction(s.Direction)
	}
	o.Offset(s.OffsetXYZ)
	flags, framework, err := s.flagSpecs()
	if err != nil {
		return nil, err
	}
	if flags != nil {
		o.Flags(flags)
	}
	if framework != nil {
		o.FrameworkFlags(framework)
	}
	return o, nil
}

//Run executes every step of the plan in order, stopping at the first failure.
func (W *Workflow) Run(plan *Plan) error {
	for i := range plan.Steps {
		s := &plan.Steps[i]
		outType, err := s.outType()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		switch s.Kind {
		case "add-ions":
			flags, framework, err := s.flagSpecs()
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			model := -1
			if s.Model != nil {
				model = *s.Model
			}
			err = W.AddIonsFromPDB(s.Poscar, s.PDB, s.Out, model, flags, framework, !s.NoWrap, outType...)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		case "add-nh3", "add-h2":
			p1, p2, err := s.points()
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			opts, err := s.insertOptions()
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			if s.Kind == "add-nh3" {
				err = W.AddAmmoniaBetween(s.Poscar, s.Def, s.Out, p1, p2, opts, outType...)
			} else {
				err = W.AddHydrogenBetween(s.Poscar, s.Def, s.Out, p1, p2, opts, outType...)
			}
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		default:
			return fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownStep, s.Kind)
		}
	}
	return nil
}
