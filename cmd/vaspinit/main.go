//vaspinit is the command-line wrapper around the vasp package: it merges ions
//from PDB snapshots into POSCARs, places rigid NH3/H2 molecules, and runs
//YAML-described preparation plans. All the logic lives in the library; this
//binary only parses flags and reports errors.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	vasp "vaspinit"
)

func parseFlagSpecFlag(s string) (*[3]bool, error) {
	if s == "" {
		return nil, nil
	}
	return vasp.ParseFlagSpec(s)
}

func outTypeArgs(s string) ([]vasp.CoordType, error) {
	if s == "" {
		return nil, nil
	}
	ct, err := vasp.ParseCoordType(s)
	if err != nil {
		return nil, err
	}
	return []vasp.CoordType{ct}, nil
}

func addIonsCmd() *cobra.Command {
	var (
		poscar, pdb, out          string
		ionFlags, frameworkFlags  string
		outCoords                 string
		model                     int
		noWrap                    bool
	)
	cmd := &cobra.Command{
		Use:   "add-ions",
		Short: "Merge ions from a PDB MODEL into a POSCAR/CONTCAR",
		RunE: func(cmd *cobra.Command, args []string) error {
			iflags, err := parseFlagSpecFlag(ionFlags)
			if err != nil {
				return err
			}
			fflags, err := parseFlagSpecFlag(frameworkFlags)
			if err != nil {
				return err
			}
			outType, err := outTypeArgs(outCoords)
			if err != nil {
				return err
			}
			wf := new(vasp.Workflow)
			if err := wf.AddIonsFromPDB(poscar, pdb, out, model, iflags, fflags, !noWrap, outType...); err != nil {
				return err
			}
			fmt.Printf("Wrote updated POSCAR with ions: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&poscar, "poscar", "", "input POSCAR/CONTCAR path (framework)")
	cmd.Flags().StringVar(&pdb, "pdb", "", "input PDB file with ions (.gz accepted)")
	cmd.Flags().StringVar(&out, "out", "", "output POSCAR path")
	cmd.Flags().IntVar(&model, "model-index", -1, "MODEL index in the PDB, negative counts from the end")
	cmd.Flags().StringVar(&ionFlags, "ion-flags", "", "selective-dynamics flags for the ions, e.g. TTT or FFT")
	cmd.Flags().StringVar(&frameworkFlags, "framework-flags", "", "selective-dynamics flags replacing those of all framework atoms")
	cmd.Flags().BoolVar(&noWrap, "no-wrap", false, "do not wrap ions into the primary cell")
	cmd.Flags().StringVar(&outCoords, "out-coords", "", "force output coordinate type: Direct or Cartesian")
	cmd.MarkFlagRequired("poscar")
	cmd.MarkFlagRequired("pdb")
	cmd.MarkFlagRequired("out")
	return cmd
}

func insertCmd(use, short, defHelp string, insert func(wf *vasp.Workflow, poscar, def, out string, p1, p2 [3]float64, o *vasp.InsertOptions, outType ...vasp.CoordType) error) *cobra.Command {
	var (
		poscar, def, out         string
		flags, frameworkFlags    string
		place, direction         string
		outCoords                string
		x1, y1, z1, x2, y2, z2   float64
		offset, ox, oy, oz       float64
		idx1, idx2               int
		noWrap                   bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p1, p2 [3]float64
			if idx1 > 0 && idx2 > 0 {
				p, err := vasp.PoscarRead(poscar)
				if err != nil {
					return err
				}
				p1, p2, err = vasp.PointsFromIndices(p, idx1, idx2)
				if err != nil {
					return err
				}
			} else {
				for _, name := range []string{"x1", "y1", "z1", "x2", "y2", "z2"} {
					if !cmd.Flags().Changed(name) {
						return fmt.Errorf("provide either --idx1/--idx2 or all of --x1 --y1 --z1 --x2 --y2 --z2")
					}
				}
				p1 = [3]float64{x1, y1, z1}
				p2 = [3]float64{x2, y2, z2}
			}
			pl, err := vasp.ParsePlacement(place)
			if err != nil {
				return err
			}
			mflags, err := parseFlagSpecFlag(flags)
			if err != nil {
				return err
			}
			fflags, err := parseFlagSpecFlag(frameworkFlags)
			if err != nil {
				return err
			}
			outType, err := outTypeArgs(outCoords)
			if err != nil {
				return err
			}
			o := vasp.DefaultInsertOptions()
			o.Place(pl)
			o.Wrap(!noWrap)
			o.AxisOffset(offset)
			o.Direction(direction)
			o.Offset([3]float64{ox, oy, oz})
			if mflags != nil {
				o.Flags(mflags)
			}
			if fflags != nil {
				o.FrameworkFlags(fflags)
			}
			wf := new(vasp.Workflow)
			if err := insert(wf, poscar, def, out, p1, p2, o, outType...); err != nil {
				return err
			}
			fmt.Printf("Wrote updated POSCAR: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&poscar, "poscar", "", "input POSCAR/CONTCAR path (framework)")
	cmd.Flags().StringVar(&def, "def", "", defHelp)
	cmd.Flags().StringVar(&out, "out", "", "output POSCAR path")
	cmd.Flags().Float64Var(&x1, "x1", 0, "first point, x (Angstrom)")
	cmd.Flags().Float64Var(&y1, "y1", 0, "first point, y")
	cmd.Flags().Float64Var(&z1, "z1", 0, "first point, z")
	cmd.Flags().Float64Var(&x2, "x2", 0, "second point, x")
	cmd.Flags().Float64Var(&y2, "y2", 0, "second point, y")
	cmd.Flags().Float64Var(&z2, "z2", 0, "second point, z")
	cmd.Flags().IntVar(&idx1, "idx1", 0, "1-based atom index for the first point (POSCAR order)")
	cmd.Flags().IntVar(&idx2, "idx2", 0, "1-based atom index for the second point")
	cmd.Flags().StringVar(&place, "place", "midpoint", "placement: midpoint, first or second")
	cmd.Flags().Float64Var(&offset, "offset", 0, "distance to move from the midpoint along the line (Angstrom)")
	cmd.Flags().StringVar(&direction, "dir", "+", "offset direction: + (toward the second point) or -")
	cmd.Flags().Float64Var(&ox, "offset-x", 0, "Cartesian offset in x, added after placement")
	cmd.Flags().Float64Var(&oy, "offset-y", 0, "Cartesian offset in y")
	cmd.Flags().Float64Var(&oz, "offset-z", 0, "Cartesian offset in z")
	cmd.Flags().StringVar(&flags, "flags", "", "selective-dynamics flags for the added atoms, e.g. TTT")
	cmd.Flags().StringVar(&frameworkFlags, "framework-flags", "", "selective-dynamics flags replacing those of all framework atoms")
	cmd.Flags().BoolVar(&noWrap, "no-wrap", false, "do not wrap the molecule into the primary cell")
	cmd.Flags().StringVar(&outCoords, "out-coords", "", "force output coordinate type: Direct or Cartesian")
	cmd.MarkFlagRequired("poscar")
	cmd.MarkFlagRequired("def")
	cmd.MarkFlagRequired("out")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run PLAN",
		Short: "Run a YAML plan of add-ions/add-nh3/add-h2 steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := vasp.PlanRead(args[0])
			if err != nil {
				return err
			}
			wf := new(vasp.Workflow)
			if err := wf.Run(plan); err != nil {
				return err
			}
			fmt.Printf("Plan complete: %d steps\n", len(plan.Steps))
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "vaspinit",
		Short:         "Prepare VASP structure files: merge ions and place rigid molecules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(addIonsCmd())
	root.AddCommand(insertCmd("add-nh3",
		"Add a rigid NH3 molecule between two points in a POSCAR",
		"TraPPE .def file with the ammonia geometry",
		(*vasp.Workflow).AddAmmoniaBetween))
	root.AddCommand(insertCmd("add-h2",
		"Add a rigid H2 molecule between two points in a POSCAR",
		"TraPPE .def file with the H2 geometry",
		(*vasp.Workflow).AddHydrogenBetween))
	root.AddCommand(runCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vaspinit: %v\n", err)
		os.Exit(1)
	}
}
