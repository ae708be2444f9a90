// Command sim3-align estimates the similarity transform between two point
// sets from a CSV of correspondences and reports per-pair residuals.
//
// Input format: one correspondence per line, six comma-separated floats
// (target x,y,z then source x,y,z). Lines starting with '#' are skipped.
//
// Usage:
//
//	sim3-align -pairs pairs.csv [-plot residuals.png]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/sim3graph/geometry"
)

func main() {
	pairsPath := flag.String("pairs", "", "CSV file of point correspondences (x,y,z,x',y',z' per line)")
	plotPath := flag.String("plot", "", "optional PNG path for a residual scatter plot")
	flag.Parse()

	if *pairsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	pairs, err := readPairs(*pairsPath)
	if err != nil {
		log.Fatalf("reading %s: %v", *pairsPath, err)
	}

	g, err := geometry.Align(pairs)
	if err != nil {
		log.Fatalf("alignment failed: %v", err)
	}

	fmt.Printf("aligned %d pairs\n", len(pairs))
	fmt.Printf("scale: %.9g\n", g.Scale())
	fmt.Println("homogeneous transform [s*R t; 0 1]:")
	m := g.Matrix()
	for i := 0; i < 4; i++ {
		fmt.Printf("  % .9f % .9f % .9f % .9f\n", m.At(i, 0), m.At(i, 1), m.At(i, 2), m.At(i, 3))
	}

	residuals := make([]float64, len(pairs))
	var sum2 float64
	for i, pr := range pairs {
		r := pr.A.Sub(g.TransformFrom(pr.B)).Norm()
		residuals[i] = r
		sum2 += r * r
	}
	rmse := 0.0
	if len(pairs) > 0 {
		rmse = math.Sqrt(sum2 / float64(len(pairs)))
	}
	fmt.Printf("residual RMSE: %.9g\n", rmse)

	if *plotPath != "" {
		if err := plotResiduals(residuals, *plotPath); err != nil {
			log.Fatalf("writing residual plot: %v", err)
		}
		fmt.Printf("residual plot written to %s\n", *plotPath)
	}
}

// readPairs loads correspondences from a CSV file with six float columns.
func readPairs(path string) ([]geometry.Point3Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	pairs := make([]geometry.Point3Pair, 0, len(records))
	for lineNo, rec := range records {
		if len(rec) != 6 {
			return nil, fmt.Errorf("line %d: want 6 columns, got %d", lineNo+1, len(rec))
		}
		var vals [6]float64
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid float %q: %w", lineNo+1, field, err)
			}
			vals[i] = v
		}
		pairs = append(pairs, geometry.Point3Pair{
			A: geometry.Point3{X: vals[0], Y: vals[1], Z: vals[2]},
			B: geometry.Point3{X: vals[3], Y: vals[4], Z: vals[5]},
		})
	}
	return pairs, nil
}

// plotResiduals renders a scatter of per-pair residual norms against pair
// index.
func plotResiduals(residuals []float64, path string) error {
	p := plot.New()
	p.Title.Text = "Alignment residuals"
	p.X.Label.Text = "pair index"
	p.Y.Label.Text = "residual norm"

	pts := make(plotter.XYs, len(residuals))
	for i, r := range residuals {
		pts[i].X = float64(i)
		pts[i].Y = r
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(scatter)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
