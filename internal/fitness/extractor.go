// Package fitness reads fitness values and behavioral descriptors out of
// simulator reports.
package fitness

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/simulator"
	"golang.org/x/text/encoding/charmap"
)

// Extractor turns a finished run into a fitness value and descriptor.
type Extractor interface {
	Fitness(ctx context.Context, runIndex int) (float64, []float64, error)
	DescriptorSize() int
}

var (
	ErrNoRobot   = errors.New("report has no robot detail")
	ErrNoFitness = errors.New("robot detail has no fitness_score")
)

type report struct {
	XMLName xml.Name `xml:"report"`
	Detail  struct {
		Robots []robotDetail `xml:",any"`
	} `xml:"detail"`
}

type robotDetail struct {
	XMLName      xml.Name
	FitnessScore *float64 `xml:"fitness_score"`
	Initial      vec3     `xml:"initialCenterOfMass"`
	Current      vec3     `xml:"currentCenterOfMass"`
}

type vec3 struct {
	X float64 `xml:"x"`
	Y float64 `xml:"y"`
	Z float64 `xml:"z"`
}

// ReportExtractor reads sim_run{N}.xml from a directory. The fitness is the
// robot's fitness_score and the descriptor is its XY center-of-mass
// displacement.
type ReportExtractor struct {
	dir   string
	robot string
}

// NewReportExtractor reads reports from dir. If robot is empty the first
// robot in the report is used.
func NewReportExtractor(dir, robot string) *ReportExtractor {
	return &ReportExtractor{dir: dir, robot: robot}
}

// DescriptorSize is 2: displacement along x and y.
func (e *ReportExtractor) DescriptorSize() int { return 2 }

func (e *ReportExtractor) Fitness(ctx context.Context, runIndex int) (float64, []float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	path := filepath.Join(e.dir, simulator.ReportName(runIndex))
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	var rep report
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&rep); err != nil {
		return 0, nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}

	d, err := e.pick(rep.Detail.Robots)
	if err != nil {
		return 0, nil, fmt.Errorf("run %d: %w", runIndex, err)
	}
	if d.FitnessScore == nil {
		return 0, nil, fmt.Errorf("run %d robot %s: %w", runIndex, d.XMLName.Local, ErrNoFitness)
	}

	desc := []float64{
		d.Current.X - d.Initial.X,
		d.Current.Y - d.Initial.Y,
	}
	return *d.FitnessScore, desc, nil
}

func (e *ReportExtractor) pick(robots []robotDetail) (robotDetail, error) {
	if len(robots) == 0 {
		return robotDetail{}, ErrNoRobot
	}
	if e.robot == "" {
		return robots[0], nil
	}
	for _, r := range robots {
		if r.XMLName.Local == e.robot {
			return r, nil
		}
	}
	return robotDetail{}, fmt.Errorf("%w: %s", ErrNoRobot, e.robot)
}

// charsetReader accepts the Latin-1 declaration voxcraft-sim writes.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported report charset %q", label)
}
