// Package scenario serializes materials and robot bodies into the XML files
// consumed by voxcraft-sim.
package scenario

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/morphology"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

const (
	BaseFile     = "base.vxa"
	BodyFile     = "robot.vxd"
	vxaVersion   = "1.1"
	vxcVersion   = "0.94"
	stopByTime   = 2 // StopConditionType: simulation time
	matModelLinr = 0
)

type vxaDoc struct {
	XMLName     xml.Name   `xml:"VXA"`
	Version     string     `xml:"Version,attr"`
	GPU         gpuSection `xml:"GPU"`
	Simulator   simSection `xml:"Simulator"`
	Environment envSection `xml:"Environment"`
	VXC         vxcSection `xml:"VXC"`
}

type gpuSection struct {
	HeapSize float64 `xml:"HeapSize"`
}

type simSection struct {
	EnableExpansion int           `xml:"EnableExpansion"`
	Integration     integration   `xml:"Integration"`
	Damping         damping       `xml:"Damping"`
	StopCondition   stopCondition `xml:"StopCondition"`
	RecordHistory   recordHistory `xml:"RecordHistory"`
}

type integration struct {
	DtFrac float64 `xml:"DtFrac"`
}

type damping struct {
	BondDampingZ float64 `xml:"BondDampingZ"`
	ColDampingZ  float64 `xml:"ColDampingZ"`
	SlowDampingZ float64 `xml:"SlowDampingZ"`
}

type stopCondition struct {
	StopConditionType  int     `xml:"StopConditionType"`
	StopConditionValue float64 `xml:"StopConditionValue"`
}

type recordHistory struct {
	RecordStepSize int `xml:"RecordStepSize"`
	RecordVoxel    int `xml:"RecordVoxel"`
	RecordLink     int `xml:"RecordLink"`
}

type envSection struct {
	Thermal thermal `xml:"Thermal"`
	Gravity gravity `xml:"Gravity"`
}

type thermal struct {
	TempEnabled     int     `xml:"TempEnabled"`
	VaryTempEnabled int     `xml:"VaryTempEnabled"`
	TempPeriod      float64 `xml:"TempPeriod"`
	TempAmplitude   float64 `xml:"TempAmplitude"`
	TempBase        float64 `xml:"TempBase"`
}

type gravity struct {
	GravEnabled  int     `xml:"GravEnabled"`
	GravAcc      float64 `xml:"GravAcc"`
	FloorEnabled int     `xml:"FloorEnabled"`
}

type vxcSection struct {
	Version string     `xml:"Version,attr"`
	Lattice lattice    `xml:"Lattice"`
	Palette []material `xml:"Palette>Material"`
}

type lattice struct {
	LatticeDim float64 `xml:"Lattice_Dim"`
}

type material struct {
	ID         int        `xml:"ID,attr"`
	Name       string     `xml:"Name"`
	Display    display    `xml:"Display"`
	Mechanical mechanical `xml:"Mechanical"`
}

type display struct {
	Red   float64 `xml:"Red"`
	Green float64 `xml:"Green"`
	Blue  float64 `xml:"Blue"`
	Alpha float64 `xml:"Alpha"`
}

type mechanical struct {
	MatModel      int     `xml:"MatModel"`
	ElasticMod    float64 `xml:"Elastic_Mod"`
	FailStress    float64 `xml:"Fail_Stress"`
	Density       float64 `xml:"Density"`
	PoissonsRatio float64 `xml:"Poissons_Ratio"`
	CTE           float64 `xml:"CTE"`
	UStatic       float64 `xml:"uStatic"`
	UDynamic      float64 `xml:"uDynamic"`
}

// Writer renders scenario files for one experiment's physics settings.
type Writer struct {
	physics config.Physics
}

// NewWriter returns a Writer using the given physics settings.
func NewWriter(physics config.Physics) *Writer {
	return &Writer{physics: physics}
}

// RenderVXA returns the VXA document for mats.
func (w *Writer) RenderVXA(mats []models.Material) ([]byte, error) {
	p := w.physics
	doc := vxaDoc{
		Version: vxaVersion,
		GPU:     gpuSection{HeapSize: 0.5},
		Simulator: simSection{
			EnableExpansion: 1,
			Integration:     integration{DtFrac: p.DtFrac},
			Damping:         damping{BondDampingZ: 1, ColDampingZ: 0.8, SlowDampingZ: 0.01},
			StopCondition:   stopCondition{StopConditionType: stopByTime, StopConditionValue: p.StopTime},
			RecordHistory:   recordHistory{RecordStepSize: p.RecordStep, RecordVoxel: 1},
		},
		Environment: envSection{
			Thermal: thermal{
				TempEnabled:     1,
				VaryTempEnabled: 1,
				TempPeriod:      p.TempPeriod,
				TempAmplitude:   p.TempAmplitude,
			},
			Gravity: gravity{GravEnabled: 1, GravAcc: p.Gravity, FloorEnabled: 1},
		},
		VXC: vxcSection{
			Version: vxcVersion,
			Lattice: lattice{LatticeDim: p.LatticeDim},
		},
	}

	for _, m := range mats {
		doc.VXC.Palette = append(doc.VXC.Palette, material{
			ID:   m.ID,
			Name: m.Name,
			Display: display{
				Red:   m.Color.R,
				Green: m.Color.G,
				Blue:  m.Color.B,
				Alpha: m.Color.A,
			},
			Mechanical: mechanical{
				MatModel:      matModelLinr,
				ElasticMod:    m.ElasticModulus,
				Density:       m.Density,
				PoissonsRatio: p.PoissonsRatio,
				CTE:           m.ThermalExpansion,
				UStatic:       m.StaticFriction,
				UDynamic:      m.DynamicFriction,
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vxa: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// WriteVXA writes the scenario for mats to every path given. Existing files
// are replaced atomically.
func (w *Writer) WriteVXA(mats []models.Material, paths ...string) error {
	data, err := w.RenderVXA(mats)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := writeFileAtomic(p, data); err != nil {
			return err
		}
	}
	return nil
}

// WriteVXD writes body as a VXD structure override at path.
func (w *Writer) WriteVXD(path string, body *morphology.Body) error {
	data, err := RenderVXD(body)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
