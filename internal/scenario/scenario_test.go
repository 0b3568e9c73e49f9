package scenario

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/morphology"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

func testMaterials() []models.Material {
	return []models.Material{
		{ID: 1, Name: "Material 0", Color: models.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
			ElasticModulus: 9e6, StaticFriction: 1.1, DynamicFriction: 0.7, Density: 950, ThermalExpansion: 0.011},
		{ID: 2, Name: "Material 1", Color: models.Color{R: 0.4, G: 0.5, B: 0.6, A: 1},
			ElasticModulus: 1.1e7, StaticFriction: 0.9, DynamicFriction: 0.8, Density: 1100, ThermalExpansion: 0.009},
	}
}

func testWriter() *Writer {
	return NewWriter(config.Default("bot", "out").Physics)
}

func TestRenderVXA(t *testing.T) {
	data, err := testWriter().RenderVXA(testMaterials())
	if err != nil {
		t.Fatalf("RenderVXA: %v", err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Fatalf("expected xml header, got %q", string(data[:20]))
	}

	var doc vxaDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("rendered vxa does not parse: %v", err)
	}
	if doc.Version != vxaVersion {
		t.Errorf("expected version %s, got %s", vxaVersion, doc.Version)
	}
	if len(doc.VXC.Palette) != 2 {
		t.Fatalf("expected 2 palette entries, got %d", len(doc.VXC.Palette))
	}

	m := doc.VXC.Palette[1]
	if m.ID != 2 || m.Name != "Material 1" {
		t.Errorf("unexpected material header %+v", m)
	}
	if m.Mechanical.ElasticMod != 1.1e7 || m.Mechanical.Density != 1100 {
		t.Errorf("unexpected mechanical block %+v", m.Mechanical)
	}
	if m.Mechanical.UStatic != 0.9 || m.Mechanical.UDynamic != 0.8 || m.Mechanical.CTE != 0.009 {
		t.Errorf("unexpected friction/CTE %+v", m.Mechanical)
	}
	if m.Display.Blue != 0.6 || m.Display.Alpha != 1 {
		t.Errorf("unexpected display %+v", m.Display)
	}
	if doc.Simulator.StopCondition.StopConditionValue != 5 {
		t.Errorf("expected stop time 5, got %g", doc.Simulator.StopCondition.StopConditionValue)
	}
	if doc.Environment.Gravity.GravAcc != -9.81 {
		t.Errorf("expected gravity -9.81, got %g", doc.Environment.Gravity.GravAcc)
	}
}

func TestWriteVXAMultiplePaths(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, BaseFile)
	archive := filepath.Join(dir, "sim_run0.vxa")

	if err := os.WriteFile(base, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := testWriter().WriteVXA(testMaterials(), base, archive); err != nil {
		t.Fatalf("WriteVXA: %v", err)
	}

	a, err := os.ReadFile(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("base and archive differ")
	}
	if strings.Contains(string(a), "stale") {
		t.Error("base file was not replaced")
	}
	if _, err := os.Stat(base + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestWriteVXAMissingDir(t *testing.T) {
	err := testWriter().WriteVXA(testMaterials(), filepath.Join(t.TempDir(), "nope", BaseFile))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestRenderVXD(t *testing.T) {
	body, err := morphology.NewBody(2, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	body.Set(0, 0, 2, 0)

	path := filepath.Join(t.TempDir(), BodyFile)
	if err := testWriter().WriteVXD(path, body); err != nil {
		t.Fatalf("WriteVXD: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, `replace="VXA.VXC.Structure"`) {
		t.Errorf("missing replace attribute: %s", text)
	}
	if !strings.Contains(text, "<![CDATA[0111]]>") {
		t.Errorf("missing top layer CDATA: %s", text)
	}

	var doc vxdDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("vxd does not parse: %v", err)
	}
	if doc.Structure.ZVoxels != 3 || len(doc.Structure.Layers) != 3 {
		t.Errorf("unexpected structure %+v", doc.Structure)
	}
	if doc.Structure.Layers[0].Text != "1111" {
		t.Errorf("unexpected first layer %q", doc.Structure.Layers[0].Text)
	}
}
