package scenario

import (
	"encoding/xml"
	"fmt"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/morphology"
)

type vxdDoc struct {
	XMLName   xml.Name  `xml:"VXD"`
	Structure structure `xml:"Structure"`
}

type structure struct {
	Replace     string  `xml:"replace,attr"`
	Compression string  `xml:"Compression,attr"`
	XVoxels     int     `xml:"X_Voxels"`
	YVoxels     int     `xml:"Y_Voxels"`
	ZVoxels     int     `xml:"Z_Voxels"`
	Layers      []cdata `xml:"Data>Layer"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

// RenderVXD returns the VXD document describing body.
func RenderVXD(body *morphology.Body) ([]byte, error) {
	x, y, z := body.Dims()
	doc := vxdDoc{
		Structure: structure{
			Replace:     "VXA.VXC.Structure",
			Compression: "ASCII_READABLE",
			XVoxels:     x,
			YVoxels:     y,
			ZVoxels:     z,
		},
	}
	for _, layer := range body.Layers() {
		doc.Structure.Layers = append(doc.Structure.Layers, cdata{Text: layer})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vxd: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
