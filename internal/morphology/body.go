// Package morphology holds the voxel-grid robot body fed to the simulator.
package morphology

import (
	"fmt"
	"strconv"
	"strings"
)

// Intn is the random source used by Mutate.
type Intn interface {
	Intn(n int) int
}

// Body is a 3D voxel grid. Each cell holds a material id; 0 is empty.
type Body struct {
	x, y, z int
	cells   []uint8 // index = x + X*(y + Y*z)
}

// NewBody returns an X×Y×Z body with every voxel set to material 1.
func NewBody(x, y, z int) (*Body, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("invalid body dimensions %dx%dx%d", x, y, z)
	}
	b := &Body{x: x, y: y, z: z, cells: make([]uint8, x*y*z)}
	for i := range b.cells {
		b.cells[i] = 1
	}
	return b, nil
}

// NewDefaultBody returns the 2×2×5 starter body mutated once.
func NewDefaultBody(rng Intn) *Body {
	b, _ := NewBody(2, 2, 5)
	b.Mutate(rng)
	return b
}

// Dims returns the voxel counts along x, y and z.
func (b *Body) Dims() (int, int, int) { return b.x, b.y, b.z }

func (b *Body) index(x, y, z int) int { return x + b.x*(y+b.y*z) }

// At returns the material at (x, y, z).
func (b *Body) At(x, y, z int) uint8 { return b.cells[b.index(x, y, z)] }

// Set stores material m at (x, y, z).
func (b *Body) Set(x, y, z int, m uint8) { b.cells[b.index(x, y, z)] = m }

// Filled counts non-empty voxels.
func (b *Body) Filled() int {
	n := 0
	for _, c := range b.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// Mutate flips one random voxel between empty and material 1.
func (b *Body) Mutate(rng Intn) {
	x, y, z := rng.Intn(b.x), rng.Intn(b.y), rng.Intn(b.z)
	if b.At(x, y, z) != 0 {
		b.Set(x, y, z, 0)
	} else {
		b.Set(x, y, z, 1)
	}
}

// Clone returns an independent copy.
func (b *Body) Clone() *Body {
	out := *b
	out.cells = append([]uint8(nil), b.cells...)
	return &out
}

// Layers renders each z-layer as a string of material ids. Within a layer y
// varies fastest, matching the row-major flatten voxcraft reads.
func (b *Body) Layers() []string {
	layers := make([]string, b.z)
	for z := 0; z < b.z; z++ {
		var sb strings.Builder
		sb.Grow(b.x * b.y)
		for x := 0; x < b.x; x++ {
			for y := 0; y < b.y; y++ {
				sb.WriteString(strconv.Itoa(int(b.At(x, y, z))))
			}
		}
		layers[z] = sb.String()
	}
	return layers
}
