// Package materials maps bounded genomes onto physical material records.
package materials

import (
	"fmt"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/utils"
)

// ColorSource supplies uniform draws in [0,1) for material display colors.
type ColorSource interface {
	Float64() float64
}

// Converter turns genomes into material records. Each parameter is centered on
// its multiplier and may swing at most multiplier*fraction in either direction.
type Converter struct {
	materialCount int
	multipliers   []float64
	radius        []float64
	fraction      float64
	colors        ColorSource
}

// Option configures a Converter.
type Option func(*Converter)

// WithMutationFraction overrides the default swing fraction.
func WithMutationFraction(f float64) Option {
	return func(c *Converter) { c.fraction = f }
}

// WithColorSource sets the random source used for record colors.
func WithColorSource(src ColorSource) Option {
	return func(c *Converter) { c.colors = src }
}

// NewConverter validates the multiplier layout and builds a Converter. The
// multiplier slice is copied.
func NewConverter(materialCount int, multipliers []float64, opts ...Option) (*Converter, error) {
	if err := config.ValidateMaterials(materialCount, multipliers); err != nil {
		return nil, err
	}

	c := &Converter{
		materialCount: materialCount,
		multipliers:   append([]float64(nil), multipliers...),
		fraction:      config.DefaultMutationFraction,
		colors:        utils.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fraction <= 0 || c.fraction >= 1 {
		return nil, config.Errorf("mutation_fraction", "must be in (0, 1), got %g", c.fraction)
	}
	if c.colors == nil {
		return nil, config.Errorf("colors", "color source cannot be nil")
	}

	c.radius = make([]float64, len(c.multipliers))
	for i, m := range c.multipliers {
		c.radius[i] = m * c.fraction
	}
	return c, nil
}

// MaterialCount returns the number of material slots.
func (c *Converter) MaterialCount() int { return c.materialCount }

// MutationFraction returns the swing fraction.
func (c *Converter) MutationFraction() float64 { return c.fraction }

// FeatureSpaceSize returns the genome length the converter expects.
func (c *Converter) FeatureSpaceSize() int {
	return c.materialCount * models.ParamsPerMaterial
}

// Multipliers returns a copy of the baseline vector.
func (c *Converter) Multipliers() []float64 {
	return append([]float64(nil), c.multipliers...)
}

// Map applies the bounded perturbation to genome and returns the flat
// parameter vector. It is deterministic and does not modify genome.
func (c *Converter) Map(genome models.Genome) ([]float64, error) {
	if err := c.checkShape(genome); err != nil {
		return nil, err
	}

	out := make([]float64, len(genome))
	for i, g := range genome {
		signed := g*2 - 1
		out[i] = c.multipliers[i] + signed*c.radius[i]
	}
	return out, nil
}

// Convert maps genome and slices the result into one record per material slot.
// Colors are drawn fresh on every call.
func (c *Converter) Convert(genome models.Genome) ([]models.Material, error) {
	params, err := c.Map(genome)
	if err != nil {
		return nil, err
	}

	const n = models.ParamsPerMaterial
	mats := make([]models.Material, 0, c.materialCount)
	for i := 0; i < c.materialCount; i++ {
		chunk := params[i*n : (i+1)*n]
		mats = append(mats, models.Material{
			ID:               i + 1,
			Name:             fmt.Sprintf("Material %d", i),
			Color:            c.drawColor(),
			ElasticModulus:   chunk[models.ParamElasticModulus],
			StaticFriction:   chunk[models.ParamStaticFriction],
			DynamicFriction:  chunk[models.ParamDynamicFriction],
			Density:          chunk[models.ParamDensity],
			ThermalExpansion: chunk[models.ParamThermalExpansion],
		})
	}
	return mats, nil
}

// Bounds returns the lowest and highest value each parameter can take.
func (c *Converter) Bounds() (lower, upper []float64) {
	lower = make([]float64, len(c.multipliers))
	upper = make([]float64, len(c.multipliers))
	for i, m := range c.multipliers {
		lower[i] = m - c.radius[i]
		upper[i] = m + c.radius[i]
	}
	return lower, upper
}

func (c *Converter) checkShape(genome models.Genome) error {
	if len(genome)%models.ParamsPerMaterial != 0 {
		return &ShapeError{
			Length:   len(genome),
			Expected: len(c.multipliers),
			Reason:   fmt.Sprintf("length is not divisible by %d", models.ParamsPerMaterial),
		}
	}
	if len(genome) != len(c.multipliers) {
		return &ShapeError{
			Length:   len(genome),
			Expected: len(c.multipliers),
			Reason:   "length does not match multiplier vector",
		}
	}
	for i, g := range genome {
		// NaN fails both comparisons
		if !(g >= 0 && g <= 1) {
			return &ShapeError{
				Length:   len(genome),
				Expected: len(c.multipliers),
				Reason:   fmt.Sprintf("entry %d = %g outside [0, 1]", i, g),
			}
		}
	}
	return nil
}

func (c *Converter) drawColor() models.Color {
	return models.Color{
		R: c.colors.Float64(),
		G: c.colors.Float64(),
		B: c.colors.Float64(),
		A: 1,
	}
}

// CheckCount returns a CountMismatchError unless mats has exactly want entries.
func CheckCount(mats []models.Material, want int) error {
	if len(mats) != want {
		return &CountMismatchError{Got: len(mats), Expected: want}
	}
	return nil
}
