package models

import "time"

// ParamsPerMaterial is the number of genome entries that describe one material:
// elastic modulus, static friction, dynamic friction, density, thermal expansion.
const ParamsPerMaterial = 5

// Parameter offsets within one material chunk of a genome.
const (
	ParamElasticModulus = iota
	ParamStaticFriction
	ParamDynamicFriction
	ParamDensity
	ParamThermalExpansion
)

// Genome is a flat vector in [0,1]^(materials*ParamsPerMaterial).
type Genome []float64

// Color is an RGBA display color with channels in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Material describes one simulated material slot.
type Material struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Color            Color   `json:"color"`
	ElasticModulus   float64 `json:"elastic_modulus"`
	StaticFriction   float64 `json:"static_friction"`
	DynamicFriction  float64 `json:"dynamic_friction"`
	Density          float64 `json:"density"`
	ThermalExpansion float64 `json:"thermal_expansion"`
}

// Params returns the numeric fields in genome order.
func (m Material) Params() [ParamsPerMaterial]float64 {
	return [ParamsPerMaterial]float64{
		m.ElasticModulus,
		m.StaticFriction,
		m.DynamicFriction,
		m.Density,
		m.ThermalExpansion,
	}
}

// Evaluation is the outcome of one fitness evaluation.
type Evaluation struct {
	ID         string        `json:"id"`
	RunIndex   int           `json:"run_index"`
	Genome     []float64     `json:"genome"`
	Fitness    float64       `json:"fitness"`
	Descriptor []float64     `json:"descriptor"`
	Materials  []Material    `json:"materials,omitempty"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}
