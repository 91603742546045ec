package weather

// Field maps world positions to an effective friction value. Wet patches
// pull friction from the dry base toward the wet grip level.
type Field struct {
	noise     *PerlinNoise
	scale     float64
	octaves   int
	baseGrip  float64
	wetGrip   float64
	intensity float64
}

// Params configures a grip field.
type Params struct {
	Scale     float64 // feature size in world units
	Octaves   int     // FBM octaves
	BaseGrip  float64 // friction on dry tarmac
	WetGrip   float64 // friction in fully wet patches
	Intensity float64 // 0 disables wetness, 1 full effect
}

// NewField creates a seeded grip field.
func NewField(seed int64, p Params) *Field {
	if p.Scale <= 0 {
		p.Scale = 600
	}
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	return &Field{
		noise:     NewPerlinNoise(seed),
		scale:     p.Scale,
		octaves:   p.Octaves,
		baseGrip:  p.BaseGrip,
		wetGrip:   p.WetGrip,
		intensity: p.Intensity,
	}
}

// Wetness returns how wet the surface is at a world position, in [0, 1].
func (f *Field) Wetness(x, y float64) float64 {
	n := f.noise.FBM(x/f.scale, y/f.scale, f.octaves)
	w := (n + 1) / 2 * f.intensity
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// FrictionAt returns the effective friction at a world position.
func (f *Field) FrictionAt(x, y float64) float64 {
	w := f.Wetness(x, y)
	return f.baseGrip + (f.wetGrip-f.baseGrip)*w
}
