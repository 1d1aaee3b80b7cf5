package models

// Vital names one of the five health gauges
type Vital string

const (
	VitalHeartHealth    Vital = "heart_health"
	VitalMuscleStrength Vital = "muscle_strength"
	VitalFlexibility    Vital = "flexibility"
	VitalMentalWellness Vital = "mental_wellness"
	VitalEnergyLevel    Vital = "energy_level"
)

// AllVitals lists the gauges in a stable order
var AllVitals = []Vital{
	VitalHeartHealth,
	VitalMuscleStrength,
	VitalFlexibility,
	VitalMentalWellness,
	VitalEnergyLevel,
}

// DefaultVitalValue is the starting value of every gauge
const DefaultVitalValue = 50.0

// VitalSigns holds the five 0-100 health gauges
type VitalSigns struct {
	HeartHealth    float64 `json:"heart_health"`
	MuscleStrength float64 `json:"muscle_strength"`
	Flexibility    float64 `json:"flexibility"`
	MentalWellness float64 `json:"mental_wellness"`
	EnergyLevel    float64 `json:"energy_level"`
}

// DefaultVitalSigns returns every gauge at its starting value
func DefaultVitalSigns() VitalSigns {
	return VitalSigns{
		HeartHealth:    DefaultVitalValue,
		MuscleStrength: DefaultVitalValue,
		Flexibility:    DefaultVitalValue,
		MentalWellness: DefaultVitalValue,
		EnergyLevel:    DefaultVitalValue,
	}
}

// Get returns the value of a single gauge
func (v VitalSigns) Get(name Vital) float64 {
	switch name {
	case VitalHeartHealth:
		return v.HeartHealth
	case VitalMuscleStrength:
		return v.MuscleStrength
	case VitalFlexibility:
		return v.Flexibility
	case VitalMentalWellness:
		return v.MentalWellness
	case VitalEnergyLevel:
		return v.EnergyLevel
	default:
		return 0
	}
}

// Set updates a single gauge, values are clamped to [0,100]
func (v *VitalSigns) Set(name Vital, value float64) {
	value = Clamp(value, 0, 100)
	switch name {
	case VitalHeartHealth:
		v.HeartHealth = value
	case VitalMuscleStrength:
		v.MuscleStrength = value
	case VitalFlexibility:
		v.Flexibility = value
	case VitalMentalWellness:
		v.MentalWellness = value
	case VitalEnergyLevel:
		v.EnergyLevel = value
	}
}

// Mean returns the average of the five gauges
func (v VitalSigns) Mean() float64 {
	return (v.HeartHealth + v.MuscleStrength + v.Flexibility + v.MentalWellness + v.EnergyLevel) / 5
}

// PrimaryVital returns the gauge a goal primarily moves.
// General fitness has no single primary gauge and reports false.
func PrimaryVital(g Goal) (Vital, bool) {
	switch g {
	case GoalWeightLoss, GoalDiabetesManagement:
		return VitalEnergyLevel, true
	case GoalMuscleGain:
		return VitalMuscleStrength, true
	case GoalCardioHealth:
		return VitalHeartHealth, true
	case GoalStressAnxiety:
		return VitalMentalWellness, true
	case GoalBackPain, GoalFlexibility:
		return VitalFlexibility, true
	default:
		return "", false
	}
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
