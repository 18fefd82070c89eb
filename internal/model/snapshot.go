package model

// Snapshot is a single multivariate sensor reading from one pump,
// keyed by sensor channel name. It may be sparse: channels the caller
// did not measure are simply absent.
type Snapshot map[string]float64

// Canonical sensor channels, in the fixed order every feature vector
// fed to the model assumes.
const (
	VibrationX         = "vibration_x"
	VibrationY         = "vibration_y"
	VibrationZ         = "vibration_z"
	Temperature        = "temperature"
	Pressure           = "pressure"
	FlowRate           = "flow_rate"
	PowerConsumption   = "power_consumption"
	OperatingHours     = "operating_hours"
	BearingTemperature = "bearing_temperature"
	OilLevel           = "oil_level"
	OilQuality         = "oil_quality"
)

// LabelColumn is the binary training label column name.
const LabelColumn = "failure"

// Features returns a fresh copy of the canonical ordered feature list.
// Callers may reorder or trim their copy without affecting others.
func Features() []string {
	return []string{
		VibrationX, VibrationY, VibrationZ,
		Temperature, Pressure, FlowRate,
		PowerConsumption, OperatingHours,
		BearingTemperature, OilLevel, OilQuality,
	}
}

// Vector builds the ordered feature vector for the given feature list,
// substituting 0 for absent channels and returning their names.
func (s Snapshot) Vector(features []string) ([]float64, []string) {
	vec := make([]float64, len(features))
	var missing []string
	for i, f := range features {
		v, ok := s[f]
		if !ok {
			missing = append(missing, f)
			continue
		}
		vec[i] = v
	}
	return vec, missing
}

// ZeroCount reports how many values in the snapshot are exactly zero.
// Used as a proxy for sparse or defaulted input.
func (s Snapshot) ZeroCount() int {
	n := 0
	for _, v := range s {
		if v == 0 {
			n++
		}
	}
	return n
}

// Validate checks that the snapshot carries the physically required
// channels and that its values fall inside plausible sensor ranges.
func (s Snapshot) Validate() bool {
	required := []string{
		VibrationX, VibrationY, VibrationZ,
		Temperature, Pressure, FlowRate,
		PowerConsumption, OilLevel,
	}
	for _, f := range required {
		if _, ok := s[f]; !ok {
			return false
		}
	}
	if v := s[VibrationX]; v < 0 || v > 20 {
		return false
	}
	if v := s[Temperature]; v < 0 || v > 150 {
		return false
	}
	if v := s[Pressure]; v < 0 || v > 300 {
		return false
	}
	if v := s[OilLevel]; v < 0 || v > 1 {
		return false
	}
	return true
}

// Efficiency estimates pump efficiency (0-100%) from flow rate and
// power draw using a fixed theoretical-power constant.
func Efficiency(flowRate, powerConsumption float64) float64 {
	if powerConsumption == 0 {
		return 0
	}
	eff := (flowRate * 2.5 / powerConsumption) * 100
	return min(max(eff, 0), 100)
}

// RemainingLife estimates the remaining service life percentage given
// accumulated operating hours against a 10000h reference lifetime.
func RemainingLife(operatingHours float64) float64 {
	const avgFailureHours = 10000
	if operatingHours >= avgFailureHours {
		return 0
	}
	life := (avgFailureHours - operatingHours) / avgFailureHours * 100
	return max(0, min(life, 100))
}
