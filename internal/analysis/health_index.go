package analysis

import "math"

// DefaultCalories is returned when the profile lacks the inputs for a BMR estimate
const DefaultCalories = 2000

// BMICategory is the WHO weight class for a BMI value
type BMICategory string

const (
	BMIUnderweight BMICategory = "Underweight"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Overweight"
	BMIObese       BMICategory = "Obese"
)

// Healthy BMI band used for the weight range
const (
	healthyBMIMin = 18.5
	healthyBMIMax = 24.9
)

// Gender values accepted by TargetCalories
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ActivityFactors are the Mifflin-St Jeor TDEE multipliers
var ActivityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extremely_active":  1.9,
}

// Profile holds the body attributes used by the health indices.
// Zero values mean "not provided".
type Profile struct {
	HeightCm      float64
	WeightKg      float64
	Age           int
	Gender        string
	ActivityLevel string
}

// BMI calculates body mass index rounded to one decimal place
func BMI(heightCm, weightKg float64) (float64, bool) {
	if !positive(heightCm) || !positive(weightKg) {
		return 0, false
	}
	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	return math.Round(bmi*10) / 10, true
}

// CategorizeBMI maps a BMI to its category. Boundaries belong to the higher class.
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// TargetCalories estimates daily energy needs with the Mifflin-St Jeor equation
// scaled by activity level. Unknown activity levels use the sedentary factor;
// genders other than male use the female constant.
func TargetCalories(p Profile) int {
	if p.Age <= 0 || !positive(p.WeightKg) || !positive(p.HeightCm) || p.Gender == "" {
		return DefaultCalories
	}

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	factor, ok := ActivityFactors[p.ActivityLevel]
	if !ok {
		factor = ActivityFactors["sedentary"]
	}

	return int(math.Round(bmr * factor))
}

// HealthyWeightRange returns the weight band (kg) that keeps BMI between 18.5 and 24.9
func HealthyWeightRange(heightCm float64) (lowKg, highKg float64, ok bool) {
	if !positive(heightCm) {
		return 0, 0, false
	}
	heightM := heightCm / 100
	sq := heightM * heightM
	return math.Round(healthyBMIMin*sq*10) / 10, math.Round(healthyBMIMax*sq*10) / 10, true
}

func positive(v float64) bool {
	return isFinite(v) && v > 0
}
