package analysis

import "testing"

func TestBMI(t *testing.T) {
	tests := []struct {
		name     string
		heightCm float64
		weightKg float64
		want     float64
		wantOK   bool
	}{
		{"175cm 70kg", 175, 70, 22.9, true},
		{"180cm 90kg", 180, 90, 27.8, true},
		{"160cm 45kg", 160, 45, 17.6, true},
		{"missing height", 0, 70, 0, false},
		{"missing weight", 175, 0, 0, false},
		{"negative height", -170, 70, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BMI(tt.heightCm, tt.weightKg)
			if ok != tt.wantOK {
				t.Fatalf("BMI() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("BMI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategorizeBMI(t *testing.T) {
	tests := []struct {
		bmi  float64
		want BMICategory
	}{
		{16.0, BMIUnderweight},
		{18.4, BMIUnderweight},
		{18.5, BMINormal},
		{22.9, BMINormal},
		{24.9, BMINormal},
		{25.0, BMIOverweight},
		{29.9, BMIOverweight},
		{30.0, BMIObese},
		{41.2, BMIObese},
	}

	for _, tt := range tests {
		if got := CategorizeBMI(tt.bmi); got != tt.want {
			t.Errorf("CategorizeBMI(%v) = %v, want %v", tt.bmi, got, tt.want)
		}
	}
}

func TestTargetCalories(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    int
	}{
		{
			// BMR = 700 + 1093.75 - 150 + 5 = 1648.75; * 1.55 = 2555.5625
			name:    "male moderately active",
			profile: Profile{HeightCm: 175, WeightKg: 70, Age: 30, Gender: "male", ActivityLevel: "moderately_active"},
			want:    2556,
		},
		{
			// BMR = 600 + 1031.25 - 125 - 161 = 1345.25; * 1.2 = 1614.3
			name:    "female sedentary",
			profile: Profile{HeightCm: 165, WeightKg: 60, Age: 25, Gender: "female", ActivityLevel: "sedentary"},
			want:    1614,
		},
		{
			name:    "unknown activity level uses sedentary",
			profile: Profile{HeightCm: 165, WeightKg: 60, Age: 25, Gender: "female", ActivityLevel: "couch"},
			want:    1614,
		},
		{
			name:    "other gender uses the non-male constant",
			profile: Profile{HeightCm: 165, WeightKg: 60, Age: 25, Gender: "nonbinary", ActivityLevel: "sedentary"},
			want:    1614,
		},
		{
			// BMR = 800 + 1125 - 200 + 5 = 1730; * 1.9 = 3287
			name:    "male extremely active",
			profile: Profile{HeightCm: 180, WeightKg: 80, Age: 40, Gender: "male", ActivityLevel: "extremely_active"},
			want:    3287,
		},
		{"missing age", Profile{HeightCm: 175, WeightKg: 70, Gender: "male"}, DefaultCalories},
		{"missing weight", Profile{HeightCm: 175, Age: 30, Gender: "male"}, DefaultCalories},
		{"missing height", Profile{WeightKg: 70, Age: 30, Gender: "male"}, DefaultCalories},
		{"missing gender", Profile{HeightCm: 175, WeightKg: 70, Age: 30}, DefaultCalories},
		{"empty profile", Profile{}, DefaultCalories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetCalories(tt.profile); got != tt.want {
				t.Errorf("TargetCalories() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHealthyWeightRange(t *testing.T) {
	low, high, ok := HealthyWeightRange(175)
	if !ok {
		t.Fatal("HealthyWeightRange(175) not ok")
	}
	// 18.5 * 3.0625 = 56.65625, 24.9 * 3.0625 = 76.25625
	if low != 56.7 || high != 76.3 {
		t.Errorf("HealthyWeightRange(175) = %v-%v, want 56.7-76.3", low, high)
	}

	if _, _, ok := HealthyWeightRange(0); ok {
		t.Error("HealthyWeightRange(0) should not be ok")
	}
}
