package weather

// Recommendations, evaluated on today's forecast entry.
const (
	RecommendNoWatering    = "No watering today"
	RecommendWatering      = "Watering recommended"
	RecommendLightWatering = "Light watering if soil is dry"
)

// Thresholds in mm and degrees Celsius.
const (
	HeavyRainMM     = 5.0
	DryMM           = 1.0
	HotDayC         = 28.0
	FrostThresholdC = 2.0
	HeatThresholdC  = 30.0
)

type WarningKind string

const (
	WarningFrost WarningKind = "frost"
	WarningHeat  WarningKind = "heat"
)

type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

type Advice struct {
	Recommendation string    `json:"recommendation"`
	Warnings       []Warning `json:"warnings"`
}

// Evaluate applies the watering rule and the independent frost and heat
// warnings to a single day. A rule whose input is missing does not fire.
func Evaluate(day DailyForecast) Advice {
	advice := Advice{Warnings: []Warning{}}

	switch {
	case atLeast(day.Precipitation, HeavyRainMM):
		advice.Recommendation = RecommendNoWatering
	case atLeast(day.TempMax, HotDayC) && below(day.Precipitation, DryMM):
		advice.Recommendation = RecommendWatering
	default:
		advice.Recommendation = RecommendLightWatering
	}

	if day.TempMin != nil && *day.TempMin <= FrostThresholdC {
		advice.Warnings = append(advice.Warnings, Warning{
			Kind:    WarningFrost,
			Message: "Frost risk: protect frost-sensitive plants tonight",
		})
	}
	if atLeast(day.TempMax, HeatThresholdC) {
		advice.Warnings = append(advice.Warnings, Warning{
			Kind:    WarningHeat,
			Message: "Heat stress risk: shade heat-sensitive plants and water early",
		})
	}

	return advice
}

func atLeast(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}

func below(v *float64, threshold float64) bool {
	return v != nil && *v < threshold
}
