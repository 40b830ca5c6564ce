package dataset

import "strings"

// Canonical column names.
const (
	ColAge                   = "age"
	ColHeight                = "height"
	ColWeight                = "weight"
	ColSteps                 = "steps"
	ColHeartRate             = "heart_rate"
	ColCalories              = "calories"
	ColDistance              = "distance"
	ColEntropyHeart          = "entropy_heart"
	ColEntropySteps          = "entropy_steps"
	ColRestingHeart          = "resting_heart"
	ColCorrHeartSteps        = "corr_heart_steps"
	ColNormalizedHeartRate   = "normalized_heart_rate"
	ColIntensityKarvonen     = "intensity_karvonen"
	ColSDNormalizedHeartRate = "sd_normalized_heart_rate"
	ColStepsXDistance        = "steps_x_distance"
	ColGender                = "gender"
	ColDevice                = "device"
	ColActivity              = "activity"
)

// unnamedPrefix marks index columns written out by a previous export.
const unnamedPrefix = "Unnamed"

// aliases maps historical export headers to canonical names. The first block
// is the short-name schema, the second the vendor "_LE" schema.
var aliases = map[string]string{
	"hear_rate":            ColHeartRate,
	"entropy_setps":        ColEntropySteps,
	"norm_heart":           ColNormalizedHeartRate,
	"sd_norm_heart":        ColSDNormalizedHeartRate,
	"steps_times_distance": ColStepsXDistance,

	"Applewatch.Steps_LE":                    ColSteps,
	"Applewatch.Heart_LE":                    ColHeartRate,
	"Applewatch.Calories_LE":                 ColCalories,
	"Applewatch.Distance_LE":                 ColDistance,
	"EntropyApplewatchHeartPerDay_LE":        ColEntropyHeart,
	"EntropyApplewatchStepsPerDay_LE":        ColEntropySteps,
	"RestingApplewatchHeartrate_LE":          ColRestingHeart,
	"CorrelationApplewatchHeartrateSteps_LE": ColCorrHeartSteps,
	"NormalizedApplewatchHeartrate_LE":       ColNormalizedHeartRate,
	"ApplewatchIntensity_LE":                 ColIntensityKarvonen,
	"StdNormalizedApplewatchHeartrate_LE":    ColSDNormalizedHeartRate,
	"ApplewatchStepsTimesDistance_LE":        ColStepsXDistance,
}

// NumericColumns lists the canonical columns coerced to float64.
var NumericColumns = []string{
	ColAge, ColHeight, ColWeight,
	ColSteps, ColHeartRate, ColCalories, ColDistance,
	ColEntropyHeart, ColEntropySteps,
	ColRestingHeart, ColCorrHeartSteps, ColNormalizedHeartRate,
	ColIntensityKarvonen, ColSDNormalizedHeartRate, ColStepsXDistance,
}

// CategoricalColumns lists the canonical columns treated as labels.
var CategoricalColumns = []string{ColGender, ColDevice, ColActivity}

// FilterColumns are the categorical fields offered as row filters.
var FilterColumns = []string{ColActivity, ColDevice}

// genderLabels maps numeric gender codes to labels.
var genderLabels = map[float64]string{
	0: "Unknown",
	1: "Male",
	2: "Female",
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// CanonicalName resolves a source header through the alias table.
func CanonicalName(header string) (string, bool) {
	c, ok := aliases[header]
	return c, ok
}

// IsUnnamed reports whether header is an auto-generated index column such as "Unnamed: 0".
func IsUnnamed(header string) bool {
	return strings.HasPrefix(header, unnamedPrefix)
}

func isNumericColumn(name string) bool {
	for _, c := range NumericColumns {
		if c == name {
			return true
		}
	}
	return false
}

func isCategoricalColumn(name string) bool {
	for _, c := range CategoricalColumns {
		if c == name {
			return true
		}
	}
	return false
}
