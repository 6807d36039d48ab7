package constants

// Question fields are scanned over question_01..question_10.
const (
	MinQuestionNumber = 1
	MaxQuestionNumber = 10
)

// Cross-tab dimensions.
const (
	DimensionAgeGroup = "age_group"
	DimensionGender   = "gender"
)

var CrossTabDimensions = []string{DimensionAgeGroup, DimensionGender}

// AgeGroupOrder is the canonical display order; anything else sorts after it.
var AgeGroupOrder = []string{
	"16-24",
	"25-34",
	"35-44",
	"45-54",
	"55-64",
	"65+",
	"Under 18",
}
