package models

import "strings"

// TaskCategory is the closed set of categories a persisted task may carry
type TaskCategory string

const (
	CategoryVenue           TaskCategory = "VENUE"
	CategoryCatering        TaskCategory = "CATERING"
	CategoryTransportation  TaskCategory = "TRANSPORTATION"
	CategoryCakeAndDessert  TaskCategory = "CAKE_AND_DESSERT"
	CategoryPhotography     TaskCategory = "PHOTOGRAPHY"
	CategoryAttire          TaskCategory = "ATTIRE"
	CategoryEntertainment   TaskCategory = "ENTERTAINMENT"
	CategoryDecorAndFlowers TaskCategory = "DECOR_AND_FLOWERS"
	CategoryGift            TaskCategory = "GIFT"
	CategoryGuests          TaskCategory = "GUESTS"
	CategoryCultural        TaskCategory = "CULTURAL"
	CategoryReligious       TaskCategory = "RELIGIOUS"
	CategoryMiscellaneous   TaskCategory = "MISCELLANEOUS"
	CategoryFinalisation    TaskCategory = "FINALISATION"
	CategoryOthers          TaskCategory = "OTHERS"
)

var taskCategories = []TaskCategory{
	CategoryVenue,
	CategoryCatering,
	CategoryTransportation,
	CategoryCakeAndDessert,
	CategoryPhotography,
	CategoryAttire,
	CategoryEntertainment,
	CategoryDecorAndFlowers,
	CategoryGift,
	CategoryGuests,
	CategoryCultural,
	CategoryReligious,
	CategoryMiscellaneous,
	CategoryFinalisation,
	CategoryOthers,
}

// categoryLookup is keyed by the trimmed, lower-cased label. Matching is
// exact; there is no fuzzy or prefix matching.
var categoryLookup = map[string]TaskCategory{
	"venue":          CategoryVenue,
	"venues":         CategoryVenue,
	"catering":       CategoryCatering,
	"food":           CategoryCatering,
	"food & drink":   CategoryCatering,
	"food and drink": CategoryCatering,
	"transportation": CategoryTransportation,
	"transport":      CategoryTransportation,

	"cake & dessert":   CategoryCakeAndDessert,
	"cake and dessert": CategoryCakeAndDessert,
	"cake & desserts":  CategoryCakeAndDessert,
	"cake":             CategoryCakeAndDessert,
	"dessert":          CategoryCakeAndDessert,

	"photography":                 CategoryPhotography,
	"photography & videography":   CategoryPhotography,
	"photography and videography": CategoryPhotography,
	"attire":                      CategoryAttire,
	"attire & beauty":             CategoryAttire,
	"entertainment":               CategoryEntertainment,
	"music":                       CategoryEntertainment,
	"music & entertainment":       CategoryEntertainment,

	"decor & flowers":   CategoryDecorAndFlowers,
	"decor and flowers": CategoryDecorAndFlowers,
	"decor & florals":   CategoryDecorAndFlowers,
	"decor":             CategoryDecorAndFlowers,
	"decoration":        CategoryDecorAndFlowers,
	"decorations":       CategoryDecorAndFlowers,
	"flowers":           CategoryDecorAndFlowers,

	"gift":             CategoryGift,
	"gifts":            CategoryGift,
	"favors & gifts":   CategoryGift,
	"guests":           CategoryGuests,
	"guest":            CategoryGuests,
	"guest list":       CategoryGuests,
	"guest management": CategoryGuests,

	"cultural":                     CategoryCultural,
	"culture":                      CategoryCultural,
	"cultural practices":           CategoryCultural,
	"cultural/religious practices": CategoryCultural,
	"cultural & religious":         CategoryCultural,
	"religious":                    CategoryReligious,
	"religion":                     CategoryReligious,
	"religious practices":          CategoryReligious,

	"miscellaneous": CategoryMiscellaneous,
	"misc":          CategoryMiscellaneous,
	"finalisation":  CategoryFinalisation,
	"finalization":  CategoryFinalisation,
	"final details": CategoryFinalisation,
	"others":        CategoryOthers,
	"other":         CategoryOthers,
}

func init() {
	// The enum spellings themselves are always accepted.
	for _, c := range taskCategories {
		categoryLookup[strings.ToLower(string(c))] = c
	}
}

// MapTaskCategory coerces a free-text label into the closed TaskCategory
// enumeration. Unknown labels map to CategoryOthers, so the result is always
// a valid member.
func MapTaskCategory(raw string) TaskCategory {
	if c, ok := categoryLookup[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CategoryOthers
}

// TaskCategories returns every category in display order
func TaskCategories() []TaskCategory {
	out := make([]TaskCategory, len(taskCategories))
	copy(out, taskCategories)
	return out
}

// Valid reports whether c is a member of the enumeration
func (c TaskCategory) Valid() bool {
	for _, v := range taskCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Label renders the category for humans, e.g. DECOR_AND_FLOWERS becomes
// "Decor And Flowers".
func (c TaskCategory) Label() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
