package parks

import "strings"

// Climate is the climate archetype a park is scored against.
type Climate string

const (
	ClimateDesert   Climate = "desert"
	ClimateMountain Climate = "mountain"
	ClimateCoastal  Climate = "coastal"
	ClimateForest   Climate = "forest"
	ClimateTropical Climate = "tropical"
	ClimateArctic   Climate = "arctic"
)

// DefaultClimate is assigned to parks that match no entry in the table.
const DefaultClimate = ClimateForest

type climateEntry struct {
	name    string
	climate Climate
}

// climateTable is checked in order; the first substring match wins.
var climateTable = []climateEntry{
	{"Grand Canyon", ClimateDesert},
	{"Arches", ClimateDesert},
	{"Canyonlands", ClimateDesert},
	{"Capitol Reef", ClimateDesert},
	{"Death Valley", ClimateDesert},
	{"Joshua Tree", ClimateDesert},
	{"Saguaro", ClimateDesert},
	{"White Sands", ClimateDesert},
	{"Petrified Forest", ClimateDesert},

	{"Yellowstone", ClimateMountain},
	{"Rocky Mountain", ClimateMountain},
	{"Grand Teton", ClimateMountain},
	{"Glacier", ClimateMountain},
	{"Yosemite", ClimateMountain},
	{"Sequoia", ClimateMountain},
	{"Kings Canyon", ClimateMountain},
	{"Mount Rainier", ClimateMountain},
	{"North Cascades", ClimateMountain},
	{"Great Smoky Mountains", ClimateMountain},
	{"Shenandoah", ClimateMountain},

	{"Acadia", ClimateCoastal},
	{"Olympic", ClimateCoastal},
	{"Channel Islands", ClimateCoastal},
	{"Dry Tortugas", ClimateCoastal},
	{"Biscayne", ClimateCoastal},
	{"Virgin Islands", ClimateCoastal},
	{"Point Reyes", ClimateCoastal},
	{"Cape Cod", ClimateCoastal},
	{"Assateague Island", ClimateCoastal},

	{"Redwood", ClimateForest},
	{"Congaree", ClimateForest},
	{"Voyageurs", ClimateForest},
	{"Isle Royale", ClimateForest},
	{"Cuyahoga Valley", ClimateForest},

	{"Everglades", ClimateTropical},
	{"Hawaii Volcanoes", ClimateTropical},
	{"Haleakalā", ClimateTropical},
	{"American Samoa", ClimateTropical},

	{"Denali", ClimateArctic},
	{"Gates of the Arctic", ClimateArctic},
	{"Glacier Bay", ClimateArctic},
	{"Katmai", ClimateArctic},
	{"Kenai Fjords", ClimateArctic},
	{"Kobuk Valley", ClimateArctic},
	{"Lake Clark", ClimateArctic},
	{"Wrangell-St. Elias", ClimateArctic},
}

// Classify returns the climate archetype for a park name by case-sensitive
// substring match against the table. Note "Glacier Bay" matches "Glacier"
// first and is classified as mountain.
func Classify(name string) Climate {
	for _, e := range climateTable {
		if strings.Contains(name, e.name) {
			return e.climate
		}
	}
	return DefaultClimate
}
