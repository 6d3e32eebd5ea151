package ml

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Species is one entry of the fixed class table.
type Species struct {
	Class int    `json:"class"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

var speciesKeys = [NumClasses]string{"setosa", "versicolor", "virginica"}

// speciesTable is built once; a cases.Caser must not be shared between
// goroutines.
var speciesTable = func() [NumClasses]Species {
	caser := cases.Title(language.English)
	var table [NumClasses]Species
	for i, key := range speciesKeys {
		table[i] = Species{
			Class: i,
			Key:   key,
			Name:  caser.String(key),
			Image: key + ".svg",
		}
	}
	return table
}()

// SpeciesFor maps a class index to its species entry.
func SpeciesFor(class int) (Species, error) {
	if class < 0 || class >= NumClasses {
		return Species{}, fmt.Errorf("class %d out of range [0,%d)", class, NumClasses)
	}
	return speciesTable[class], nil
}

// SpeciesByKey finds a species by its lowercase dataset name.
func SpeciesByKey(key string) (Species, bool) {
	for _, s := range speciesTable {
		if s.Key == key {
			return s, true
		}
	}
	return Species{}, false
}

// AllSpecies returns the class table in class order.
func AllSpecies() []Species {
	return append([]Species(nil), speciesTable[:]...)
}
