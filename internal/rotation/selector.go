package rotation

import (
	"sort"

	"player_rotation/ingestion/internal/models"
)

// NextCountry picks the country to add after last, cycling through the
// countries of groups in ascending order. When there is no last country, or
// last is not part of this fetch, the first country is picked.
// groups must not be empty; an empty result is returned if it is.
func NextCountry(last string, hasLast bool, groups models.CountryGroups) string {
	countries := groups.Countries()
	if len(countries) == 0 {
		return ""
	}

	if hasLast {
		i := sort.SearchStrings(countries, last)
		if i < len(countries) && countries[i] == last {
			return countries[(i+1)%len(countries)]
		}
	}

	return countries[0]
}
