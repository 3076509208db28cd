package models

import "sort"

// CountryGroups maps a country name to its players, in response order.
type CountryGroups map[string][]Player

// GroupByCountry groups players by country.
// Players without a country are dropped.
func GroupByCountry(players []Player) CountryGroups {
	groups := make(CountryGroups)
	for _, p := range players {
		if p.Country == "" {
			continue
		}
		groups[p.Country] = append(groups[p.Country], p)
	}
	return groups
}

// Countries returns the group keys sorted ascending.
func (g CountryGroups) Countries() []string {
	countries := make([]string, 0, len(g))
	for country := range g {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}

// PlayerCount returns the number of grouped players.
func (g CountryGroups) PlayerCount() int {
	total := 0
	for _, players := range g {
		total += len(players)
	}
	return total
}
