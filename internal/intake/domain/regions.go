package domain

import "sort"

// 地域コード。
const (
	RegionUSA    = "USA"
	RegionEurope = "Europe"
	RegionUAE    = "UAE"
	RegionLATAM  = "LATAM"
	RegionAPAC   = "APAC"
)

// countryToRegion は国名から地域への唯一の対応表。ウィザード・API ともここだけを参照する。
var countryToRegion = map[string]string{
	"United States": RegionUSA,

	"Albania": RegionEurope, "Andorra": RegionEurope, "Austria": RegionEurope, "Belarus": RegionEurope,
	"Belgium": RegionEurope, "Bosnia and Herzegovina": RegionEurope, "Bulgaria": RegionEurope,
	"Croatia": RegionEurope, "Cyprus": RegionEurope, "Czech Republic": RegionEurope, "Denmark": RegionEurope,
	"Estonia": RegionEurope, "Finland": RegionEurope, "France": RegionEurope, "Germany": RegionEurope,
	"Greece": RegionEurope, "Hungary": RegionEurope, "Iceland": RegionEurope, "Ireland": RegionEurope,
	"Italy": RegionEurope, "Latvia": RegionEurope, "Liechtenstein": RegionEurope, "Lithuania": RegionEurope,
	"Luxembourg": RegionEurope, "Malta": RegionEurope, "Moldova": RegionEurope, "Monaco": RegionEurope,
	"Montenegro": RegionEurope, "Netherlands": RegionEurope, "North Macedonia": RegionEurope,
	"Norway": RegionEurope, "Poland": RegionEurope, "Portugal": RegionEurope, "Romania": RegionEurope,
	"Russia": RegionEurope, "San Marino": RegionEurope, "Serbia": RegionEurope, "Slovakia": RegionEurope,
	"Slovenia": RegionEurope, "Spain": RegionEurope, "Sweden": RegionEurope, "Switzerland": RegionEurope,
	"Ukraine": RegionEurope, "United Kingdom": RegionEurope, "Vatican City": RegionEurope,

	"United Arab Emirates": RegionUAE, "Saudi Arabia": RegionUAE, "Qatar": RegionUAE, "Kuwait": RegionUAE,
	"Bahrain": RegionUAE, "Oman": RegionUAE,

	"Argentina": RegionLATAM, "Bolivia": RegionLATAM, "Brazil": RegionLATAM, "Chile": RegionLATAM,
	"Colombia": RegionLATAM, "Costa Rica": RegionLATAM, "Cuba": RegionLATAM, "Dominican Republic": RegionLATAM,
	"Ecuador": RegionLATAM, "El Salvador": RegionLATAM, "Guatemala": RegionLATAM, "Honduras": RegionLATAM,
	"Mexico": RegionLATAM, "Nicaragua": RegionLATAM, "Panama": RegionLATAM, "Paraguay": RegionLATAM,
	"Peru": RegionLATAM, "Uruguay": RegionLATAM, "Venezuela": RegionLATAM,

	"Afghanistan": RegionAPAC, "Australia": RegionAPAC, "Bangladesh": RegionAPAC, "Bhutan": RegionAPAC,
	"Brunei": RegionAPAC, "Cambodia": RegionAPAC, "China": RegionAPAC, "Fiji": RegionAPAC,
	"India": RegionAPAC, "Indonesia": RegionAPAC, "Japan": RegionAPAC, "Laos": RegionAPAC,
	"Malaysia": RegionAPAC, "Maldives": RegionAPAC, "Myanmar": RegionAPAC, "Nepal": RegionAPAC,
	"New Zealand": RegionAPAC, "North Korea": RegionAPAC, "Pakistan": RegionAPAC, "Papua New Guinea": RegionAPAC,
	"Philippines": RegionAPAC, "Singapore": RegionAPAC, "South Korea": RegionAPAC, "Sri Lanka": RegionAPAC,
	"Taiwan": RegionAPAC, "Thailand": RegionAPAC, "Vietnam": RegionAPAC,
}

// Regions lists the region codes in display order.
var Regions = []string{RegionUSA, RegionEurope, RegionUAE, RegionLATAM, RegionAPAC}

// RegionFor returns the region mapped to country, or "" when the country is unknown.
func RegionFor(country string) string {
	return countryToRegion[country]
}

// Countries returns every mapped country sorted alphabetically.
func Countries() []string {
	countries := make([]string, 0, len(countryToRegion))
	for country := range countryToRegion {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}
