package headhunter

import "strings"

// regions maps a lower-cased city name to the hh.ru area code.
var regions = map[string]string{
	"москва":          "113",
	"санкт-петербург": "2",
	"спб":             "2",
	"воронеж":         "54",
	"remote":          "0",
}

// RegionCode returns the hh.ru area code for a city typed by the user.
func RegionCode(city string) (string, bool) {
	code, ok := regions[strings.ToLower(strings.TrimSpace(city))]
	return code, ok
}
