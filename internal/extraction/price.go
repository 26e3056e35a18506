package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// priceReplacer drops thousands separators and the currency sign and maps
// "VB" (negotiable) to 1
var priceReplacer = strings.NewReplacer(".", "", "VB", "1", "€", "")

// ParsePrice returns the first run of digits in a price label after normalization.
// The second return value is false when the label holds no number.
func ParsePrice(text string) (int, bool) {
	match := digitRun.FindString(priceReplacer.Replace(text))
	if match == "" {
		return 0, false
	}
	price, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return price, true
}
