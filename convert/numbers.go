package convert

import (
	"math"
)

func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(decimals)) / math.Pow10(decimals)
}

func MWhToKWh(price float64) float64 {
	return price / 1e3
}
