package weather

import (
	"math"
	"time"
)

// SunHours returns sunrise and sunset at (lat, lon) on the day of t, as
// clock hours in t's zone. The solar day is centred on local solar noon and
// shifted by the distance from the zone meridian; the equation of time is
// ignored. ok is false when the sun does not rise and set that day or when
// the hours fall outside the ranges a DiurnalCycle accepts.
func SunHours(t time.Time, lat, lon float64) (sunrise, sunset float64, ok bool) {
	decl := toRad(23.45 * math.Sin(toRad(360.0/365.0*float64(284+t.YearDay()))))

	cosH := -math.Tan(toRad(lat)) * math.Tan(decl)
	if cosH <= -1 || cosH >= 1 {
		return 0, 0, false
	}
	half := math.Acos(cosH) * 180 / math.Pi / 15

	_, offset := t.Zone()
	meridian := float64(offset) / 3600 * 15
	if lon > 180 {
		lon -= 360
	}
	noon := noonHour + (meridian-lon)/15

	sunrise, sunset = noon-half, noon+half
	if !(sunrise > 0 && sunrise < noonHour && sunset > afternoonHour && sunset < 24) {
		return 0, 0, false
	}
	return sunrise, sunset, true
}
