package util

import "time"

var seoul = time.FixedZone("Asia/Seoul", 9*60*60)

// NowUTC is the default clock for components that accept an injected one.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Seoul is the zone forecasts are bucketed in. Korea observes no DST, so a fixed
// offset avoids depending on tzdata being installed.
func Seoul() *time.Location {
	return seoul
}
