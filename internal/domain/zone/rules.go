package zone

// Variant selects which query shape produced the scanned features. The
// two variants share one rule table but differ in two inherited ways:
// the local variant skips the CLIFF and COAST rules, and the two
// variants fall back to different default categories when nothing
// matches (INTERURBAN for area, SEA for local).
type Variant int

const (
	VariantArea Variant = iota
	VariantLocal
)

// mainRoadClasses are the highway classes that force MAIN_ROAD. Lower
// classes only set the road-presence flag.
var mainRoadClasses = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"trunk":         true,
	"trunk_link":    true,
}

// nonVehicleHighways never count as road presence.
var nonVehicleHighways = map[string]bool{
	"footway":    true,
	"path":       true,
	"steps":      true,
	"cycleway":   true,
	"pedestrian": true,
	"bridleway":  true,
}

var urbanLanduse = map[string]bool{
	"residential": true,
	"commercial":  true,
	"industrial":  true,
	"retail":      true,
}

var settlementPlaces = map[string]bool{
	"city":          true,
	"town":          true,
	"village":       true,
	"hamlet":        true,
	"suburb":        true,
	"neighbourhood": true,
}

// Scan is the single-pass digest of a feature set: one boolean flag per
// tag family plus the ordered evidence trail.
type Scan struct {
	Military    bool
	Prison      bool
	Government  bool
	Hospital    bool
	MainRoad    bool
	RoadPresent bool
	RoadClass   string
	Cliff       bool
	Coast       bool
	Sea         bool
	Nature      bool
	Urban       bool
	Evidence    []string
}

// ScanFeatures walks the feature list once and raises the flag for
// every tag family it recognizes, recording each first sighting as a
// human-readable evidence string.
func ScanFeatures(features []Feature) Scan {
	var s Scan
	seen := map[string]bool{}
	note := func(key, value string) {
		ev := key + "=" + value
		if seen[ev] {
			return
		}
		seen[ev] = true
		s.Evidence = append(s.Evidence, ev)
	}

	for _, f := range features {
		if v := f.tag("military"); v != "" {
			s.Military = true
			note("military", v)
		}
		if f.tag("landuse") == "military" {
			s.Military = true
			note("landuse", "military")
		}
		if f.tag("amenity") == "prison" {
			s.Prison = true
			note("amenity", "prison")
		}
		if f.tag("office") == "government" {
			s.Government = true
			note("office", "government")
		}
		if f.tag("building") == "government" {
			s.Government = true
			note("building", "government")
		}
		if f.tag("amenity") == "hospital" {
			s.Hospital = true
			note("amenity", "hospital")
		}
		if hw := f.tag("highway"); hw != "" && !nonVehicleHighways[hw] {
			s.RoadPresent = true
			note("highway", hw)
			if mainRoadClasses[hw] {
				s.MainRoad = true
				s.RoadClass = hw
			} else if s.RoadClass == "" {
				s.RoadClass = hw
			}
		}
		switch f.tag("natural") {
		case "water", "bay":
			s.Sea = true
			note("natural", f.tag("natural"))
		case "coastline", "beach":
			s.Coast = true
			note("natural", f.tag("natural"))
		case "cliff":
			s.Cliff = true
			note("natural", "cliff")
		case "wood":
			s.Nature = true
			note("natural", "wood")
		}
		if f.tag("place") == "sea" {
			s.Sea = true
			note("place", "sea")
		}
		if f.tag("landuse") == "forest" {
			s.Nature = true
			note("landuse", "forest")
		}
		switch f.tag("leisure") {
		case "nature_reserve", "park":
			s.Nature = true
			note("leisure", f.tag("leisure"))
		}
		switch f.tag("boundary") {
		case "protected_area", "national_park":
			s.Nature = true
			note("boundary", f.tag("boundary"))
		}
		if v := f.tag("building"); v != "" {
			s.Urban = true
			note("building", v)
		}
		if v := f.tag("landuse"); urbanLanduse[v] {
			s.Urban = true
			note("landuse", v)
		}
		if v := f.tag("place"); settlementPlaces[v] && f.tag("name") != "" {
			s.Urban = true
			note("place", v)
		}
	}
	return s
}

// rule is one row of the priority table: first predicate to match wins.
type rule struct {
	match    func(Scan) bool
	category Category
	areaOnly bool
}

// rules is the single declarative priority order shared by both query
// variants, top-down.
var rules = []rule{
	{match: func(s Scan) bool { return s.Military }, category: CategoryMilitary},
	{match: func(s Scan) bool { return s.Prison }, category: CategoryPrison},
	{match: func(s Scan) bool { return s.Government }, category: CategoryGovernment},
	{match: func(s Scan) bool { return s.Hospital }, category: CategoryHospital},
	{match: func(s Scan) bool { return s.MainRoad }, category: CategoryMainRoad},
	{match: func(s Scan) bool { return s.Cliff }, category: CategoryCliff, areaOnly: true},
	{match: func(s Scan) bool { return s.Coast }, category: CategoryCoast, areaOnly: true},
	{match: func(s Scan) bool { return s.Urban }, category: CategoryUrban},
	{match: func(s Scan) bool { return s.Sea }, category: CategorySea},
	{match: func(s Scan) bool { return s.Nature }, category: CategoryNatureReserve},
}

// Resolve maps a scan to exactly one category for the given variant.
func Resolve(s Scan, v Variant) Category {
	for _, r := range rules {
		if r.areaOnly && v == VariantLocal {
			continue
		}
		if r.match(s) {
			return r.category
		}
	}
	if v == VariantLocal {
		return CategorySea
	}
	return CategoryInterurban
}
