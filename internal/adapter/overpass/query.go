package overpass

import (
	"strconv"
	"strings"

	"geohex/internal/app/ports"
	"geohex/internal/domain/zone"

	"github.com/tidwall/gjson"
)

// featureKeys are the OSM tag keys the classifier rules read. Querying
// per key keeps the result small; untagged geometry never matters here.
var featureKeys = []string{
	"highway",
	"natural",
	"landuse",
	"leisure",
	"military",
	"amenity",
	"building",
	"boundary",
	"office",
	"place",
}

// BuildQuery renders the Overpass QL statement for a region. Both
// region kinds union one nwr statement per feature key and return tags
// only.
func BuildQuery(region ports.QueryRegion) string {
	var filter string
	switch region.Kind {
	case ports.RegionAround:
		filter = "(around:" + itoa(int(region.RadiusMeters)) + "," + ftoa(region.Lat) + "," + ftoa(region.Lng) + ")"
	default:
		filter = "(" + ftoa(region.South) + "," + ftoa(region.West) + "," + ftoa(region.North) + "," + ftoa(region.East) + ")"
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:10];(")
	for _, key := range featureKeys {
		b.WriteString(`nwr["`)
		b.WriteString(key)
		b.WriteString(`"]`)
		b.WriteString(filter)
		b.WriteString(";")
	}
	b.WriteString(");out tags;")
	return b.String()
}

func parseFeatures(body []byte) []zone.Feature {
	elements := gjson.GetBytes(body, "elements")
	out := make([]zone.Feature, 0, int(elements.Get("#").Int()))
	elements.ForEach(func(_, el gjson.Result) bool {
		f := zone.Feature{
			Type: el.Get("type").String(),
			ID:   el.Get("id").Int(),
			Tags: map[string]string{},
		}
		el.Get("tags").ForEach(func(k, v gjson.Result) bool {
			f.Tags[k.String()] = v.String()
			return true
		})
		out = append(out, f)
		return true
	})
	return out
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
