package zone

import (
	"reflect"
	"testing"
)

func feat(tags map[string]string) Feature {
	return Feature{Type: "way", ID: 1, Tags: tags}
}

func TestResolve_DefaultAsymmetry(t *testing.T) {
	s := ScanFeatures(nil)
	if got := Resolve(s, VariantArea); got != CategoryInterurban {
		t.Fatalf("area default = %s, want INTERURBAN", got)
	}
	if got := Resolve(s, VariantLocal); got != CategorySea {
		t.Fatalf("local default = %s, want SEA", got)
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	cases := []struct {
		name     string
		features []Feature
		variant  Variant
		want     Category
	}{
		{
			name:     "military beats hospital",
			features: []Feature{feat(map[string]string{"military": "barracks"}), feat(map[string]string{"amenity": "hospital"})},
			variant:  VariantArea,
			want:     CategoryMilitary,
		},
		{
			name:     "prison beats hospital",
			features: []Feature{feat(map[string]string{"amenity": "prison"}), feat(map[string]string{"amenity": "hospital"})},
			variant:  VariantArea,
			want:     CategoryPrison,
		},
		{
			name:     "government office beats main road",
			features: []Feature{feat(map[string]string{"office": "government"}), feat(map[string]string{"highway": "motorway"})},
			variant:  VariantArea,
			want:     CategoryGovernment,
		},
		{
			name:     "hospital beats road",
			features: []Feature{feat(map[string]string{"amenity": "hospital"}), feat(map[string]string{"highway": "trunk"})},
			variant:  VariantArea,
			want:     CategoryHospital,
		},
		{
			name:     "motorway is a main road",
			features: []Feature{feat(map[string]string{"highway": "motorway"})},
			variant:  VariantArea,
			want:     CategoryMainRoad,
		},
		{
			name:     "main road beats coastline",
			features: []Feature{feat(map[string]string{"highway": "trunk"}), feat(map[string]string{"natural": "coastline"})},
			variant:  VariantArea,
			want:     CategoryMainRoad,
		},
		{
			name:     "residential road does not force main road",
			features: []Feature{feat(map[string]string{"highway": "residential"}), feat(map[string]string{"building": "house"})},
			variant:  VariantArea,
			want:     CategoryUrban,
		},
		{
			name:     "cliff beats coast",
			features: []Feature{feat(map[string]string{"natural": "cliff"}), feat(map[string]string{"natural": "beach"})},
			variant:  VariantArea,
			want:     CategoryCliff,
		},
		{
			name:     "coastline resolves to coast in area variant",
			features: []Feature{feat(map[string]string{"natural": "coastline"})},
			variant:  VariantArea,
			want:     CategoryCoast,
		},
		{
			name:     "coastline is ignored by the local variant",
			features: []Feature{feat(map[string]string{"natural": "coastline"})},
			variant:  VariantLocal,
			want:     CategorySea,
		},
		{
			name:     "urban beats water",
			features: []Feature{feat(map[string]string{"landuse": "residential"}), feat(map[string]string{"natural": "water"})},
			variant:  VariantArea,
			want:     CategoryUrban,
		},
		{
			name:     "named settlement is urban",
			features: []Feature{feat(map[string]string{"place": "village", "name": "Aldea"})},
			variant:  VariantArea,
			want:     CategoryUrban,
		},
		{
			name:     "unnamed settlement is not urban",
			features: []Feature{feat(map[string]string{"place": "village"})},
			variant:  VariantArea,
			want:     CategoryInterurban,
		},
		{
			name:     "water beats nature reserve",
			features: []Feature{feat(map[string]string{"natural": "water"}), feat(map[string]string{"leisure": "nature_reserve"})},
			variant:  VariantArea,
			want:     CategorySea,
		},
		{
			name:     "protected area resolves to nature reserve",
			features: []Feature{feat(map[string]string{"boundary": "protected_area"})},
			variant:  VariantArea,
			want:     CategoryNatureReserve,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(ScanFeatures(tc.features), tc.variant); got != tc.want {
				t.Fatalf("Resolve = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestScanFeatures_RoadFlags(t *testing.T) {
	s := ScanFeatures([]Feature{feat(map[string]string{"highway": "residential"})})
	if s.MainRoad {
		t.Fatalf("residential road marked as main road")
	}
	if !s.RoadPresent || s.RoadClass != "residential" {
		t.Fatalf("road presence not recorded: %+v", s)
	}

	s = ScanFeatures([]Feature{
		feat(map[string]string{"highway": "service"}),
		feat(map[string]string{"highway": "motorway"}),
	})
	if !s.MainRoad || s.RoadClass != "motorway" {
		t.Fatalf("main road class should win: %+v", s)
	}
}

func TestScanFeatures_IgnoresFootways(t *testing.T) {
	s := ScanFeatures([]Feature{feat(map[string]string{"highway": "footway"})})
	if s.RoadPresent {
		t.Fatalf("footway must not count as road presence")
	}
}

func TestScanFeatures_EvidenceDeduplicated(t *testing.T) {
	s := ScanFeatures([]Feature{
		feat(map[string]string{"natural": "coastline"}),
		feat(map[string]string{"natural": "coastline"}),
	})
	want := []string{"natural=coastline"}
	if !reflect.DeepEqual(s.Evidence, want) {
		t.Fatalf("evidence = %v, want %v", s.Evidence, want)
	}
}

func TestCategoryHighPriority(t *testing.T) {
	for _, c := range []Category{CategoryMilitary, CategoryPrison, CategoryGovernment, CategoryHospital, CategoryMainRoad, CategoryCliff} {
		if !c.HighPriority() {
			t.Fatalf("%s should be high priority", c)
		}
	}
	for _, c := range []Category{CategoryUrban, CategorySea, CategoryCoast, CategoryInterurban, CategoryNatureReserve, CategoryRiver} {
		if c.HighPriority() {
			t.Fatalf("%s should not be high priority", c)
		}
	}
}
