package zone

// Feature is one tagged map element returned by the feature query
// service: a node, way or relation with its tag map.
type Feature struct {
	Type string
	ID   int64
	Tags map[string]string
}

func (f Feature) tag(key string) string {
	return f.Tags[key]
}
