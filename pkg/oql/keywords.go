package oql

// KeywordMapping maps a feature keyword to the OSM tag it implies.
type KeywordMapping struct {
	Keyword string
	Key     string
	Value   string
}

// DefaultKeywordTable returns the built-in keyword table. The table is
// traversed in order and the first keyword that is a substring of the
// feature phrase wins, so more specific keywords must precede shorter
// prefixes of themselves (e.g. "parking" before "park").
func DefaultKeywordTable() []KeywordMapping {
	return []KeywordMapping{
		{"cafe", "amenity", "cafe"},
		{"coffee", "amenity", "cafe"},
		{"restaurant", "amenity", "restaurant"},
		{"fast food", "amenity", "fast_food"},
		{"bar", "amenity", "bar"},
		{"pub", "amenity", "pub"},
		{"parking", "amenity", "parking"},
		{"school", "amenity", "school"},
		{"university", "amenity", "university"},
		{"college", "amenity", "college"},
		{"hospital", "amenity", "hospital"},
		{"pharmacy", "amenity", "pharmacy"},
		{"bank", "amenity", "bank"},
		{"atm", "amenity", "atm"},
		{"fuel", "amenity", "fuel"},
		{"toilet", "amenity", "toilets"},
		{"hotel", "tourism", "hotel"},
		{"museum", "tourism", "museum"},
		{"supermarket", "shop", "supermarket"},
		{"bakery", "shop", "bakery"},
		{"playground", "leisure", "playground"},
		{"park", "leisure", "park"},
		{"bus stop", "highway", "bus_stop"},
	}
}
