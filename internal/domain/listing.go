package domain

// Partition separates disjoint search spaces. A listing never matches a query
// issued against another partition.
type Partition string

const (
	Domestic Partition = "domestic"
	Overseas Partition = "overseas"
)

// Partitions lists every known partition in display order.
var Partitions = []Partition{Domestic, Overseas}

// ParsePartition maps a raw request value onto a known partition.
func ParsePartition(s string) (Partition, error) {
	switch Partition(s) {
	case Domestic, Overseas:
		return Partition(s), nil
	}
	return "", ErrUnknownPartition
}

// Listing is a read-only lodging record. CitySlug is lowercase, hyphen-free and
// never displayed; it must be a value the alias tables can produce.
type Listing struct {
	ID          string    `json:"id"`
	Type        Partition `json:"type"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	CitySlug    string    `json:"citySlug"`
	Category    string    `json:"category"`
	Description string    `json:"desc,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Amenities   []string  `json:"amenities,omitempty"`
	Rooms       []Room    `json:"rooms,omitempty"`
}

// Room prices are whole won. Zero means the rate is not offered.
type Room struct {
	Name   string `json:"name"`
	DayUse int64  `json:"dayUse"`
	Stay   int64  `json:"stay"`
}

// StayPriceRange returns the cheapest and priciest overnight rate.
// ok is false when no room carries a stay price.
func (l *Listing) StayPriceRange() (lo, hi int64, ok bool) {
	for _, r := range l.Rooms {
		if r.Stay <= 0 {
			continue
		}
		if !ok || r.Stay < lo {
			lo = r.Stay
		}
		if !ok || r.Stay > hi {
			hi = r.Stay
		}
		ok = true
	}
	return lo, hi, ok
}

// HasAmenity reports whether the listing advertises the amenity verbatim.
func (l *Listing) HasAmenity(a string) bool {
	for _, x := range l.Amenities {
		if x == a {
			return true
		}
	}
	return false
}
