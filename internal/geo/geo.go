// Package geo resolves a hostname or IP literal to geolocation data via
// DNS and a local MaxMind GeoLite2 city database.
package geo

import (
	"fmt"
	"net"
	"regexp"

	"github.com/oschwald/geoip2-golang"
)

// Result is the geolocation data for one address. Any of the string
// fields may be empty when the database has no value for them.
type Result struct {
	Latitude   float64
	Longitude  float64
	City       string
	Region     string
	Country    string
	PostalCode string
}

// Resolver turns a hostname or address into an IP and optional
// geolocation data. The two failure shapes are distinct: an empty ip
// means the address itself could not be resolved; a non-empty ip with a
// nil Result means it resolved but carries no geolocation data. Neither
// is an error.
type Resolver interface {
	Resolve(host string) (ip string, res *Result)
}

// MaxMind resolves against a GeoLite2 city database file.
type MaxMind struct {
	db *geoip2.Reader
}

func Open(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geolocation database %s: %w", path, err)
	}
	return &MaxMind{db: db}, nil
}

func (m *MaxMind) Close() error {
	return m.db.Close()
}

func (m *MaxMind) Resolve(host string) (string, *Result) {
	addrs, err := net.LookupIP(host)
	if err != nil || len(addrs) == 0 {
		return "", nil
	}
	ip := addrs[0]
	rec, err := m.db.City(ip)
	if err != nil {
		return ip.String(), nil
	}
	return ip.String(), fromRecord(rec)
}

var numericRegion = regexp.MustCompile(`^[0-9]+$`)

// CleanRegion drops purely numeric region values, a known artifact of
// the source feed rather than real region names.
func CleanRegion(region string) string {
	if numericRegion.MatchString(region) {
		return ""
	}
	return region
}

func fromRecord(rec *geoip2.City) *Result {
	if rec == nil {
		return nil
	}
	res := &Result{
		Latitude:   rec.Location.Latitude,
		Longitude:  rec.Location.Longitude,
		City:       rec.City.Names["en"],
		Country:    rec.Country.Names["en"],
		PostalCode: rec.Postal.Code,
	}
	if len(rec.Subdivisions) > 0 {
		res.Region = CleanRegion(rec.Subdivisions[0].Names["en"])
	}
	if res.City == "" && res.Region == "" && res.Country == "" {
		return nil
	}
	return res
}
