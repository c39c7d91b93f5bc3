package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/mirrorlake/geobot/internal/geo"
	"github.com/mirrorlake/geobot/internal/pending"
)

const mapURLFormat = "http://maps.google.com/maps?f=q&hl=en&geocode=&q=%v+%v&ie=UTF8&ll=%v,%v&spn=0.202125,0.520477&z=12"

// replyWithLocation resolves host, composes the location sentence for
// name, and delivers it to the requester.
func (e *Engine) replyWithLocation(host, name string, rec pending.Record) {
	sentence, mapLink := e.locationFor(host, name)
	if mapLink != "" {
		e.send(rec.Room, fmt.Sprintf("%s: %s (Map: %s)", rec.From, sentence, mapLink))
		return
	}
	e.send(rec.Room, fmt.Sprintf("%s: %s", rec.From, sentence))
}

// locationFor returns the human-readable location sentence for host and
// a shortened map link, or an empty link when coordinates are missing or
// the shortener fails.
func (e *Engine) locationFor(host, name string) (string, string) {
	ip, res := e.geo.Resolve(host)
	if ip == "" || res == nil {
		return fmt.Sprintf("I don't know where %s is from!", name), ""
	}
	return fmt.Sprintf("%s is in %s", name, joinPlace(res)), e.mapLink(res)
}

// joinPlace composes "city, region, country", omitting absent parts.
func joinPlace(res *geo.Result) string {
	var parts []string
	for _, part := range []string{res.City, geo.CleanRegion(res.Region), res.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) mapLink(res *geo.Result) string {
	long := fmt.Sprintf(mapURLFormat, res.Latitude, res.Longitude, res.Latitude, res.Longitude)
	short, err := e.short.Shorten(long)
	if err != nil {
		log.Printf("[engine] shorten map link: %v", err)
		return ""
	}
	return short
}
