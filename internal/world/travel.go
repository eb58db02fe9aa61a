package world

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/cardcity/internal/catalog"
)

const (
	// SourceMinutes is the travel time inside a seaport district with a road.
	SourceMinutes = 15
	// HopMinutes is added for each road-connected district crossed.
	HopMinutes = 15
)

// PropagateTravelTimes rebuilds every district's assets from scratch. Each
// seaport with a road in its own district is a source; a breadth-first
// search over road districts records one asset per source on every district
// it reaches. It returns the number of assets written.
func PropagateTravelTimes(g *Grid) int {
	ordered := g.Districts()
	for _, d := range ordered {
		d.Assets = nil
	}

	n := 0
	for _, src := range ordered {
		if !src.Has(catalog.Seaport) || !src.Has(catalog.Road) {
			continue
		}
		times := travelTimes(g, src.Coord)
		for _, d := range ordered {
			minutes, ok := times[d.Coord]
			if !ok {
				continue
			}
			d.Assets = append(d.Assets, Asset{Category: catalog.Seaport, Minutes: minutes, Source: src.Coord})
			n++
		}
	}
	return n
}

// travelTimes runs the round-based search from one source. All hops cost the
// same, so each round's proposals are already minimal.
func travelTimes(g *Grid, origin Coord) map[Coord]int {
	times := map[Coord]int{origin: SourceMinutes}
	visited := mapset.New[Coord]()
	visited.Put(origin)
	frontier := []Coord{origin}

	for len(frontier) > 0 {
		proposals := make(map[Coord]int)
		for _, c := range frontier {
			t := times[c] + HopMinutes
			for _, nc := range neighbors(c, g.topo.Roads) {
				if visited.Has(nc) {
					continue
				}
				nd := g.Get(nc)
				if nd == nil || !nd.Has(catalog.Road) {
					continue
				}
				if p, ok := proposals[nc]; !ok || t < p {
					proposals[nc] = t
				}
			}
		}

		next := make([]Coord, 0, len(proposals))
		for c, t := range proposals {
			times[c] = t
			visited.Put(c)
			next = append(next, c)
		}
		frontier = next
	}
	return times
}
