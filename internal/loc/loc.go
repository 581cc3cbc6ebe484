// Package loc defines the location types the dispatch core is generic over.
//
// Every container and algorithm in internal/space, internal/model,
// internal/dispatcher, internal/vehicle and internal/fleet is parametric in
// a Loc. Two concrete kinds are provided: R2Loc for continuous 2D spaces
// (Euclidean, Manhattan) and ILoc for discrete spaces (weighted graphs,
// integer grids).
package loc

// Loc is the type constraint satisfied by every concrete location kind the
// core can be instantiated with. Both members are plain comparable values,
// so a Loc can be used as a map key (stop lookups, visited-sets in graph
// search) without boxing.
type Loc interface {
	R2Loc | ILoc
}

// R2Loc is a point in continuous 2D space (Lat/Lon, or plain x/y — the
// transport space decides the interpretation).
type R2Loc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ILoc is a node id in a discrete space (weighted graph, integer grid).
type ILoc int64
