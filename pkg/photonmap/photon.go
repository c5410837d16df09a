package photonmap

import (
	"fmt"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// Photon is a single recorded surface interaction of a light particle.
// Direction is the unit direction the photon was travelling when it hit.
// Depth is 1 for the first surface a photon reaches after leaving the light.
type Photon struct {
	ID        int
	Location  core.Vec3
	Direction core.Vec3
	Depth     int
}

func (p Photon) String() string {
	return fmt.Sprintf("ID: %d Location: %.3f, %.3f, %.3f; Direction: %.3f, %.3f, %.3f; Depth: %d",
		p.ID, p.Location.X, p.Location.Y, p.Location.Z,
		p.Direction.X, p.Direction.Y, p.Direction.Z, p.Depth)
}

// Neighbor is a query result: a photon id and its distance to the query point
type Neighbor struct {
	ID       int
	Distance float64
}
