package scene

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

var builtins = map[string]func() *World{
	"cornell": NewCornellScene,
	"simple":  NewSimpleScene,
}

// BuiltinNames lists the names accepted by Resolve
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a built-in scene by name, or loads a YAML scene file
func Resolve(nameOrPath string) (*World, error) {
	if ctor, ok := builtins[nameOrPath]; ok {
		world := ctor()
		if err := world.Build(); err != nil {
			return nil, fmt.Errorf("built-in scene %s: %w", nameOrPath, err)
		}
		return world, nil
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("unknown scene %q (built-ins: %v)", nameOrPath, BuiltinNames())
	}
	return LoadDescription(nameOrPath)
}

// NewCornellScene creates a 2x2x2 Cornell box lit by a disk light under the
// ceiling, with a mirror sphere and a glass sphere
func NewCornellScene() *World {
	w := NewWorld("cornell")
	w.Ambient = core.NewVec3(0.02, 0.02, 0.02)
	w.Camera = CameraConfig{
		Location:    core.NewVec3(0, 1, 3.4),
		FocalLength: 50.0 / 36.0,
	}

	white := material.NewDiffuse(core.NewVec3(0.73, 0.73, 0.73))
	white.SpecularColor = core.NewVec3(0.05, 0.05, 0.05)
	white.SpecularHardness = 10
	red := material.NewDiffuse(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewVec3(0.12, 0.45, 0.15))

	mirror := material.NewMirror(0.9)
	mirror.SpecularColor = core.NewVec3(1, 1, 1)
	mirror.SpecularHardness = 200

	glass := material.NewGlass(1.5)
	glass.SpecularColor = core.NewVec3(1, 1, 1)
	glass.SpecularHardness = 200

	// The box spans x ∈ [-1, 1], y ∈ [0, 2], z ∈ [-2, 0] and is open toward the camera
	w.Add("floor", NewQuad(core.NewVec3(-1, 0, -2), core.NewVec3(0, 0, 2), core.NewVec3(2, 0, 0)), white)
	w.Add("ceiling", NewQuad(core.NewVec3(-1, 2, -2), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2)), white)
	w.Add("back", NewQuad(core.NewVec3(-1, 0, -2), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), white)
	w.Add("left", NewQuad(core.NewVec3(-1, 0, -2), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 2)), red)
	w.Add("right", NewQuad(core.NewVec3(1, 0, -2), core.NewVec3(0, 0, 2), core.NewVec3(0, 2, 0)), green)

	w.Add("mirror_sphere", NewSphere(core.NewVec3(-0.45, 0.35, -1.3), 0.35), mirror)
	w.Add("glass_sphere", NewSphere(core.NewVec3(0.45, 0.35, -0.7), 0.35), glass)

	w.AddLight(NewAreaLight("ceiling_light",
		core.NewVec3(0, 1.98, -1),
		core.NewVec3(-math.Pi/2, 0, 0), // faces straight down
		core.NewVec3(1, 0.95, 0.9),
		60, 0.6))

	return w
}

// NewSimpleScene creates a diffuse sphere on a ground plane under a point light
func NewSimpleScene() *World {
	w := NewWorld("simple")
	w.Ambient = core.NewVec3(0.05, 0.05, 0.05)
	w.Camera = CameraConfig{
		Location:    core.NewVec3(0, 1, 2),
		FocalLength: 50.0 / 36.0,
	}

	ground := material.NewDiffuse(core.NewVec3(0.6, 0.6, 0.6))
	ball := material.NewDiffuse(core.NewVec3(0.7, 0.3, 0.2))
	ball.SpecularColor = core.NewVec3(0.5, 0.5, 0.5)
	ball.SpecularHardness = 50

	w.Add("ground", NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), ground)
	w.Add("ball", NewSphere(core.NewVec3(0, 1, -3), 1), ball)

	w.AddLight(NewPointLight("key", core.NewVec3(2, 4, 0), core.NewVec3(1, 1, 1), 500))

	return w
}
