package scene

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// vec3 is a YAML triple such as [0.8, 0.8, 0.8]
type vec3 [3]float64

func (v vec3) toVec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// Description is the on-disk YAML form of a scene. Angles are in degrees.
type Description struct {
	Name     string                         `yaml:"name"`
	Ambient  vec3                           `yaml:"ambient"`
	Camera   CameraDescription              `yaml:"camera"`
	Material map[string]MaterialDescription `yaml:"materials"`
	Objects  []ObjectDescription            `yaml:"objects"`
	Lights   []LightDescription             `yaml:"lights"`
}

// CameraDescription places the camera
type CameraDescription struct {
	Location    vec3    `yaml:"location"`
	Rotation    vec3    `yaml:"rotation"`
	Lens        float64 `yaml:"lens"`
	SensorWidth float64 `yaml:"sensor_width"`
}

// MaterialDescription mirrors material.Material with YAML names
type MaterialDescription struct {
	Diffuse      vec3    `yaml:"diffuse"`
	Specular     vec3    `yaml:"specular"`
	Hardness     float64 `yaml:"hardness"`
	Mirror       float64 `yaml:"mirror"`
	IOR          float64 `yaml:"ior"`
	Transmission float64 `yaml:"transmission"`
	Fresnel      bool    `yaml:"fresnel"`
}

// ObjectDescription is one shape. Which fields are read depends on Type.
type ObjectDescription struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"` // sphere, plane, quad, box
	Material string  `yaml:"material"`
	Center   vec3    `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Point    vec3    `yaml:"point"`
	Normal   vec3    `yaml:"normal"`
	Corner   vec3    `yaml:"corner"`
	U        vec3    `yaml:"u"`
	V        vec3    `yaml:"v"`
	Size     vec3    `yaml:"size"`
	Rotation vec3    `yaml:"rotation"`
}

// LightDescription is one light
type LightDescription struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"` // point, area
	Location vec3    `yaml:"location"`
	Rotation vec3    `yaml:"rotation"`
	Color    vec3    `yaml:"color"`
	Energy   float64 `yaml:"energy"`
	Size     float64 `yaml:"size"`
}

// LoadDescription reads a YAML scene file and builds the world
func LoadDescription(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	world, err := ParseDescription(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return world, nil
}

// ParseDescription decodes YAML scene data and builds the world
func ParseDescription(data []byte) (*World, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return desc.Build()
}

// Build converts the description into a ready-to-render World
func (d Description) Build() (*World, error) {
	world := NewWorld(d.Name)
	world.Ambient = d.Ambient.toVec3()

	world.Camera = DefaultCameraConfig()
	world.Camera.Location = d.Camera.Location.toVec3()
	world.Camera.Rotation = core.DegreesToRadians(d.Camera.Rotation.toVec3())
	if d.Camera.Lens > 0 {
		sensor := d.Camera.SensorWidth
		if sensor <= 0 {
			sensor = 36
		}
		world.Camera.FocalLength = d.Camera.Lens / sensor
	}

	var err error
	materials := make(map[string]material.Material, len(d.Material))
	for name, m := range d.Material {
		materials[name] = m.toMaterial()
	}

	for i, o := range d.Objects {
		mat, ok := materials[o.Material]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("object %d (%s): unknown material %q", i, o.Name, o.Material))
			continue
		}
		shape, shapeErr := o.toShape()
		if shapeErr != nil {
			err = multierr.Append(err, fmt.Errorf("object %d (%s): %w", i, o.Name, shapeErr))
			continue
		}
		world.Add(o.Name, shape, mat)
	}

	for i, l := range d.Lights {
		kind, kindErr := ParseLightKind(l.Type)
		if kindErr != nil {
			err = multierr.Append(err, fmt.Errorf("light %d (%s): %w", i, l.Name, kindErr))
			continue
		}
		color := l.Color.toVec3()
		if color.IsZero() {
			color = core.NewVec3(1, 1, 1)
		}
		world.AddLight(Light{
			Name:     l.Name,
			Kind:     kind,
			Location: l.Location.toVec3(),
			Rotation: core.DegreesToRadians(l.Rotation.toVec3()),
			Color:    color,
			Energy:   l.Energy,
			Size:     l.Size,
		})
	}

	if err != nil {
		return nil, err
	}
	if err := world.Build(); err != nil {
		return nil, err
	}
	return world, nil
}

func (m MaterialDescription) toMaterial() material.Material {
	ior := m.IOR
	if ior == 0 {
		ior = 1.0
	}
	return material.Material{
		DiffuseColor:       m.Diffuse.toVec3(),
		SpecularColor:      m.Specular.toVec3(),
		SpecularHardness:   m.Hardness,
		MirrorReflectivity: m.Mirror,
		IOR:                ior,
		Transmission:       m.Transmission,
		UseFresnel:         m.Fresnel,
	}
}

func (o ObjectDescription) toShape() (Shape, error) {
	switch o.Type {
	case "sphere":
		if o.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius %v must be positive", o.Radius)
		}
		return NewSphere(o.Center.toVec3(), o.Radius), nil
	case "plane":
		normal := o.Normal.toVec3()
		if normal.IsZero() {
			return nil, fmt.Errorf("plane normal must be non-zero")
		}
		return NewPlane(o.Point.toVec3(), normal), nil
	case "quad":
		u, v := o.U.toVec3(), o.V.toVec3()
		if u.Cross(v).IsZero() {
			return nil, fmt.Errorf("quad edges must not be parallel")
		}
		return NewQuad(o.Corner.toVec3(), u, v), nil
	case "box":
		return NewBox(o.Center.toVec3(), o.Size.toVec3(), core.DegreesToRadians(o.Rotation.toVec3())), nil
	default:
		return nil, fmt.Errorf("unknown object type %q", o.Type)
	}
}
