package photonmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// PLYOptions controls point cloud export
type PLYOptions struct {
	DepthFilter int  // export only photons of this depth; 0 exports all
	Binary      bool // binary_little_endian instead of ascii
}

// plyVertexProps is the vertex layout written by ExportPLY: location,
// direction (as a normal so viewers can draw it), then depth
var plyVertexProps = []string{
	"property float x",
	"property float y",
	"property float z",
	"property float nx",
	"property float ny",
	"property float nz",
	"property int depth",
}

// ExportPLY writes the photons as a PLY point cloud and returns how many
// were written
func (m *PhotonMap) ExportPLY(w io.Writer, opts PLYOptions) (int, error) {
	var selected []Photon
	for _, p := range m.Photons() {
		if opts.DepthFilter != 0 && p.Depth != opts.DepthFilter {
			continue
		}
		selected = append(selected, p)
	}

	bw := bufio.NewWriter(w)
	format := "ascii"
	if opts.Binary {
		format = "binary_little_endian"
	}
	fmt.Fprintf(bw, "ply\nformat %s 1.0\ncomment photon map\n", format)
	fmt.Fprintf(bw, "element vertex %d\n", len(selected))
	for _, prop := range plyVertexProps {
		fmt.Fprintln(bw, prop)
	}
	fmt.Fprintln(bw, "end_header")

	for _, p := range selected {
		if opts.Binary {
			var rec [28]byte
			putFloat32(rec[0:], p.Location.X)
			putFloat32(rec[4:], p.Location.Y)
			putFloat32(rec[8:], p.Location.Z)
			putFloat32(rec[12:], p.Direction.X)
			putFloat32(rec[16:], p.Direction.Y)
			putFloat32(rec[20:], p.Direction.Z)
			binary.LittleEndian.PutUint32(rec[24:], uint32(int32(p.Depth)))
			bw.Write(rec[:])
		} else {
			fmt.Fprintf(bw, "%g %g %g %g %g %g %d\n",
				float32(p.Location.X), float32(p.Location.Y), float32(p.Location.Z),
				float32(p.Direction.X), float32(p.Direction.Y), float32(p.Direction.Z),
				p.Depth)
		}
	}
	return len(selected), bw.Flush()
}

func putFloat32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

// ExportPLYFile writes the point cloud to path
func (m *PhotonMap) ExportPLYFile(path string, opts PLYOptions) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create PLY file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return m.ExportPLY(f, opts)
}

// PLYPoint is one vertex read back from an exported point cloud
type PLYPoint struct {
	Location  core.Vec3
	Direction core.Vec3
	Depth     int
}

// ReadPLY reads a point cloud written by ExportPLY
func ReadPLY(r io.Reader) ([]PLYPoint, error) {
	br := bufio.NewReader(r)
	format, count, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	points := make([]PLYPoint, 0, count)
	switch format {
	case "ascii":
		for i := 0; i < count; i++ {
			line, err := br.ReadString('\n')
			if err != nil && !(err == io.EOF && line != "") {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			p, err := parseASCIIVertex(strings.Fields(line))
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			points = append(points, p)
		}
	case "binary_little_endian":
		var rec [28]byte
		for i := 0; i < count; i++ {
			if _, err := io.ReadFull(br, rec[:]); err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			f := func(off int) float64 {
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off:])))
			}
			points = append(points, PLYPoint{
				Location:  core.NewVec3(f(0), f(4), f(8)),
				Direction: core.NewVec3(f(12), f(16), f(20)),
				Depth:     int(int32(binary.LittleEndian.Uint32(rec[24:]))),
			})
		}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", format)
	}
	return points, nil
}

// parsePLYHeader reads up to end_header and checks the vertex layout
func parsePLYHeader(br *bufio.Reader) (format string, count int, err error) {
	var props []string
	first := true
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return "", 0, fmt.Errorf("error reading header: %w", err)
		}
		line = strings.TrimSpace(line)
		if first {
			if line != "ply" {
				return "", 0, fmt.Errorf("missing ply magic")
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return "", 0, fmt.Errorf("invalid format line %q", line)
			}
			format = parts[1]
		case "element":
			if len(parts) < 3 || parts[1] != "vertex" {
				return "", 0, fmt.Errorf("unexpected element %q", line)
			}
			count, err = strconv.Atoi(parts[2])
			if err != nil {
				return "", 0, fmt.Errorf("invalid element count: %s", parts[2])
			}
		case "property":
			props = append(props, strings.Join(parts, " "))
		}
	}

	if len(props) != len(plyVertexProps) {
		return "", 0, fmt.Errorf("expected %d vertex properties, got %d", len(plyVertexProps), len(props))
	}
	for i, p := range props {
		if p != plyVertexProps[i] {
			return "", 0, fmt.Errorf("unexpected property %q", p)
		}
	}
	return format, count, nil
}

func parseASCIIVertex(fields []string) (PLYPoint, error) {
	if len(fields) != 7 {
		return PLYPoint{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	var v [6]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return PLYPoint{}, err
		}
		v[i] = f
	}
	depth, err := strconv.Atoi(fields[6])
	if err != nil {
		return PLYPoint{}, err
	}
	return PLYPoint{
		Location:  core.NewVec3(v[0], v[1], v[2]),
		Direction: core.NewVec3(v[3], v[4], v[5]),
		Depth:     depth,
	}, nil
}
