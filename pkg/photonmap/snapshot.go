package photonmap

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/multierr"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// ErrCorruptSnapshot is returned when a snapshot cannot be decoded
var ErrCorruptSnapshot = errors.New("corrupt photon map snapshot")

const snapshotVersion = 1

// Snapshot wire format, protobuf encoded:
//
//	message PhotonMap { uint64 version = 1; uint64 depth = 2; repeated Photon photons = 3; uint64 index = 4; }
//	message Photon { uint64 id = 1; Vec3 location = 2; Vec3 direction = 3; uint64 depth = 4; }
//
// A Vec3 is three packed fixed64 IEEE-754 doubles.
const (
	fieldMapVersion protowire.Number = 1
	fieldMapDepth   protowire.Number = 2
	fieldMapPhotons protowire.Number = 3
	fieldMapIndex   protowire.Number = 4

	fieldPhotonID        protowire.Number = 1
	fieldPhotonLocation  protowire.Number = 2
	fieldPhotonDirection protowire.Number = 3
	fieldPhotonDepth     protowire.Number = 4
)

// MarshalBinary encodes the photons and metadata. The spatial index is not
// stored; it is rebuilt on load.
func (m *PhotonMap) MarshalBinary() ([]byte, error) {
	photons := m.Photons()

	b := make([]byte, 0, 16+len(photons)*64)
	b = protowire.AppendTag(b, fieldMapVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, snapshotVersion)
	b = protowire.AppendTag(b, fieldMapDepth, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Depth()))
	b = protowire.AppendTag(b, fieldMapIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.IndexKind()))

	var pb []byte
	for _, p := range photons {
		pb = appendPhoton(pb[:0], p)
		b = protowire.AppendTag(b, fieldMapPhotons, protowire.BytesType)
		b = protowire.AppendBytes(b, pb)
	}
	return b, nil
}

func appendPhoton(b []byte, p Photon) []byte {
	b = protowire.AppendTag(b, fieldPhotonID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.ID))
	b = protowire.AppendTag(b, fieldPhotonLocation, protowire.BytesType)
	b = protowire.AppendBytes(b, appendVec3(nil, p.Location))
	b = protowire.AppendTag(b, fieldPhotonDirection, protowire.BytesType)
	b = protowire.AppendBytes(b, appendVec3(nil, p.Direction))
	b = protowire.AppendTag(b, fieldPhotonDepth, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Depth))
	return b
}

func appendVec3(b []byte, v core.Vec3) []byte {
	b = protowire.AppendFixed64(b, math.Float64bits(v.X))
	b = protowire.AppendFixed64(b, math.Float64bits(v.Y))
	b = protowire.AppendFixed64(b, math.Float64bits(v.Z))
	return b
}

// Unmarshal decodes a snapshot into a new, unindexed PhotonMap. Photon ids
// must be dense and in order.
func Unmarshal(data []byte) (*PhotonMap, error) {
	m := New()
	var version uint64

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, corrupt(protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldMapVersion && typ == protowire.VarintType:
			version, n = protowire.ConsumeVarint(data)
		case num == fieldMapDepth && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(data)
			m.depth = int(v)
		case num == fieldMapIndex && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(data)
			m.kind = IndexKind(v)
		case num == fieldMapPhotons && typ == protowire.BytesType:
			var pb []byte
			pb, n = protowire.ConsumeBytes(data)
			if n < 0 {
				break
			}
			p, err := consumePhoton(pb)
			if err != nil {
				return nil, err
			}
			if err := m.Add(p); err != nil {
				return nil, corrupt(err)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return nil, corrupt(protowire.ParseError(n))
		}
		data = data[n:]
	}

	if version != snapshotVersion {
		return nil, corrupt(fmt.Errorf("unsupported version %d", version))
	}
	if m.kind != IndexKDTree && m.kind != IndexRTree {
		return nil, corrupt(fmt.Errorf("unknown index kind %d", int(m.kind)))
	}
	return m, nil
}

func consumePhoton(b []byte) (Photon, error) {
	var p Photon
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, corrupt(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldPhotonID && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			p.ID = int(v)
		case num == fieldPhotonDepth && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			p.Depth = int(v)
		case (num == fieldPhotonLocation || num == fieldPhotonDirection) && typ == protowire.BytesType:
			var vb []byte
			vb, n = protowire.ConsumeBytes(b)
			if n < 0 {
				break
			}
			v, err := consumeVec3(vb)
			if err != nil {
				return p, err
			}
			if num == fieldPhotonLocation {
				p.Location = v
			} else {
				p.Direction = v
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return p, corrupt(protowire.ParseError(n))
		}
		b = b[n:]
	}
	return p, nil
}

func consumeVec3(b []byte) (core.Vec3, error) {
	var xyz [3]float64
	for i := range xyz {
		bits, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return core.Vec3{}, corrupt(protowire.ParseError(n))
		}
		xyz[i] = math.Float64frombits(bits)
		b = b[n:]
	}
	if len(b) != 0 {
		return core.Vec3{}, corrupt(fmt.Errorf("vector has %d trailing bytes", len(b)))
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
}

// Save writes a snapshot of the map to w
func (m *PhotonMap) Save(w io.Writer) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load reads a snapshot from r. The returned map is not indexed.
func Load(r io.Reader) (*PhotonMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read photon map: %w", err)
	}
	return Unmarshal(data)
}

// SaveFile writes a snapshot to path
func (m *PhotonMap) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create photon map file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return m.Save(f)
}

// LoadFile reads a snapshot from path and builds its index
func LoadFile(path string) (*PhotonMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open photon map file: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.BuildIndex()
	return m, nil
}
