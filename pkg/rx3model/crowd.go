package rx3model

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// CrowdMagic opens every crowd placement file.
const CrowdMagic = "CRWD"

// Known crowd record layouts.
const (
	CrowdVersion103 = 0x103
	CrowdVersion104 = 0x104
	CrowdVersion105 = 0x105
)

// CrowdRoot parents every tier object.
const CrowdRoot = "Crowd"

const (
	crowdHeaderSize = 10
	seatScale       = 30
)

// CrowdLayerNames names the eight seat color sets.
var CrowdLayerNames = [model.MaxSets]string{
	"SeatColor", "Shade", "NeutralHomeAway", "UltraHomeAway",
	"Attendance", "NoChair", "CardColors", "CrowdPattern",
}

var seatQuad = [4]math.Vec3{
	{X: -seatScale, Y: 0, Z: 0},
	{X: -seatScale, Y: seatScale * 2, Z: 0},
	{X: seatScale, Y: seatScale * 2, Z: 0},
	{X: seatScale, Y: 0, Z: 0},
}

// StadiumID extracts the number after the last underscore of a file stem.
func StadiumID(stem string) (int, bool) {
	i := strings.LastIndexByte(stem, '_')
	if i < 0 || i == len(stem)-1 {
		return 0, false
	}
	digits := stem[i+1:]
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FindCrowdFile returns the crowd placement file for a stadium container,
// looked up next to it and then in a sibling crowdplacement directory.
// It returns "" when there is none.
func FindCrowdFile(path string) string {
	if path == "" {
		return ""
	}
	id, ok := StadiumID(rx3.Stem(path))
	if !ok {
		return ""
	}
	name := fmt.Sprintf("crowd_%d_1.dat", id)
	dir := filepath.Dir(path)
	for _, candidate := range []string{
		filepath.Join(dir, name),
		filepath.Join(filepath.Dir(dir), "crowdplacement", name),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Seat is one decoded crowd record.
type Seat struct {
	Position     math.Vec3
	Rotation     float32 // degrees
	SeatColor    model.RGBA
	Shade        model.RGBA
	Section0     uint8
	Section1     uint8
	Tier         uint8
	Attendance   uint8
	NoChair      uint8
	CardColors   model.RGBA
	CrowdPattern uint8
}

// seatSize returns the record size of a crowd version, or 0 if unknown.
func seatSize(version uint16) int {
	switch version {
	case CrowdVersion103:
		return 42
	case CrowdVersion104:
		return 41
	case CrowdVersion105:
		return 32
	}
	return 0
}

func readShade(r *rx3.Reader) model.RGBA {
	var c model.RGBA
	for i := range c {
		f := r.F32()
		switch {
		case f != f || f <= 0:
			c[i] = 0
		case f >= 255:
			c[i] = 255
		default:
			c[i] = uint8(f)
		}
	}
	return c
}

func readSeat(r *rx3.Reader, version uint16) Seat {
	s := Seat{Position: math.V3(r.Vec3()), Rotation: r.F32()}
	s.SeatColor = model.RGBA{r.U8(), r.U8(), r.U8(), 255}

	switch version {
	case CrowdVersion103:
		s.Section0 = r.U8()
		s.Tier = r.U8()
		s.Attendance = r.U8()
		r.Skip(2) // influence area, unused
		s.Shade = readShade(r)
		r.Skip(2) // anim groups, accessories
	case CrowdVersion104:
		s.Section0 = r.U8()
		s.Section1 = r.U8()
		r.Skip(2)
		s.Tier = r.U8()
		s.Attendance = r.U8()
		s.Shade = readShade(r)
	case CrowdVersion105:
		s.Section0 = r.U8()
		s.Section1 = r.U8()
		s.Tier = r.U8()
		s.Attendance = r.U8()
		s.NoChair = r.U8()
		s.CardColors = model.RGBA{r.U8(), r.U8(), r.U8(), 255}
		s.CrowdPattern = r.U8()
		r.Skip(4)
	}
	return s
}

func gray(v uint8) model.RGBA {
	return model.RGBA{v, v, v, 255}
}

// Transform places the seat quad: rotated about Y by the seat angle plus
// a quarter turn, then translated to the seat position.
func (s Seat) Transform() math.Mat4 {
	return math.Translate(s.Position.X, s.Position.Y, s.Position.Z).
		Mul(math.RotateY(math.Radians(s.Rotation + 90)))
}

func (s Seat) colors() [model.MaxSets]model.RGBA {
	return [model.MaxSets]model.RGBA{
		s.SeatColor,
		s.Shade,
		gray(s.Section0),
		gray(s.Section1),
		gray(s.Attendance),
		gray(s.NoChair),
		s.CardColors,
		gray(s.CrowdPattern),
	}
}

// appendSeat adds the seat quad as two triangles.
func appendSeat(mesh *model.MeshData, s Seat) {
	base := uint32(len(mesh.Vertices))
	xf := s.Transform()
	colors := s.colors()
	for _, corner := range seatQuad {
		mesh.Vertices = append(mesh.Vertices, model.Vertex{
			Position: xf.TransformPoint(corner),
			Colors:   colors,
		})
	}
	mesh.Triangles = append(mesh.Triangles,
		model.Triangle{base + 2, base + 1, base},
		model.Triangle{base, base + 3, base + 2},
	)
}

// ParseCrowd builds the crowd objects from a placement file: a Crowd root
// followed by one tier_<id> child per tier in ascending id order.
//
// A header with the wrong magic yields nil. Seats of unknown versions are
// skipped and a truncated record ends the seat list.
func ParseCrowd(data []byte) []model.Object {
	if len(data) < crowdHeaderSize || string(data[:4]) != CrowdMagic {
		return nil
	}
	r := rx3.NewReader(data, binary.LittleEndian)
	r.Skip(4)
	version := r.U16()
	seats := r.U32()

	var tiers [256]*model.Object
	size := seatSize(version)
	for i := uint32(0); i < seats && size > 0; i++ {
		s := readSeat(r, version)
		if r.Err() != nil {
			break
		}
		t := tiers[s.Tier]
		if t == nil {
			obj := model.NewObject(fmt.Sprintf("tier_%d", s.Tier), CrowdRoot)
			obj.Mesh.Format = model.VertexFormat(0).WithColors(model.MaxSets)
			obj.Mesh.ColorLayerNames = CrowdLayerNames
			t = &obj
			tiers[s.Tier] = t
		}
		appendSeat(&t.Mesh, s)
	}

	objects := []model.Object{model.NewObject(CrowdRoot, "")}
	for _, t := range tiers {
		if t != nil {
			objects = append(objects, *t)
		}
	}
	return objects
}

// LoadCrowdFile reads and parses a crowd placement file.
func LoadCrowdFile(path string) ([]model.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crowd file: %w", err)
	}
	return ParseCrowd(data), nil
}
