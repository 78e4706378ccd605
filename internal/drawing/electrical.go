// Package drawing lays out placed room equipment as an electrical line
// diagram with the signal runs between devices.
package drawing

import (
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/pricing"
)

// MountType is how a device is installed.
type MountType string

const (
	MountFloor   MountType = "floor"
	MountWall    MountType = "wall"
	MountCeiling MountType = "ceiling"
	MountRack    MountType = "rack"
)

// Valid reports whether m is a known mount type. The empty value is allowed.
func (m MountType) Valid() bool {
	switch m {
	case "", MountFloor, MountWall, MountCeiling, MountRack:
		return true
	}
	return false
}

// ElementType classifies a diagram element.
type ElementType string

const (
	ElementEquipment ElementType = "equipment"
	ElementCable     ElementType = "cable"
	ElementText      ElementType = "text"
	ElementDimension ElementType = "dimension"
	ElementSymbol    ElementType = "symbol"
)

// SignalType is the kind of signal a connection carries.
type SignalType string

const (
	SignalVideo   SignalType = "video"
	SignalAudio   SignalType = "audio"
	SignalControl SignalType = "control"
	SignalPower   SignalType = "power"
	SignalNetwork SignalType = "network"
)

// PlacedEquipment is a placement with its position on the floor plan.
// Quantity is not drawn; every placement is one element.
type PlacedEquipment struct {
	bom.Placement
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Rotation  float64   `json:"rotation"`
	MountType MountType `json:"mountType"`
}

// Room is the floor plan a diagram is drawn for. Dimensions are in feet.
type Room struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Width           float64           `json:"width"`
	Length          float64           `json:"length"`
	CeilingHeight   float64           `json:"ceilingHeight"`
	PlacedEquipment []PlacedEquipment `json:"placedEquipment"`
}

// Element is a drawn item.
type Element struct {
	ID         string            `json:"id"`
	Type       ElementType       `json:"elementType"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Rotation   float64           `json:"rotation"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties"`
}

// Connection is a signal run between two pieces of equipment.
type Connection struct {
	ID              string     `json:"id"`
	FromEquipmentID int64      `json:"fromEquipmentId"`
	ToEquipmentID   int64      `json:"toEquipmentId"`
	SignalType      SignalType `json:"signalType"`
	CableType       string     `json:"cableType"`
}

// Diagram is an electrical line diagram for one room.
type Diagram struct {
	RoomID      string       `json:"roomId"`
	Elements    []Element    `json:"elements"`
	Connections []Connection `json:"connections"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Electrical draws every placement of room as an equipment element and
// derives the signal connections between them. Placements tagged with another
// room ID are skipped. Equipment missing from the catalog is drawn with an
// "Unknown Equipment" label and takes no part in signal flow.
func Electrical(room Room, catalog bom.Catalog, at time.Time) Diagram {
	placed := make([]PlacedEquipment, 0, len(room.PlacedEquipment))
	for _, p := range room.PlacedEquipment {
		if p.RoomID != "" && p.RoomID != room.ID {
			continue
		}
		placed = append(placed, p)
	}

	elements := make([]Element, 0, len(placed))
	for _, p := range placed {
		label := fmt.Sprintf("Unknown Equipment (%d)", p.EquipmentID)
		if e, ok := catalog.Equipment(p.EquipmentID); ok {
			label = e.Manufacturer + " " + e.Model
		}
		elements = append(elements, Element{
			ID:       "elem-" + p.ID,
			Type:     ElementEquipment,
			X:        p.X,
			Y:        p.Y,
			Rotation: p.Rotation,
			Label:    label,
			Properties: map[string]string{
				"equipmentId": fmt.Sprintf("%d", p.EquipmentID),
				"mountType":   string(p.MountType),
			},
		})
	}

	return Diagram{
		RoomID:      room.ID,
		Elements:    elements,
		Connections: SignalFlow(placed, catalog),
		GeneratedAt: at,
	}
}

type role int

const (
	roleNone role = iota
	roleVideoSource
	roleVideoDisplay
	roleAudioSource
	roleAudioOutput
	roleControl
)

// classify maps equipment onto its place in the signal chain. Subcategories
// match in singular or plural form.
func classify(e bom.Equipment) role {
	sub := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(e.Subcategory)), "s")
	switch e.Category {
	case pricing.CategoryVideo:
		switch sub {
		case "camera", "codec":
			return roleVideoSource
		case "display":
			return roleVideoDisplay
		}
	case pricing.CategoryAudio:
		switch sub {
		case "microphone":
			return roleAudioSource
		case "speaker", "amplifier":
			return roleAudioOutput
		}
	case pricing.CategoryControl:
		return roleControl
	}
	return roleNone
}

// SignalFlow connects every video source to every display, every audio
// source to every audio output, and every control device to all other
// placements.
func SignalFlow(placed []PlacedEquipment, catalog bom.Catalog) []Connection {
	var videoSources, displays, audioSources, audioOutputs, controls []PlacedEquipment
	for _, p := range placed {
		e, ok := catalog.Equipment(p.EquipmentID)
		if !ok {
			continue
		}
		switch classify(e) {
		case roleVideoSource:
			videoSources = append(videoSources, p)
		case roleVideoDisplay:
			displays = append(displays, p)
		case roleAudioSource:
			audioSources = append(audioSources, p)
		case roleAudioOutput:
			audioOutputs = append(audioOutputs, p)
		case roleControl:
			controls = append(controls, p)
		}
	}

	connections := []Connection{}
	for i, src := range videoSources {
		for _, dst := range displays {
			connections = append(connections, Connection{
				ID:              fmt.Sprintf("conn-video-%s-%s", src.ID, dst.ID),
				FromEquipmentID: src.EquipmentID,
				ToEquipmentID:   dst.EquipmentID,
				SignalType:      SignalVideo,
				CableType:       VideoCable(i),
			})
		}
	}
	for _, src := range audioSources {
		for _, dst := range audioOutputs {
			connections = append(connections, Connection{
				ID:              fmt.Sprintf("conn-audio-%s-%s", src.ID, dst.ID),
				FromEquipmentID: src.EquipmentID,
				ToEquipmentID:   dst.EquipmentID,
				SignalType:      SignalAudio,
				CableType:       "XLR",
			})
		}
	}
	for _, ctrl := range controls {
		for _, p := range placed {
			if p.ID == ctrl.ID {
				continue
			}
			connections = append(connections, Connection{
				ID:              fmt.Sprintf("conn-ctrl-%s-%s", ctrl.ID, p.ID),
				FromEquipmentID: ctrl.EquipmentID,
				ToEquipmentID:   p.EquipmentID,
				SignalType:      SignalControl,
				CableType:       "Cat6",
			})
		}
	}
	return connections
}

// VideoCable picks the cable for the n-th video source in a room.
func VideoCable(n int) string {
	switch n {
	case 0:
		return "HDMI"
	case 1:
		return "DisplayPort"
	default:
		return "SDI"
	}
}
