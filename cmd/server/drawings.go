package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Simplici0/avquote/internal/drawing"
)

func (s *server) handleElectricalDrawing(w http.ResponseWriter, r *http.Request) {
	var room drawing.Room
	if err := decodeJSON(w, r, &room); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validateRoom(room); err != nil {
		s.fail(w, r, err)
		return
	}

	catalog, err := s.store.Catalog(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drawing.Electrical(room, catalog, time.Now().UTC()))
}

func validateRoom(room drawing.Room) error {
	if err := checkRequired(room.ID, "id"); err != nil {
		return err
	}
	for _, dim := range []struct {
		value float64
		field string
	}{
		{room.Width, "width"},
		{room.Length, "length"},
		{room.CeilingHeight, "ceilingHeight"},
	} {
		if err := checkNonNegative(dim.value, dim.field); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(room.PlacedEquipment))
	for i, p := range room.PlacedEquipment {
		if err := checkRequired(p.ID, fmt.Sprintf("placedEquipment[%d].id", i)); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate placement id %q", errInvalidInput, p.ID)
		}
		seen[p.ID] = true
		if !p.MountType.Valid() {
			return fmt.Errorf("%w: unknown mount type %q", errInvalidInput, p.MountType)
		}
	}
	return nil
}
