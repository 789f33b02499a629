package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vinscan-service/internal/domain/vehicle"
	"vinscan-service/internal/store"
	"vinscan-service/internal/utils"
)

var csvHeader = []string{"VIN", "IMMAT", "MARQUE", "MODELE", "ANNEE", "DATE", "HEURE", "ZONE"}

type InventoryService struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewInventoryService(st *store.Store, log zerolog.Logger) *InventoryService {
	return &InventoryService{
		store: st,
		log:   log,
		now:   time.Now,
	}
}

// Save promotes a draft to a persisted record. Validation gaps are
// caught here, before any mutation: the VIN must survive normalization
// and the zone must be one of the configured locations.
func (s *InventoryService) Save(draft vehicle.Draft, location, remarks string) (*vehicle.Record, error) {
	vin := utils.NormalizeVIN(draft.VIN)
	if vin == "" {
		return nil, fmt.Errorf("%w: vin is required", ErrInvalidInput)
	}
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if !s.store.Settings().HasLocation(location) {
		return nil, fmt.Errorf("%w: unknown location %q", ErrInvalidInput, location)
	}

	now := s.now()
	rec := vehicle.Record{
		ID:        uuid.NewString(),
		VIN:       vin,
		Plate:     utils.NormalizeField(draft.Plate),
		Make:      utils.NormalizeField(draft.Make),
		Model:     utils.NormalizeField(draft.Model),
		Year:      draft.Year,
		Location:  location,
		FullDate:  now.Format("02/01/2006"),
		Timestamp: now.Format("15:04"),
		Remarks:   remarks,
	}
	s.store.Append(rec)

	s.log.Info().
		Str("record_id", rec.ID).
		Str("vin", rec.VIN).
		Str("location", rec.Location).
		Msg("record saved to inventory")

	return &rec, nil
}

func (s *InventoryService) Search(term string) []vehicle.Record {
	return s.store.Search(term)
}

func (s *InventoryService) Remove(index int) error {
	if err := s.store.Remove(index); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	s.log.Info().Int("index", index).Msg("record removed from inventory")
	return nil
}

func (s *InventoryService) Clear() {
	s.store.Clear()
	s.log.Info().Msg("inventory cleared")
}

func (s *InventoryService) Settings() vehicle.Settings {
	return s.store.Settings()
}

func (s *InventoryService) UpdateSettings(settings vehicle.Settings) error {
	if err := s.store.UpdateSettings(settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ExportCSV writes the whole history in current display order:
// semicolon-delimited, UTF-8 with a BOM so spreadsheet apps pick the
// encoding up.
func (s *InventoryService) ExportCSV(w io.Writer) error {
	if _, err := w.Write([]byte("\uFEFF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range s.store.Search("") {
		row := []string{r.VIN, r.Plate, r.Make, r.Model, r.Year, r.FullDate, r.Timestamp, r.Location}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename is inventaire_<ISO-date>.csv.
func (s *InventoryService) ExportFilename() string {
	return fmt.Sprintf("inventaire_%s.csv", s.now().Format("2006-01-02"))
}

// ShareText builds the WhatsApp message for one record and its wa.me
// link.
func (s *InventoryService) ShareText(index int) (text, link string, err error) {
	rec, err := s.store.Get(index)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	plate := rec.Plate
	if plate == "" {
		plate = "N/A"
	}
	text = fmt.Sprintf(
		"📦 *INVENTAIRE STOCK*\n\n📍 Zone: %s\n🚗 Véhicule: %s %s\n🔢 VIN: %s\n🆔 Plaque: %s\n📅 Date: %s à %s",
		rec.Location, rec.Make, rec.Model, rec.VIN, plate, rec.FullDate, rec.Timestamp,
	)
	link = "https://wa.me/?text=" + url.QueryEscape(text)
	return text, link, nil
}
