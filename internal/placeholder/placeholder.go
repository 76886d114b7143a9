// Package placeholder substitutes {{fieldName}} tokens in document and email
// templates. The set of fields is fixed; unknown tokens pass through untouched
// and values are inserted verbatim (no HTML escaping), so templates must come
// from trusted authors.
package placeholder

import (
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/models"
)

const (
	Missing    = "N/A"
	DateLayout = "2006-01-02"
)

// Field names as they appear between the braces.
const (
	FieldOwnerName     = "ownerName"
	FieldOwnerEmail    = "ownerEmail"
	FieldOwnerPhone    = "ownerPhone"
	FieldManufacturer  = "manufacturer"
	FieldModel         = "model"
	FieldVIN           = "vin"
	FieldYear          = "year"
	FieldColor         = "color"
	FieldTrackingURL   = "trackingUrl"
	FieldTrackingToken = "trackingToken"
	FieldCurrentDate   = "currentDate"
)

// Fields lists the schema in a stable order (used by template editors).
var Fields = []string{
	FieldOwnerName, FieldOwnerEmail, FieldOwnerPhone,
	FieldManufacturer, FieldModel, FieldVIN, FieldYear, FieldColor,
	FieldTrackingURL, FieldTrackingToken, FieldCurrentDate,
}

// Values is the record substituted into a template. A nil field renders as Missing.
type Values struct {
	OwnerName     *string
	OwnerEmail    *string
	OwnerPhone    *string
	Manufacturer  *string
	Model         *string
	VIN           *string
	Year          *int
	Color         *string
	TrackingURL   *string
	TrackingToken *string
	CurrentDate   *time.Time
}

// Replace substitutes every known token in tmpl.
func Replace(tmpl string, v Values) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	return v.replacer().Replace(tmpl)
}

func (v Values) replacer() *strings.Replacer {
	pairs := make([]string, 0, len(Fields)*2)
	for _, f := range Fields {
		pairs = append(pairs, "{{"+f+"}}", v.text(f))
	}
	return strings.NewReplacer(pairs...)
}

func (v Values) text(field string) string {
	switch field {
	case FieldOwnerName:
		return str(v.OwnerName)
	case FieldOwnerEmail:
		return str(v.OwnerEmail)
	case FieldOwnerPhone:
		return str(v.OwnerPhone)
	case FieldManufacturer:
		return str(v.Manufacturer)
	case FieldModel:
		return str(v.Model)
	case FieldVIN:
		return str(v.VIN)
	case FieldYear:
		if v.Year == nil {
			return Missing
		}
		return strconv.Itoa(*v.Year)
	case FieldColor:
		return str(v.Color)
	case FieldTrackingURL:
		return str(v.TrackingURL)
	case FieldTrackingToken:
		return str(v.TrackingToken)
	case FieldCurrentDate:
		if v.CurrentDate == nil {
			return Missing
		}
		return v.CurrentDate.Format(DateLayout)
	}
	return Missing
}

func str(s *string) string {
	if s == nil || *s == "" {
		return Missing
	}
	return *s
}

// FromShipment builds the record for a shipment.
func FromShipment(sh *models.Shipment, trackingURL string, now time.Time) Values {
	v := Values{
		OwnerName:    &sh.OwnerName,
		OwnerEmail:   sh.OwnerEmail,
		OwnerPhone:   sh.OwnerPhone,
		Manufacturer: &sh.Manufacturer,
		Model:        &sh.Model,
		VIN:          &sh.VIN,
		Year:         sh.Year,
		Color:        sh.Color,
		CurrentDate:  &now,
	}
	if trackingURL != "" {
		v.TrackingURL = &trackingURL
	}
	if sh.TrackingToken != "" {
		token := sh.TrackingToken
		v.TrackingToken = &token
	}
	return v
}
