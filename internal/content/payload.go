// internal/content/payload.go
//
// Per-type section payload validation.
//
// Context
// -------
// Section.Content is a tagged union keyed by Section.Type.  The types
// below form the *known* set and are validated strictly on write; any
// other type tag is accepted as an opaque JSON object and stored
// unmodified.  This keeps the write path safe for the payload shapes the
// renderers rely on while letting new section kinds ship without a
// service deploy.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var payloadValidator = validator.New()

//
// Known payload shapes
//

// HeroPayload is the full-width banner at the top of most pages.
type HeroPayload struct {
	Heading    string `json:"heading" validate:"required"`
	Subheading string `json:"subheading"`
	CTAText    string `json:"ctaText"`
	CTAURL     string `json:"ctaUrl" validate:"omitempty,url"`
}

// TextImagePayload pairs a prose block with an optional illustration.
type TextImagePayload struct {
	Heading   string `json:"heading"`
	Body      string `json:"body" validate:"required"`
	ImageSide string `json:"imageSide" validate:"omitempty,oneof=left right"`
}

// ServicesPayload lists offered services with short blurbs.
type ServicesPayload struct {
	Heading string `json:"heading"`
	Items   []struct {
		Title string `json:"title" validate:"required"`
		Blurb string `json:"blurb"`
		Icon  string `json:"icon"`
	} `json:"items" validate:"required,min=1,dive"`
}

// TeamPayload shows staff members.
type TeamPayload struct {
	Heading string `json:"heading"`
	Members []struct {
		Name     string `json:"name" validate:"required"`
		Role     string `json:"role"`
		PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
	} `json:"members" validate:"required,min=1,dive"`
}

// GalleryPayload is an image grid.
type GalleryPayload struct {
	Heading string `json:"heading"`
	Images  []struct {
		URL     string `json:"url" validate:"required,url"`
		Caption string `json:"caption"`
	} `json:"images" validate:"required,min=1,dive"`
}

// StatsPayload renders headline numbers ("250+ projects").
type StatsPayload struct {
	Items []struct {
		Value string `json:"value" validate:"required"`
		Label string `json:"label" validate:"required"`
	} `json:"items" validate:"required,min=1,dive"`
}

// CTAPayload is a standalone call-to-action strip.
type CTAPayload struct {
	Heading string `json:"heading" validate:"required"`
	Text    string `json:"text"`
	CTAText string `json:"ctaText" validate:"required"`
	CTAURL  string `json:"ctaUrl" validate:"required,url"`
}

// ContactInfoPayload lists address, phone, and opening hours.
type ContactInfoPayload struct {
	Address string            `json:"address"`
	Phone   string            `json:"phone"`
	Email   string            `json:"email" validate:"omitempty,email"`
	Hours   map[string]string `json:"hours"`
}

// MapPayload embeds a map centred on the business location.
type MapPayload struct {
	Lat  float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng  float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Zoom int     `json:"zoom" validate:"omitempty,gte=1,lte=20"`
}

// ContactFormPayload configures the inbound enquiry form.
type ContactFormPayload struct {
	Heading       string   `json:"heading"`
	RecipientHint string   `json:"recipientHint"`
	Fields        []string `json:"fields" validate:"omitempty,dive,oneof=name email phone message"`
}

//
// Validation entry point
//

// knownPayloads maps a type tag to a factory for its payload struct.
var knownPayloads = map[string]func() any{
	"hero":         func() any { return &HeroPayload{} },
	"text-image":   func() any { return &TextImagePayload{} },
	"services":     func() any { return &ServicesPayload{} },
	"team":         func() any { return &TeamPayload{} },
	"gallery":      func() any { return &GalleryPayload{} },
	"stats":        func() any { return &StatsPayload{} },
	"cta":          func() any { return &CTAPayload{} },
	"contact-info": func() any { return &ContactInfoPayload{} },
	"map":          func() any { return &MapPayload{} },
	"contact-form": func() any { return &ContactFormPayload{} },
}

// ValidatePayload checks raw against the payload shape registered for
// sectionType.  Known types are decoded strictly (unknown JSON fields
// rejected) and run through the validator; unknown types only need to
// be a JSON object.
func ValidatePayload(sectionType string, raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("section content must not be empty")
	}

	factory, known := knownPayloads[sectionType]
	if !known {
		// Forward-compatibility: opaque object, stored as-is.
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("section content must be a JSON object: %w", err)
		}
		return nil
	}

	dst := factory()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid %s payload: %w", sectionType, err)
	}
	if err := payloadValidator.Struct(dst); err != nil {
		return fmt.Errorf("invalid %s payload: %w", sectionType, err)
	}
	return nil
}

// KnownType reports whether the type tag has a registered payload shape.
func KnownType(sectionType string) bool {
	_, ok := knownPayloads[sectionType]
	return ok
}
