package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ElementType discriminates the closed set of overlay element kinds.
type ElementType string

const (
	TypeText      ElementType = "text"
	TypeDate      ElementType = "date"
	TypeSignature ElementType = "signature"
	TypeCheckbox  ElementType = "checkbox"
	TypeImage     ElementType = "image"
)

// elementTypes lists every kind the burn engine knows how to render.
var elementTypes = []interface{}{TypeText, TypeDate, TypeSignature, TypeCheckbox, TypeImage}

// Element is one overlay placed on a document page. Geometry is
// expressed as fractions of the original, unrotated page box with a
// top-left origin. A zero WidthPercent/HeightPercent means the field
// was absent on the wire; the burn engine applies per-type defaults.
type Element struct {
	ID            int64       `json:"id"`
	Page          int         `json:"page"`
	Type          ElementType `json:"type"`
	XPercent      float64     `json:"xPercent"`
	YPercent      float64     `json:"yPercent"`
	WidthPercent  float64     `json:"widthPercent,omitempty"`
	HeightPercent float64     `json:"heightPercent,omitempty"`
	Value         string      `json:"value,omitempty"`   // text / date
	Color         string      `json:"color,omitempty"`   // text / date, "#RRGGBB"
	Image         string      `json:"image,omitempty"`   // signature / image, data URL
	Checked       bool        `json:"checked,omitempty"` // checkbox
}

// Validate checks the fields every element must carry regardless of
// type. XPercent+WidthPercent may exceed 1; the burn engine clips.
func (e Element) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Type, validation.Required, validation.In(elementTypes...)),
		validation.Field(&e.Page, validation.Required, validation.Min(1)),
		validation.Field(&e.XPercent, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&e.YPercent, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&e.WidthPercent, validation.Min(0.0)),
		validation.Field(&e.HeightPercent, validation.Min(0.0)),
	)
}
