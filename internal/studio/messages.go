package studio

import (
	"errors"

	"github.com/lehigh-university-libraries/stylist/internal/gemini"
	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/moderation"
)

const (
	MsgReadFailed    = "Failed to read image file."
	MsgMissingInput  = "Please upload an image and enter a style description."
	MsgInappropriate = "Inappropriate request. This app is for creative styling only."
	MsgUnsupported   = "Unsupported image format. Please use PNG or JPEG."
	MsgSafetyBlocked = "The request was blocked by safety filters. Please try a different prompt."
	MsgNoImage       = "No image was generated. The model may not have been able to fulfill the request."
	MsgBusy          = "An image is already being generated. Please wait for it to finish."
	MsgGeneric       = "Failed to generate image. Please check the server logs for more details."
)

// Message converts an error from any step of a generation attempt into the
// text shown in the error banner.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, images.ErrRead):
		return MsgReadFailed
	case errors.Is(err, ErrMissingInput), errors.Is(err, gemini.ErrEmptyRequest):
		return MsgMissingInput
	case errors.Is(err, moderation.ErrInappropriate):
		return MsgInappropriate
	case errors.Is(err, images.ErrUnsupportedFormat):
		return MsgUnsupported
	case errors.Is(err, gemini.ErrSafetyBlocked):
		return MsgSafetyBlocked
	case errors.Is(err, gemini.ErrNoImage):
		return MsgNoImage
	case errors.Is(err, ErrBusy):
		return MsgBusy
	default:
		return MsgGeneric
	}
}
