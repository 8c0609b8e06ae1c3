package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// ImageRefKind discriminates the three accepted image reference shapes.
type ImageRefKind int

// Image reference kinds.
const (
	ImageRemoteURL ImageRefKind = iota
	ImageDataURI
	ImageRawBase64
)

// ImageRef is a classified image reference. Exactly one decode/fetch
// strategy applies per kind:
//   - ImageRemoteURL: URL holds the address to fetch.
//   - ImageDataURI: Data holds the decoded payload, Subtype the declared
//     image subtype.
//   - ImageRawBase64: Data holds the decoded payload, assumed JPEG.
type ImageRef struct {
	Kind    ImageRefKind
	URL     string
	Subtype string
	Data    []byte
}

var (
	remoteURLPattern = regexp.MustCompile(`^https?://.+`)
	dataURIPattern   = regexp.MustCompile(`^data:image/([a-zA-Z]+);base64,(.+)$`)
	rawBase64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

// IsImageRef reports whether ref matches one of the accepted shapes.
// Used by validation; decoding errors are surfaced later by ClassifyImageRef.
func IsImageRef(ref string) bool {
	return remoteURLPattern.MatchString(ref) ||
		dataURIPattern.MatchString(ref) ||
		rawBase64Pattern.MatchString(ref)
}

// ClassifyImageRef pattern-matches ref into a tagged variant, decoding any
// inline base64 payload.
func ClassifyImageRef(ref string) (ImageRef, error) {
	if remoteURLPattern.MatchString(ref) {
		return ImageRef{Kind: ImageRemoteURL, URL: ref}, nil
	}
	if m := dataURIPattern.FindStringSubmatch(ref); m != nil {
		data, err := base64.StdEncoding.DecodeString(m[2])
		if err != nil {
			return ImageRef{}, fmt.Errorf("decode data uri payload: %w", err)
		}
		return ImageRef{Kind: ImageDataURI, Subtype: m[1], Data: data}, nil
	}
	if rawBase64Pattern.MatchString(ref) {
		data, err := base64.StdEncoding.DecodeString(ref)
		if err != nil {
			return ImageRef{}, fmt.Errorf("decode base64 payload: %w", err)
		}
		return ImageRef{Kind: ImageRawBase64, Subtype: "jpeg", Data: data}, nil
	}
	return ImageRef{}, fmt.Errorf("unrecognized image reference")
}

// ContentType returns the MIME type for inline variants ("image/jpeg" for
// raw base64) and "" for remote references, whose type comes from the fetch
// response.
func (r ImageRef) ContentType() string {
	switch r.Kind {
	case ImageDataURI, ImageRawBase64:
		return "image/" + r.Subtype
	default:
		return ""
	}
}
