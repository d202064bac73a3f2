package convert

import (
	"mime"
	"strings"
)

// Output formats a conversion can target.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// SupportedFormats lists every accepted output format.
var SupportedFormats = []string{FormatJPEG, FormatPNG, FormatWebP}

// The platform's mime tables vary, register the image types we rely on.
var imageTypes = map[string]string{
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
	".ico":  "image/x-icon",
	".jpe":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

func init() {
	for ext, typ := range imageTypes {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// ContentType returns the media type implied by the name's extension, or ""
// when it has none.
func ContentType(ext string) string {
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// IsImageType reports whether a media type is an image/* type.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// IsSupported reports whether an input with extension ext may be converted
// to format. Formats are matched exactly; SVG input only converts to PNG.
func IsSupported(ext, format string) bool {
	supported := false
	for _, f := range SupportedFormats {
		if f == format {
			supported = true
			break
		}
	}
	if !supported {
		return false
	}
	if strings.EqualFold(ext, ".svg") {
		return format == FormatPNG
	}
	return true
}
