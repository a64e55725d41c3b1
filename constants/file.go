package constants

import "strings"

// Upload limits enforced before a job is created.
const (
	MaxFilesPerUpload = 10
	MaxFileSizeBytes  = 10 << 20 // 10 MiB per file
)

// DOCXContentType is the declared type for word-processing uploads.
const DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// AllowedContentTypes holds the exact-match allow-list for uploads.
// Generic "image/*" types are additionally accepted via IsAllowedContentType.
var AllowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/jpg":       {},
	"application/pdf": {},
	DOCXContentType:   {},
}

// IsAllowedContentType reports whether a declared content type may be uploaded.
func IsAllowedContentType(ct string) bool {
	if _, ok := AllowedContentTypes[ct]; ok {
		return true
	}
	return strings.HasPrefix(ct, "image/")
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ContentTypeForFilename guesses a declared type from the file extension, for
// multipart parts that arrive without one. Unknown extensions yield "".
func ContentTypeForFilename(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	switch NormalizeExt(filename[i:]) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "pdf":
		return "application/pdf"
	case "docx":
		return DOCXContentType
	default:
		return ""
	}
}

// IsDOCX reports whether a file should take the word-processing extraction
// path, by declared content type or filename suffix.
func IsDOCX(contentType, filename string) bool {
	if contentType == DOCXContentType {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}
