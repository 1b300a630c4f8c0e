package filegw

import (
	"path/filepath"
	"strings"
)

// mimeByExt is the static extension table used whenever the storage
// layer reports nothing useful. Covers the design-asset formats the
// library actually serves; extend as new formats appear.
var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",

	".pdf": "application/pdf",
	".zip": "application/zip",
	".ai":  "application/postscript",
	".eps": "application/postscript",
	".psd": "image/vnd.adobe.photoshop",

	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",

	".mp4":  "video/mp4",
	".webm": "video/webm",

	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".woff":  "font/woff",
	".woff2": "font/woff2",

	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".txt":  "text/plain; charset=utf-8",
	".html": "text/html; charset=utf-8",
}

const fallbackContentType = "application/octet-stream"

// ResolveContentType derives the MIME type to serve a file with. A
// specific detected type wins; when the storage layer reports nothing or
// only the generic octet-stream, the file extension decides.
func ResolveContentType(filename, detected string) string {
	if detected != "" && detected != fallbackContentType {
		return detected
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	if detected != "" {
		return detected
	}
	return fallbackContentType
}
