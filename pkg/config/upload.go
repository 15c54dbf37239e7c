package config

// UploadConfig - правила для одного контекста загрузки файлов.
type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

var UploadContexts = map[string]UploadConfig{
	"ticket_attachment": {
		AllowedMimeTypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf",
			"text/plain", "application/zip",
		},
		MaxSizeMB:  25,
		PathPrefix: "tickets",
	},
	"avatar": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"},
		MaxSizeMB:        5,
		PathPrefix:       "avatars",
	},
	"client_import": {
		AllowedMimeTypes: []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		MaxSizeMB:        10,
		PathPrefix:       "imports",
	},
}
