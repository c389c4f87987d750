package dto

// AvatarUploadResponse reports where the stored avatar image ended up.
type AvatarUploadResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}
