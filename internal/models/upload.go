package models

// FileUpload is an uploaded file held in memory until it is written to object storage.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
