package imagehost

// SetTestURL overrides the upload URL on an HTTPUploader for testing.
// This should only be used in tests.
func SetTestURL(h *HTTPUploader, uploadURL string) {
	if uploadURL != "" {
		h.uploadURL = uploadURL
	}
}
