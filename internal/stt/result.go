package stt

// Result represents the result of a speech-to-text transcription
type Result struct {
	Transcript  string  // The transcribed text
	Confidence  float64 // Confidence score (0.0-1.0), 0 when the provider does not report one
	Provider    string
	RawResponse string // Raw response body, kept for debugging
}

const previewLimit = 500

// preview trims a response body for log lines
func preview(body []byte) string {
	s := string(body)
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}
