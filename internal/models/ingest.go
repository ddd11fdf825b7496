package models

// EmailAttachment is a normalized inbound email attachment
type EmailAttachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// PhotoUploadResult is the outcome of ingesting one attachment, or of a rejected batch
type PhotoUploadResult struct {
	Success  bool   `json:"success"`
	PhotoID  string `json:"photo_id,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// IngestSummary counts results for the webhook response
type IngestSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// Summarize derives counts from a result list
func Summarize(results []PhotoUploadResult) IngestSummary {
	summary := IngestSummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Success++
		} else {
			summary.Errors++
		}
	}
	return summary
}

// MediaUpload is a binary asset destined for the media store
type MediaUpload struct {
	Filename    string
	ContentType string
	Folder      string
	Content     []byte
}
