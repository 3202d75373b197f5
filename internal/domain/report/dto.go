package report

// File is a generated report ready to be streamed to the client.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
