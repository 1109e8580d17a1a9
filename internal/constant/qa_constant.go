package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	// Subjects consumed by the ingestion worker.
	DocumentUploadedTopic = "DOCUMENT_UPLOADED"

	// Redis channel the websocket hub relays pipeline progress on.
	PipelineProgressChannel = "qa:pipeline:progress"
)
