package ragjudge

// TransformEvent is the request a knowledge base sends to a custom
// transformation function during ingestion.
type TransformEvent struct {
	Version         string          `json:"version,omitempty"`
	KnowledgeBaseID string          `json:"knowledgeBaseId,omitempty"`
	DataSourceID    string          `json:"dataSourceId,omitempty"`
	IngestionJobID  string          `json:"ingestionJobId,omitempty"`
	BucketName      string          `json:"bucketName"`
	PriorTask       string          `json:"priorTask,omitempty"`
	InputFiles      []TransformFile `json:"inputFiles"`
}

// TransformFile is one source file and the batches of content extracted from it.
type TransformFile struct {
	OriginalFileLocation map[string]any `json:"originalFileLocation"`
	FileMetadata         map[string]any `json:"fileMetadata"`
	ContentBatches       []ContentBatch `json:"contentBatches"`
}

// ContentBatch points to a batch object in the intermediate bucket.
type ContentBatch struct {
	Key string `json:"key"`
}

// TransformResult is the response returned to the knowledge base.
type TransformResult struct {
	OutputFiles []TransformFile `json:"outputFiles"`
}

// FileContents is the body of a content batch object.
type FileContents struct {
	FileContents []FileContent `json:"fileContents"`
}

// FileContent is one piece of content within a batch.
type FileContent struct {
	ContentType     string         `json:"contentType"`
	ContentMetadata map[string]any `json:"contentMetadata"`
	ContentBody     string         `json:"contentBody"`
}

// ChunkContents splits every content body with c. Each chunk keeps the
// content type and metadata of the content it came from.
func ChunkContents(in FileContents, c Chunker) FileContents {
	out := FileContents{FileContents: []FileContent{}}
	for _, content := range in.FileContents {
		if content.ContentMetadata == nil {
			content.ContentMetadata = map[string]any{}
		}
		for _, chunk := range c.Chunk(content.ContentBody) {
			out.FileContents = append(out.FileContents, FileContent{
				ContentType:     content.ContentType,
				ContentMetadata: content.ContentMetadata,
				ContentBody:     chunk,
			})
		}
	}
	return out
}
