// Package ragjudge provides domain types for judging RAG answers with an LLM.
package ragjudge

import "context"

// EvaluationItem is one question with the answer a RAG pipeline produced for it.
type EvaluationItem struct {
	Question        string
	ExpectedAnswer  string
	GeneratedAnswer string
	Context         []string
}

// Default judge sampling settings.
const (
	DefaultTemperature = 0.1
	DefaultTopP        = 0.1
)

// JudgeRequest is a single prompt sent to a judge model.
type JudgeRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// Judge sends a prompt to a judge model and returns the raw reply text.
// Implementations map transport failures to AuthError, RateLimitError
// or ConfigError so callers can decide whether to retry.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (string, error)
}

// JudgeConfig holds the judge model and its sampling settings.
type JudgeConfig struct {
	Model       string  `json:"eval_retrieval_model"`
	Temperature float64 `json:"temp_retrieval_llm"`
	TopP        float64 `json:"pvalue_retrieval_llm"`
}

// DefaultJudgeConfig returns a JudgeConfig with default sampling settings
// and no model.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

// Request builds a JudgeRequest for prompt using these settings.
func (c JudgeConfig) Request(prompt string) JudgeRequest {
	return JudgeRequest{
		Prompt:      prompt,
		Model:       c.Model,
		Temperature: c.Temperature,
		TopP:        c.TopP,
	}
}

// Validate reports a ConfigError when the settings cannot be sent to a judge.
func (c JudgeConfig) Validate() error {
	if c.Model == "" {
		return &ConfigError{Field: "eval_retrieval_model", Reason: "not set"}
	}
	if c.Temperature < 0 {
		return &ConfigError{Field: "temp_retrieval_llm", Reason: "must not be negative"}
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return &ConfigError{Field: "pvalue_retrieval_llm", Reason: "must be in (0, 1]"}
	}
	return nil
}

// Progress reports the outcome of one judged record.
type Progress struct {
	Group   string
	Index   int
	Done    int
	Total   int
	Verdict Verdict
	Err     error
}

// Question is a question with its reference answer, used as input for
// generating answers with a knowledge base.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Citation is a passage a generator retrieved and cited in its answer.
type Citation struct {
	Text     string
	Location string
	Metadata map[string]any
}

// Generation is an answer produced by a retrieval-augmented generator.
type Generation struct {
	Text      string
	Citations []Citation
}

// Contexts converts the citations into retrieved contexts for a Record.
func (g *Generation) Contexts() []RetrievedContext {
	contexts := make([]RetrievedContext, 0, len(g.Citations))
	for _, c := range g.Citations {
		contexts = append(contexts, RetrievedContext{
			Text:     c.Text,
			Location: c.Location,
			Metadata: c.Metadata,
		})
	}
	return contexts
}

// Generator answers a question using retrieval-augmented generation.
type Generator interface {
	Generate(ctx context.Context, question string) (*Generation, error)
}

// FoundationModel describes a model offered by a model provider.
type FoundationModel struct {
	ID               string
	Name             string
	Provider         string
	Status           string
	InputModalities  []string
	OutputModalities []string
}

// ModelStatusActive is the lifecycle status of models that can be invoked.
const ModelStatusActive = "ACTIVE"

// Active reports whether the model can be invoked.
func (m FoundationModel) Active() bool {
	return m.Status == ModelStatusActive
}

// ModelLister lists the foundation models available to the caller.
type ModelLister interface {
	ListModels(ctx context.Context) ([]FoundationModel, error)
}

// ActiveModels returns the models in models that can be invoked, preserving order.
func ActiveModels(models []FoundationModel) []FoundationModel {
	var active []FoundationModel
	for _, m := range models {
		if m.Active() {
			active = append(active, m)
		}
	}
	return active
}

// ObjectStore reads and writes whole objects in a bucket.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// RecordStore persists judged records.
type RecordStore interface {
	Load(path string) ([]Record, error)
	Save(path string, records []Record) error
}

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	Copy(content string) error
}
