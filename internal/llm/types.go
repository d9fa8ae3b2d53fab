package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Tool is a grounding capability the model may use while answering.
type Tool string

const (
	ToolWebSearch Tool = "web_search"
	ToolMaps      Tool = "maps"
)

// LatLng biases map grounding toward a point.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
	// Tools are ignored by providers that cannot ground answers.
	Tools []Tool
	Near  *LatLng
}

// HasTool reports whether t was requested.
func (r CompletionRequest) HasTool(t Tool) bool {
	for _, x := range r.Tools {
		if x == t {
			return true
		}
	}
	return false
}

// CitationKind is "web" or "maps".
type CitationKind string

const (
	CitationWeb  CitationKind = "web"
	CitationMaps CitationKind = "maps"
)

// Citation is one grounding source used for a response.
type Citation struct {
	Kind  CitationKind
	URI   string
	Title string
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
	Citations    []Citation
}
