package models

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

type Intent string

const (
	IntentConcept    Intent = "concept"
	IntentProcedure  Intent = "procedure"
	IntentWarning    Intent = "warning"
	IntentDefinition Intent = "definition"
	IntentSummary    Intent = "summary"
	IntentLegal      Intent = "legal"
	IntentGeneral    Intent = "general"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentConcept, IntentProcedure, IntentWarning, IntentDefinition,
		IntentSummary, IntentLegal, IntentGeneral:
		return true
	}
	return false
}

// HierarchyNode is one section of the extracted outline. Children are owned
// by their parent and kept in document order.
type HierarchyNode struct {
	ID          string          `json:"id"`
	Heading     string          `json:"heading"`
	Level       int             `json:"level"`
	Content     string          `json:"content"`
	NodeSummary string          `json:"nodeSummary"`
	Complexity  Complexity      `json:"complexity"`
	Intent      Intent          `json:"intent"`
	Children    []HierarchyNode `json:"children"`
}

type AnalysisMetadata struct {
	Confidence     float64   `json:"confidence"`
	Pages          int       `json:"pages"`
	Language       string    `json:"language"`
	ProcessingTime int64     `json:"processingTime"`
	TablesDetected int       `json:"tablesDetected"`
	DNASequence    string    `json:"dnaSequence"`
	FileType       MediaKind `json:"fileType"`
}

// AnalysisResult is the validated output of one pipeline run. Timestamp is
// in epoch milliseconds.
type AnalysisResult struct {
	ID           string           `json:"id"`
	FileName     string           `json:"fileName"`
	Timestamp    int64            `json:"timestamp"`
	Hierarchy    []HierarchyNode  `json:"hierarchy"`
	Summary      string           `json:"summary"`
	Metadata     AnalysisMetadata `json:"metadata"`
	QualityScore int              `json:"qualityScore"`
	Issues       []string         `json:"issues"`
}

// CountNodes returns the number of nodes in the whole tree.
func (r *AnalysisResult) CountNodes() int {
	var walk func(nodes []HierarchyNode) int
	walk = func(nodes []HierarchyNode) int {
		n := len(nodes)
		for _, node := range nodes {
			n += walk(node.Children)
		}
		return n
	}
	return walk(r.Hierarchy)
}
