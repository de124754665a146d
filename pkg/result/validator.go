package result

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultSummary      = "No summary available."
	DefaultQualityScore = 85
	DefaultConfidence   = 0.8

	// ExcerptLimit caps the raw text carried by a malformed payload error.
	ExcerptLimit = 200
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// Source is the local provenance of a result. None of it is ever taken
// from the model's payload.
type Source struct {
	FileName string
	Kind     models.MediaKind
	Pages    int
	Locale   string
	Started  time.Time
}

type Validator struct {
	now   func() time.Time
	newID func() string
}

func New() *Validator {
	return &Validator{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// payload mirrors the model response. Every field decodes leniently: a
// value of the wrong JSON type is treated as absent and gets its default.
type payload struct {
	Hierarchy    nodeList    `json:"hierarchy"`
	Summary      flexString  `json:"summary"`
	QualityScore flexFloat   `json:"qualityScore"`
	Issues       flexStrings `json:"issues"`
	Metadata     metadata    `json:"metadata"`
}

type metadata struct {
	Confidence     flexFloat `json:"confidence"`
	TablesDetected flexFloat `json:"tablesDetected"`
}

// UnmarshalJSON ignores a metadata value that is not an object.
func (m *metadata) UnmarshalJSON(b []byte) error {
	type plain metadata
	var v plain
	if json.Unmarshal(b, &v) == nil {
		*m = metadata(v)
	}
	return nil
}

type node struct {
	ID          flexString `json:"id"`
	Heading     flexString `json:"heading"`
	Level       flexFloat  `json:"level"`
	Content     flexString `json:"content"`
	NodeSummary flexString `json:"nodeSummary"`
	Complexity  flexString `json:"complexity"`
	Intent      flexString `json:"intent"`
	Children    nodeList   `json:"children"`
}

// nodeList keeps the elements of an array that decode as objects. Any other
// value yields an empty list.
type nodeList []node

func (l *nodeList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if json.Unmarshal(b, &raw) != nil {
		*l = nil
		return nil
	}
	out := make(nodeList, 0, len(raw))
	for _, r := range raw {
		var n node
		if json.Unmarshal(r, &n) == nil {
			out = append(out, n)
		}
	}
	*l = out
	return nil
}

// flexString accepts a JSON string or number.
type flexString struct {
	Value string
	Set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = flexString{}
	var s string
	if err := json.Unmarshal(b, &s); err == nil && !isNull(b) {
		*f = flexString{Value: s, Set: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil && !isNull(b) {
		*f = flexString{Value: n.String(), Set: true}
	}
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat struct {
	Value float64
	Set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}
	if isNull(b) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexFloat{Value: v, Set: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*f = flexFloat{Value: v, Set: true}
		}
	}
	return nil
}

// flexStrings accepts an array of strings or numbers; other elements are
// dropped. A non-array value counts as absent.
type flexStrings struct {
	Values []string
	Set    bool
}

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	*f = flexStrings{}
	var raw []json.RawMessage
	if json.Unmarshal(b, &raw) != nil || isNull(b) {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, r := range raw {
		var s flexString
		s.UnmarshalJSON(r)
		if s.Set {
			values = append(values, s.Value)
		}
	}
	*f = flexStrings{Values: values, Set: true}
	return nil
}

func isNull(b []byte) bool {
	return strings.TrimSpace(string(b)) == "null"
}

// StripFences removes at most one leading and one trailing code fence.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func (v *Validator) Parse(raw string, src Source) (*models.AnalysisResult, error) {
	body := []byte(StripFences(raw))
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		if !json.Valid(body) {
			return nil, models.NewMalformedPayloadError("failed to parse model response", excerpt(raw), err)
		}
		// Well-formed but not an object: nothing usable, every field defaults.
		p = payload{}
	}

	now := v.now()
	res := &models.AnalysisResult{
		ID:           v.newID(),
		FileName:     src.FileName,
		Timestamp:    now.UnixMilli(),
		Hierarchy:    normalizeTree(p.Hierarchy),
		Summary:      DefaultSummary,
		QualityScore: DefaultQualityScore,
		Issues:       []string{},
		Metadata: models.AnalysisMetadata{
			Confidence:  DefaultConfidence,
			Pages:       src.Pages,
			Language:    src.Locale,
			DNASequence: "DNA-" + v.newID()[:8],
			FileType:    src.Kind,
		},
	}

	if !src.Started.IsZero() {
		res.Metadata.ProcessingTime = now.Sub(src.Started).Milliseconds()
	}
	if p.Summary.Set && strings.TrimSpace(p.Summary.Value) != "" {
		res.Summary = p.Summary.Value
	}
	if p.QualityScore.Set {
		res.QualityScore = int(math.Round(clampFloat(p.QualityScore.Value, 0, 100)))
	}
	if p.Issues.Set {
		res.Issues = p.Issues.Values
	}
	if p.Metadata.Confidence.Set {
		res.Metadata.Confidence = clampFloat(p.Metadata.Confidence.Value, 0, 1)
	}
	if t := p.Metadata.TablesDetected; t.Set && t.Value > 0 {
		res.Metadata.TablesDetected = int(math.Round(math.Min(t.Value, math.MaxInt32)))
	}

	return res, nil
}

func excerpt(raw string) string {
	r := []rune(raw)
	if len(r) > ExcerptLimit {
		r = r[:ExcerptLimit]
	}
	return string(r)
}

// normalizeTree enforces node invariants: positive levels that never
// decrease with depth, closed complexity/intent sets and unique ids.
func normalizeTree(nodes []node) []models.HierarchyNode {
	seen := make(map[string]bool)
	var walk func(nodes []node, depth, parentLevel int, path string) []models.HierarchyNode
	walk = func(nodes []node, depth, parentLevel int, path string) []models.HierarchyNode {
		out := make([]models.HierarchyNode, 0, len(nodes))
		for i, n := range nodes {
			id := strings.TrimSpace(n.ID.Value)
			p := fmt.Sprintf("%s%d", path, i+1)
			if id == "" || seen[id] {
				id = "n" + p
				for seen[id] {
					id += "'"
				}
			}
			seen[id] = true

			level := 0
			if n.Level.Set && n.Level.Value >= 1 && n.Level.Value <= math.MaxInt32 {
				level = int(math.Round(n.Level.Value))
			}
			if level < 1 {
				level = depth
			}
			if level < parentLevel {
				level = parentLevel
			}

			complexity := models.Complexity(strings.ToLower(n.Complexity.Value))
			if !complexity.Valid() {
				complexity = models.ComplexityMedium
			}
			intent := models.Intent(strings.ToLower(n.Intent.Value))
			if !intent.Valid() {
				intent = models.IntentGeneral
			}

			out = append(out, models.HierarchyNode{
				ID:          id,
				Heading:     n.Heading.Value,
				Level:       level,
				Content:     n.Content.Value,
				NodeSummary: n.NodeSummary.Value,
				Complexity:  complexity,
				Intent:      intent,
				Children:    walk(n.Children, depth+1, level, p+"."),
			})
		}
		return out
	}
	return walk(nodes, 1, 1, "")
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
