package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/internal/types"
	"github.com/Adithya-charan/docuExtract/pkg/logging"
	"github.com/Adithya-charan/docuExtract/pkg/prompt"
	"github.com/Adithya-charan/docuExtract/pkg/result"
)

const (
	RequestProgress = 50
	ParseProgress   = 80
	ReadyProgress   = 100

	abandonedReason = "analysis abandoned"
)

// Parser turns the model's raw payload into a result.
type Parser interface {
	Parse(raw string, src result.Source) (*models.AnalysisResult, error)
}

// Saver persists finished results.
type Saver interface {
	SaveAnalysis(ctx context.Context, userID string, r models.AnalysisResult) error
}

type MachineConfig struct {
	Ingestor types.Ingestor
	Analyzer types.Analyzer
	Parser   Parser
	Store    Saver
	Logger   *logging.Logger
	Now      func() time.Time
}

// Machine sequences one analysis run at a time through ingestion, the model
// request and validation. Every run carries an ID; results of a run that is
// no longer current are dropped.
type Machine struct {
	config MachineConfig
	log    *logging.Logger

	mu    sync.Mutex
	state State
	runID uint64
	subs  []func(State)
}

func NewMachine(config MachineConfig) *Machine {
	if config.Parser == nil {
		config.Parser = result.New()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	log := config.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Machine{
		config: config,
		log:    log.With("pipeline"),
		state:  State{Kind: Idle},
	}
}

// Subscribe registers fn to receive every published state. Callbacks run on
// the goroutine that caused the change and must not call back into the
// machine's Start.
func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Start runs a full analysis of doc in the caller's goroutine. A previous
// ready or failed state is discarded first. The result is saved under
// userID once the run reaches Ready; an empty userID skips the save.
func (m *Machine) Start(ctx context.Context, doc models.Document, code, userID string) (*models.AnalysisResult, error) {
	started := m.config.Now()

	id, err := m.begin(doc)
	if err != nil {
		return nil, err
	}

	content, err := m.config.Ingestor.Ingest(ctx, doc, func(progress int, message string) {
		m.update(id, func(s *State) {
			s.Progress = progress
			s.Logs = append(s.Logs, message)
		})
	})
	if err != nil {
		return nil, m.fail(id, doc, err)
	}

	if err := m.advance(id, Requesting, RequestProgress, "Sending document to the model..."); err != nil {
		return nil, err
	}
	p := prompt.Assemble(content, code)
	raw, err := m.config.Analyzer.Analyze(ctx, p.System, p.Content)
	if err != nil {
		return nil, m.fail(id, doc, err)
	}

	if err := m.advance(id, Parsing, ParseProgress, "Parsing document structure..."); err != nil {
		return nil, err
	}
	res, err := m.config.Parser.Parse(raw, result.Source{
		FileName: doc.Name,
		Kind:     content.Kind,
		Pages:    content.Pages,
		Locale:   code,
		Started:  started,
	})
	if err != nil {
		return nil, m.fail(id, doc, err)
	}

	if err := m.finish(id, res, content.Grounding()); err != nil {
		return nil, err
	}

	m.log.Info().
		Str("file", doc.Name).
		Str("analysis_id", res.ID).
		Int("nodes", res.CountNodes()).
		Int64("elapsed_ms", res.Metadata.ProcessingTime).
		Msg("analysis ready")

	if userID != "" && m.config.Store != nil {
		if err := m.config.Store.SaveAnalysis(ctx, userID, *res); err != nil {
			m.log.Error().Err(err).Str("analysis_id", res.ID).Msg("failed to save analysis")
		}
	}
	return res, nil
}

// Abandon invalidates the current run. Its later stage results are dropped
// and the machine returns to Idle.
func (m *Machine) Abandon() {
	m.mu.Lock()
	m.runID++
	var published []State
	if m.state.Kind.Busy() {
		m.state = m.state.Fail(abandonedReason)
		published = append(published, m.state.clone())
	}
	if m.state.Kind != Idle {
		m.state, _ = m.state.Transition(Idle)
		published = append(published, m.state.clone())
	}
	subs := m.subscribers()
	m.mu.Unlock()

	for _, s := range published {
		notify(subs, s)
	}
}

func (m *Machine) begin(doc models.Document) (uint64, error) {
	m.mu.Lock()
	if m.state.Kind.Busy() {
		m.mu.Unlock()
		return 0, ErrRunInProgress
	}

	var published []State
	if m.state.Kind != Idle {
		m.state, _ = m.state.Transition(Idle)
		published = append(published, m.state.clone())
	}
	st, err := m.state.Transition(Ingesting)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}
	st.Logs = append(st.Logs, fmt.Sprintf("Starting analysis of %s...", doc.Name))
	m.state = st
	m.runID++
	id := m.runID
	published = append(published, m.state.clone())
	subs := m.subscribers()
	m.mu.Unlock()

	for _, s := range published {
		notify(subs, s)
	}
	return id, nil
}

// update mutates the state of run id in place, without a phase change.
func (m *Machine) update(id uint64, fn func(*State)) {
	m.mu.Lock()
	if id != m.runID {
		m.mu.Unlock()
		return
	}
	fn(&m.state)
	s := m.state.clone()
	subs := m.subscribers()
	m.mu.Unlock()

	notify(subs, s)
}

func (m *Machine) advance(id uint64, k Kind, progress int, message string) error {
	return m.commit(id, func(s State) (State, error) {
		st, err := s.Transition(k)
		if err != nil {
			return s, err
		}
		st.Progress = progress
		st.Logs = append(st.Logs, message)
		return st, nil
	})
}

func (m *Machine) finish(id uint64, res *models.AnalysisResult, grounding string) error {
	return m.commit(id, func(s State) (State, error) {
		st, err := s.Transition(Ready)
		if err != nil {
			return s, err
		}
		st.Progress = ReadyProgress
		st.Logs = append(st.Logs, "Analysis complete.")
		st.Result = res
		st.Grounding = grounding
		return st, nil
	})
}

func (m *Machine) fail(id uint64, doc models.Document, cause error) error {
	err := m.commit(id, func(s State) (State, error) {
		st := s.Fail(cause.Error())
		st.Logs = append(st.Logs, "Error: "+cause.Error())
		return st, nil
	})
	if err != nil {
		return err
	}
	m.log.Error().Err(cause).Str("file", doc.Name).Msg("analysis failed")
	return cause
}

func (m *Machine) commit(id uint64, fn func(State) (State, error)) error {
	m.mu.Lock()
	if id != m.runID {
		m.mu.Unlock()
		return ErrStaleRun
	}
	st, err := fn(m.state)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.state = st
	s := m.state.clone()
	subs := m.subscribers()
	m.mu.Unlock()

	notify(subs, s)
	return nil
}

func (m *Machine) subscribers() []func(State) {
	return append([]func(State){}, m.subs...)
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}
