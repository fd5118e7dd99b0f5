package event

import (
	"encoding/json"
	"fmt"

	"percept/internal/behavior"
	"percept/internal/clock"
	"percept/internal/intent"
	"percept/internal/recall"
	"percept/internal/store"
	"percept/internal/telemetry"
)

// #region configs

// Configs bundles the per-classifier tuning for a dispatcher.
type Configs struct {
	Behavior behavior.Config
	Recall   recall.Config
	Intent   intent.Config
}

// DefaultConfigs returns the per-classifier defaults.
func DefaultConfigs() Configs {
	return Configs{
		Behavior: behavior.DefaultConfig(),
		Recall:   recall.DefaultConfig(),
		Intent:   intent.DefaultConfig(),
	}
}

// #endregion configs

// #region change

// Change reports that a subject's derived label moved.
type Change struct {
	Classifier string // "behavior" | "recall" | "intent"
	SubjectID  string
	FromLabel  string
	ToLabel    string
	Rule       string
	Profile    interface{}
}

// ProfileJSON renders the profile for logging.
func (c Change) ProfileJSON() string {
	data, err := json.Marshal(c.Profile)
	if err != nil {
		return ""
	}
	return string(data)
}

// #endregion change

// #region dispatcher

// Dispatcher routes decoded events to per-subject trackers, creating and
// hydrating trackers on first use. Not safe for concurrent Apply calls;
// callers feed it one timeline.
type Dispatcher struct {
	cfgs  Configs
	clk   clock.Clock
	sched clock.Scheduler
	st    store.Store

	behaviors map[string]*behavior.Tracker
	recalls   map[string]*recall.Tracker
	intents   map[string]*intent.Tracker
	lastLabel map[string]string
	onChange  func(Change)
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(cfgs Configs, clk clock.Clock, sched clock.Scheduler, st store.Store) *Dispatcher {
	return &Dispatcher{
		cfgs:      cfgs,
		clk:       clk,
		sched:     sched,
		st:        st,
		behaviors: make(map[string]*behavior.Tracker),
		recalls:   make(map[string]*recall.Tracker),
		intents:   make(map[string]*intent.Tracker),
		lastLabel: make(map[string]string),
	}
}

// OnChange registers the callback fired when a subject's label moves.
// Register before applying events.
func (d *Dispatcher) OnChange(cb func(Change)) { d.onChange = cb }

// #endregion dispatcher

// #region trackers

// Behavior returns the behavior tracker for an element id.
func (d *Dispatcher) Behavior(id string) (*behavior.Tracker, error) {
	if t, ok := d.behaviors[id]; ok {
		return t, nil
	}
	t, err := behavior.NewTracker(id, d.cfgs.Behavior, d.clk, d.st)
	if err != nil {
		return nil, fmt.Errorf("behavior tracker %s: %w", id, err)
	}
	d.behaviors[id] = t
	p, _ := behavior.Explain(t.Accumulator())
	d.lastLabel[behavior.Kind+":"+id] = string(p.Personality)
	return t, nil
}

// Recall returns the recall tracker for a surface id.
func (d *Dispatcher) Recall(id string) (*recall.Tracker, error) {
	if t, ok := d.recalls[id]; ok {
		return t, nil
	}
	t, err := recall.NewTracker(id, d.cfgs.Recall, d.clk, d.st)
	if err != nil {
		return nil, fmt.Errorf("recall tracker %s: %w", id, err)
	}
	d.recalls[id] = t
	d.lastLabel[recall.Kind+":"+id] = string(t.Profile().Mood)
	return t, nil
}

// Intent returns the intent tracker for a surface id.
func (d *Dispatcher) Intent(id string) (*intent.Tracker, error) {
	if t, ok := d.intents[id]; ok {
		return t, nil
	}
	t, err := intent.NewTracker(id, d.cfgs.Intent, d.clk, d.sched, d.st)
	if err != nil {
		return nil, fmt.Errorf("intent tracker %s: %w", id, err)
	}
	d.intents[id] = t
	d.lastLabel[intent.Kind+":"+id] = string(t.Profile().Intent)
	return t, nil
}

// #endregion trackers

// #region apply

// Apply routes one event to its tracker and fires the change callback
// when the subject's derived label moved.
func (d *Dispatcher) Apply(ev Event) error {
	if ev.Subject == "" {
		return fmt.Errorf("apply %s: empty subject", ev.Type)
	}
	switch ev.Type {
	case TypeHoverStart, TypeHoverEnd, TypePointerMove, TypeClick, TypeRetreat:
		return d.applyBehavior(ev)
	case TypeSessionEnter, TypeSessionMove, TypeSessionDepth, TypeSessionLeave:
		return d.applyRecall(ev)
	case TypePageScroll, TypeFocus, TypePageMove:
		return d.applyIntent(ev)
	case TypeReset:
		return d.applyReset(ev)
	default:
		return fmt.Errorf("apply: unknown event type %q", ev.Type)
	}
}

func (d *Dispatcher) applyBehavior(ev Event) error {
	t, err := d.Behavior(ev.Subject)
	if err != nil {
		return err
	}
	switch ev.Type {
	case TypeHoverStart:
		err = t.HoverStart()
	case TypeHoverEnd:
		err = t.HoverEnd()
	case TypePointerMove:
		err = t.MouseMove(telemetry.Point{X: ev.X, Y: ev.Y}, ev.Bounds)
	case TypeClick:
		err = t.Click()
	case TypeRetreat:
		err = t.ApproachRetreat()
	}
	if err != nil {
		return fmt.Errorf("apply %s to %s: %w", ev.Type, ev.Subject, err)
	}
	p, rule := behavior.Explain(t.Accumulator())
	d.noteLabel(behavior.Kind, ev.Subject, string(p.Personality), rule, p)
	return nil
}

func (d *Dispatcher) applyRecall(ev Event) error {
	t, err := d.Recall(ev.Subject)
	if err != nil {
		return err
	}
	switch ev.Type {
	case TypeSessionEnter:
		t.Enter()
	case TypeSessionMove:
		t.MouseMove(ev.X, ev.Y)
	case TypeSessionDepth:
		t.Scroll(ev.Depth)
	case TypeSessionLeave:
		if err := t.Leave(); err != nil {
			return fmt.Errorf("apply %s to %s: %w", ev.Type, ev.Subject, err)
		}
	}
	p := t.Profile()
	d.noteLabel(recall.Kind, ev.Subject, string(p.Mood), t.LastRule(), p)
	return nil
}

func (d *Dispatcher) applyIntent(ev Event) error {
	t, err := d.Intent(ev.Subject)
	if err != nil {
		return err
	}
	switch ev.Type {
	case TypePageScroll:
		err = t.Scroll(ev.ScrollY, ev.ContainerHeight)
	case TypeFocus:
		err = t.FocusChange(ev.ElementID)
	case TypePageMove:
		err = t.MouseMove(ev.X, ev.Y, ev.Bounds)
	}
	if err != nil {
		return fmt.Errorf("apply %s to %s: %w", ev.Type, ev.Subject, err)
	}
	p, rule := intent.Explain(t.Accumulator(), d.cfgs.Intent, d.clk.Now())
	d.noteLabel(intent.Kind, ev.Subject, string(p.Intent), rule, p)
	return nil
}

func (d *Dispatcher) applyReset(ev Event) error {
	bt, err := d.Behavior(ev.Subject)
	if err != nil {
		return err
	}
	rt, err := d.Recall(ev.Subject)
	if err != nil {
		return err
	}
	it, err := d.Intent(ev.Subject)
	if err != nil {
		return err
	}
	if err := bt.Reset(); err != nil {
		return fmt.Errorf("reset behavior %s: %w", ev.Subject, err)
	}
	if err := rt.Reset(); err != nil {
		return fmt.Errorf("reset recall %s: %w", ev.Subject, err)
	}
	if err := it.Reset(); err != nil {
		return fmt.Errorf("reset intent %s: %w", ev.Subject, err)
	}
	d.lastLabel[behavior.Kind+":"+ev.Subject] = string(bt.Profile().Personality)
	d.lastLabel[recall.Kind+":"+ev.Subject] = string(rt.Profile().Mood)
	d.lastLabel[intent.Kind+":"+ev.Subject] = string(it.Profile().Intent)
	return nil
}

func (d *Dispatcher) noteLabel(classifier, subject, label, rule string, profile interface{}) {
	key := classifier + ":" + subject
	prev := d.lastLabel[key]
	if prev == label {
		return
	}
	d.lastLabel[key] = label
	if d.onChange != nil {
		d.onChange(Change{
			Classifier: classifier,
			SubjectID:  subject,
			FromLabel:  prev,
			ToLabel:    label,
			Rule:       rule,
			Profile:    profile,
		})
	}
}

// #endregion apply

// #region snapshot

// Snapshot bundles the three current profiles for a subject.
type Snapshot struct {
	Behavior behavior.Profile `json:"behavior"`
	Recall   recall.Profile   `json:"recall"`
	Intent   intent.Profile   `json:"intent"`
}

// Profiles returns the current snapshot for a subject, hydrating trackers
// as needed.
func (d *Dispatcher) Profiles(subject string) (Snapshot, error) {
	bt, err := d.Behavior(subject)
	if err != nil {
		return Snapshot{}, err
	}
	rt, err := d.Recall(subject)
	if err != nil {
		return Snapshot{}, err
	}
	it, err := d.Intent(subject)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Behavior: bt.Profile(), Recall: rt.Profile(), Intent: it.Profile()}, nil
}

// #endregion snapshot
