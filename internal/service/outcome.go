package service

// EntryOutcome is the first-class result of applying one bulk operation to
// one timetable entry.
type EntryOutcome struct {
	kind     outcomeKind
	messages []outcomeMessage
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeSkipped
	outcomeFailed
)

type outcomeMessage struct {
	warning bool
	text    string
}

// Succeeded builds a clean success outcome.
func Succeeded() EntryOutcome {
	return EntryOutcome{kind: outcomeSuccess}
}

// SucceededWithWarning builds a success outcome carrying an advisory message.
func SucceededWithWarning(warning string) EntryOutcome {
	return EntryOutcome{kind: outcomeSuccess, messages: []outcomeMessage{{warning: true, text: warning}}}
}

// Skipped builds an outcome for an entry left untouched because of a
// business conflict. Skips count against the failed tally.
func Skipped(reason string) EntryOutcome {
	return EntryOutcome{kind: outcomeSkipped, messages: []outcomeMessage{{warning: true, text: reason}}}
}

// Failed builds an outcome for an entry rejected by a hard business rule.
func Failed(reason string) EntryOutcome {
	return EntryOutcome{kind: outcomeFailed, messages: []outcomeMessage{{text: reason}}}
}

// WithWarning returns a copy of the outcome carrying an extra advisory.
func (o EntryOutcome) WithWarning(warning string) EntryOutcome {
	o.messages = append(o.messages, outcomeMessage{warning: true, text: warning})
	return o
}

// Tally is the explicit accumulator an executor folds entry outcomes into.
type Tally struct {
	Affected   int
	Successful int
	Failed     int
	Errors     []string
	Warnings   []string
}

// Fold absorbs one entry outcome.
func (t *Tally) Fold(o EntryOutcome) {
	switch o.kind {
	case outcomeSuccess:
		t.Successful++
	default:
		t.Failed++
	}
	for _, m := range o.messages {
		if m.warning {
			t.Warnings = append(t.Warnings, m.text)
		} else {
			t.Errors = append(t.Errors, m.text)
		}
	}
}

// Clean reports whether no entry failed.
func (t *Tally) Clean() bool {
	return t.Failed == 0
}
