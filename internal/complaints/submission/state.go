package submission

// State is a step of one submission.
type State int

const (
	Created State = iota
	LookupAttempted
	Enriched
	RecordCreated
	Published
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case LookupAttempted:
		return "lookup_attempted"
	case Enriched:
		return "enriched"
	case RecordCreated:
		return "record_created"
	case Published:
		return "published"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// allowed lists legal transitions. Failed is reachable only before the
// record exists; a publish failure skips Published but still completes.
var allowed = map[State][]State{
	Created:         {LookupAttempted, Failed},
	LookupAttempted: {Enriched, Failed},
	Enriched:        {RecordCreated, Failed},
	RecordCreated:   {Published, Completed},
	Published:       {Completed},
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}
