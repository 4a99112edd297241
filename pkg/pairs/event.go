package pairs

// Event is the kind of 3C event a pair comes from.
type Event int

const (
	// EventIntra is a long range intrachromosomal contact.
	EventIntra Event = iota
	// EventInter is an interchromosomal contact.
	EventInter
	// EventUncut is a +- pair closer than the uncut threshold: undigested site.
	EventUncut
	// EventLoop is a -+ pair closer than the loop threshold: self-religated fragment.
	EventLoop
	// EventWeird is a pair with both reads on the same fragment and strand.
	EventWeird
)

var eventNames = map[Event]string{
	EventIntra: "intra",
	EventInter: "inter",
	EventUncut: "uncut",
	EventLoop:  "loop",
	EventWeird: "weird",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}

	return "unknown"
}

// Kept reports whether pairs of this event survive filtering.
func (e Event) Kept() bool {
	return e == EventIntra || e == EventInter
}

// Thresholds are the minimum number of restriction fragments separating reads for
// +- (Uncut) and -+ (Loop) pairs to be kept.
type Thresholds struct {
	Uncut int
	Loop  int
}

// Classify returns the event of p given the thresholds.
func Classify(p Pair, thr Thresholds) Event {
	if !p.Intra() {
		return EventInter
	}

	switch {
	case p.Indice1 == p.Indice2 && p.Strand1 == p.Strand2:
		return EventWeird
	case p.NSites < thr.Loop && p.Type == "-+":
		return EventLoop
	case p.NSites < thr.Uncut && p.Type == "+-":
		return EventUncut
	default:
		return EventIntra
	}
}
