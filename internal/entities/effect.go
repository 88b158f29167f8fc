package entities

// ChangeMode is how a change is applied to its target key.
type ChangeMode int

// Change modes, in the host's numbering
const (
	ModeCustom ChangeMode = iota
	ModeMultiply
	ModeAdd
	ModeDowngrade
	ModeUpgrade
	ModeOverride
)

// Change mutates one key of the owning document when the effect resolves.
type Change struct {
	Key      string     `json:"key"`
	Mode     ChangeMode `json:"mode"`
	Value    string     `json:"value"`
	Priority int        `json:"priority,omitempty"`
}

// Duration bounds an effect; the zero value is open-ended.
type Duration struct {
	Seconds int `json:"seconds,omitempty"`
	Rounds  int `json:"rounds,omitempty"`
	Turns   int `json:"turns,omitempty"`
}

// IsOpenEnded reports whether no bound was set.
func (d Duration) IsOpenEnded() bool {
	return d == Duration{}
}

// Effect is a behavioral annotation attached to an entity.
type Effect struct {
	ID       string   `json:"_id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon,omitempty"`
	Changes  []Change `json:"changes"`
	Duration Duration `json:"duration"`
	Transfer bool     `json:"transfer"`
	Disabled bool     `json:"disabled"`
	Origin   string   `json:"origin,omitempty"`
	Flags    Flags    `json:"flags,omitempty"`
}

const originNameFlag = "ddbimporter.originName"

// OriginName is the name of the document the effect was built from.
func (e *Effect) OriginName() string {
	return e.Flags.GetString(originNameFlag)
}

// SetOriginName records provenance.
func (e *Effect) SetOriginName(name string) {
	if e.Flags == nil {
		e.Flags = Flags{}
	}
	e.Flags.Set(originNameFlag, name)
}

// AddChanges appends changes in order.
func (e *Effect) AddChanges(changes ...Change) {
	e.Changes = append(e.Changes, changes...)
}

// Clone returns a deep copy.
func (e *Effect) Clone() *Effect {
	if e == nil {
		return nil
	}
	out := *e
	if e.Changes != nil {
		out.Changes = make([]Change, len(e.Changes))
		copy(out.Changes, e.Changes)
	}
	out.Flags = e.Flags.Clone()
	return &out
}
