// Package anki defines the entities of Anki's .apkg exchange format:
// the schema-11 database rows, the JSON blobs stored in the collection
// row, and the numeric constants of the card state machine. Field names
// and JSON key names are part of the wire contract; third-party readers
// validate against them, so nothing here may be renamed.
package anki

// FieldSeparator joins note fields inside the flds column.
const FieldSeparator = "\x1f"

// DeckSeparator joins deck name segments ("Anatomy::Heart").
const DeckSeparator = "::"

// SchemaVersion is the collection schema this package reads and writes.
const SchemaVersion = 11

// DatabaseEntryName is the fixed name of the database inside a .apkg.
const DatabaseEntryName = "collection.anki2"

// Card lifecycle types (cards.type column).
const (
	CardTypeNew        = 0
	CardTypeLearning   = 1
	CardTypeReview     = 2
	CardTypeRelearning = 3
)

// Card queues (cards.queue column).
const (
	QueueSuspended = -1
	QueueNew       = 0
	QueueLearning  = 1
	QueueReview    = 2
)

// Model kinds (model JSON "type" key).
const (
	ModelKindStandard = 0
	ModelKindCloze    = 1
)

// Review log types (revlog.type column).
const (
	RevlogLearning   = 0
	RevlogReview     = 1
	RevlogRelearning = 2
	RevlogFiltered   = 3
)

// Note is a row of the notes table, in column order.
type Note struct {
	ID       int64  `db:"id"`
	GUID     string `db:"guid"`
	ModelID  int64  `db:"mid"`
	Modified int64  `db:"mod"`
	USN      int    `db:"usn"`
	Tags     string `db:"tags"`
	Fields   string `db:"flds"`
	SortFld  string `db:"sfld"`
	Checksum int64  `db:"csum"`
	Flags    int    `db:"flags"`
	Data     string `db:"data"`
}

// Card is a row of the cards table, in column order.
type Card struct {
	ID       int64  `db:"id"`
	NoteID   int64  `db:"nid"`
	DeckID   int64  `db:"did"`
	Ordinal  int    `db:"ord"`
	Modified int64  `db:"mod"`
	USN      int    `db:"usn"`
	Type     int    `db:"type"`
	Queue    int    `db:"queue"`
	Due      int64  `db:"due"`
	Interval int    `db:"ivl"`
	Factor   int    `db:"factor"`
	Reps     int    `db:"reps"`
	Lapses   int    `db:"lapses"`
	Left     int    `db:"left"`
	OrigDue  int64  `db:"odue"`
	OrigDeck int64  `db:"odid"`
	Flags    int    `db:"flags"`
	Data     string `db:"data"`
}

// CardData is the JSON held in cards.data for FSRS-scheduled cards.
type CardData struct {
	Stability  float64 `json:"s,omitempty"`
	Difficulty float64 `json:"d,omitempty"`
	// DesiredRetention echoes the deck's retention at scheduling time.
	DesiredRetention float64 `json:"dr,omitempty"`
}

// Revlog is a row of the revlog table, in column order. ID doubles as the
// review timestamp in milliseconds.
type Revlog struct {
	ID           int64 `db:"id"`
	CardID       int64 `db:"cid"`
	USN          int   `db:"usn"`
	Ease         int   `db:"ease"`
	Interval     int   `db:"ivl"`
	LastInterval int   `db:"lastIvl"`
	Factor       int   `db:"factor"`
	TakenMillis  int64 `db:"time"`
	Type         int   `db:"type"`
}

// ModelField is a field definition inside a model.
type ModelField struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
	Media  []any  `json:"media"`
}

// ModelTemplate is a card template inside a model.
type ModelTemplate struct {
	Name           string `json:"name"`
	Ord            int    `json:"ord"`
	QuestionFormat string `json:"qfmt"`
	AnswerFormat   string `json:"afmt"`
	BrowserQFormat string `json:"bqfmt"`
	BrowserAFormat string `json:"bafmt"`
	DeckOverride   *int64 `json:"did"`
}

// Model is a note type: a field/template schema shared by many notes.
type Model struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Kind      int             `json:"type"`
	Modified  int64           `json:"mod"`
	USN       int             `json:"usn"`
	SortField int             `json:"sortf"`
	DeckID    *int64          `json:"did"`
	Templates []ModelTemplate `json:"tmpls"`
	Fields    []ModelField    `json:"flds"`
	CSS       string          `json:"css"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	LatexSVG  bool            `json:"latexsvg"`
	Req       []any           `json:"req"`
	Tags      []string        `json:"tags"`
}

// FieldNames returns the model's field names in ordinal order.
func (m Model) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// Deck is a hierarchical named bucket of cards.
type Deck struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Modified         int64   `json:"mod"`
	USN              int     `json:"usn"`
	LearnToday       []int   `json:"lrnToday"`
	ReviewToday      []int   `json:"revToday"`
	NewToday         []int   `json:"newToday"`
	TimeToday        []int   `json:"timeToday"`
	Collapsed        bool    `json:"collapsed"`
	BrowserCollapsed bool    `json:"browserCollapsed"`
	Description      string  `json:"desc"`
	Dynamic          int     `json:"dyn"`
	ConfigID         int64   `json:"conf"`
	ExtendNew        int     `json:"extendNew"`
	ExtendRev        int     `json:"extendRev"`
}

// DeckConfigNew holds new-card options of a deck config group.
type DeckConfigNew struct {
	Bury          bool      `json:"bury"`
	Delays        []float64 `json:"delays"`
	InitialFactor int       `json:"initialFactor"`
	Intervals     []int     `json:"ints"`
	Order         int       `json:"order"`
	PerDay        int       `json:"perDay"`
}

// DeckConfigRev holds review options of a deck config group.
type DeckConfigRev struct {
	Bury           bool    `json:"bury"`
	Ease4          float64 `json:"ease4"`
	IntervalFactor float64 `json:"ivlFct"`
	MaxInterval    int     `json:"maxIvl"`
	PerDay         int     `json:"perDay"`
	HardFactor     float64 `json:"hardFactor"`
}

// DeckConfigLapse holds lapse options of a deck config group.
type DeckConfigLapse struct {
	Delays      []float64 `json:"delays"`
	LeechAction int       `json:"leechAction"`
	LeechFails  int       `json:"leechFails"`
	MinInterval int       `json:"minInt"`
	Multiplier  float64   `json:"mult"`
}

// DeckConfig is a deck option group, including the FSRS parameters the
// scheduler persists per config. Only the slot matching the scheduler
// version in use is populated; the other slots hold empty arrays so the
// target's config parser attributes the collection to the right version.
type DeckConfig struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Modified         int64           `json:"mod"`
	USN              int             `json:"usn"`
	MaxTaken         int             `json:"maxTaken"`
	Autoplay         bool            `json:"autoplay"`
	Timer            int             `json:"timer"`
	ReplayQuestion   bool            `json:"replayq"`
	New              DeckConfigNew   `json:"new"`
	Rev              DeckConfigRev   `json:"rev"`
	Lapse            DeckConfigLapse `json:"lapse"`
	Dynamic          int             `json:"dyn"`
	FSRSWeights      []float64       `json:"fsrsWeights"`
	FSRSParams5      []float64       `json:"fsrsParams5"`
	FSRSParams6      []float64       `json:"fsrsParams6"`
	DesiredRetention float64         `json:"desiredRetention"`
}

// CollectionConf is the col.conf JSON blob.
type CollectionConf struct {
	NextPos       int     `json:"nextPos"`
	EstTimes      bool    `json:"estTimes"`
	ActiveDecks   []int64 `json:"activeDecks"`
	SortType      string  `json:"sortType"`
	TimeLimit     int     `json:"timeLim"`
	SortBackwards bool    `json:"sortBackwards"`
	AddToCurrent  bool    `json:"addToCur"`
	CurrentDeck   int64   `json:"curDeck"`
	NewBury       bool    `json:"newBury"`
	NewSpread     int     `json:"newSpread"`
	DueCounts     bool    `json:"dueCounts"`
	CurrentModel  int64   `json:"curModel"`
	CollapseTime  int     `json:"collapseTime"`
	SchedulerVer  int     `json:"schedVer"`
	DayLearnFirst bool    `json:"dayLearnFirst"`
}
