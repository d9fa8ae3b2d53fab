package analysis

// Status is the lifecycle of a task handle.
type Status int

const (
	Pending Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Task is the handle for one analysis call.
type Task struct {
	Key    Key
	Status Status
	Value  Content
	Err    error
}

// NewTask returns a pending task for k.
func NewTask(k Key) Task {
	return Task{Key: k}
}

// Settle resolves t with the outcome of its call.
func (t Task) Settle(v Content, err error) Task {
	if err != nil {
		t.Status = Failed
		t.Err = err
		return t
	}
	t.Status = Succeeded
	t.Value = v
	return t
}

// Policy decides what a failed task writes into the results.
type Policy int

const (
	// Placeholder writes FailedContent() over the previous content.
	Placeholder Policy = iota
	// KeepPrevious leaves the previous content in place.
	KeepPrevious
)

// Board is the pair of records an orchestrator mutates.
type Board struct {
	Results Results
	Loading Loading
}

// NewBoard returns a board at defaults.
func NewBoard() *Board {
	return &Board{Results: NewResults(), Loading: NewLoading()}
}

// Begin marks keys as in flight.
func (b *Board) Begin(keys ...Key) {
	for _, k := range keys {
		b.Loading[k] = true
	}
}

// Release clears the in-flight flag of keys.
func (b *Board) Release(keys ...Key) {
	for _, k := range keys {
		b.Loading[k] = false
	}
}

// Settle folds a resolved task into the board and clears its flag. Pending
// tasks are ignored.
func (b *Board) Settle(t Task, p Policy) {
	switch t.Status {
	case Succeeded:
		v := t.Value
		if v.Sources == nil {
			v.Sources = []Citation{}
		}
		b.Results[t.Key] = v
	case Failed:
		if p == Placeholder {
			b.Results[t.Key] = FailedContent()
		}
	default:
		return
	}
	b.Loading[t.Key] = false
}

// ResetLoading clears every in-flight flag.
func (b *Board) ResetLoading() {
	b.Loading = NewLoading()
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	return &Board{Results: b.Results.Clone(), Loading: b.Loading.Clone()}
}
