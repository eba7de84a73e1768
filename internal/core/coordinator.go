package core

import "slices"

// LoadStatus is the state of the session's single record fetch.
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// ViewState aggregates every user-controlled view parameter.
// It references records by value and never owns the Store.
type ViewState struct {
	Filter    FilterCriteria
	Sort      SortSpec
	Page      PageState
	Layout    ColumnLayout
	Selection Selection
}

// NewViewState returns the session-start defaults.
func NewViewState() ViewState {
	return ViewState{
		Page:   NewPageState(),
		Layout: NewColumnLayout(),
	}
}

// View is the snapshot handed to the rendering layer.
type View struct {
	Status    LoadStatus        `json:"status"`
	Error     *UserMessage      `json:"error,omitempty"`
	Rows      []Record          `json:"rows"`
	Page      int               `json:"page"`
	PageCount int               `json:"pageCount"`
	PageSize  int               `json:"pageSize"`
	Total     int               `json:"total"`
	Loaded    int               `json:"loaded"`
	Filter    FilterCriteria    `json:"filter"`
	Sort      SortSpec          `json:"sort"`
	Widths    map[ColumnKey]int `json:"widths"`
	Resize    Resize            `json:"resize"`
	Selected  *Record           `json:"selected,omitempty"`
}

// Coordinator composes Filter -> Sort -> Paginate over one Store and
// exposes the handlers that mutate the view state.
//
// Handlers report whether they changed anything. They are inert until the
// records are loaded, and misuse (resizing without a drag, selecting an
// unknown id, ...) is a silent no-op. A Coordinator is not safe for
// concurrent use; callers serialise events per session.
type Coordinator struct {
	status  LoadStatus
	message *UserMessage
	store   *Store
	state   ViewState

	sorted []Record
	page   []Record

	// stage run counters, used to verify which stages an event re-runs
	filterRuns   int
	paginateRuns int
}

// NewCoordinator returns a coordinator waiting for its first load.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		status: StatusLoading,
		state:  NewViewState(),
	}
}

// Status returns the load status.
func (c *Coordinator) Status() LoadStatus {
	return c.status
}

func (c *Coordinator) ready() bool {
	return c.status == StatusReady
}

// Loaded completes a pending load with records. It is ignored unless a
// load is pending.
func (c *Coordinator) Loaded(records []Record) bool {
	if c.status != StatusLoading {
		return false
	}
	c.store = NewStore(records)
	c.status = StatusReady
	c.message = nil
	c.recompute()
	return true
}

// Failed completes a pending load with an error. The mapped message is
// terminal until Reload.
func (c *Coordinator) Failed(err error) bool {
	if c.status != StatusLoading {
		return false
	}
	msg := MapError(err)
	if msg.Code == "" {
		msg = defaultMessage
	}
	c.status = StatusFailed
	c.message = &msg
	c.store = nil
	c.sorted, c.page = nil, nil
	return true
}

// Reload discards the Store and waits for a new load. Filter, sort, page
// and column widths survive; the selection and any drag do not.
func (c *Coordinator) Reload() bool {
	if c.status == StatusLoading {
		return false
	}
	c.status = StatusLoading
	c.message = nil
	c.store = nil
	c.sorted, c.page = nil, nil
	c.state.Selection = c.state.Selection.Dismiss()
	c.state.Layout.EndResize()
	return true
}

// recompute re-runs every stage. The page is clamped into range so a
// shrinking result never leaves the user past the last page.
func (c *Coordinator) recompute() {
	c.filterRuns++
	c.sorted = Sort(Filter(c.store.Records(), c.state.Filter), c.state.Sort)
	c.state.Page = c.state.Page.Clamp(len(c.sorted))
	c.paginate()
}

func (c *Coordinator) paginate() {
	c.paginateRuns++
	c.page = Paginate(c.sorted, c.state.Page)
}

// SetFilter replaces all filter criteria at once.
func (c *Coordinator) SetFilter(f FilterCriteria) bool {
	if !c.ready() {
		return false
	}
	c.state.Filter = f
	c.recompute()
	return true
}

// SetNameFilter sets the name substring query.
func (c *Coordinator) SetNameFilter(q string) bool {
	f := c.state.Filter
	f.Name = q
	return c.SetFilter(f)
}

// SetGenderFilter sets the gender constraint; the empty Gender clears it.
func (c *Coordinator) SetGenderFilter(g Gender) bool {
	f := c.state.Filter
	f.Gender = g
	return c.SetFilter(f)
}

// SetCityFilter sets the city substring query.
func (c *Coordinator) SetCityFilter(q string) bool {
	f := c.state.Filter
	f.City = q
	return c.SetFilter(f)
}

// ToggleSort advances the sort cycle for field.
func (c *Coordinator) ToggleSort(field SortField) bool {
	if !c.ready() {
		return false
	}
	c.state.Sort = c.state.Sort.Toggle(field)
	c.recompute()
	return true
}

// SetPage jumps to page n, clamped into [1, pageCount].
func (c *Coordinator) SetPage(n int) bool {
	if !c.ready() {
		return false
	}
	c.state.Page.Current = n
	c.state.Page = c.state.Page.Clamp(len(c.sorted))
	c.paginate()
	return true
}

// NextPage moves forward one page, stopping at the last page.
func (c *Coordinator) NextPage() bool {
	if !c.ready() {
		return false
	}
	c.state.Page = c.state.Page.Next(len(c.sorted))
	c.paginate()
	return true
}

// PrevPage moves back one page, stopping at page 1.
func (c *Coordinator) PrevPage() bool {
	if !c.ready() {
		return false
	}
	c.state.Page = c.state.Page.Prev()
	c.paginate()
	return true
}

// BeginResize starts a column drag at pointer position x.
func (c *Coordinator) BeginResize(k ColumnKey, x int) bool {
	if !c.ready() {
		return false
	}
	return c.state.Layout.BeginResize(k, x)
}

// UpdateResize moves the active drag to pointer position x.
func (c *Coordinator) UpdateResize(x int) bool {
	if !c.ready() {
		return false
	}
	return c.state.Layout.UpdateResize(x)
}

// EndResize finishes the active drag wherever the pointer is.
func (c *Coordinator) EndResize() bool {
	return c.state.Layout.EndResize()
}

// SelectRecord shows the record with the given id in the detail view,
// replacing any prior selection.
func (c *Coordinator) SelectRecord(id int) bool {
	if !c.ready() {
		return false
	}
	r, ok := c.store.Lookup(id)
	if !ok {
		return false
	}
	c.state.Selection = c.state.Selection.Select(r)
	return true
}

// DismissSelection closes the detail view.
func (c *Coordinator) DismissSelection() bool {
	if c.state.Selection.Empty() {
		return false
	}
	c.state.Selection = c.state.Selection.Dismiss()
	return true
}

// State returns the current view state. The layout is copied so callers
// cannot mutate the coordinator's widths.
func (c *Coordinator) State() ViewState {
	s := c.state
	s.Layout = ColumnLayout{widths: c.state.Layout.Widths(), drag: c.state.Layout.Drag()}
	return s
}

// Sorted returns a copy of the full filtered and sorted sequence.
func (c *Coordinator) Sorted() []Record {
	return slices.Clone(c.sorted)
}

// View returns a snapshot of everything the renderer needs.
func (c *Coordinator) View() View {
	v := View{
		Status:    c.status,
		Rows:      slices.Clone(c.page),
		Page:      c.state.Page.Current,
		PageCount: PageCount(len(c.sorted), c.state.Page.size()),
		PageSize:  c.state.Page.size(),
		Total:     len(c.sorted),
		Loaded:    c.store.Len(),
		Filter:    c.state.Filter,
		Sort:      c.state.Sort,
		Widths:    c.state.Layout.Widths(),
		Resize:    c.state.Layout.Drag(),
	}
	if v.Rows == nil {
		v.Rows = []Record{}
	}
	if c.message != nil {
		msg := *c.message
		v.Error = &msg
	}
	if r, ok := c.state.Selection.Record(); ok {
		v.Selected = &r
	}
	return v
}
