package core

import (
	"errors"
	"slices"
	"testing"
)

func readyCoordinator(t *testing.T, records []Record) *Coordinator {
	t.Helper()
	c := NewCoordinator()
	if !c.Loaded(records) {
		t.Fatal("Loaded on a pending coordinator should succeed")
	}
	return c
}

func TestCoordinator_HandlersInertWhileLoading(t *testing.T) {
	c := NewCoordinator()

	calls := map[string]bool{
		"SetNameFilter": c.SetNameFilter("x"),
		"ToggleSort":    c.ToggleSort(SortAge),
		"SetPage":       c.SetPage(2),
		"NextPage":      c.NextPage(),
		"BeginResize":   c.BeginResize(ColAge, 10),
		"UpdateResize":  c.UpdateResize(20),
		"SelectRecord":  c.SelectRecord(1),
	}
	for name, changed := range calls {
		if changed {
			t.Errorf("%s changed state while loading", name)
		}
	}

	v := c.View()
	if v.Status != StatusLoading {
		t.Errorf("Status = %q, want loading", v.Status)
	}
	if v.Page != 1 || v.PageCount != 1 || len(v.Rows) != 0 {
		t.Errorf("loading view = page %d/%d rows %d, want 1/1 and no rows", v.Page, v.PageCount, len(v.Rows))
	}
	if v.Filter.Name != "" || v.Sort.Active() {
		t.Errorf("inert handlers leaked state: %+v %+v", v.Filter, v.Sort)
	}
}

func TestCoordinator_LoadFailureIsTerminal(t *testing.T) {
	c := NewCoordinator()
	c.Failed(errors.New("upstream returned status 500"))

	v := c.View()
	if v.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", v.Status)
	}
	if v.Error == nil || v.Error.Code != "LOAD001" {
		t.Fatalf("Error = %+v, want LOAD001", v.Error)
	}
	if c.Loaded(people(3)) {
		t.Error("Loaded after failure should be ignored")
	}
	if c.SetCityFilter("x") {
		t.Error("handlers should stay inert after failure")
	}

	if !c.Reload() {
		t.Fatal("Reload after failure should restart loading")
	}
	if !c.Loaded(people(3)) {
		t.Fatal("Loaded after Reload should succeed")
	}
	if got := c.View(); got.Status != StatusReady || got.Error != nil {
		t.Errorf("view after reload = %q %+v", got.Status, got.Error)
	}
}

func TestCoordinator_MoscowByAgeScenario(t *testing.T) {
	records := people(100)
	records[10].Address.City = "Moscow"
	records[10].Age = 44
	records[40].Address.City = "Moscow"
	records[40].Age = 29
	records[70].Address.City = "Moscow"
	records[70].Age = 29

	c := readyCoordinator(t, records)
	c.SetCityFilter("Moscow")
	c.ToggleSort(SortAge)

	v := c.View()
	if v.Total != 3 {
		t.Fatalf("Total = %d, want 3", v.Total)
	}
	want := []int{41, 71, 11}
	if !slices.Equal(ids(v.Rows), want) {
		t.Errorf("rows = %v, want %v", ids(v.Rows), want)
	}
}

func TestCoordinator_PageCountAndLastPage(t *testing.T) {
	c := readyCoordinator(t, people(42))

	c.SetPage(3)
	v := c.View()
	if v.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", v.PageCount)
	}
	if len(v.Rows) != 12 {
		t.Errorf("page 3 has %d rows, want 12", len(v.Rows))
	}

	c.NextPage()
	if got := c.View().Page; got != 3 {
		t.Errorf("NextPage past end = %d, want 3", got)
	}
	c.SetPage(99)
	if got := c.View().Page; got != 3 {
		t.Errorf("SetPage(99) = %d, want 3", got)
	}
	c.SetPage(-4)
	if got := c.View().Page; got != 1 {
		t.Errorf("SetPage(-4) = %d, want 1", got)
	}
}

func TestCoordinator_ShrinkingFilterClampsPage(t *testing.T) {
	c := readyCoordinator(t, people(42))
	c.SetPage(3)

	// ids 1..42 alternate gender; 21 females fit on two pages
	c.SetGenderFilter(GenderFemale)
	v := c.View()
	if v.Page != 2 || v.PageCount != 2 {
		t.Errorf("page = %d/%d, want 2/2", v.Page, v.PageCount)
	}
	if len(v.Rows) != 6 {
		t.Errorf("rows = %d, want 6", len(v.Rows))
	}

	c.SetNameFilter("no such person")
	v = c.View()
	if v.Page != 1 || v.PageCount != 1 || len(v.Rows) != 0 {
		t.Errorf("empty result view = page %d/%d rows %d", v.Page, v.PageCount, len(v.Rows))
	}
}

func TestCoordinator_InBoundsPageSurvivesFilter(t *testing.T) {
	c := readyCoordinator(t, people(60))
	c.SetPage(2)
	c.SetGenderFilter(GenderMale)

	if got := c.View().Page; got != 2 {
		t.Errorf("page = %d, want 2", got)
	}
}

func TestCoordinator_StageRecomputation(t *testing.T) {
	c := readyCoordinator(t, people(40))
	filterRuns, paginateRuns := c.filterRuns, c.paginateRuns

	c.NextPage()
	if c.filterRuns != filterRuns {
		t.Error("page change must not re-run filter/sort")
	}
	if c.paginateRuns != paginateRuns+1 {
		t.Error("page change must re-run paginate")
	}

	c.SelectRecord(3)
	c.DismissSelection()
	c.BeginResize(ColAge, 0)
	c.UpdateResize(20)
	c.EndResize()
	if c.filterRuns != filterRuns || c.paginateRuns != paginateRuns+1 {
		t.Error("selection and layout changes must not re-run any stage")
	}

	c.ToggleSort(SortName)
	c.SetCityFilter("kaz")
	if c.filterRuns != filterRuns+2 {
		t.Errorf("filterRuns = %d, want %d", c.filterRuns, filterRuns+2)
	}
}

func TestCoordinator_ToggleSortCycle(t *testing.T) {
	c := readyCoordinator(t, people(5))

	c.ToggleSort(SortAge)
	c.ToggleSort(SortAge)
	if got := c.View().Sort; got != (SortSpec{SortAge, DirDesc}) {
		t.Fatalf("after two toggles sort = %+v", got)
	}
	if got := ids(c.View().Rows); !slices.Equal(got, []int{5, 4, 3, 2, 1}) {
		t.Errorf("age desc rows = %v", got)
	}

	c.ToggleSort(SortAge)
	v := c.View()
	if v.Sort.Active() {
		t.Errorf("after three toggles sort = %+v, want none", v.Sort)
	}
	if !slices.Equal(ids(v.Rows), []int{1, 2, 3, 4, 5}) {
		t.Errorf("unsorted rows = %v, want load order", ids(v.Rows))
	}
}

func TestCoordinator_SelectionScenario(t *testing.T) {
	c := readyCoordinator(t, people(20))

	if !c.SelectRecord(7) {
		t.Fatal("SelectRecord(7) should succeed")
	}
	if v := c.View(); v.Selected == nil || v.Selected.ID != 7 {
		t.Fatalf("Selected = %+v, want id 7", v.Selected)
	}

	c.DismissSelection()
	if c.View().Selected != nil {
		t.Fatal("selection should be empty after dismiss")
	}

	c.SelectRecord(9)
	c.SelectRecord(12)
	if v := c.View(); v.Selected == nil || v.Selected.ID != 12 {
		t.Errorf("Selected = %+v, want id 12", v.Selected)
	}

	if c.SelectRecord(999) {
		t.Error("unknown id should be ignored")
	}
	if v := c.View(); v.Selected.ID != 12 {
		t.Errorf("unknown id replaced selection with %d", v.Selected.ID)
	}
}

func TestCoordinator_ReloadClearsSelectionKeepsView(t *testing.T) {
	c := readyCoordinator(t, people(30))
	c.SetCityFilter("kazan")
	c.ToggleSort(SortAge)
	c.BeginResize(ColName, 0)
	c.UpdateResize(-30)
	c.EndResize()
	c.SelectRecord(4)
	c.BeginResize(ColAge, 0)

	if !c.Reload() {
		t.Fatal("Reload should succeed when ready")
	}
	if c.Reload() {
		t.Error("Reload while loading should be ignored")
	}

	v := c.View()
	if v.Selected != nil {
		t.Error("selection must not survive a reload")
	}
	if v.Resize.Active {
		t.Error("drag must not survive a reload")
	}
	if v.Filter.City != "kazan" || v.Sort != (SortSpec{SortAge, DirAsc}) {
		t.Errorf("view parameters lost: %+v %+v", v.Filter, v.Sort)
	}
	if v.Widths[ColName] != defaultWidths[ColName]-30 {
		t.Errorf("name width = %d, want %d", v.Widths[ColName], defaultWidths[ColName]-30)
	}

	c.Loaded(people(30))
	if got := c.View().Total; got != 30 {
		t.Errorf("Total after reload = %d, want 30", got)
	}
}

func TestCoordinator_ViewIsSnapshot(t *testing.T) {
	c := readyCoordinator(t, people(3))
	v := c.View()
	v.Rows[0].FirstName = "changed"
	v.Widths[ColAge] = 1

	again := c.View()
	if again.Rows[0].FirstName == "changed" {
		t.Error("View rows alias coordinator state")
	}
	if again.Widths[ColAge] == 1 {
		t.Error("View widths alias coordinator state")
	}
}

func TestCoordinator_SortedReturnsFullSequence(t *testing.T) {
	c := readyCoordinator(t, people(40))
	c.SetGenderFilter(GenderMale)
	c.ToggleSort(SortAge)
	c.ToggleSort(SortAge)

	got := c.Sorted()
	if len(got) != 20 {
		t.Fatalf("Sorted() has %d records, want 20", len(got))
	}
	if got[0].ID != 39 || got[19].ID != 1 {
		t.Errorf("Sorted() = first %d last %d, want 39 and 1", got[0].ID, got[19].ID)
	}
}
