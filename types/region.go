package types

// Region is one hit-testable area of the viewer chrome.
// The set is closed; RegionCount sizes per-region tables.
type Region int

const (
	RegionNone Region = iota
	RegionLeftNav
	RegionRightNav
	RegionClose
	RegionHeader
	RegionName
	RegionDate
	RegionSave
	RegionMore
	RegionIcon

	RegionCount
)

var regionNames = [RegionCount]string{
	RegionNone:     "none",
	RegionLeftNav:  "left_nav",
	RegionRightNav: "right_nav",
	RegionClose:    "close",
	RegionHeader:   "header",
	RegionName:     "name",
	RegionDate:     "date",
	RegionSave:     "save",
	RegionMore:     "more",
	RegionIcon:     "icon",
}

func (r Region) String() string {
	if r < 0 || r >= RegionCount {
		return "unknown"
	}
	return regionNames[r]
}

// Interactive reports whether the region is a control rather than passive text.
func (r Region) Interactive() bool {
	switch r {
	case RegionLeftNav, RegionRightNav, RegionClose, RegionSave, RegionMore, RegionIcon:
		return true
	}
	return false
}
