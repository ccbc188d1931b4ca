package retention

import (
	"sort"

	"boxpull/internal/share"
)

// Plan is the retention decision for one catalog: at most one surviving
// dated report, the losing reports, and every image. Entries outside those
// groups are inert and never touched.
type Plan struct {
	Keep          *share.Item
	DeleteReports []share.Item
	DeleteImages  []share.Item
}

// Empty reports whether the plan schedules no deletions.
func (p Plan) Empty() bool {
	return len(p.DeleteReports) == 0 && len(p.DeleteImages) == 0
}

// Deletions returns the planned delete sets in a stable order: losing
// reports first, then images.
func (p Plan) Deletions() []share.Item {
	out := make([]share.Item, 0, len(p.DeleteReports)+len(p.DeleteImages))
	out = append(out, p.DeleteReports...)
	out = append(out, p.DeleteImages...)
	return out
}

// Compute partitions the entries and selects the survivor. It is a pure
// function of the input: the keep choice depends only on the embedded report
// dates (ties broken by first-seen order), never on discovery order, and
// images are always deleted regardless of their dates or co-location.
func Compute(items []share.Item) Plan {
	var plan Plan
	var reports []share.Item
	for _, item := range items {
		switch {
		case item.HasDate:
			reports = append(reports, item)
		case item.IsImage():
			plan.DeleteImages = append(plan.DeleteImages, item)
		}
	}

	switch len(reports) {
	case 0:
	case 1:
		keep := reports[0]
		plan.Keep = &keep
	default:
		// Stable sort keeps first-seen order among equal dates.
		sort.SliceStable(reports, func(a, b int) bool {
			return reports[a].ReportDate.After(reports[b].ReportDate)
		})
		keep := reports[0]
		plan.Keep = &keep
		plan.DeleteReports = append(plan.DeleteReports, reports[1:]...)
	}
	return plan
}
