package naturalhr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

// The portal renders everything as positional tables, so these parsers
// address cells by index.

func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(td.Text()))
	})
	return cells
}

// links returns the navigable hrefs inside s, in document order.
func links(s *goquery.Selection) []string {
	var out []string
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		out = append(out, href)
	})
	return out
}

// dataRows returns every table row after the first (header) row.
func dataRows(doc *goquery.Document, skip int) *goquery.Selection {
	rows := doc.Find("tr")
	if rows.Length() <= skip {
		return rows.Slice(0, 0)
	}
	return rows.Slice(skip, goquery.ToEnd)
}

func parseReferences(doc *goquery.Document) []string {
	var refs []string
	doc.Find("#reference option").Each(func(i int, opt *goquery.Selection) {
		// The first option is the "please select" placeholder.
		if i == 0 {
			return
		}
		refs = append(refs, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
	})
	return refs
}

func parseTimesheets(doc *goquery.Document, status string) []model.Timesheet {
	var out []model.Timesheet
	dataRows(doc, 1).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < 4 {
			return
		}
		ts := model.Timesheet{
			Week:   cells[0],
			Hours:  cells[2],
			Status: cells[3],
			Links:  links(row),
		}
		if status == "" || ts.Status == status {
			out = append(out, ts)
		}
	})
	return out
}

func parseEntries(doc *goquery.Document, week string) []model.ScrapedEntry {
	var out []model.ScrapedEntry
	dataRows(doc, 1).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < 5 {
			return
		}
		out = append(out, model.ScrapedEntry{
			Week:      week,
			Date:      cells[0],
			Start:     cells[1],
			End:       cells[2],
			Breaks:    cells[3],
			Reference: cells[4],
		})
	})
	return out
}

// parseTimeOff reads the time-off table, whose layout varies with the request
// type, by counting words from the end of each row.
func parseTimeOff(doc *goquery.Document) ([]model.TimeOff, error) {
	var out []model.TimeOff
	var firstErr error
	dataRows(doc, 2).Each(func(_ int, row *goquery.Selection) {
		parts := strings.Fields(strings.Join(cellTexts(row), " "))

		wfh, declined := false, false
		for _, p := range parts {
			if strings.Contains(p, "Working") {
				wfh = true
			}
			if strings.Contains(p, "Declined") {
				declined = true
			}
		}
		n := 6
		if declined {
			n = 7
		}
		if len(parts) < n {
			return
		}
		tail := parts[len(parts)-n:]

		start, err := timecalc.ReformatPortalDate(tail[0])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		end, err := timecalc.ReformatPortalDate(tail[1])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}

		to := model.TimeOff{
			LeaveType: "Leave",
			StartDate: start,
			EndDate:   end,
			Days:      tail[2],
			Approved:  "Declined",
		}
		if wfh {
			to.LeaveType = "WFH"
		}
		if !declined {
			to.Approved = tail[4]
			to.State = tail[5]
		}
		out = append(out, to)
	})
	return out, firstErr
}

func parseEmployeeID(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(`input[name="emp_id"]`).First().AttrOr("value", ""))
}

// workflowSummary is one pending item on the manager's workflow page.
type workflowSummary struct {
	Link  string
	Words []string
}

func parseWorkflow(doc *goquery.Document) []workflowSummary {
	var out []workflowSummary
	doc.Find("div.content div.media-body").Each(func(_ int, item *goquery.Selection) {
		ls := links(item)
		if len(ls) == 0 {
			return
		}
		out = append(out, workflowSummary{
			Link:  ls[len(ls)-1],
			Words: strings.Fields(item.Text()),
		})
	})
	return out
}

// hiddenInputs collects the named hidden fields of a form page.
func hiddenInputs(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		if name, ok := in.Attr("name"); ok {
			fields[name] = in.AttrOr("value", "")
		}
	})
	return fields
}

// formInputs collects every named input; a checked radio overrides its
// group's other values.
func formInputs(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	inputs := doc.Find("input[name]")
	inputs.Each(func(_ int, in *goquery.Selection) {
		fields[in.AttrOr("name", "")] = in.AttrOr("value", "")
	})
	inputs.Each(func(_ int, in *goquery.Selection) {
		if strings.EqualFold(in.AttrOr("type", ""), "radio") {
			if _, checked := in.Attr("checked"); checked {
				fields[in.AttrOr("name", "")] = in.AttrOr("value", "")
			}
		}
	})
	return fields
}

// timesheetApproval builds a timesheet workflow item from the item summary
// (name surname _ _ week) and its approval page.
func timesheetApproval(sum workflowSummary, page *goquery.Document) (model.WorkflowItem, error) {
	payload := hiddenInputs(page)
	for _, f := range []string{"emp_comments", "mgr_comments", "approve"} {
		payload[f] = ""
	}
	total, err := strconv.ParseInt(strings.TrimSpace(payload["weekTotal"]), 10, 64)
	if err != nil {
		return model.WorkflowItem{}, fmt.Errorf("timesheet approval %s: bad weekTotal %q", sum.Link, payload["weekTotal"])
	}
	w := sum.Words
	return model.WorkflowItem{
		Kind:      model.WorkflowTimesheet,
		Name:      w[0] + " " + w[1],
		Week:      w[4],
		WeekTotal: total,
		Link:      sum.Link,
		Payload:   payload,
	}, nil
}

// wfhApproval builds a working-from-home workflow item. The requested date is
// the seventh word of the summary.
func wfhApproval(sum workflowSummary, page *goquery.Document) (model.WorkflowItem, error) {
	w := sum.Words
	if len(w) < 7 {
		return model.WorkflowItem{}, fmt.Errorf("unrecognised workflow item %q", strings.Join(w, " "))
	}
	payload := formInputs(page)
	for _, f := range []string{"comments", "mgr_comments", "approve"} {
		payload[f] = ""
	}
	return model.WorkflowItem{
		Kind:    model.WorkflowWFH,
		Name:    w[0] + " " + w[1],
		WFHDate: w[6],
		Link:    sum.Link,
		Payload: payload,
	}, nil
}
