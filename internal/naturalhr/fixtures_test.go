package naturalhr

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const timesheetIndexHTML = `<html><body><table>
<tr><th>Week</th><th>Submitted</th><th>Hours</th><th>Status</th><th></th></tr>
<tr><td>16/02/2026</td><td>20/02/2026</td><td>40h 0m</td><td>Approved</td>
  <td><a href="/hr/self-service/timesheets/timesheet-view?id=1">View</a></td></tr>
<tr><td>23/02/2026</td><td>-</td><td>40h 0m</td><td>Draft</td>
  <td><a href="/hr/self-service/timesheets/timesheet-view?id=2">View</a>
      <a href="/hr/self-service/timesheets/timesheet-confirm?id=2">Confirm</a>
      <a href="#">Print</a></td></tr>
<tr><td>09/02/2026</td><td>13/02/2026</td><td>40h 0m</td><td>Approved</td>
  <td><a href="/hr/self-service/timesheets/timesheet-view?id=0">View</a></td></tr>
<tr><td colspan="5">No more timesheets</td></tr>
</table></body></html>`

const approvedWeekHTML = `<html><body><table>
<tr><th>Date</th><th>Start</th><th>End</th><th>Breaks</th><th>Reference</th><th>Comments</th></tr>
<tr><td>16/02/2026</td><td>09:00</td><td>18:00</td><td>60</td><td>Quidco BAU</td><td>stuff</td></tr>
<tr><td>20/02/2026</td><td>09:00</td><td>17:00</td><td>60</td><td>Quidco BAU</td><td></td></tr>
<tr><td colspan="6">Total 40h 0m</td></tr>
</table></body></html>`

const draftWeekHTML = `<html><body><table>
<tr><th>Date</th><th>Start</th><th>End</th><th>Breaks</th><th>Reference</th></tr>
<tr><td>23/02/2026</td><td>09:00</td><td>18:00</td><td>60</td><td>V3 BAU</td></tr>
</table></body></html>`

const timesheetAddHTML = `<html><body><form>
<select id="reference" name="reference">
  <option value="">Please select</option>
  <option value="Quidco BAU">Quidco BAU</option>
  <option value="V3 BAU">V3 BAU</option>
  <option value="Holiday">Holiday</option>
</select></form></body></html>`

const timeOffHTML = `<html><body><table>
<tr><th colspan="7">My time off</th></tr>
<tr><th>Type</th><th>Start</th><th>End</th><th>Days</th><th></th><th>Approved</th><th>State</th></tr>
<tr><td>Home Emergency</td><td>02/03/2026</td><td>03/03/2026</td><td>2</td><td>days</td><td>Approved</td><td>Taken</td></tr>
<tr><td>Working From Home</td><td>10/03/2026</td><td>10/03/2026</td><td>1</td><td>days</td><td>Declined</td><td>Jane Manager</td></tr>
<tr><td>Short row</td></tr>
</table></body></html>`

const timeOffAddHTML = `<html><body><form>
<input type="hidden" name="emp_id" value="4711">
<input type="text" name="start_date">
</form></body></html>`

const workflowHTML = `<html><body>
<div class="sidebar"><div class="media-body"><a href="/hr/elsewhere">Not pending</a></div></div>
<div class="content">
  <div class="media"><div class="media-body">
    <a href="/hr/workflow/timesheet-approve?id=9">Jane Doe</a> timesheet for 23/02/2026
  </div></div>
  <div class="media"><div class="media-body">
    <a href="/hr/profile/3">John Smith</a> requested working from home 05/03/2026
    <a href="/hr/workflow/time-off-approve?id=4">Review</a>
  </div></div>
  <div class="media"><div class="media-body">Broken item without links</div></div>
</div></body></html>`

const timesheetApproveHTML = `<html><body><form method="post">
<input type="hidden" name="wb" value="23/02/2026">
<input type="hidden" name="weekTotal" value="144000">
<input type="hidden" name="emp_id" value="12">
<textarea name="mgr_comments"></textarea>
<input type="submit" name="approve" value="Approve">
</form></body></html>`

const wfhApproveHTML = `<html><body><form method="post">
<input type="hidden" name="id" value="4">
<input type="radio" name="status" value="approve" checked>
<input type="radio" name="status" value="decline">
<input type="text" name="comments" value="please">
</form></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// fakePortal serves the fixture pages and records form posts.
type fakePortal struct {
	t      *testing.T
	cookie string

	mu    sync.Mutex
	posts []post
}

type post struct {
	Path   string
	Origin string
	Fields map[string]string
}

func newFakePortal(t *testing.T, cookie string) (*fakePortal, *httptest.Server) {
	fp := &fakePortal{t: t, cookie: cookie}
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)
	return fp, srv
}

var portalPages = map[string]string{
	"/hr/":                                      "<html><body>Dashboard</body></html>",
	"/hr/self-service/timesheets/index":         timesheetIndexHTML,
	"/hr/self-service/timesheets/timesheet-add": timesheetAddHTML,
	"/hr/self-service/time-off":                 timeOffHTML,
	"/hr/self-service/time-off-add":             timeOffAddHTML,
	"/hr/workflow-view":                         workflowHTML,
	"/hr/workflow/timesheet-approve":            timesheetApproveHTML,
	"/hr/workflow/time-off-approve":             wfhApproveHTML,
}

func (fp *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/hr/login" {
		_, _ = io.WriteString(w, "<html><body>Please log in</body></html>")
		return
	}
	c, err := r.Cookie("PHPSESSID")
	if err != nil || c.Value != fp.cookie {
		http.Redirect(w, r, "/hr/login", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fp.t.Errorf("POST %s is not multipart: %v", r.URL.Path, err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		fp.mu.Lock()
		fp.posts = append(fp.posts, post{Path: r.URL.Path, Origin: r.Header.Get("Origin"), Fields: fields})
		fp.mu.Unlock()
		_, _ = io.WriteString(w, "<html><body>Saved</body></html>")
		return
	}

	if r.URL.Path == "/hr/self-service/timesheets/timesheet-view" {
		switch r.URL.Query().Get("id") {
		case "1":
			_, _ = io.WriteString(w, approvedWeekHTML)
		case "2":
			_, _ = io.WriteString(w, draftWeekHTML)
		default:
			_, _ = io.WriteString(w, "<html><body><table><tr><th>Date</th></tr></table></body></html>")
		}
		return
	}
	page, ok := portalPages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = io.WriteString(w, page)
}

func (fp *fakePortal) Posts() []post {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]post(nil), fp.posts...)
}
