// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/leadhub/internal/app/store/audit"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/leadhub/internal/app/system/normalize"
	"github.com/dalemusser/leadhub/internal/app/system/paging"
	"github.com/dalemusser/leadhub/internal/app/system/table"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const pageSize = paging.SizeMedium

const dateLayout = "2006-01-02"

// filterState is the filter as typed, echoed back into the form.
type filterState struct {
	Category  string
	EventType string
	Actor     string
	StartDate string
	EndDate   string
	Page      int
}

// parseFilter reads the query string. Unknown categories and event types
// and malformed dates are dropped. Dates are whole days in the display
// zone.
func parseFilter(r *http.Request) (audit.QueryFilter, filterState) {
	st := filterState{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Actor:     normalize.Email(query.Get(r, "actor")),
		StartDate: query.Get(r, "start_date"),
		EndDate:   query.Get(r, "end_date"),
		Page:      paging.ParsePage(r),
	}
	if st.Category != audit.CategoryAuth && st.Category != audit.CategoryAdmin {
		st.Category = ""
	}
	if !contains(eventTypesForCategory(st.Category), st.EventType) {
		st.EventType = ""
	}

	f := audit.QueryFilter{
		Actor:     st.Actor,
		Category:  st.Category,
		EventType: st.EventType,
		Limit:     pageSize,
		Offset:    int64(paging.Offset(st.Page, pageSize)),
	}
	if t, err := time.ParseInLocation(dateLayout, st.StartDate, table.DisplayZone); err == nil {
		f.StartTime = &t
	} else {
		st.StartDate = ""
	}
	if t, err := time.ParseInLocation(dateLayout, st.EndDate, table.DisplayZone); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	} else {
		st.EndDate = ""
	}
	return f, st
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// pageURL returns the list URL for page with the current filter.
func (st filterState) pageURL(page int) string {
	v := url.Values{}
	for k, s := range map[string]string{
		"category":   st.Category,
		"event_type": st.EventType,
		"actor":      st.Actor,
		"start_date": st.StartDate,
		"end_date":   st.EndDate,
	} {
		if s != "" {
			v.Set(k, s)
		}
	}
	v.Set("page", strconv.Itoa(page))
	return "?" + v.Encode()
}

// ServeList handles GET on the audit trail: newest events first, filtered
// by category, event type, actor and day range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, st := parseFilter(r)

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "감사 로그", navigation.PathDashboard),
		Category:   st.Category,
		EventType:  st.EventType,
		Actor:      st.Actor,
		StartDate:  st.StartDate,
		EndDate:    st.EndDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(st.Category),
		Page:       st.Page,
	}

	if h.Audit == nil {
		data.Unavailable = true
		templates.Render(w, r, "audit_list", data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events", err, "감사 로그를 불러오지 못했습니다.", navigation.PathDashboard)
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events", err, "감사 로그를 불러오지 못했습니다.", navigation.PathDashboard)
		return
	}

	for _, e := range events {
		data.Items = append(data.Items, listItem{
			At:        e.Timestamp.In(table.DisplayZone).Format("2006-01-02 15:04:05"),
			Category:  e.Category,
			EventType: e.EventType,
			Actor:     e.Actor,
			Subject:   e.Subject,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		})
	}

	data.TotalPages = paging.TotalPages(int(total), pageSize)
	data.Range = paging.ComputeRange(st.Page, pageSize, len(events), int(total))
	for _, l := range paging.Window(st.Page, data.TotalPages) {
		data.Links = append(data.Links, pageLink{Link: l, URL: st.pageURL(l.Page)})
	}
	if st.Page > 1 {
		data.PrevURL = st.pageURL(st.Page - 1)
	}
	if st.Page < data.TotalPages {
		data.NextURL = st.pageURL(st.Page + 1)
	}

	h.Log.Debug("audit log served", zap.Int64("total", total), zap.Int("page", st.Page))
	templates.Render(w, r, "audit_list", data)
}
