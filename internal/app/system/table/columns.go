package table

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/leadhub/internal/domain/models"
)

// DisplayZone is the zone timestamps are shown in.
var DisplayZone = mustZone("Asia/Seoul")

func mustZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// FormatTimestamp renders a backend timestamp. The backend sends epoch
// milliseconds as text; RFC 3339 strings are accepted too. Anything else
// is shown unchanged.
func FormatTimestamp(t models.Text) string {
	s := t.String()
	if s == "" {
		return ""
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).In(DisplayZone).Format("2006-01-02 15:04")
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.In(DisplayZone).Format("2006-01-02 15:04")
	}
	return s
}

// Preview shortens s to n runes, adding an ellipsis when cut.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

// LeadColumns is the column set of every lead screen.
var LeadColumns = []Column[models.Lead]{
	{Key: "username", Label: "이름", Format: func(l models.Lead) string { return l.Username }},
	{Key: "phonenumber", Label: "휴대폰 번호", Format: func(l models.Lead) string { return l.PhoneNumber }},
	{Key: "sms", Label: "문자", Kind: KindSMS, Format: func(l models.Lead) string {
		if l.SMS == "" {
			return ""
		}
		return "보기"
	}},
	{Key: "sex", Label: "성별", Format: func(l models.Lead) string { return l.Sex }},
	{Key: "incomepath", Label: "유입 경로", Format: func(l models.Lead) string { return l.IncomePath }},
	{Key: "creatorname", Label: "크리에이터", Format: func(l models.Lead) string { return l.CreatorName }},
	{Key: "memo", Label: "상담 기록", Kind: KindMemo, Format: func(l models.Lead) string { return Preview(l.Memo, 20) }},
	{Key: "type", Label: "DB 유형", Format: func(l models.Lead) string { return models.LeadTypeLabel(l.Type) }},
	{Key: "manager", Label: "담당자", Format: func(l models.Lead) string { return l.Manager }},
	{Key: "incomedate", Label: "유입 날짜", Format: func(l models.Lead) string { return l.IncomeDate }},
	{Key: "createdAt", Label: "DB 생성 시간", Format: func(l models.Lead) string { return FormatTimestamp(l.CreatedAt) }},
	{Key: "updatedAt", Label: "마지막 상담 시간", Format: func(l models.Lead) string { return FormatTimestamp(l.UpdatedAt) }},
	{Key: "actions", Label: "Actions", Kind: KindAction, MinLevel: 1},
}

// AccountColumns is the column set of the accounts screen.
var AccountColumns = []Column[models.Account]{
	{Key: "email", Label: "이메일", Format: func(a models.Account) string { return a.Email }},
	{Key: "username", Label: "이름", Format: func(a models.Account) string { return a.Username }},
	{Key: "firstname", Label: "First name", Format: func(a models.Account) string { return a.FirstName }},
	{Key: "lastname", Label: "Last name", Format: func(a models.Account) string { return a.LastName }},
	{Key: "status", Label: "상태", Format: func(a models.Account) string { return a.Status }},
	{Key: "referrer", Label: "책임자", Format: func(a models.Account) string {
		if a.Referrer == "" {
			return "N/A"
		}
		return a.Referrer
	}},
	{Key: "userLevel", Label: "레벨", Format: func(a models.Account) string { return a.UserLevel.String() }},
	{Key: "createdAt", Label: "Created At", Format: func(a models.Account) string { return FormatTimestamp(a.CreatedAt) }},
	{Key: "actions", Label: "Actions", Kind: KindAction, MinLevel: 3},
}
