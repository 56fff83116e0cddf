package editform

import (
	"html/template"
	"strconv"

	"github.com/dalemusser/leadhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/leadhub/internal/domain/models"
)

// LeastPrivilegedLevel is the highest level number an account can hold.
const LeastPrivilegedLevel = 7

// TypeChoices lists every lead category as select options.
func TypeChoices() []Choice {
	out := make([]Choice, 0, len(models.LeadTypes))
	for _, t := range models.LeadTypes {
		out = append(out, Choice{Value: t.Code, Label: t.Label})
	}
	return out
}

// ManagerChoices turns manager names into select options. The empty
// choice unassigns. A current manager missing from names is kept as an
// option so an unrelated edit does not unassign it.
func ManagerChoices(names []string, current string) []Choice {
	out := []Choice{{Value: "", Label: "미배정"}}
	for _, n := range names {
		out = append(out, Choice{Value: n, Label: n})
	}
	return withCurrent(out, current)
}

// withCurrent appends current to opts when it is not already offered.
func withCurrent(opts []Choice, current string) []Choice {
	if current == "" || hasChoice(opts, current) {
		return opts
	}
	return append(opts, Choice{Value: current, Label: current})
}

// LevelChoices lists the levels an editor at editorLevel may grant. On a
// Number field they are suggestions only.
func LevelChoices(editorLevel int) []Choice {
	if editorLevel < 1 {
		editorLevel = 1
	}
	var out []Choice
	for l := editorLevel; l <= LeastPrivilegedLevel; l++ {
		s := strconv.Itoa(l)
		out = append(out, Choice{Value: s, Label: s})
	}
	return out
}

// LeadFields is the full lead edit modal for lead l. The type and manager
// selects always offer l's current values, legacy types included.
func LeadFields(l models.Lead, managers []string) []Field[models.Lead] {
	return []Field[models.Lead]{
		{Name: "username", Label: "이름", Kind: Text,
			Get: func(l models.Lead) string { return l.Username },
			Set: func(l *models.Lead, v string) { l.Username = v }},
		{Name: "phonenumber", Label: "휴대폰 번호", Kind: Text,
			Get: func(l models.Lead) string { return l.PhoneNumber },
			Set: func(l *models.Lead, v string) { l.PhoneNumber = v }},
		{Name: "sex", Label: "성별", Kind: Text,
			Get: func(l models.Lead) string { return l.Sex },
			Set: func(l *models.Lead, v string) { l.Sex = v }},
		{Name: "incomepath", Label: "유입 경로", Kind: Text,
			Get: func(l models.Lead) string { return l.IncomePath },
			Set: func(l *models.Lead, v string) { l.IncomePath = v }},
		{Name: "memo", Label: "상담 기록", Kind: TextArea,
			Get: func(l models.Lead) string { return l.Memo },
			Set: func(l *models.Lead, v string) { l.Memo = v }},
		{Name: "type", Label: "DB 유형", Kind: Select, Options: withCurrent(TypeChoices(), l.Type),
			Get: func(l models.Lead) string { return l.Type },
			Set: func(l *models.Lead, v string) { l.Type = v }},
		{Name: "manager", Label: "담당자", Kind: Select, Options: ManagerChoices(managers, l.Manager),
			Get: func(l models.Lead) string { return l.Manager },
			Set: func(l *models.Lead, v string) { l.Manager = v }},
		{Name: "createdAt", Label: "DB 생성 시간", Kind: ReadOnly,
			Get: func(l models.Lead) string { return l.CreatedAt.String() }},
	}
}

// MemoFields is the memo modal: only the memo is editable.
func MemoFields() []Field[models.Lead] {
	return []Field[models.Lead]{
		{Name: "memo", Label: "상담 기록", Kind: TextArea,
			Get: func(l models.Lead) string { return l.Memo },
			Set: func(l *models.Lead, v string) { l.Memo = v }},
	}
}

// AccountFields is the account edit modal for an editor at editorLevel.
func AccountFields(editorLevel int) []Field[models.Account] {
	return []Field[models.Account]{
		{Name: "email", Label: "이메일", Kind: Text,
			Get: func(a models.Account) string { return a.Email },
			Set: func(a *models.Account, v string) { a.Email = v }},
		{Name: "username", Label: "이름", Kind: Text,
			Get: func(a models.Account) string { return a.Username },
			Set: func(a *models.Account, v string) { a.Username = v }},
		{Name: "firstname", Label: "First Name", Kind: Text,
			Get: func(a models.Account) string { return a.FirstName },
			Set: func(a *models.Account, v string) { a.FirstName = v }},
		{Name: "lastname", Label: "Last Name", Kind: Text,
			Get: func(a models.Account) string { return a.LastName },
			Set: func(a *models.Account, v string) { a.LastName = v }},
		{Name: "status", Label: "상태", Kind: Select,
			Options: []Choice{{Value: models.StatusActive, Label: "active"}, {Value: models.StatusInactive, Label: "inactive"}},
			Get:     func(a models.Account) string { return a.Status },
			Set:     func(a *models.Account, v string) { a.Status = v }},
		{Name: "referrer", Label: "책임자", Kind: Text,
			Get: func(a models.Account) string { return a.Referrer },
			Set: func(a *models.Account, v string) { a.Referrer = v }},
		{Name: "userLevel", Label: "레벨", Kind: Number, Options: LevelChoices(editorLevel),
			Get: func(a models.Account) string { return a.UserLevel.String() },
			Set: func(a *models.Account, v string) { a.UserLevel = models.Text(v) }},
	}
}

// AccountLevelGuard keeps an editor from granting a level above their own.
func AccountLevelGuard(editorLevel int) Guard[models.Account] {
	return LevelGuard(editorLevel, func(a models.Account) int { return a.UserLevel.Int() })
}

// SMSView renders a lead's received message for the read-only viewer.
func SMSView(l models.Lead) template.HTML {
	return htmlsanitize.PrepareForDisplay(l.SMS)
}

// MemoView renders a memo for read-only display.
func MemoView(l models.Lead) template.HTML {
	return htmlsanitize.PrepareForDisplay(l.Memo)
}
