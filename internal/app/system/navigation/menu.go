package navigation

import "strings"

// Item is one sidebar entry. An item is shown to users whose level is
// numerically at most MinLevel. Groups carry Children and no Path.
type Item struct {
	Label    string
	Path     string
	MinLevel int
	Children []Item
	Active   bool
}

// IsGroup reports whether the item only holds children.
func (it Item) IsGroup() bool { return len(it.Children) > 0 }

// Screen paths.
const (
	PathDashboard   = "/dashboard"
	PathAccounts    = "/dashboard/All/user-management"
	PathCompany     = "/dashboard/All/userDB-company"
	PathUnallocated = "/dashboard/All/userDB-unallocated"
	PathAllocated   = "/dashboard/All/userDB-allocated"
	PathAudit       = "/dashboard/All/audit-log"
)

// TypePath is the screen of one lead category.
func TypePath(code string) string { return "/dashboard/db/" + code }

// Menu is the full sidebar tree.
var Menu = []Item{
	{Label: "Dashboard", Path: PathDashboard, MinLevel: 5},
	{Label: "전체", MinLevel: 4, Children: []Item{
		{Label: "영업팀 관리", Path: PathAccounts, MinLevel: 4},
		{Label: "본사 DB 관리", Path: PathCompany, MinLevel: 2},
		{Label: "미배분 DB 관리", Path: PathUnallocated, MinLevel: 3},
		{Label: "배분 DB 관리", Path: PathAllocated, MinLevel: 3},
		{Label: "감사 로그", Path: PathAudit, MinLevel: 1},
	}},
	{Label: "주식 DB", MinLevel: 5, Children: []Item{
		{Label: "신규 DB", Path: TypePath("stock_new"), MinLevel: 5},
		{Label: "구 DB", Path: TypePath("stock_old"), MinLevel: 5},
	}},
	{Label: "코인 DB", MinLevel: 5, Children: []Item{
		{Label: "신규 DB", Path: TypePath("coin_new"), MinLevel: 5},
		{Label: "구 DB", Path: TypePath("coin_old"), MinLevel: 5},
	}},
	{Label: "가망 DB", MinLevel: 5, Children: []Item{
		{Label: "가망 DB", Path: TypePath("potential"), MinLevel: 5},
	}},
	{Label: "기가입 DB", MinLevel: 5, Children: []Item{
		{Label: "펀드1 (도지 채굴기)", Path: TypePath("customer_fund1"), MinLevel: 5},
		{Label: "펀드2 (데이터 센터)", Path: TypePath("customer_fund2"), MinLevel: 5},
		{Label: "펀드3 (VAST)", Path: TypePath("customer_fund3"), MinLevel: 5},
	}},
	{Label: "블랙 DB", MinLevel: 5, Children: []Item{
		{Label: "부재", Path: TypePath("black_longterm"), MinLevel: 5},
		{Label: "단선", Path: TypePath("black_notIdentity"), MinLevel: 5},
		{Label: "결번", Path: TypePath("black_wrongnumber"), MinLevel: 5},
	}},
	{Label: "기타 DB", Path: TypePath("els"), MinLevel: 5},
}

// Filter returns the items of tree a user at level may see, with groups
// left empty by the filter dropped. A level of 0 (unknown) sees nothing.
func Filter(tree []Item, level int) []Item {
	if level <= 0 {
		return nil
	}
	var out []Item
	for _, it := range tree {
		if level > it.MinLevel {
			continue
		}
		if it.IsGroup() {
			kids := Filter(it.Children, level)
			if len(kids) == 0 {
				continue
			}
			it.Children = kids
		}
		out = append(out, it)
	}
	return out
}

// MarkActive flags the entry whose path matches current, and any group
// holding it. The tree is copied.
func MarkActive(tree []Item, current string) []Item {
	out := make([]Item, len(tree))
	for i, it := range tree {
		if it.IsGroup() {
			it.Children = MarkActive(it.Children, current)
			for _, c := range it.Children {
				if c.Active {
					it.Active = true
				}
			}
		} else {
			it.Active = it.Path != "" && (current == it.Path ||
				(it.Path != "/dashboard" && strings.HasPrefix(current, it.Path+"/")))
		}
		out[i] = it
	}
	return out
}

// For is the sidebar of a user at level viewing current.
func For(level int, current string) []Item {
	return MarkActive(Filter(Menu, level), current)
}

// Allowed reports whether a user at level may open path according to the
// menu. Paths the menu does not list are allowed.
func Allowed(level int, path string) bool {
	min, ok := minLevel(Menu, path)
	return !ok || (level > 0 && level <= min)
}

func minLevel(tree []Item, path string) (int, bool) {
	for _, it := range tree {
		if it.Path == path {
			return it.MinLevel, true
		}
		if n, ok := minLevel(it.Children, path); ok {
			return n, true
		}
	}
	return 0, false
}
