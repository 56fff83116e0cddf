package leads

import (
	"fmt"

	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/domain/models"
)

// ScopeKind selects which list operation a lead screen uses.
type ScopeKind string

const (
	ScopeCompany     ScopeKind = "company"     // every lead of the head office
	ScopeUnallocated ScopeKind = "unallocated" // leads still held by the caller
	ScopeAllocated   ScopeKind = "allocated"   // leads handed to the caller's network
	ScopeType        ScopeKind = "type"        // one category across the network
)

// Scope identifies a lead screen.
type Scope struct {
	Kind ScopeKind
	Type string // set when Kind is ScopeType
}

// Company, Unallocated and Allocated are the fixed "전체" screens.
var (
	Company     = Scope{Kind: ScopeCompany}
	Unallocated = Scope{Kind: ScopeUnallocated}
	Allocated   = Scope{Kind: ScopeAllocated}
)

// TypeScope returns the screen for one category.
func TypeScope(code string) (Scope, error) {
	if !models.IsLeadType(code) {
		return Scope{}, fmt.Errorf("unknown lead type %q", code)
	}
	return Scope{Kind: ScopeType, Type: code}, nil
}

// Key is the registry key of the screen.
func (s Scope) Key() string {
	if s.Kind == ScopeType {
		return "leads:type:" + s.Type
	}
	return "leads:" + string(s.Kind)
}

// Title is the screen heading.
func (s Scope) Title() string {
	switch s.Kind {
	case ScopeCompany:
		return "본사 DB 관리"
	case ScopeUnallocated:
		return "미배분 DB 관리"
	case ScopeAllocated:
		return "배분 DB 관리"
	}
	return models.LeadTypeLabel(s.Type)
}

// DefaultType is the category given to imported rows without one.
func (s Scope) DefaultType() string {
	if s.Kind == ScopeType {
		return s.Type
	}
	return models.DefaultLeadType
}

func (s Scope) listCall(args models.PageArgs) (gateway.Document, map[string]any) {
	vars := map[string]any{"limit": args.Limit, "offset": args.Offset}
	switch s.Kind {
	case ScopeCompany:
		return forMainUserDoc, vars
	case ScopeUnallocated:
		vars["includeSelf"] = true
		return byMyUsernameDoc, vars
	case ScopeAllocated:
		vars["includeSelf"] = false
		return underMyNetworkDoc, vars
	default:
		vars["includeSelf"] = true
		vars["type"] = s.Type
		return underMyNetworkDoc, vars
	}
}
