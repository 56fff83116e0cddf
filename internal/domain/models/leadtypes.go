// internal/domain/models/leadtypes.go
package models

// LeadType is one entry of the closed lead category enumeration.
type LeadType struct {
	Code  string
	Label string
}

// DefaultLeadType is assigned to imported rows that carry no type.
const DefaultLeadType = "els"

// LeadTypes lists every category in display order.
var LeadTypes = []LeadType{
	{Code: "els", Label: "기타 DB"},
	{Code: "stock_new", Label: "신규 DB(주식)"},
	{Code: "stock_old", Label: "구 DB(주식)"},
	{Code: "coin_new", Label: "신규 DB(코인)"},
	{Code: "coin_old", Label: "구 DB(코인)"},
	{Code: "potential", Label: "가망 DB"},
	{Code: "customer_fund1", Label: "펀드1 (도지 채굴기)"},
	{Code: "customer_fund2", Label: "펀드2 (데이터 센터)"},
	{Code: "customer_fund3", Label: "펀드3 (VAST)"},
	{Code: "black_longterm", Label: "부재"},
	{Code: "black_notIdentity", Label: "단선"},
	{Code: "black_wrongnumber", Label: "결번"},
}

// IsLeadType reports whether code is a known category.
func IsLeadType(code string) bool {
	for _, t := range LeadTypes {
		if t.Code == code {
			return true
		}
	}
	return false
}

// LeadTypeLabel returns the display label for code, or code itself
// when it is not a known category.
func LeadTypeLabel(code string) string {
	for _, t := range LeadTypes {
		if t.Code == code {
			return t.Label
		}
	}
	return code
}
