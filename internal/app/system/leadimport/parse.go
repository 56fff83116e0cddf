// Package leadimport turns an uploaded spreadsheet into lead rows and
// creates them one by one.
package leadimport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/leadhub/internal/app/system/limits"
	"github.com/dalemusser/leadhub/internal/app/system/normalize"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

// MsgFileError is shown when the upload cannot be read as a spreadsheet.
const MsgFileError = "엑셀 파일 처리 중 오류가 발생했습니다."

var (
	// ErrNoSheet is returned for a workbook without sheets.
	ErrNoSheet = errors.New("workbook has no sheets")
	// ErrTooManyRows is returned when the sheet exceeds limits.MaxImportRows.
	ErrTooManyRows = fmt.Errorf("sheet has more than %d rows", limits.MaxImportRows)
)

// headerAliases maps a normalized header cell to a lead field.
var headerAliases = map[string]string{
	"username":    "username",
	"이름":          "username",
	"phonenumber": "phonenumber",
	"phone":       "phonenumber",
	"전화번호":        "phonenumber",
	"sex":         "sex",
	"성별":          "sex",
	"sms":         "sms",
	"incomepath":  "incomepath",
	"유입경로":        "incomepath",
	"creatorname": "creatorname",
	"등록자":         "creatorname",
	"memo":        "memo",
	"메모":          "memo",
	"type":        "type",
	"유형":          "type",
	"manager":     "manager",
	"담당자":         "manager",
	"incomedate":  "incomedate",
	"유입일":         "incomedate",
}

// Row is one lead parsed from the sheet. Line is the 1-based sheet row.
// UnknownType holds a type cell that was replaced by the screen default.
type Row struct {
	Line        int
	Lead        models.Lead
	UnknownType string
}

// Parse reads the first sheet of an .xlsx workbook. The first row names
// the columns. Blank rows are skipped. Every other row is kept, a row
// without a phone number included, so the backend decides on it and a
// rejection is counted. Rows without a known type get defaultType.
func Parse(r io.Reader, defaultType string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return []Row{}, nil
	}
	if len(cells)-1 > limits.MaxImportRows {
		return nil, ErrTooManyRows
	}

	cols := mapHeader(cells[0])
	if defaultType == "" || !models.IsLeadType(defaultType) {
		defaultType = models.DefaultLeadType
	}

	rows := make([]Row, 0, len(cells)-1)
	for i, rec := range cells[1:] {
		get := func(field string) string {
			idx, ok := cols[field]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		if blank(rec) {
			continue
		}
		var unknown string
		typ := get("type")
		if !models.IsLeadType(typ) {
			unknown = typ
			typ = defaultType
		}
		rows = append(rows, Row{
			Line:        i + 2,
			UnknownType: unknown,
			Lead: models.Lead{
				Username:    get("username"),
				PhoneNumber: normalize.Phone(get("phonenumber")),
				Sex:         get("sex"),
				SMS:         get("sms"),
				IncomePath:  get("incomepath"),
				CreatorName: get("creatorname"),
				Memo:        get("memo"),
				Type:        typ,
				Manager:     get("manager"),
				IncomeDate:  ParseExcelDate(get("incomedate")),
			},
		})
	}
	return rows, nil
}

// UnknownTypes returns the sheet lines whose type cell was not a known
// lead type.
func UnknownTypes(rows []Row) []int {
	var lines []int
	for _, r := range rows {
		if r.UnknownType != "" {
			lines = append(lines, r.Line)
		}
	}
	return lines
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func mapHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
		if field, ok := headerAliases[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	return cols
}
