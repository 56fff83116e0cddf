// internal/app/store/leads/store.go
package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/normalize"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"go.uber.org/zap"
)

// PageSize is the lead screens' page size.
const PageSize = 100

var (
	// ErrDuplicateSkip is returned by Create when the backend refused the
	// record because its phone number already exists.
	ErrDuplicateSkip = errors.New("duplicate record skipped")

	// ErrUnconfirmed is returned when deleteUserDB replies false.
	ErrUnconfirmed = errors.New("backend did not confirm the change")
)

// MsgUnknownType is shown when a type outside the enumeration is submitted.
const MsgUnknownType = "알 수 없는 DB 유형입니다."

// duplicateSignal is the marker the backend puts in a duplicate error.
const duplicateSignal = "SKIP"

const leadFields = `
	id
	username
	phonenumber
	sex
	incomepath
	creatorname
	memo
	sms
	type
	manager
	incomedate
	createdAt
	updatedAt`

func listDocument(op, params, args string) gateway.Document {
	return gateway.MustParse(fmt.Sprintf(`
		query %[1]s(%[2]s) {
			%[1]s(%[3]s) {
				users {%[4]s
				}
				totalUsers
			}
		}`, op, params, args, leadFields))
}

var (
	forMainUserDoc = listDocument("getUserDBsForMainUser",
		"$limit: Int, $offset: Int, $type: String",
		"limit: $limit, offset: $offset, type: $type")
	byMyUsernameDoc = listDocument("getUserDBsByMyUsername",
		"$limit: Int, $offset: Int, $type: String, $includeSelf: Boolean",
		"limit: $limit, offset: $offset, type: $type, includeSelf: $includeSelf")
	underMyNetworkDoc = listDocument("getUserDBsUnderMyNetwork",
		"$limit: Int, $offset: Int, $type: String, $includeSelf: Boolean",
		"limit: $limit, offset: $offset, type: $type, includeSelf: $includeSelf")
	searchDoc = listDocument("searchUserDBsUnderMyNetworkWithOr",
		"$limit: Int, $offset: Int, $phonenumber: String, $username: String, $manager: String, $type: String",
		"limit: $limit, offset: $offset, phonenumber: $phonenumber, username: $username, manager: $manager, type: $type")

	createDoc = gateway.MustParse(`
		mutation CreateUserDB($createUserInput: CreateUserInput!) {
			createUserDB(createUserInput: $createUserInput) {` + leadFields + `
			}
		}`)

	updateDoc = gateway.MustParse(`
		mutation UpdateUserDB(
			$id: String!
			$username: String
			$phonenumber: String
			$sex: String
			$incomepath: String
			$memo: String
			$type: String
			$manager: String
		) {
			updateUserDB(
				id: $id
				username: $username
				phonenumber: $phonenumber
				sex: $sex
				incomepath: $incomepath
				memo: $memo
				type: $type
				manager: $manager
			) {` + leadFields + `
			}
		}`)

	deleteDoc = gateway.MustParse(`
		mutation DeleteUserDB($id: String!) {
			deleteUserDB(id: $id)
		}`)

	managersDoc = gateway.MustParse(`
		query {
			getUsernamesUnderMyNetwork
		}`)
)

// SearchFields are the filter keys the backend search accepts.
var SearchFields = []string{"phonenumber", "username", "manager", "type"}

// Patch lists the fields to change; nil fields are not sent.
type Patch struct {
	Username    *string
	PhoneNumber *string
	Sex         *string
	IncomePath  *string
	Memo        *string
	Type        *string
	Manager     *string
}

func str(s string) *string { return &s }

// MemoPatch changes only the memo.
func MemoPatch(memo string) Patch { return Patch{Memo: str(memo)} }

// ManagerPatch reassigns the manager.
func ManagerPatch(manager string) Patch { return Patch{Manager: str(manager)} }

// TypePatch changes the category.
func TypePatch(code string) Patch { return Patch{Type: str(code)} }

// FromLead builds a patch carrying every editable field of l.
func FromLead(l models.Lead) Patch {
	return Patch{
		Username:    str(l.Username),
		PhoneNumber: str(l.PhoneNumber),
		Sex:         str(l.Sex),
		IncomePath:  str(l.IncomePath),
		Memo:        str(l.Memo),
		Type:        str(l.Type),
		Manager:     str(l.Manager),
	}
}

func (p Patch) vars(id string) map[string]any {
	v := map[string]any{"id": id}
	set := func(k string, s *string, norm func(string) string) {
		if s != nil {
			v[k] = norm(*s)
		}
	}
	set("username", p.Username, normalize.Name)
	set("phonenumber", p.PhoneNumber, normalize.Phone)
	set("sex", p.Sex, normalize.Name)
	set("incomepath", p.IncomePath, normalize.Name)
	set("memo", p.Memo, func(s string) string { return s })
	set("type", p.Type, normalize.Name)
	set("manager", p.Manager, normalize.Name)
	return v
}

// Store binds the lead operations to a gateway.
type Store struct {
	gw  *gateway.Client
	log *zap.Logger
}

// New creates a leads Store.
func New(gw *gateway.Client, logger *zap.Logger) *Store {
	return &Store{gw: gw, log: logger}
}

// For returns the lead hook for one credential and screen scope.
func (s *Store) For(cred gateway.Credential, scope Scope) *Hook {
	return &Hook{store: s, cred: cred, scope: scope}
}

// Hook performs lead operations as one credential on one screen and
// remembers the outcome of its last call. It implements
// listview.Fetcher[models.Lead].
type Hook struct {
	store *Store
	cred  gateway.Credential
	scope Scope

	mu      sync.Mutex
	lastErr string
}

// Scope returns the screen scope of the hook.
func (h *Hook) Scope() Scope { return h.scope }

// LastError is the message of the most recent failed call, or "".
func (h *Hook) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *Hook) record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.lastErr = ""
		return
	}
	h.lastErr = gateway.Message(err)
}

type leadPage struct {
	Users      []models.Lead `json:"users"`
	TotalUsers int           `json:"totalUsers"`
}

func (h *Hook) fetch(ctx context.Context, doc gateway.Document, vars map[string]any) (models.Page[models.Lead], error) {
	res, err := gateway.Do[leadPage](ctx, h.store.gw, h.cred, doc, vars)
	h.record(err)
	if err != nil {
		return models.Page[models.Lead]{}, err
	}
	page := models.Page[models.Lead]{Items: res.Users, Total: res.TotalUsers}
	if page.Items == nil {
		page.Items = []models.Lead{}
	}
	return page, nil
}

// List fetches one window of the hook's scope.
func (h *Hook) List(ctx context.Context, args models.PageArgs) (models.Page[models.Lead], error) {
	doc, vars := h.scope.listCall(args)
	return h.fetch(ctx, doc, vars)
}

// Search runs the network-wide OR search. Supplied fields are sent as-is,
// empty strings included; unknown fields are ignored.
func (h *Hook) Search(ctx context.Context, args models.PageArgs, filter models.Filter) (models.Page[models.Lead], error) {
	vars := map[string]any{"limit": args.Limit, "offset": args.Offset}
	for _, f := range SearchFields {
		if kw, ok := filter[f]; ok {
			vars[f] = normalize.QueryParam(kw)
		}
	}
	return h.fetch(ctx, searchDoc, vars)
}

// Create inserts one lead. A duplicate is reported as (nil, ErrDuplicateSkip)
// and does not count as an error of the hook.
func (h *Hook) Create(ctx context.Context, l models.Lead) (*models.Lead, error) {
	input := map[string]any{
		"username":    normalize.Name(l.Username),
		"phonenumber": normalize.Phone(l.PhoneNumber),
		"type":        l.Type,
	}
	opt := map[string]string{
		"sex":         normalize.Name(l.Sex),
		"sms":         l.SMS,
		"incomepath":  normalize.Name(l.IncomePath),
		"creatorname": normalize.Name(l.CreatorName),
		"memo":        l.Memo,
		"manager":     normalize.Name(l.Manager),
		"incomedate":  l.IncomeDate,
	}
	for k, v := range opt {
		if v != "" {
			input[k] = v
		}
	}
	if input["type"] == "" {
		input["type"] = models.DefaultLeadType
	}

	out, err := gateway.Do[*models.Lead](ctx, h.store.gw, h.cred, createDoc, map[string]any{"createUserInput": input})
	var roe *gateway.RemoteOperationError
	if errors.As(err, &roe) && roe.Contains(duplicateSignal) {
		h.store.log.Debug("duplicate lead skipped", zap.String("phonenumber", input["phonenumber"].(string)))
		return nil, ErrDuplicateSkip
	}
	h.record(err)
	if err != nil {
		h.store.log.Error("create lead failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// Update writes p to lead id and returns the stored record.
func (h *Hook) Update(ctx context.Context, id string, p Patch) (*models.Lead, error) {
	if p.Type != nil && *p.Type != "" && !models.IsLeadType(*p.Type) {
		err := listview.Invalid(MsgUnknownType)
		h.record(err)
		return nil, err
	}
	out, err := gateway.Do[*models.Lead](ctx, h.store.gw, h.cred, updateDoc, p.vars(id))
	h.record(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes lead id.
func (h *Hook) Delete(ctx context.Context, id string) error {
	ok, err := gateway.Do[bool](ctx, h.store.gw, h.cred, deleteDoc, map[string]any{"id": id})
	if err == nil && !ok {
		err = ErrUnconfirmed
	}
	h.record(err)
	return err
}

// Managers lists the usernames the caller may assign. Failures yield an
// empty list.
func (h *Hook) Managers(ctx context.Context) []string {
	names, err := gateway.Do[[]string](ctx, h.store.gw, h.cred, managersDoc, nil)
	if err != nil {
		h.store.log.Warn("load managers failed", zap.Error(err))
		return []string{}
	}
	if names == nil {
		return []string{}
	}
	return names
}
