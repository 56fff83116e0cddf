// internal/app/store/accounts/store.go
package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/normalize"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"go.uber.org/zap"
)

// PageSize is the accounts screen page size.
const PageSize = 10

// New accounts start inactive at level 5 until an administrator edits them.
const newAccountLevel = "5"

// MsgPasswordMismatch is shown when the two password fields differ.
const MsgPasswordMismatch = "비밀번호가 일치하지 않습니다."

// ErrUnconfirmed is returned when a mutation succeeded at the transport
// level but the backend's reply did not confirm the change.
var ErrUnconfirmed = errors.New("backend did not confirm the change")

// Operation documents.
var (
	listDoc = gateway.MustParse(`
		query getUsersUnderMyNetwork($limit: Int!, $page: Int!) {
			getUsersUnderMyNetwork(limit: $limit, page: $page) {
				data {
					id
					username
					firstname
					lastname
					email
					status
					referrer
					userLevel
					createdAt
				}
				totalUsers
			}
		}`)

	registerDoc = gateway.MustParse(`
		mutation Register(
			$email: String!
			$username: String!
			$firstname: String!
			$lastname: String!
			$password: String!
			$referrer: String
		) {
			register(
				email: $email
				username: $username
				firstname: $firstname
				lastname: $lastname
				password: $password
				referrer: $referrer
			)
		}`)

	updateDoc = gateway.MustParse(`
		mutation UpdateUser(
			$userId: String!
			$username: String
			$firstname: String
			$lastname: String
			$email: String
			$status: String
			$referrer: String
			$userLevel: Int
		) {
			updateUser(
				userId: $userId
				username: $username
				firstname: $firstname
				lastname: $lastname
				email: $email
				status: $status
				referrer: $referrer
				userLevel: $userLevel
			)
		}`)

	deleteDoc = gateway.MustParse(`
		mutation DeleteUser($userId: String!) {
			deleteUser(userId: $userId)
		}`)

	userInfoDoc = gateway.MustParse(`
		query GetUserInfo {
			getUserInfo {
				userLevel
			}
		}`)

	loginDoc = gateway.MustParse(`
		mutation Login($email: String!, $password: String!) {
			login(email: $email, password: $password)
		}`)
)

// Draft is the input of the create form.
type Draft struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
	Referrer        string
}

// Patch is the full set of editable account fields.
type Patch struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Status    string
	Referrer  string
	UserLevel int // 0 leaves the level unchanged
}

// Store binds the accounts operations to a gateway.
type Store struct {
	gw  *gateway.Client
	log *zap.Logger
}

// New creates an accounts Store.
func New(gw *gateway.Client, logger *zap.Logger) *Store {
	return &Store{gw: gw, log: logger}
}

// Login exchanges credentials for a backend token. It sends no bearer token.
func (s *Store) Login(ctx context.Context, email, password string) (string, error) {
	return gateway.Do[string](ctx, s.gw, nil, loginDoc, map[string]any{
		"email":    normalize.Email(email),
		"password": password,
	}, gateway.SkipAuthCheck())
}

// For returns the accounts hook for one signed-in credential.
func (s *Store) For(cred gateway.Credential) *Hook {
	return &Hook{store: s, cred: cred}
}

// Hook performs account operations as one credential and remembers the
// outcome of its last call. It implements listview.Fetcher[models.Account].
type Hook struct {
	store *Store
	cred  gateway.Credential

	mu      sync.Mutex
	lastErr string
}

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

type networkPage struct {
	Data       []models.Account `json:"data"`
	TotalUsers int              `json:"totalUsers"`
}

// List fetches one page of accounts under the caller's network.
func (h *Hook) List(ctx context.Context, args models.PageArgs) (models.Page[models.Account], error) {
	limit := args.Limit
	if limit <= 0 {
		limit = PageSize
	}
	res, err := gateway.Do[networkPage](ctx, h.store.gw, h.cred, listDoc, map[string]any{
		"limit": limit,
		"page":  models.PageArgs{Limit: limit, Offset: args.Offset}.Page(),
	})
	h.record(err)
	if err != nil {
		return models.Page[models.Account]{}, err
	}
	page := models.Page[models.Account]{Items: res.Data, Total: res.TotalUsers}
	if page.Items == nil {
		page.Items = []models.Account{}
	}
	return page, nil
}

// Search reads every page of the caller's network and filters in process
// with OR semantics: an account matches when any supplied field contains
// its keyword. Empty keywords match everything. Total is the full match
// count and Items is the requested window of the matches.
func (h *Hook) Search(ctx context.Context, args models.PageArgs, filter models.Filter) (models.Page[models.Account], error) {
	limit := args.Limit
	if limit <= 0 {
		limit = PageSize
	}
	first, err := h.List(ctx, models.PageArgs{Limit: limit})
	if err != nil {
		return first, err
	}
	all := first.Items
	pages := (first.Total + limit - 1) / limit
	for p := 2; p <= pages; p++ {
		next, err := h.List(ctx, models.PageArgs{Limit: limit, Offset: (p - 1) * limit})
		if err != nil {
			return models.Page[models.Account]{}, err
		}
		if len(next.Items) == 0 {
			break
		}
		all = append(all, next.Items...)
	}

	matched := make([]models.Account, 0, len(all))
	for _, a := range all {
		if Matches(a, filter) {
			matched = append(matched, a)
		}
	}
	lo := min(max(args.Offset, 0), len(matched))
	hi := min(lo+limit, len(matched))
	return models.Page[models.Account]{Items: matched[lo:hi], Total: len(matched)}, nil
}

// Matches reports whether a satisfies filter under OR semantics.
func Matches(a models.Account, filter models.Filter) bool {
	if len(filter) == 0 {
		return true
	}
	for field, kw := range filter {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return true
		}
		if strings.Contains(strings.ToLower(accountField(a, field)), kw) {
			return true
		}
	}
	return false
}

func accountField(a models.Account, field string) string {
	switch field {
	case "email":
		return a.Email
	case "username":
		return a.Username
	case "firstname":
		return a.FirstName
	case "lastname":
		return a.LastName
	case "status":
		return a.Status
	case "referrer":
		return a.Referrer
	case "userLevel":
		return a.UserLevel.String()
	}
	return ""
}

// Create registers a new account. Mismatched passwords fail with a
// *listview.ValidationError before any remote call. On success the
// returned record is synthesized from the draft, since register replies
// with a token rather than the account.
func (h *Hook) Create(ctx context.Context, d Draft) (*models.Account, error) {
	if d.Password != d.PasswordConfirm {
		err := listview.Invalid(MsgPasswordMismatch)
		h.mu.Lock()
		h.lastErr = MsgPasswordMismatch
		h.mu.Unlock()
		return nil, err
	}

	vars := map[string]any{
		"email":     normalize.Email(d.Email),
		"username":  normalize.Name(d.Username),
		"firstname": normalize.Name(d.FirstName),
		"lastname":  normalize.Name(d.LastName),
		"password":  d.Password,
	}
	if ref := normalize.Name(d.Referrer); ref != "" {
		vars["referrer"] = ref
	}

	_, err := h.store.gw.Call(ctx, h.cred, registerDoc, vars)
	h.record(err)
	if err != nil {
		h.store.log.Error("create account failed", zap.String("email", vars["email"].(string)), zap.Error(err))
		return nil, err
	}

	return &models.Account{
		Email:     vars["email"].(string),
		Username:  vars["username"].(string),
		FirstName: vars["firstname"].(string),
		LastName:  vars["lastname"].(string),
		Referrer:  normalize.Name(d.Referrer),
		Status:    models.StatusInactive,
		UserLevel: newAccountLevel,
	}, nil
}

// Update writes p to account id. nil means the backend confirmed it.
func (h *Hook) Update(ctx context.Context, id string, p Patch) error {
	vars := map[string]any{
		"userId":    id,
		"username":  normalize.Name(p.Username),
		"firstname": normalize.Name(p.FirstName),
		"lastname":  normalize.Name(p.LastName),
		"email":     normalize.Email(p.Email),
		"status":    normalize.Status(p.Status),
		"referrer":  normalize.Name(p.Referrer),
	}
	if p.UserLevel > 0 {
		vars["userLevel"] = p.UserLevel
	}
	return h.confirm(ctx, updateDoc, vars, "updated successfully")
}

// Delete removes account id. nil means the backend confirmed it.
func (h *Hook) Delete(ctx context.Context, id string) error {
	return h.confirm(ctx, deleteDoc, map[string]any{"userId": id}, "deleted successfully")
}

func (h *Hook) confirm(ctx context.Context, doc gateway.Document, vars map[string]any, want string) error {
	msg, err := gateway.Do[string](ctx, h.store.gw, h.cred, doc, vars)
	if err == nil && !strings.Contains(msg, want) {
		h.store.log.Warn("unexpected mutation reply", zap.String("operation", doc.Name), zap.String("reply", msg))
		err = ErrUnconfirmed
	}
	h.record(err)
	return err
}

// UserLevel asks the backend for the caller's level.
func (h *Hook) UserLevel(ctx context.Context) (int, error) {
	type info struct {
		UserLevel models.Text `json:"userLevel"`
	}
	res, err := gateway.Do[info](ctx, h.store.gw, h.cred, userInfoDoc, nil)
	h.record(err)
	if err != nil {
		return 0, err
	}
	return res.UserLevel.Int(), nil
}
