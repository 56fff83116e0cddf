package editform_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(level string) models.Account {
	return models.Account{ID: "u1", Email: "a@b.co", Username: "kim", Status: "active", UserLevel: models.Text(level)}
}

func TestApply_SetsDraftAndIgnoresReadOnly(t *testing.T) {
	lead := models.Lead{ID: "l1", Username: "Kim", Type: "els", CreatedAt: "1700000000000"}
	f := editform.New(lead, editform.LeadFields(lead, []string{"lee"}))

	err := f.Apply(url.Values{
		"username":  {"  Park "},
		"type":      {"coin_new"},
		"manager":   {"lee"},
		"createdAt": {"0"},
	})
	require.NoError(t, err)

	d := f.Draft()
	assert.Equal(t, "Park", d.Username)
	assert.Equal(t, "coin_new", d.Type)
	assert.Equal(t, "lee", d.Manager)
	assert.Equal(t, models.Text("1700000000000"), d.CreatedAt, "read-only field is ignored")
	assert.Equal(t, "Kim", lead.Username, "initial record is not modified")
}

func TestApply_RejectsUnknownChoice(t *testing.T) {
	lead := models.Lead{Type: "els"}
	f := editform.New(lead, editform.LeadFields(lead, nil))
	err := f.Apply(url.Values{"username": {"x"}, "type": {"bogus"}})
	require.Error(t, err)
	assert.True(t, listview.IsValidation(err))
	assert.Equal(t, "", f.Draft().Username, "draft unchanged on error")
}

func TestLeadFields_KeepsCurrentManagerOutsideList(t *testing.T) {
	lead := models.Lead{ID: "l1", Username: "Kim", Type: "els", Manager: "outsider"}
	f := editform.New(lead, editform.LeadFields(lead, []string{}))

	var manager editform.Input
	for _, in := range f.Inputs() {
		if in.Name == "manager" {
			manager = in
		}
	}
	assert.Equal(t, "outsider", manager.Selected)
	assert.Contains(t, manager.Options, editform.Choice{Value: "outsider", Label: "outsider"})

	// The browser posts the selected option back with the other fields.
	require.NoError(t, f.Apply(url.Values{"username": {"Park"}, "manager": {manager.Selected}}))
	assert.Equal(t, "outsider", f.Draft().Manager)
	assert.Equal(t, "Park", f.Draft().Username)
}

func TestLeadFields_KeepsLegacyType(t *testing.T) {
	lead := models.Lead{ID: "l1", Type: "legacy_vip"}
	f := editform.New(lead, editform.LeadFields(lead, nil))

	require.NoError(t, f.Apply(url.Values{"type": {"legacy_vip"}}))
	assert.Equal(t, "legacy_vip", f.Draft().Type)
}

func TestManagerChoices(t *testing.T) {
	got := editform.ManagerChoices([]string{"lee"}, "lee")
	assert.Len(t, got, 2, "current manager already listed is not repeated")
	assert.Len(t, editform.ManagerChoices(nil, ""), 1)
}

func TestApply_RejectsNonNumericLevel(t *testing.T) {
	f := editform.New(account("5"), editform.AccountFields(3))
	err := f.Apply(url.Values{"userLevel": {"abc"}})
	assert.True(t, listview.IsValidation(err))
}

func TestSave_CallsOnSaveAndCloses(t *testing.T) {
	f := editform.New(account("5"), editform.AccountFields(3)).WithGuard(editform.AccountLevelGuard(3))
	require.NoError(t, f.Apply(url.Values{"userLevel": {"4"}}))

	var saved models.Account
	out, err := f.Save(context.Background(), func(_ context.Context, a models.Account) error {
		saved = a
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, editform.Saved, out)
	assert.Equal(t, 4, saved.UserLevel.Int())
	assert.False(t, f.IsOpen())
}

func TestSave_LevelGuardClosesWithoutSaving(t *testing.T) {
	tests := []struct {
		name      string
		editor    int
		requested string
		wantSave  bool
	}{
		{"more privileged than editor", 3, "2", false},
		{"same as editor", 3, "3", true},
		{"less privileged", 3, "6", true},
		{"unset", 3, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := editform.New(account("5"), editform.AccountFields(tt.editor)).
				WithGuard(editform.AccountLevelGuard(tt.editor))
			require.NoError(t, f.Apply(url.Values{"userLevel": {tt.requested}}))

			calls := 0
			out, err := f.Save(context.Background(), func(context.Context, models.Account) error {
				calls++
				return nil
			})
			require.NoError(t, err)
			assert.False(t, f.IsOpen())
			if tt.wantSave {
				assert.Equal(t, editform.Saved, out)
				assert.Equal(t, 1, calls)
			} else {
				assert.Equal(t, editform.Closed, out)
				assert.Zero(t, calls)
			}
		})
	}
}

func TestSave_ErrorKeepsDraft(t *testing.T) {
	f := editform.New(models.Lead{ID: "l1"}, editform.MemoFields())
	require.NoError(t, f.Apply(url.Values{"memo": {"line 1\nline 2"}}))

	boom := errors.New("boom")
	out, err := f.Save(context.Background(), func(context.Context, models.Lead) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, editform.Open, out)
	assert.True(t, f.IsOpen())
	assert.Equal(t, "line 1\nline 2", f.Draft().Memo)
}

func TestClose_DiscardsDraft(t *testing.T) {
	f := editform.New(models.Lead{ID: "l1", Memo: "x"}, editform.MemoFields())
	f.Close()
	assert.Equal(t, models.Lead{}, f.Draft())

	calls := 0
	out, _ := f.Save(context.Background(), func(context.Context, models.Lead) error { calls++; return nil })
	assert.Equal(t, editform.Closed, out)
	assert.Zero(t, calls)
}

func TestInputs(t *testing.T) {
	f := editform.New(models.Lead{Memo: "hi"}, editform.MemoFields())
	in := f.Inputs()
	require.Len(t, in, 1)
	assert.Equal(t, "memo", in[0].Name)
	assert.Equal(t, "hi", in[0].Value)
	assert.Equal(t, editform.TextArea, in[0].Kind)
}

func TestLevelChoices(t *testing.T) {
	got := editform.LevelChoices(5)
	require.Len(t, got, 3)
	assert.Equal(t, "5", got[0].Value)
	assert.Equal(t, "7", got[2].Value)
}

func TestSMSView_Sanitizes(t *testing.T) {
	got := editform.SMSView(models.Lead{SMS: "<p>hi</p><script>x()</script>"})
	assert.Equal(t, "<p>hi</p>", string(got))
}
