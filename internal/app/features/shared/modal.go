package shared

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/formutil"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
)

// ModalTarget is the element id modals are swapped into.
const ModalTarget = "modal"

// EditVM is the view model of an edit modal. Outside htmx the same
// template is wrapped in the page layout.
type EditVM struct {
	viewdata.BaseVM
	formutil.Base

	Heading string
	Action  string // form post URL
	Cancel  string // list URL
	Inputs  []editform.Input
}

// NewEditVM builds an edit modal posting to action.
func NewEditVM(r *http.Request, heading, action, cancel string, inputs []editform.Input) EditVM {
	return EditVM{
		BaseVM:  viewdata.NewBaseVM(r, heading, cancel),
		Heading: heading,
		Action:  action,
		Cancel:  cancel,
		Inputs:  inputs,
	}
}

// ViewVM is a read-only modal.
type ViewVM struct {
	viewdata.BaseVM

	Heading string
	Body    template.HTML
	Cancel  string
}

// RetargetModal makes htmx swap the response into the modal instead of
// the element the request named.
func RetargetModal(w http.ResponseWriter) {
	w.Header().Set("HX-Retarget", "#"+ModalTarget)
	w.Header().Set("HX-Reswap", "innerHTML")
}
