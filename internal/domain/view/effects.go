// internal/domain/view/effects.go
package view

import (
	"time"
)

// CheckoutControlID names the button that starts checkout
const CheckoutControlID = "finalizar-compra"

// Kind is the tone of a message
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is a transient notification
type Toast struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Inline is a message rendered next to a page region
type Inline struct {
	Target  string `json:"target"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Confirm asks the shopper to confirm an action. The browser repeats the
// request with confirmed set when the answer is yes.
type Confirm struct {
	Action  string `json:"action"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Prompt asks the shopper for a value the flow is missing
type Prompt struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Redirect sends the browser elsewhere, optionally after a delay
type Redirect struct {
	URL     string `json:"url"`
	DelayMS int64  `json:"delay_ms"`
}

// RedirectTo builds a redirect effect
func RedirectTo(url string, delay time.Duration) *Redirect {
	return &Redirect{URL: url, DelayMS: delay.Milliseconds()}
}

// Action is a button inside a modal
type Action struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	URL     string `json:"url,omitempty"`
	Dismiss bool   `json:"dismiss,omitempty"`
}

// Modal is a dialog the browser should open
type Modal struct {
	Kind    string      `json:"kind"`
	Title   string      `json:"title"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Actions []Action    `json:"actions,omitempty"`
}

// Control is the state of an interactive element
type Control struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
	Busy     bool   `json:"busy"`
	Hidden   bool   `json:"hidden"`
}

// Effects collects everything the browser has to do after a gateway call
type Effects struct {
	Toasts     []Toast    `json:"toasts,omitempty"`
	Inline     []Inline   `json:"inline,omitempty"`
	Confirm    *Confirm   `json:"confirm,omitempty"`
	Prompt     *Prompt    `json:"prompt,omitempty"`
	Modal      *Modal     `json:"modal,omitempty"`
	CloseModal bool       `json:"close_modal,omitempty"`
	Redirect   *Redirect  `json:"redirect,omitempty"`
	Controls   []Control  `json:"controls,omitempty"`
	Clipboard  *Clipboard `json:"clipboard,omitempty"`
}

// Clipboard is text the browser must copy
type Clipboard struct {
	Text string `json:"text"`
}

// Success adds a success toast
func (e *Effects) Success(message string) {
	e.Toasts = append(e.Toasts, Toast{Kind: KindSuccess, Message: message})
}

// Error adds an error toast
func (e *Effects) Error(message string) {
	e.Toasts = append(e.Toasts, Toast{Kind: KindError, Message: message})
}

// Info adds an informational toast
func (e *Effects) Info(message string) {
	e.Toasts = append(e.Toasts, Toast{Kind: KindInfo, Message: message})
}

// InlineError adds an error message next to target
func (e *Effects) InlineError(target, message string) {
	e.Inline = append(e.Inline, Inline{Target: target, Kind: KindError, Message: message})
}

// InlineInfo adds an informational message next to target
func (e *Effects) InlineInfo(target, message string) {
	e.Inline = append(e.Inline, Inline{Target: target, Kind: KindInfo, Message: message})
}

// SetControl records the state of a control, replacing an earlier one with the same id
func (e *Effects) SetControl(control Control) {
	for i := range e.Controls {
		if e.Controls[i].ID == control.ID {
			e.Controls[i] = control
			return
		}
	}
	e.Controls = append(e.Controls, control)
}

// Control looks up a control by id
func (e *Effects) Control(id string) (Control, bool) {
	for _, control := range e.Controls {
		if control.ID == id {
			return control, true
		}
	}
	return Control{}, false
}

// LastToast returns the most recent toast
func (e *Effects) LastToast() (Toast, bool) {
	if len(e.Toasts) == 0 {
		return Toast{}, false
	}
	return e.Toasts[len(e.Toasts)-1], true
}
