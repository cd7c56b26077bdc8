package domain

import "github.com/shopspring/decimal"

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseFormOpen         Phase = "form_open"
	PhaseSubmitting       Phase = "submitting"
	PhaseConfirmingDelete Phase = "confirming_delete"
)

// A FlowState describes the form and delete flows of one entity kind.
type FlowState struct {
	Form         Phase
	EditingID    *int64
	Delete       Phase
	DeleteTarget *int64
}

type AdminState struct {
	Items      FlowState
	Categories FlowState
	InFlight   bool
}

type CategoryRow struct {
	Category
	ItemCount int
}

// A Menu is what the admin screen renders.
type Menu struct {
	View       []MenuItem
	Total      int
	Categories []CategoryRow
	Filter     Filter
	State      AdminState
}

type CartLine struct {
	Item     MenuItem
	Quantity int
}

type Cart struct {
	Lines []CartLine
	Total decimal.Decimal
}
