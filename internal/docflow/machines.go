package docflow

import (
	"math"
	"time"
)

// P2P states, in order, per spec §4.3.
const (
	POCreated         State = "PO-Created"
	POApproved        State = "PO-Approved"
	GRPosted          State = "GR-Posted"
	InvoiceReceived   State = "Invoice-Received"
	InvoiceVerified   State = "Invoice-Verified"
	PaymentReleased   State = "Payment-Released"
	PaymentCleared    State = "Payment-Cleared"
)

// O2C states, in order, per spec §4.3.
const (
	SOCreated     State = "SO-Created"
	CreditChecked State = "Credit-Checked"
	Delivered     State = "Delivered"
	Invoiced      State = "Invoiced"
	ReceiptPosted State = "Receipt-Posted"
)

func fixedDelay(d time.Duration) func(*Case) time.Duration {
	return func(*Case) time.Duration { return d }
}

// threeWayMatch compares PO/GR/Invoice quantity and price on a case and
// records the result, per spec §4.3's three-way-match requirement.
func threeWayMatch(c *Case) {
	poQty, grQty := c.Quantity["PO"], c.Quantity["GR"]
	poPrice, invPrice := c.UnitPrice["PO"], c.UnitPrice["Invoice"]
	tolerance := c.Tolerance
	if tolerance == 0 {
		tolerance = 0.02
	}
	qtyVariance := relativeVariance(poQty, grQty)
	priceVariance := relativeVariance(poPrice, invPrice)
	c.ThreeWayMatchPassed = qtyVariance <= tolerance && priceVariance <= tolerance
}

func relativeVariance(expected, actual float64) float64 {
	if expected == 0 {
		if actual == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(expected-actual) / math.Abs(expected)
}

// NewP2PMachine builds the Procure-to-Pay state machine.
func NewP2PMachine() *StateMachine {
	return &StateMachine{
		Name:      "P2P",
		States:    []State{POCreated, POApproved, GRPosted, InvoiceReceived, InvoiceVerified, PaymentReleased, PaymentCleared},
		Initial:   POCreated,
		Terminals: []State{PaymentCleared},
		Transitions: []Transition{
			{From: POCreated, To: POApproved,
				Actions: []Action{{Kind: ActionSetStatus, StatusKey: "po_approved", StatusValue: "true"}}},
			{From: POApproved, To: GRPosted, Delay: fixedDelay(3 * 24 * time.Hour),
				Actions: []Action{{Kind: ActionEmitSubledger, SubledgerKind: "Inventory"}}},
			{From: GRPosted, To: InvoiceReceived, Delay: fixedDelay(2 * 24 * time.Hour),
				Actions: []Action{{Kind: ActionLink, PredecessorRef: "GR"}}},
			{From: InvoiceReceived, To: InvoiceVerified,
				Guard: func(c *Case) bool { threeWayMatch(c); return true },
				Actions: []Action{{Kind: ActionEmitSubledger, SubledgerKind: "AP"}}},
			{From: InvoiceVerified, To: PaymentReleased, Delay: fixedDelay(14 * 24 * time.Hour),
				Guard: func(c *Case) bool { return c.ThreeWayMatchPassed },
				Actions: []Action{{Kind: ActionEmitJE, TemplateID: "ap_payment"}}},
			{From: PaymentReleased, To: PaymentCleared, Delay: fixedDelay(1 * 24 * time.Hour),
				Actions: []Action{{Kind: ActionSetStatus, StatusKey: "cleared", StatusValue: "true"}}},
		},
	}
}

// NewO2CMachine builds the Order-to-Cash state machine.
func NewO2CMachine() *StateMachine {
	return &StateMachine{
		Name:      "O2C",
		States:    []State{SOCreated, CreditChecked, Delivered, Invoiced, ReceiptPosted},
		Initial:   SOCreated,
		Terminals: []State{ReceiptPosted},
		Transitions: []Transition{
			{From: SOCreated, To: CreditChecked,
				Actions: []Action{{Kind: ActionSetStatus, StatusKey: "credit_checked", StatusValue: "true"}}},
			{From: CreditChecked, To: Delivered, Delay: fixedDelay(4 * 24 * time.Hour),
				Actions: []Action{{Kind: ActionEmitSubledger, SubledgerKind: "Inventory"}}},
			{From: Delivered, To: Invoiced, Delay: fixedDelay(1 * 24 * time.Hour),
				Actions: []Action{{Kind: ActionEmitJE, TemplateID: "ar_invoice"}, {Kind: ActionEmitSubledger, SubledgerKind: "AR"}}},
			{From: Invoiced, To: ReceiptPosted, Delay: fixedDelay(21 * 24 * time.Hour),
				Actions: []Action{{Kind: ActionEmitJE, TemplateID: "ar_receipt"}}},
		},
	}
}
