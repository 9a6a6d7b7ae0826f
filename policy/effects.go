package policy

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification audiences. The policy layer names who should hear about a
// transition; the dispatcher resolves the audience to email addresses.
const (
	AudienceSubmitter = "submitter"
	AudienceClient    = "client"
)

// Effect is a side-effecting consequence of a successful transition,
// executed by the dispatcher after the record itself is persisted.
type Effect interface {
	isEffect()
}

// LedgerAdjustment mutates the parent project's running totals. Deltas are
// applied with atomic increments, never read-modify-write. Transactional
// marks adjustments that must commit in the same session transaction as the
// record write (variation approval, payment creation).
type LedgerAdjustment struct {
	ProjectID           primitive.ObjectID
	UsedHoursDelta      float64
	AllocatedHoursDelta float64
	ReceivedCentsDelta  int64
	Transactional       bool
}

func (LedgerAdjustment) isEffect() {}

// AuditAppend inserts one immutable activity entry.
type AuditAppend struct {
	Entity     string
	EntityID   primitive.ObjectID
	Action     string
	FromStatus string
	ToStatus   string
	Detail     string
}

func (AuditAppend) isEffect() {}

// Notification hands a templated email to the outbox. Best-effort: a send
// failure is logged and swallowed, never propagated.
type Notification struct {
	Audience string
	Template string
	Data     map[string]string
}

func (Notification) isEffect() {}

// PaymentRecord creates a payment row as a consequence of marking an
// invoice paid. Written inside the same transaction as the ledger add.
type PaymentRecord struct {
	ProjectID   primitive.ObjectID
	InvoiceID   primitive.ObjectID
	AmountCents int64
}

func (PaymentRecord) isEffect() {}
