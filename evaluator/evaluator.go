// Package evaluator drives the rate plan engine over every combination
// of stay, rate plan message, rate plan code and room type code, and
// renders the resulting report. One bad rate plan or stay never stops
// the batch: every skipped combination becomes its own warning entry.
package evaluator

import (
	"golang.org/x/text/currency"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/logger"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/rateplan"
)

// Message is one named rate plan message to evaluate.
type Message struct {
	Name string
	Doc  *ota.Document
}

// Kind classifies a report entry.
type Kind string

const (
	// KindWarning: the combination was skipped because of malformed data.
	KindWarning Kind = "warning"
	// KindDenied: a booking rule forbids the stay.
	KindDenied Kind = "denied"
	// KindNoMatch: no rate could price every night of the stay.
	KindNoMatch Kind = "no-match"
	// KindMatch: the stay was priced; Match holds the itemized report.
	KindMatch Kind = "match"
)

// Entry is one outcome of the evaluation: a warning, a denial, or the
// pricing result of a (stay, rate plan, room type) triple. RatePlanCode
// and InvTypeCode are empty for warnings raised above that level.
type Entry struct {
	StayIndex    int
	Message      string
	RatePlanCode string
	InvTypeCode  string
	Kind         Kind
	Reason       string
	Match        *rateplan.MatchResult
}

// Result is the full evaluation outcome for a batch of stays and
// messages, in deterministic order: stays outermost, then messages,
// rate plan codes and room type codes as they appear in the input.
type Result struct {
	Currency currency.Unit
	Stays    []rateplan.Stay
	Entries  []Entry
}

// Evaluator runs the engine and reports skipped combinations to its
// logger.
type Evaluator struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Evaluator {
	return &Evaluator{log: log}
}

func (e *Evaluator) warn(entry Entry) Entry {
	if e.log != nil {
		e.log.Warn("combination skipped",
			"message", entry.Message,
			"rate_plan", entry.RatePlanCode,
			"room_type", entry.InvTypeCode,
			"reason", entry.Reason,
		)
	}
	return entry
}

// Evaluate runs every stay against every message. All amounts are EUR,
// per the AlpineBits standard.
func (e *Evaluator) Evaluate(msgs []Message, stays []rateplan.Stay) *Result {
	res := &Result{Currency: currency.EUR, Stays: stays}

	for si, stay := range stays {
		for _, msg := range msgs {

			rpcodes, err := rateplan.PrecheckMessage(msg.Doc)
			if err != nil {
				res.Entries = append(res.Entries, e.warn(Entry{
					StayIndex: si, Message: msg.Name, Kind: KindWarning, Reason: err.Error(),
				}))
				continue
			}

			for _, rpcode := range rpcodes {

				itcodes, err := rateplan.PrecheckRates(msg.Doc, rpcode)
				if err != nil {
					res.Entries = append(res.Entries, e.warn(Entry{
						StayIndex: si, Message: msg.Name, RatePlanCode: rpcode,
						Kind: KindWarning, Reason: err.Error(),
					}))
					continue
				}

				offers, err := rateplan.ParseOffers(msg.Doc, rpcode)
				if err != nil {
					res.Entries = append(res.Entries, e.warn(Entry{
						StayIndex: si, Message: msg.Name, RatePlanCode: rpcode,
						Kind: KindWarning, Reason: err.Error(),
					}))
					continue
				}

				for _, itcode := range itcodes {
					res.Entries = append(res.Entries, e.evaluateTriple(si, msg, rpcode, itcode, stay, offers))
				}
			}
		}
	}

	return res
}

// evaluateTriple checks restrictions first and prices the stay only when
// no booking rule forbids it.
func (e *Evaluator) evaluateTriple(si int, msg Message, rpcode, itcode string, stay rateplan.Stay, offers rateplan.Offers) Entry {
	entry := Entry{
		StayIndex: si, Message: msg.Name, RatePlanCode: rpcode, InvTypeCode: itcode,
	}

	denial, err := rateplan.CheckRestrictions(msg.Doc, rpcode, itcode, stay)
	if err != nil {
		entry.Kind = KindWarning
		entry.Reason = err.Error()
		return e.warn(entry)
	}
	if denial != nil {
		entry.Kind = KindDenied
		entry.Reason = denial.Reason
		return entry
	}

	match, err := rateplan.MatchRates(msg.Doc, rpcode, itcode, stay, offers)
	if err != nil {
		entry.Kind = KindWarning
		entry.Reason = err.Error()
		return e.warn(entry)
	}
	if !match.Matched() {
		entry.Kind = KindNoMatch
		entry.Match = match
		return entry
	}

	entry.Kind = KindMatch
	entry.Match = match
	return entry
}
