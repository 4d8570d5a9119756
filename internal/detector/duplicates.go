package detector

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/models"
	"ledger-reconciler/internal/normalize"
)

// DuplicateType classifies how confidently a group is judged to be
// repeated postings of the same economic event.
type DuplicateType string

const (
	DuplicateExact    DuplicateType = "exact"
	DuplicateProbable DuplicateType = "probable"
	DuplicatePossible DuplicateType = "possible"
)

// Confidence returns the fixed confidence percentage for this
// classification.
func (d DuplicateType) Confidence() int {
	switch d {
	case DuplicateExact:
		return 95
	case DuplicateProbable:
		return 85
	case DuplicatePossible:
		return 65
	default:
		return 0
	}
}

// DuplicateGroup is a set of two or more records judged to be repeats.
// Exposure is the per-record amount multiplied by the count of excess
// postings beyond the first legitimate one.
type DuplicateGroup struct {
	Type       DuplicateType               `json:"type"`
	Confidence int                         `json:"confidence"`
	Exposure   decimal.Decimal             `json:"exposure"`
	Reasons    []string                    `json:"reasons"`
	Records    []*models.TransactionRecord `json:"records"`
}

// duplicateWindowDays is the maximum date gap at which two records are
// considered duplicate candidates.
const duplicateWindowDays = 3

// DuplicateDetector partitions a record set into groups of probable
// repeated postings.
type DuplicateDetector struct{}

// NewDuplicateDetector creates a duplicate detector.
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{}
}

// Detect groups the combined settlement and ledger record set. Grouping
// is a single pass: each ungrouped record seeds a group, then every
// later record related to any current member joins it. A record belongs
// to at most one group per run. Groups are returned sorted by exposure
// descending.
func (d *DuplicateDetector) Detect(records []*models.TransactionRecord) []*DuplicateGroup {
	ordered := make([]*models.TransactionRecord, 0, len(records))
	for _, record := range records {
		if record != nil {
			ordered = append(ordered, record)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	grouped := make(map[string]bool)
	groups := make([]*DuplicateGroup, 0)

	for i, seed := range ordered {
		if grouped[seed.ID] {
			continue
		}

		members := []*models.TransactionRecord{seed}
		for _, candidate := range ordered[i+1:] {
			if grouped[candidate.ID] {
				continue
			}
			for _, member := range members {
				if areDuplicateCandidates(member, candidate) {
					members = append(members, candidate)
					grouped[candidate.ID] = true
					break
				}
			}
		}

		if len(members) < 2 {
			continue
		}
		grouped[seed.ID] = true
		groups = append(groups, buildGroup(members))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Exposure.GreaterThan(groups[j].Exposure)
	})

	return groups
}

// areDuplicateCandidates reports whether two records look like repeated
// postings. Amounts must match exactly in absolute value and dates must
// fall within the window; beyond that either the counterparties or the
// non-empty references have to agree.
func areDuplicateCandidates(a, b *models.TransactionRecord) bool {
	if !a.EffectiveAmount().Abs().Equal(b.EffectiveAmount().Abs()) {
		return false
	}
	if models.DaysBetween(a.Date, b.Date) > duplicateWindowDays {
		return false
	}

	if normalize.NamesMatch(a.Contact, b.Contact) {
		return true
	}
	return a.Reference != "" && a.Reference == b.Reference
}

func buildGroup(members []*models.TransactionRecord) *DuplicateGroup {
	dupType, reasons := classifyGroup(members)
	amount := members[0].EffectiveAmount().Abs()
	excess := decimal.NewFromInt(int64(len(members) - 1))

	return &DuplicateGroup{
		Type:       dupType,
		Confidence: dupType.Confidence(),
		Exposure:   amount.Mul(excess),
		Reasons:    reasons,
		Records:    members,
	}
}

// classifyGroup grades a group. Exact needs every member on the same
// date with matching counterparties and one identical non-empty
// reference. Probable tolerates references differing and a one-day date
// spread. Anything weaker is possible.
func classifyGroup(members []*models.TransactionRecord) (DuplicateType, []string) {
	sameDate := true
	adjacentDates := true
	sameContact := true
	sameReference := members[0].Reference != ""

	first := members[0]
	for _, m := range members[1:] {
		gap := models.DaysBetween(first.Date, m.Date)
		if gap != 0 {
			sameDate = false
		}
		if gap > 1 {
			adjacentDates = false
		}
		if !normalize.NamesMatch(first.Contact, m.Contact) {
			sameContact = false
		}
		if m.Reference == "" || m.Reference != first.Reference {
			sameReference = false
		}
	}

	switch {
	case sameDate && sameContact && sameReference:
		return DuplicateExact, []string{"same date", "same counterparty", "same reference"}
	case adjacentDates && sameContact:
		return DuplicateProbable, []string{"adjacent dates", "same counterparty"}
	default:
		return DuplicatePossible, []string{"equal amounts within date window"}
	}
}
