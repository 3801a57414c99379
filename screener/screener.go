package screener

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ipo-radar/config"
	"ipo-radar/models"
	"ipo-radar/observability"
)

// Domain labels used in logs and metrics
const (
	DomainIPOs   = "ipos"
	DomainStocks = "stocks"
)

// Normalizer validates, orders and stamps ids on freshly extracted records.
//
// Invalid records are logged and counted. They are kept unless strict mode is
// on, in which case they are dropped together with picks scoring below the
// momentum floor.
type Normalizer struct {
	validate    *validator.Validate
	strict      bool
	minMomentum float64
}

// NewNormalizer creates a Normalizer from the screener config
func NewNormalizer(cfg *config.ScreenerConfig) *Normalizer {
	return &Normalizer{
		validate:    validator.New(),
		strict:      cfg.StrictValidation,
		minMomentum: cfg.MinMomentumScore,
	}
}

// IPOs normalizes a batch of listings in place and returns the kept ones
func (n *Normalizer) IPOs(listings []models.IPOListing) []models.IPOListing {
	kept := make([]models.IPOListing, 0, len(listings))
	invalid := 0

	for _, l := range listings {
		if err := n.Validate(l); err != nil {
			invalid++
			observability.Warn("invalid ipo listing",
				"company", l.NaturalKey(),
				"error", err)
			if n.strict {
				continue
			}
		}
		kept = append(kept, l)
	}

	observability.GetMetrics().RecordInvalidRecords(DomainIPOs, invalid, n.strict)
	AssignIDs(kept)
	SortIPOs(kept)
	return kept
}

// StockPicks normalizes a batch of picks and returns the kept ones
func (n *Normalizer) StockPicks(picks []models.StockPick) []models.StockPick {
	kept := make([]models.StockPick, 0, len(picks))
	invalid := 0
	metrics := observability.GetMetrics()

	for _, p := range picks {
		err := n.Validate(p)
		if err == nil && p.MomentumScore.Float() < n.minMomentum {
			err = fmt.Errorf("momentum_score %.0f below %.0f", p.MomentumScore.Float(), n.minMomentum)
		}
		if err != nil {
			invalid++
			observability.Warn("invalid stock pick",
				"ticker", p.NaturalKey(),
				"error", err)
			if n.strict {
				continue
			}
		}
		metrics.RecordMomentumScore(string(p.Signal), p.MomentumScore.Float())
		kept = append(kept, p)
	}

	metrics.RecordInvalidRecords(DomainStocks, invalid, n.strict)
	AssignIDs(kept)
	SortStockPicks(kept)
	return kept
}

// Validate checks a record against its struct tags and flattens the
// validator's field errors into one message.
func (n *Normalizer) Validate(record any) error {
	err := n.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

// identifiable is a pointer to a record carrying a synthetic id
type identifiable[T any] interface {
	*T
	SetID(uuid.UUID)
}

// AssignIDs stamps a fresh random UUID on every record
func AssignIDs[T any, P identifiable[T]](records []T) {
	for i := range records {
		P(&records[i]).SetID(uuid.New())
	}
}

// SortIPOs orders listings by expected date ascending. Listings without a
// parseable date go last, keeping their relative order.
func SortIPOs(listings []models.IPOListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		di, okI := listings[i].ExpectedTime()
		dj, okJ := listings[j].ExpectedTime()
		switch {
		case okI && okJ:
			return di.Before(dj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// SortStockPicks orders picks by momentum score descending
func SortStockPicks(picks []models.StockPick) {
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].MomentumScore > picks[j].MomentumScore
	})
}
