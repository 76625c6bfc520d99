package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/ledger"
	"pocketbook/internal/receipt"
)

// ManualEntry is the raw content of the manual entry form.
type ManualEntry struct {
	Kind       string
	Amount     string
	CategoryID string
	Date       string
	Note       string
}

// Analysis is the outcome of receipt recognition. Draft is always usable
// as a form pre-fill, even when recognition failed.
type Analysis struct {
	Draft      core.Draft
	Recognized bool
	Err        error
}

// CaptureService turns user input into ledger transactions.
type CaptureService struct {
	ledger     *LedgerService
	classifier receipt.Classifier
	now        func() time.Time
}

func NewCaptureService(ledger *LedgerService, classifier receipt.Classifier) *CaptureService {
	return &CaptureService{ledger: ledger, classifier: classifier, now: time.Now}
}

// AddManual validates entry, fills the form defaults and stores the result.
// When only persistence fails the entry is already in the ledger: the
// returned transaction is set alongside an ErrPersist error, and callers
// must not retry the add or the entry is recorded twice.
func (s *CaptureService) AddManual(ctx context.Context, entry ManualEntry) (core.Transaction, error) {
	kind := core.KindExpense
	if strings.TrimSpace(entry.Kind) != "" {
		k, err := core.ParseKind(entry.Kind)
		if err != nil {
			return core.Transaction{}, err
		}
		kind = k
	}

	amount, err := core.ParseAmount(entry.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	categoryID := strings.TrimSpace(entry.CategoryID)
	if categoryID == "" {
		categoryID = core.Default(kind).ID
	}

	date := core.DateOf(s.now())
	if strings.TrimSpace(entry.Date) != "" {
		date, err = core.ParseDate(strings.TrimSpace(entry.Date))
		if err != nil {
			return core.Transaction{}, err
		}
	}

	tx := core.Transaction{
		ID:         s.ledger.NewID(),
		Kind:       kind,
		Amount:     amount,
		CategoryID: categoryID,
		Date:       date,
		Note:       strings.TrimSpace(entry.Note),
	}
	if err := s.ledger.Add(ctx, tx); err != nil {
		if errors.Is(err, ledger.ErrPersist) {
			return tx, err
		}
		return core.Transaction{}, err
	}
	return tx, nil
}

// Analyze asks the classifier for a draft. Any failure degrades to a blank
// expense form so the user can continue manually.
func (s *CaptureService) Analyze(ctx context.Context, img receipt.Image) Analysis {
	today := s.now()
	if s.classifier == nil {
		return Analysis{Draft: core.BlankDraft(core.KindExpense, today), Err: receipt.ErrNotConfigured}
	}

	draft, err := s.classifier.Classify(ctx, img)
	if err != nil {
		slog.WarnContext(ctx, "Receipt recognition failed, falling back to manual entry", "error", err)
		return Analysis{Draft: core.BlankDraft(core.KindExpense, today), Err: err}
	}
	return Analysis{Draft: draft.Normalize(today), Recognized: true}
}
