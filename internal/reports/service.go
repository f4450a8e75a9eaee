// Package reports aggregates operational and financial data into
// period overviews.
package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/telemim/telemim-ops/internal/moves"
	"github.com/telemim/telemim-ops/internal/shared"
)

// Overview is one period's consolidated picture.
type Overview struct {
	From           time.Time              `json:"from"`
	To             time.Time              `json:"to"`
	MovesByStatus  map[moves.MoveStatus]int `json:"moves_by_status"`
	IncomeCents    int64                  `json:"income_cents"`
	ExpenseCents   int64                  `json:"expense_cents"`
	BalanceCents   int64                  `json:"balance_cents"`
	AttendanceDays map[string]int         `json:"attendance_days"`
	Narrative      string                 `json:"narrative,omitempty"`
}

// MoveCounter supplies move status totals.
type MoveCounter interface {
	CountByStatus(ctx context.Context) (map[moves.MoveStatus]int, error)
}

// FinanceTotals supplies the period's income and expense.
type FinanceTotals interface {
	Totals(ctx context.Context, from, to time.Time) (incomeCents, expenseCents int64, err error)
}

// AttendanceSource supplies helper presence counts for the period.
type AttendanceSource interface {
	AttendanceSummary(ctx context.Context, from, to time.Time) (map[string]int, error)
}

// Narrator turns the period's facts into a short written summary.
type Narrator interface {
	Summarize(ctx context.Context, facts string) string
}

// Service assembles period overviews from the domain sources.
type Service struct {
	moves      MoveCounter
	finance    FinanceTotals
	attendance AttendanceSource
	narrator   Narrator
}

func NewService(moveCounter MoveCounter, finance FinanceTotals, attendance AttendanceSource, narrator Narrator) *Service {
	return &Service{moves: moveCounter, finance: finance, attendance: attendance, narrator: narrator}
}

// Overview gathers the period's numbers in parallel and, when asked,
// attaches a narrative summary.
func (s *Service) Overview(ctx context.Context, actor shared.Actor, from, to time.Time, withNarrative bool) (Overview, error) {
	if !actor.Can(shared.CapViewReports) {
		return Overview{}, shared.ErrForbidden
	}
	if to.Before(from) {
		return Overview{}, shared.Refuse("período inválido: fim antes do início")
	}

	overview := Overview{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.moves.CountByStatus(gctx)
		if err != nil {
			return err
		}
		overview.MovesByStatus = counts
		return nil
	})
	g.Go(func() error {
		income, expense, err := s.finance.Totals(gctx, from, to)
		if err != nil {
			return err
		}
		overview.IncomeCents = income
		overview.ExpenseCents = expense
		return nil
	})
	g.Go(func() error {
		summary, err := s.attendance.AttendanceSummary(gctx, from, to)
		if err != nil {
			return err
		}
		overview.AttendanceDays = summary
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	overview.BalanceCents = overview.IncomeCents - overview.ExpenseCents

	if withNarrative && s.narrator != nil {
		overview.Narrative = s.narrator.Summarize(ctx, overview.facts())
	}
	return overview, nil
}

// facts flattens the overview into prompt-ready lines.
func (o Overview) facts() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Período: %s a %s\n", o.From.Format("02/01/2006"), o.To.Format("02/01/2006"))

	statuses := make([]string, 0, len(o.MovesByStatus))
	for status := range o.MovesByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(&b, "Mudanças %s: %d\n", status, o.MovesByStatus[moves.MoveStatus(status)])
	}

	fmt.Fprintf(&b, "Receitas: R$ %.2f\n", float64(o.IncomeCents)/100)
	fmt.Fprintf(&b, "Despesas: R$ %.2f\n", float64(o.ExpenseCents)/100)
	fmt.Fprintf(&b, "Saldo: R$ %.2f\n", float64(o.BalanceCents)/100)
	fmt.Fprintf(&b, "Ajudantes com presença no período: %d\n", len(o.AttendanceDays))
	return b.String()
}
