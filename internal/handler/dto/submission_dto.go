package dto

import (
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
)

// SwipeDecisionRequest - решение свайпа во входящем запросе
type SwipeDecisionRequest struct {
	HottakeID uint   `json:"hottakeId"`
	Decision  string `json:"decision"`
}

// SubmitRequest - тело POST /api/submissions.
// В picks допускается null: пустой слот ранга. Форма проверяется в сервисе.
type SubmitRequest struct {
	Picks          []*uint                `json:"picks"`
	SwipeDecisions []SwipeDecisionRequest `json:"swipeDecisions"`
}

// Decisions переводит решения в доменный тип
func (r *SubmitRequest) Decisions() []entity.SwipeDecision {
	decisions := make([]entity.SwipeDecision, len(r.SwipeDecisions))
	for i, d := range r.SwipeDecisions {
		decisions[i] = entity.SwipeDecision{HottakeID: d.HottakeID, Decision: d.Decision}
	}
	return decisions
}

// SubmissionView - сабмит в формате ответа клиенту
type SubmissionView struct {
	Nickname       string                 `json:"nickname"`
	Picks          []*uint                `json:"picks"`
	SwipeDecisions []entity.SwipeDecision `json:"swipeDecisions"`
	Score          int                    `json:"score"`
	SubmittedAt    time.Time              `json:"submittedAt"`
	GameDay        int                    `json:"gameDay"`
}

// NewSubmissionView создает представление сабмита со счетом score
func NewSubmissionView(s *entity.Submission, nickname string, score int) *SubmissionView {
	picks := []*uint(s.Picks)
	if picks == nil {
		picks = []*uint{}
	}
	decisions := []entity.SwipeDecision(s.SwipeDecisions)
	if decisions == nil {
		decisions = []entity.SwipeDecision{}
	}
	return &SubmissionView{
		Nickname:       nickname,
		Picks:          picks,
		SwipeDecisions: decisions,
		Score:          score,
		SubmittedAt:    s.UpdatedAt,
		GameDay:        s.GameDay,
	}
}
