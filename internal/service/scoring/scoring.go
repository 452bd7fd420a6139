// Package scoring считает очки сабмита по исходам хоттейков.
// Функции чистые: без базы, без времени, одинаковый вход дает одинаковый счет.
package scoring

import "github.com/yourusername/hottakes-api/internal/domain/entity"

// PositionWeights - очки за верный пик на позиции 0..4
var PositionWeights = [entity.MaxPicks]int{5, 4, 3, 2, 1}

// SwipePoints - очки за верное решение свайпа по хоттейку вне пиков
const SwipePoints = 1

// Weight возвращает вес позиции; за пределами таблицы - 0.
func Weight(position int) int {
	if position < 0 || position >= len(PositionWeights) {
		return 0
	}
	return PositionWeights[position]
}

// Calculate возвращает счет сабмита.
//
// Пик на позиции i дает Weight(i), если его хоттейк TRUE. Пустой слот (nil),
// неизвестный id, FALSE и OPEN дают 0. Решения свайпа учитываются только для
// хоттейков, которых нет среди пиков: hit по TRUE и pass по FALSE дают SwipePoints.
func Calculate(picks []*uint, outcomes []entity.Hottake, decisions []entity.SwipeDecision) int {
	statusByID := make(map[uint]string, len(outcomes))
	for _, h := range outcomes {
		statusByID[h.ID] = h.Status
	}

	score := 0
	picked := make(map[uint]struct{}, len(picks))
	for i, pick := range picks {
		if pick == nil {
			continue
		}
		picked[*pick] = struct{}{}
		if statusByID[*pick] == entity.HottakeStatusTrue {
			score += Weight(i)
		}
	}

	for _, d := range decisions {
		if _, ranked := picked[d.HottakeID]; ranked {
			continue
		}
		status, known := statusByID[d.HottakeID]
		if !known {
			continue
		}
		switch {
		case d.Decision == entity.DecisionHit && status == entity.HottakeStatusTrue:
			score += SwipePoints
		case d.Decision == entity.DecisionPass && status == entity.HottakeStatusFalse:
			score += SwipePoints
		}
	}

	return score
}

// MaxScore - наибольший возможный счет при данном числе хоттейков в дне.
func MaxScore(hottakesPerDay int) int {
	total := 0
	for _, w := range PositionWeights {
		total += w
	}
	if rest := hottakesPerDay - len(PositionWeights); rest > 0 {
		total += rest * SwipePoints
	}
	return total
}
