package dto

import "time"

// LeaderboardEntry - строка таблицы лидеров
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	Nickname    string    `json:"nickname"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
	// Submissions - сколько дней вошло в сумму (для общей таблицы)
	Submissions int `json:"submissions"`
}

// LeaderboardResponse - ответ GET /api/leaderboard
type LeaderboardResponse struct {
	GameDay *int               `json:"gameDay"`
	Entries []LeaderboardEntry `json:"entries"`
}
