package dto

// CreateHottakeRequest - тело POST /api/hottakes. Без gameDay хоттейк попадает в текущий день.
type CreateHottakeRequest struct {
	Text    string `json:"text" binding:"required,min=3,max=500"`
	GameDay *int   `json:"gameDay" binding:"omitempty,min=1"`
}

// UpdateHottakeStatusRequest - тело PATCH /api/hottakes/:id
type UpdateHottakeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN TRUE FALSE"`
}
