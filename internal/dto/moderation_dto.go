package dto

type CreateReportRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=community_collection community_item user"`
	ContentID   string `json:"content_id" validate:"required"`
	Reason      string `json:"reason" validate:"required,max=500"`
}

type ActionReportRequest struct {
	Status    string `json:"status" validate:"required,oneof=pending reviewed dismissed removed"`
	AdminNote string `json:"admin_note" validate:"max=1000"`
}

type AchievementView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

type AchievementListResponse struct {
	Achievements []AchievementView `json:"achievements"`
}

type CheckAchievementsResponse struct {
	NewlyUnlocked []string `json:"newly_unlocked"`
}
