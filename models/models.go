package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null;column:password" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Habits       []Habit   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type Habit struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex:idx_user_habit;not null" json:"user_id"`
	Title     string     `gorm:"size:100;uniqueIndex:idx_user_habit;not null" json:"title"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Logs      []HabitLog `gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE" json:"-"`
}

// HabitLog rows survive toggle-off: a row with Completed=false is history,
// not completion. Aggregation must filter on completed = true.
type HabitLog struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	HabitID   uint   `gorm:"uniqueIndex:idx_habit_day;not null" json:"habit_id"`
	LogDate   string `gorm:"size:10;uniqueIndex:idx_habit_day;not null" json:"date"`
	Completed bool   `gorm:"default:false;not null" json:"completed"`
}

// HabitWithDates is the bulk-read shape the client consumes: a habit plus the
// dates where completed = true. All statistics derive from this payload.
type HabitWithDates struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	CompletedDates []string `json:"completed_dates"`
}
