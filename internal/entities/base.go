package entities

import "time"

// Timestamps - общие временные метки записей.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Record - запись рабочего набора: стабильный строковый id и способ
// получить копию с другим id.
type Record[T any] interface {
	GetID() string
	WithID(id string) T
}
