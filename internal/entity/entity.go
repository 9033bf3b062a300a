package entity

import "maps"

// Entity is anything the cloud reports with a stable identifier that can
// absorb update fragments and render a flat snapshot.
type Entity interface {
	ID() string
	UpdateData(update *Update)
	Data() map[string]any
}

// Update carries one raw fragment for a single entity.
type Update struct {
	data map[string]any
}

func NewUpdate(data map[string]any) *Update {
	return &Update{data: maps.Clone(data)}
}

// Data returns the raw fragment. Callers must not modify it.
func (u *Update) Data() map[string]any {
	if u == nil || u.data == nil {
		return map[string]any{}
	}
	return u.data
}
