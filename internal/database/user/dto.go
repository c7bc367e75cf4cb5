package user

import (
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

type userDTO struct {
	ID        int64
	FullName  string
	Email     string
	Timezone  string
	PushToken string
	Notify    bool
}

func mapToUser(dto *userDTO) *model.User {
	return &model.User{
		ID:        dto.ID,
		PushToken: dto.PushToken,
		Notify:    dto.Notify,
		UserCreate: model.UserCreate{
			FullName: dto.FullName,
			Email:    dto.Email,
			Timezone: dto.Timezone,
		},
	}
}
