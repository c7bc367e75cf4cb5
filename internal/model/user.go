package model

type UserCreate struct {
	FullName string
	Email    string
	Timezone string
}

type User struct {
	ID        int64
	PushToken string
	Notify    bool
	UserCreate
}

type UsersFilter struct {
	IDs           []int64
	WithPushToken bool
}
