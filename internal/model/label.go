package model

type Label struct {
	ID     int64
	UserID int64
	Title  string
	Color  string
}
