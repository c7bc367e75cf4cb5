package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

func (*Repository) GetUserByEmail(ctx context.Context, q database.Queryable, email string) (*model.User, error) {
	users, err := getUsers(ctx, q, sq.Eq{"email": email})
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, model.ErrNoRecord
	}

	return users[0], nil
}

func (*Repository) GetUserByID(ctx context.Context, q database.Queryable, id int64) (*model.User, error) {
	users, err := getUsers(ctx, q, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, model.ErrNoRecord
	}

	return users[0], nil
}

func (*Repository) GetUsers(ctx context.Context, q database.Queryable, filter model.UsersFilter) ([]*model.User, error) {
	var predicate sq.And

	if len(filter.IDs) != 0 {
		predicate = append(predicate, sq.Eq{"id": filter.IDs})
	}

	if filter.WithPushToken {
		predicate = append(predicate, sq.NotEq{"push_token": ""}, sq.Eq{"notify": true})
	}

	return getUsers(ctx, q, predicate)
}

func getUsers(ctx context.Context, q database.Queryable, predicate sq.Sqlizer) ([]*model.User, error) {
	qb := baseQuery.
		Where(predicate).
		OrderBy("id")

	var dtos []*userDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.User, len(dtos))
	for i, d := range dtos {
		res[i] = mapToUser(d)
	}

	return res, nil
}
