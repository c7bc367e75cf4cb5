package label

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/database"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

type labelDTO struct {
	ID     int64
	UserID int64
	Title  string
	Color  string
}

func (*Repository) CreateLabel(ctx context.Context, q database.Queryable, label *model.Label) (int64, error) {
	qb := database.PSQL.
		Insert(database.LabelsTable).
		Columns("user_id", "title", "color").
		Values(label.UserID, label.Title, label.Color).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}

func (*Repository) GetUserLabels(ctx context.Context, q database.Queryable, userID int64) ([]*model.Label, error) {
	qb := database.PSQL.
		Select("id", "user_id", "title", "color").
		From(database.LabelsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id")

	var dtos []*labelDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Label, len(dtos))
	for i, d := range dtos {
		res[i] = &model.Label{
			ID:     d.ID,
			UserID: d.UserID,
			Title:  d.Title,
			Color:  d.Color,
		}
	}

	return res, nil
}
