package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fitora/fitora/internal/member/domain"
	"github.com/fitora/fitora/pkg/repository"
	"gorm.io/gorm"
)

type lookup struct {
	memberrepo repository.Repository[domain.Member]
}

func NewLookup(db *gorm.DB) domain.Lookup {
	return &lookup{memberrepo: repository.ProvideStore[domain.Member](db)}
}

func (l *lookup) GetMember(ctx context.Context, id snowflake.ID) (domain.Member, error) {
	item, err := l.memberrepo.FindOne(ctx, &domain.Member{ID: id})
	if err != nil {
		return domain.Member{}, err
	}
	if item == nil {
		return domain.Member{}, domain.ErrNotFound
	}
	return *item, nil
}
