package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/yigit/admission/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	ApplicationRepository *ApplicationRepository
	StatsRepository       *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(q db.Querier) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(q),
		ApplicationRepository: NewApplicationRepository(q),
		StatsRepository:       NewStatsRepository(q),
	}
}

// psql is the statement builder shared by every repository
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
