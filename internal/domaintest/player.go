package domaintest

import (
	"time"

	"github.com/Amund211/gamenight/internal/domain"
)

type playerBuilder struct {
	player *domain.Player
}

func (pb *playerBuilder) WithName(name string) *playerBuilder {
	pb.player.Name = name
	return pb
}

func (pb *playerBuilder) WithCareer(goals, assists, wins int) *playerBuilder {
	pb.player.Career = domain.PlayerStats{Goals: goals, Assists: assists, Wins: wins}
	return pb
}

func (pb *playerBuilder) Build() domain.Player {
	return *pb.player
}

func NewPlayerBuilder(id string, createdAt time.Time) *playerBuilder {
	return &playerBuilder{
		player: &domain.Player{
			ID:        id,
			Name:      "Player " + id,
			CreatedAt: createdAt,
		},
	}
}
