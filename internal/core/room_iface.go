package core

import "github.com/dkeye/Tandem/internal/domain"

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}
