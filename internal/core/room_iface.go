package core

import "github.com/dkeye/pairsignal/internal/domain"

type RoomInfo struct {
	Key         domain.RoomKey `json:"room"`
	MemberCount int            `json:"client_count"`
}
