package domain

// RoomKey is supplied by clients; the server assigns it no meaning.
type RoomKey string

// RoomCapacity is the number of participants a room can hold.
const RoomCapacity = 2

func ParseRoomKey(raw string) (RoomKey, error) {
	if len(raw) == 0 {
		return "", ErrRoomKeyEmpty
	}
	if len(raw) > MaxRoomKeyLen {
		return "", ErrRoomKeyTooLong
	}
	return RoomKey(raw), nil
}
