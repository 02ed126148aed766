package domain

// Event names shared by the wire protocol in both directions.
const (
	EventCreateOrJoin    = "create-or-join"
	EventMessage         = "message"
	EventTurnOnVideo     = "turn-on-video"
	EventTurnOffVideo    = "turn-off-video"
	EventBye             = "bye"
	EventIPAddr          = "ipaddr"
	EventLog             = "log"
	EventCreated         = "created"
	EventJoin            = "join"
	EventJoined          = "joined"
	EventReady           = "ready"
	EventFull            = "full"
	EventParticipantLeft = "participant-left"
)

// legacyCreateOrJoin is the name older clients send.
const legacyCreateOrJoin = "create or join"

// NormalizeEvent maps accepted aliases onto their canonical name.
func NormalizeEvent(name string) string {
	if name == legacyCreateOrJoin {
		return EventCreateOrJoin
	}
	return name
}
