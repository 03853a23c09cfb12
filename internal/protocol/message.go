// Package protocol defines the wire contract between clients and the server:
// the self-describing message envelope, the request/response/event kinds, and
// the snapshot types pushed to subscribers. Every logical exchange is one
// length-prefixed message (see codec.go), strictly request-then-response on a
// session connection; event messages flow server-to-client only, on a
// subscription connection.
package protocol

import "strings"

// Request identifies the operation a client asks the server to perform.
type Request string

const (
	RequestRegister        Request = "REGISTER"
	RequestLogin           Request = "LOGIN"
	RequestLogout          Request = "LOGOUT"
	RequestListAllProjects Request = "LIST_ALL_PROJECTS"
	RequestCreateProject   Request = "CREATE_PROJECT"
	RequestAddMember       Request = "ADD_MEMBER"
	RequestShowAllMembers  Request = "SHOW_ALL_MEMBERS"
	RequestShowAllCards    Request = "SHOW_ALL_CARDS"
	RequestShowCard        Request = "SHOW_CARD"
	RequestAddCard         Request = "ADD_CARD"
	RequestMoveCard        Request = "MOVE_CARD"
	RequestCancelProject   Request = "CANCEL_PROJECT"

	// RequestSubscribe turns the connection it arrives on into a push
	// channel: the server registers it as a subscriber handle and from then
	// on only event messages travel on it, server to client.
	RequestSubscribe Request = "SUBSCRIBE"
)

// Response is the business outcome of an operation. Expected conditions are
// outcomes, not errors; only transport and coding faults surface as Go errors.
type Response string

const (
	ResponseOK                  Response = "OK"
	ResponseUserExists          Response = "USER_EXISTS"
	ResponseNotRegistered       Response = "NOT_REGISTERED"
	ResponseWrongPassword       Response = "WRONG_PASSWORD"
	ResponseAlreadyLogged       Response = "ALREADY_LOGGED"
	ResponseProjectExists       Response = "PROJECT_EXISTS"
	ResponseMemberExists        Response = "MEMBER_EXISTS"
	ResponseNonexistentProject  Response = "NONEXISTENT_PROJECT"
	ResponseNonexistentCard     Response = "NONEXISTENT_CARD"
	ResponseNonexistentList     Response = "NONEXISTENT_LIST"
	ResponseCardExists          Response = "CARD_EXISTS"
	ResponseMoveCardForbidden   Response = "MOVE_CARD_FORBIDDEN"
	ResponseUnknownError        Response = "UNKNOWN_ERROR"
	ResponseDeleteForbidden     Response = "DELETE_FORBIDDEN"
	ResponseUnableCreateProject Response = "UNABLE_CREATE_PROJECT"
)

// Event identifies a server-initiated push on a subscription connection.
type Event string

const (
	// EventUsers carries the full current user list.
	EventUsers Event = "USER_EVENT"
	// EventChats carries the full current project list.
	EventChats Event = "CHATS_EVENT"
)

// Workflow list names, as they appear on the wire and in persisted records.
const (
	ListTodo        = "TODO"
	ListInProgress  = "INPROGRESS"
	ListToBeRevised = "TOBEREVISED"
	ListDone        = "DONE"
)

// ParseList normalizes a list name to its canonical upper-case form.
// Normalization happens once, here at the protocol boundary; everything
// behind it compares canonical names only.
func ParseList(name string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ListTodo:
		return ListTodo, true
	case ListInProgress:
		return ListInProgress, true
	case ListToBeRevised:
		return ListToBeRevised, true
	case ListDone:
		return ListDone, true
	default:
		return "", false
	}
}

// User is the wire snapshot of a registered user.
type User struct {
	Nickname string `json:"nickname"`
	Online   bool   `json:"online"`
}

// Card is the wire snapshot of a card: its current list position and the
// ordered trail of lists it has occupied, oldest first.
type Card struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Position    string   `json:"position"`
	History     []string `json:"history"`
}

// Project is the wire snapshot of a project.
type Project struct {
	Name        string   `json:"name"`
	Members     []string `json:"members"`
	ChatAddress string   `json:"chatAddress,omitempty"`
	Cards       []Card   `json:"cards,omitempty"`
}

// Message is the single tagged envelope exchanged between client and server.
// Exactly one of Request, Response or Event is populated per instance; the
// payload fields relevant to that kind are set and all others stay absent.
type Message struct {
	Request  Request  `json:"request,omitempty"`
	Response Response `json:"response,omitempty"`
	Event    Event    `json:"event,omitempty"`

	Nickname    string `json:"nickname,omitempty"`
	Password    string `json:"password,omitempty"`
	Token       string `json:"token,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
	NewMember   string `json:"newMember,omitempty"`
	CardName    string `json:"cardName,omitempty"`
	Description string `json:"description,omitempty"`
	SourceList  string `json:"sourceList,omitempty"`
	DestList    string `json:"destList,omitempty"`

	User     *User     `json:"user,omitempty"`
	Users    []User    `json:"users,omitempty"`
	Projects []Project `json:"projects,omitempty"`
	Members  []string  `json:"members,omitempty"`
	Cards    []Card    `json:"cards,omitempty"`
	Card     *Card     `json:"card,omitempty"`
}
