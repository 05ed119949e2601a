package realtime

import "sync"

// UserRoom names the private room every connection is auto-joined to on
// attach. Publishing to it reaches all of the user's open sockets, on any
// process, through the same room fan-out used for chat rooms.
func UserRoom(userID string) string {
	return "user:" + userID
}

// Router is the process-local connection registry: which sockets this
// process owns, per user, and which logical rooms each belongs to. It is
// constructed at startup and passed explicitly to handlers; cross-process
// room membership is resolved by the broker-backed fan-out, not here.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]map[string]*Connection // userID -> sessionID -> connection
	rooms        map[string]map[string]*Connection // roomID -> sessionID -> connection
	sessionRooms map[string]map[string]struct{}    // sessionID -> set of roomIDs
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]map[string]*Connection),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection, starts its write loop and auto-joins it to
// the user's private room. Multiple concurrent connections per user are
// allowed; none replaces another.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	byUser := r.userSessions[conn.UserID]
	if byUser == nil {
		byUser = make(map[string]*Connection)
		r.userSessions[conn.UserID] = byUser
	}
	byUser[conn.ID] = conn
	r.sessionRooms[conn.ID] = make(map[string]struct{})
	r.joinLocked(UserRoom(conn.UserID), conn)
	r.mu.Unlock()

	conn.Start()
}

// Detach removes a connection from the registry and from every local room
// it joined. It does not close the connection; callers own that.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join adds the connection to a room. Unknown (already detached)
// connections are ignored.
func (r *Router) Join(roomID string, conn *Connection) {
	r.mu.Lock()
	if _, ok := r.sessions[conn.ID]; ok {
		r.joinLocked(roomID, conn)
	}
	r.mu.Unlock()
}

// Leave removes the connection from a room.
func (r *Router) Leave(roomID string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(roomID, conn.ID)
	r.mu.Unlock()
}

// Broadcast writes payload to every local member of the room and reports
// how many sockets accepted it. A room with no local members is a no-op.
func (r *Router) Broadcast(roomID string, payload []byte) int {
	r.mu.RLock()
	room := r.rooms[roomID]
	conns := make([]*Connection, 0, len(room))
	for _, conn := range room {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to every local connection of the given user.
func (r *Router) NotifyUser(userID string, payload []byte) int {
	r.mu.RLock()
	byUser := r.userSessions[userID]
	conns := make([]*Connection, 0, len(byUser))
	for _, conn := range byUser {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears registry state.
func (r *Router) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		conns = append(conns, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]map[string]*Connection)
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) joinLocked(roomID string, conn *Connection) {
	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomID] = room
	}
	room[conn.ID] = conn

	memberships := r.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.ID] = memberships
	}
	memberships[roomID] = struct{}{}
}

func (r *Router) detachLocked(sessionID string) {
	conn, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if byUser := r.userSessions[conn.UserID]; byUser != nil {
		delete(byUser, sessionID)
		if len(byUser) == 0 {
			delete(r.userSessions, conn.UserID)
		}
	}

	for roomID := range r.sessionRooms[sessionID] {
		r.leaveLocked(roomID, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(roomID string, sessionID string) {
	room := r.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, roomID)
	}
}
